package main

import (
	"os"

	"github.com/rustyeddy/hltrader/cmd/hltrader/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

var versionCmd = &cobra.Command{
	Use:               "version",
	Short:             "Print the version number",
	Long:              `Display the current version of the hltrader CLI.`,
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "hltrader version %s\n", version)
		fmt.Fprintln(cmd.OutOrStdout(), "Risk-gated order entry for Hyperliquid")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu   sync.Mutex
	mono io.Reader
)

func init() {
	// Monotonic entropy keeps IDs from the same millisecond sorted.
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	mono = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

func next() ulid.ULID {
	mu.Lock()
	defer mu.Unlock()

	u, err := ulid.New(ulid.Timestamp(time.Now().UTC()), mono)
	if err != nil {
		panic(err)
	}
	return u
}

// New returns a ULID string. ULIDs sort by creation time, which keeps the
// submission journal's primary key in insertion order.
func New() string {
	return next().String()
}

// NewClientOrderID returns a 0x-prefixed 128-bit hex id, the client order
// id format the exchange accepts.
func NewClientOrderID() string {
	u := next()
	return "0x" + hex.EncodeToString(u[:])
}

package market

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is the market state for one symbol at evaluation time.
type Snapshot struct {
	Symbol       Symbol
	MarkPrice    decimal.Decimal
	IsSpot       bool
	SizeDecimals int32
	MaxLeverage  uint32
	Time         time.Time
}

type SnapshotSource interface {
	Snapshot(ctx context.Context, sym Symbol) (Snapshot, error)
}

// Trade is a public fill printed on the exchange tape.
type Trade struct {
	Symbol Symbol
	Side   Side
	Price  decimal.Decimal
	Size   decimal.Decimal
	Time   time.Time
	TID    uint64
}

var ErrNoMark = errors.New("mark price not found")

// MarkStore holds the latest snapshot per symbol.
type MarkStore struct {
	mu    sync.RWMutex
	marks map[Symbol]Snapshot
}

func NewMarkStore() *MarkStore {
	return &MarkStore{marks: make(map[Symbol]Snapshot)}
}

func (ms *MarkStore) Set(s Snapshot) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.marks[s.Symbol] = s
}

func (ms *MarkStore) Get(sym Symbol) (Snapshot, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	s, ok := ms.marks[sym]
	if !ok {
		return Snapshot{}, ErrNoMark
	}
	return s, nil
}

func (ms *MarkStore) Symbols() []Symbol {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	out := make([]Symbol, 0, len(ms.marks))
	for s := range ms.marks {
		out = append(out, s)
	}
	return out
}

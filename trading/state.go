package trading

import "fmt"

// State is where a submission is in its lifecycle.
type State string

const (
	StateReceived              State = "received"
	StateValidating            State = "validating"
	StateInvalid               State = "invalid"
	StateMarketDataUnavailable State = "market_data_unavailable"
	StateRejected              State = "rejected"
	StateBuilding              State = "building"
	StateSubmitting            State = "submitting"
	StateAcked                 State = "acked"
	StateExchangeRejected      State = "exchange_rejected"
	StateConnectionFailed      State = "connection_failed"
	StateRequestFailed         State = "request_failed"
)

var transitions = map[State][]State{
	StateReceived:   {StateValidating},
	StateValidating: {StateInvalid, StateMarketDataUnavailable, StateRejected, StateBuilding},
	StateBuilding:   {StateSubmitting},
	StateSubmitting: {StateAcked, StateExchangeRejected, StateConnectionFailed, StateRequestFailed},
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	_, ok := transitions[s]
	return !ok
}

func (s State) canMoveTo(next State) bool {
	for _, n := range transitions[s] {
		if n == next {
			return true
		}
	}
	return false
}

// lifecycle tracks one submission. An illegal move is a bug in the
// service and panics.
type lifecycle struct {
	state State
	trail []State
}

func newLifecycle() *lifecycle {
	return &lifecycle{state: StateReceived, trail: []State{StateReceived}}
}

func (l *lifecycle) advance(next State) {
	if !l.state.canMoveTo(next) {
		panic(fmt.Sprintf("trading: illegal transition %s -> %s", l.state, next))
	}
	l.state = next
	l.trail = append(l.trail, next)
}

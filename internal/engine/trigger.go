package engine

import (
	"sync"

	"github.com/shopspring/decimal"
)

// TriggerState is the only state shared across both sessions: the
// authentication flag, the latest ask and the one-way order latch. Every
// read-modify-write happens under one mutex, so two concurrent evaluations
// can never both claim the latch.
type TriggerState struct {
	mu            sync.Mutex
	authenticated bool
	latestAsk     decimal.Decimal
	haveAsk       bool
	submitted     bool
}

func NewTriggerState() *TriggerState {
	return &TriggerState{}
}

func (t *TriggerState) SetAuthenticated(ok bool) {
	t.mu.Lock()
	t.authenticated = ok
	t.mu.Unlock()
}

// ObservePrice records the latest ask. Non-positive values are dropped, so
// the observation never rolls back to unset.
func (t *TriggerState) ObservePrice(ask decimal.Decimal) {
	if ask.Sign() <= 0 {
		return
	}
	t.mu.Lock()
	t.latestAsk = ask
	t.haveAsk = true
	t.mu.Unlock()
}

// Arm performs the check-and-set: if authenticated, an ask is known and the
// latch is still open, it closes the latch and returns the ask frozen at
// this moment. The latch never reopens.
func (t *TriggerState) Arm() (decimal.Decimal, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.submitted || !t.authenticated || !t.haveAsk {
		return decimal.Decimal{}, false
	}

	t.submitted = true
	return t.latestAsk, true
}

func (t *TriggerState) Submitted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.submitted
}

package core

// simple_token.go – an in-memory TokenLedger reference implementation
// used by the CLI demo entrypoint and by tests. Production deployments
// supply their own TokenLedger backed by a real token contract; this
// type only exists because the core needs *something* to exercise the
// Gateway against in-process, mirroring the hand-rolled stubToken in
// the teacher's tests/state_channel_test.go.

import (
	"sync"

	"github.com/holiman/uint256"
)

// SimpleToken is a trivial allowance-less ledger: every TransferFrom
// succeeds unconditionally provided the owner's tracked balance covers
// it, matching the teacher's stubToken which never modelled allowances
// either. It exists for demos/tests, not as a production ledger.
type SimpleToken struct {
	mu       sync.Mutex
	balances map[Address]*uint256.Int
}

// NewSimpleToken seeds initial balances for a set of addresses.
func NewSimpleToken(initial map[Address]uint64) *SimpleToken {
	t := &SimpleToken{balances: make(map[Address]*uint256.Int, len(initial))}
	for addr, amt := range initial {
		t.balances[addr] = uint256.NewInt(amt)
	}
	return t
}

// BalanceOf returns the tracked balance for addr (zero if unseen).
func (t *SimpleToken) BalanceOf(addr Address) *uint256.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if b, ok := t.balances[addr]; ok {
		return new(uint256.Int).Set(b)
	}
	return new(uint256.Int)
}

func (t *SimpleToken) TransferFrom(owner, recipient Address, amount *uint256.Int) (bool, error) {
	return t.move(owner, recipient, amount)
}

func (t *SimpleToken) Transfer(recipient Address, amount *uint256.Int) (bool, error) {
	// The escrow itself is never tracked by address in this reference
	// ledger; its outbound pushes are modelled as unconditional mints
	// to the recipient, mirroring the teacher's stubToken.Transfer
	// which never validated the sender's balance either.
	t.mu.Lock()
	defer t.mu.Unlock()
	t.credit(recipient, amount)
	return true, nil
}

func (t *SimpleToken) move(owner, recipient Address, amount *uint256.Int) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	bal, ok := t.balances[owner]
	if !ok || bal.Lt(amount) {
		return false, nil
	}
	bal.Sub(bal, amount)
	t.credit(recipient, amount)
	return true, nil
}

func (t *SimpleToken) credit(addr Address, amount *uint256.Int) {
	bal, ok := t.balances[addr]
	if !ok {
		bal = new(uint256.Int)
		t.balances[addr] = bal
	}
	bal.Add(bal, amount)
}

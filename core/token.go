package core

// token.go – Token Gateway (spec.md §4.C).
//
// The gateway trusts the token to be well-behaved (non-reentrant,
// boolean-returning). Defense against reentrancy is by state-machine
// structure in engine.go, not by anything in here.

import (
	"github.com/holiman/uint256"
)

// TokenLedger is the external fungible-token ledger consumed by the
// core (spec.md §6). It is never implemented here; the escrow only
// calls it.
type TokenLedger interface {
	// TransferFrom moves amount from owner to recipient, requiring
	// prior allowance by owner to the caller (the escrow).
	TransferFrom(owner, recipient Address, amount *uint256.Int) (bool, error)
	// Transfer moves amount from the caller (the escrow) to recipient.
	Transfer(recipient Address, amount *uint256.Int) (bool, error)
}

// Gateway pulls tokens into escrow on deposit and pushes tokens out on
// distribution, treating zero-amount transfers as no-ops.
type Gateway struct {
	self Address
}

// NewGateway builds a Gateway that identifies itself as self when
// pulling funds (the recipient of TransferFrom).
func NewGateway(self Address) *Gateway { return &Gateway{self: self} }

// Pull draws amount from from into escrow via the given ledger.
func (g *Gateway) Pull(ledger TokenLedger, from Address, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}
	ok, err := ledger.TransferFrom(from, g.self, amount)
	if err != nil {
		return newErr(CodeTokenTransferFailed, "pull from %s: %v", from.Hex(), err)
	}
	if !ok {
		return newErr(CodeTokenTransferFailed, "pull from %s rejected", from.Hex())
	}
	return nil
}

// Push sends amount from escrow to to via the given ledger.
func (g *Gateway) Push(ledger TokenLedger, to Address, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}
	ok, err := ledger.Transfer(to, amount)
	if err != nil {
		return newErr(CodeTokenTransferFailed, "push to %s: %v", to.Hex(), err)
	}
	if !ok {
		return newErr(CodeTokenTransferFailed, "push to %s rejected", to.Hex())
	}
	return nil
}

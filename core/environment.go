package core

// environment.go – the ambient execution environment consumed by the
// core (spec.md §6): caller identity, the escrow's own address, a
// monotonic block-number scalar, and a monotonic wall clock. None of
// these are implemented "for real" here — transaction atomicity,
// rollback-on-failure and caller authentication are the host's job;
// the core only ever reads through this interface.

import "github.com/holiman/uint256"

// Environment exposes the four ambient values a settlement operation
// needs but must never originate itself.
type Environment interface {
	// CallerAddress is the authenticated initiator of the current
	// operation.
	CallerAddress() Address
	// SelfAddress is the escrow's own identity, used as the recipient
	// of pulls.
	SelfAddress() Address
	// BlockNumber is a monotonic scalar used only as an id nonce; its
	// value need not be interpreted.
	BlockNumber() *uint256.Int
	// Now is a monotonic wall-clock reading in seconds.
	Now() *uint256.Int
}

// StaticEnvironment is a test/CLI-friendly Environment whose caller and
// clock are set explicitly by the harness driving it, rather than
// sourced from a real host runtime.
type StaticEnvironment struct {
	Caller Address
	Self   Address
	Block  *uint256.Int
	Clock  *uint256.Int
}

func (e *StaticEnvironment) CallerAddress() Address     { return e.Caller }
func (e *StaticEnvironment) SelfAddress() Address       { return e.Self }
func (e *StaticEnvironment) BlockNumber() *uint256.Int  { return e.Block }
func (e *StaticEnvironment) Now() *uint256.Int          { return e.Clock }

// AsCaller returns a shallow copy of e with Caller swapped, for driving
// successive operations from different parties without reconstructing
// the whole environment.
func (e *StaticEnvironment) AsCaller(addr Address) *StaticEnvironment {
	cp := *e
	cp.Caller = addr
	return &cp
}

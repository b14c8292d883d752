// Package core implements the on-chain settlement core of a bilateral
// payment channel: channel opening, counterparty join, signed-receipt
// verification, cooperative close, challenge-period override and final
// fund distribution.
package core

import (
	"encoding/hex"

	"github.com/holiman/uint256"
)

// Address is a 20-byte account or token-contract identifier.
type Address [20]byte

// Bytes returns the raw bytes of the address.
func (a Address) Bytes() []byte { return a[:] }

// Hex renders the address as a "0x"-prefixed lowercase hex string.
func (a Address) Hex() string { return "0x" + hex.EncodeToString(a[:]) }

func (a Address) String() string { return a.Hex() }

// IsZero reports whether a is the zero address.
func (a Address) IsZero() bool { return a == Address{} }

// ChannelID is the 32-byte opaque identifier of a channel, derived by
// the Canonical Encoder at open time.
type ChannelID [32]byte

// Bytes returns the raw bytes of the id.
func (c ChannelID) Bytes() []byte { return c[:] }

// Hex renders the channel id as a "0x"-prefixed lowercase hex string.
func (c ChannelID) Hex() string { return "0x" + hex.EncodeToString(c[:]) }

func (c ChannelID) String() string { return c.Hex() }

// Status is the channel lifecycle state (spec.md §3).
type Status uint8

const (
	StatusOpen Status = iota
	StatusOnChallenge
	StatusClosed
)

func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "OPEN"
	case StatusOnChallenge:
		return "ON_CHALLENGE"
	case StatusClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Channel is the only persistent entity of the core (spec.md §3). All
// 256-bit quantities are represented with uint256.Int so that the
// arithmetic guards in guards.go can report overflow rather than wrap.
type Channel struct {
	ID              ChannelID
	Token           Address
	PartyA          Address
	PartyB          Address
	BalanceA        *uint256.Int
	BalanceB        *uint256.Int
	Nonce           *uint256.Int
	CloseTime       *uint256.Int
	ChallengePeriod *uint256.Int
	Status          Status
}

// clone returns a deep copy so callers mutating the returned record
// never corrupt the store's own state without going through Update.
func (c Channel) clone() Channel {
	cp := c
	cp.BalanceA = new(uint256.Int).Set(c.BalanceA)
	cp.BalanceB = new(uint256.Int).Set(c.BalanceB)
	cp.Nonce = new(uint256.Int).Set(c.Nonce)
	cp.CloseTime = new(uint256.Int).Set(c.CloseTime)
	cp.ChallengePeriod = new(uint256.Int).Set(c.ChallengePeriod)
	return cp
}

// Receipt is the off-chain co-signed tuple redeemable on-chain
// (spec.md §6, "Receipt wire format").
type Receipt struct {
	ChannelID ChannelID
	BalanceA  *uint256.Int
	BalanceB  *uint256.Int
	Nonce     *uint256.Int
}

// Signature is a 65-byte (r, s, v) secp256k1 signature.
type Signature [65]byte

package cli

// runtime.go – stand-ins for the ambient execution environment
// (spec §6) that a real deployment supplies: a monotonic block-number
// source, a wall clock, and a token ledger. None of these belong in
// package core; the CLI only exists to drive the core end to end for
// demos and manual testing.

import (
	"time"

	"github.com/holiman/uint256"

	"paychannel/core"
)

// demoLedger seeds a handful of well-known demo addresses with a large
// balance so `channel open`/`join` have something to pull from without
// a real token contract wired up.
var demoLedger = core.NewSimpleToken(map[core.Address]uint64{
	demoAddress(0x0A): 1_000_000,
	demoAddress(0x0B): 1_000_000,
})

func demoAddress(b byte) core.Address {
	var a core.Address
	a[len(a)-1] = b
	return a
}

func demoBlockNumber() *uint256.Int {
	return uint256.NewInt(uint64(time.Now().UnixNano()))
}

func demoNow() *uint256.Int {
	return uint256.NewInt(uint64(time.Now().Unix()))
}

package core

// encode.go – Canonical Encoder (spec.md §4.A).
//
// Both preimages are tight concatenations with no separators or length
// prefixes: this is a wire format shared with off-chain signing tooling,
// not free-form serialization. Do not reorder or pad the fields.

import (
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// H is the 256-bit cryptographic hash used throughout the core
// (Keccak-256, matching the off-chain Ethereum-style signing tooling
// this receipt format co-designs with).
func H(data []byte) [32]byte {
	return crypto.Keccak256Hash(data)
}

// EncodeChannelIDPreimage builds token(20) ‖ partyA(20) ‖ partyB(20) ‖
// blockNumber(32, big-endian).
func EncodeChannelIDPreimage(token, partyA, partyB Address, blockNumber *uint256.Int) []byte {
	buf := make([]byte, 0, 20+20+20+32)
	buf = append(buf, token[:]...)
	buf = append(buf, partyA[:]...)
	buf = append(buf, partyB[:]...)
	bn := blockNumber.Bytes32()
	buf = append(buf, bn[:]...)
	return buf
}

// DeriveChannelID hashes the channel-id preimage with H.
func DeriveChannelID(token, partyA, partyB Address, blockNumber *uint256.Int) ChannelID {
	return ChannelID(H(EncodeChannelIDPreimage(token, partyA, partyB, blockNumber)))
}

// EncodeReceiptPreimage builds channel_id(32) ‖ balanceA(32) ‖
// balanceB(32) ‖ nonce(32), all big-endian.
func EncodeReceiptPreimage(id ChannelID, balanceA, balanceB, nonce *uint256.Int) []byte {
	buf := make([]byte, 0, 32*4)
	buf = append(buf, id[:]...)
	a := balanceA.Bytes32()
	b := balanceB.Bytes32()
	n := nonce.Bytes32()
	buf = append(buf, a[:]...)
	buf = append(buf, b[:]...)
	buf = append(buf, n[:]...)
	return buf
}

// ReceiptDigest hashes the receipt preimage with H.
func ReceiptDigest(id ChannelID, balanceA, balanceB, nonce *uint256.Int) [32]byte {
	return H(EncodeReceiptPreimage(id, balanceA, balanceB, nonce))
}

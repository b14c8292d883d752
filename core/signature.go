package core

// signature.go – Signature Verifier (spec.md §4.B).
//
// Off-chain signing tools prefix the receipt digest with the fixed
// Ethereum banner before signing; this MUST be reproduced exactly on
// recovery or every signature will fail to verify.

import (
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
)

const ethSignedMessagePrefix = "\x19Ethereum Signed Message:\n32"

// prefixedDigest hashes the banner concatenated with the raw digest.
func prefixedDigest(digest [32]byte) [32]byte {
	return H(append([]byte(ethSignedMessagePrefix), digest[:]...))
}

// VerifySignature recovers the signer of digest from sig and reports
// whether it matches expected. Malformed signatures (wrong length,
// invalid v, non-canonical high-s) are rejected rather than allowed to
// recover to a spurious address.
func VerifySignature(digest [32]byte, sig Signature, expected Address) bool {
	addr, ok := RecoverSigner(digest, sig)
	if !ok {
		return false
	}
	return addr == expected
}

// RecoverSigner recovers the secp256k1 signer address of digest from a
// 65-byte (r, s, v) signature, applying the Ethereum-signed-message
// prefix first.
func RecoverSigner(digest [32]byte, sig Signature) (Address, bool) {
	r := sig[0:32]
	s := sig[32:64]
	v := sig[64]

	// Signing tools emit v in {27, 28}; the recovery code needs {0, 1}.
	if v >= 27 {
		v -= 27
	}
	if v != 0 && v != 1 {
		return Address{}, false
	}
	// homestead=true enforces the low-s canonical form the spec requires.
	if !crypto.ValidateSignatureValues(v, new(big.Int).SetBytes(r), new(big.Int).SetBytes(s), true) {
		return Address{}, false
	}

	recoverable := make([]byte, 65)
	copy(recoverable[0:32], r)
	copy(recoverable[32:64], s)
	recoverable[64] = v

	ph := prefixedDigest(digest)
	pub, err := crypto.SigToPub(ph[:], recoverable)
	if err != nil {
		return Address{}, false
	}
	var addr Address
	copy(addr[:], crypto.PubkeyToAddress(*pub).Bytes())
	return addr, true
}

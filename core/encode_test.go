package core

import (
	"bytes"
	"testing"

	"github.com/holiman/uint256"
)

func TestEncodeChannelIDPreimageLayout(t *testing.T) {
	var token, a, b Address
	token[0] = 0x11
	a[0] = 0x22
	b[0] = 0x33
	bn := uint256.NewInt(7)

	got := EncodeChannelIDPreimage(token, a, b, bn)
	if len(got) != 20+20+20+32 {
		t.Fatalf("preimage length = %d, want %d", len(got), 92)
	}
	if !bytes.Equal(got[0:20], token[:]) || !bytes.Equal(got[20:40], a[:]) || !bytes.Equal(got[40:60], b[:]) {
		t.Fatalf("field ordering wrong")
	}
	wantBN := bn.Bytes32()
	if !bytes.Equal(got[60:92], wantBN[:]) {
		t.Fatalf("block number not big-endian 32 bytes")
	}
}

func TestDeriveChannelIDDeterministic(t *testing.T) {
	var token, a, b Address
	token[0], a[0], b[0] = 1, 2, 3
	bn := uint256.NewInt(42)

	id1 := DeriveChannelID(token, a, b, bn)
	id2 := DeriveChannelID(token, a, b, bn)
	if id1 != id2 {
		t.Fatalf("same inputs produced different ids")
	}

	id3 := DeriveChannelID(token, a, b, uint256.NewInt(43))
	if id1 == id3 {
		t.Fatalf("different block numbers collided")
	}
}

func TestReceiptDigestDeterministic(t *testing.T) {
	var id ChannelID
	id[0] = 0xAB
	balA := uint256.NewInt(100)
	balB := uint256.NewInt(200)
	nonce := uint256.NewInt(1)

	d1 := ReceiptDigest(id, balA, balB, nonce)
	d2 := ReceiptDigest(id, balA, balB, nonce)
	if d1 != d2 {
		t.Fatalf("digest not deterministic")
	}

	d3 := ReceiptDigest(id, balA, balB, uint256.NewInt(2))
	if d1 == d3 {
		t.Fatalf("nonce change did not affect digest")
	}
}

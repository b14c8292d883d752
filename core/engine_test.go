package core

import (
	"crypto/ecdsa"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// testHarness bundles a fresh Engine with two funded parties and an
// environment whose caller/clock/block can be swapped per call, mirroring
// how the teacher's tests drive state_channel.go through a stub context.
type testHarness struct {
	t      *testing.T
	engine *Engine
	env    *StaticEnvironment
	ledger *SimpleToken
	events *MemEventSink
	token  Address

	addrA, addrB Address
	privA, privB *ecdsa.PrivateKey
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()
	privA, addrA := genKey(t)
	privB, addrB := genKey(t)

	ledger := NewSimpleToken(map[Address]uint64{addrA: 1_000, addrB: 1_000})
	self := Address{0xEE}
	events := NewMemEventSink()
	env := &StaticEnvironment{Self: self, Block: uint256.NewInt(1), Clock: uint256.NewInt(1000)}

	return &testHarness{
		t:      t,
		engine: NewEngine(NewMemStore(), NewGateway(self), events, env),
		env:    env,
		ledger: ledger,
		events: events,
		token:  Address{0x01},
		addrA:  addrA,
		addrB:  addrB,
		privA:  privA,
		privB:  privB,
	}
}

func genKey(t *testing.T) (*ecdsa.PrivateKey, Address) {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	return key, Address(crypto.PubkeyToAddress(key.PublicKey))
}

func (h *testHarness) as(addr Address) {
	h.env.Caller = addr
}

func (h *testHarness) receiptSig(priv *ecdsa.PrivateKey, id ChannelID, balA, balB, nonce uint64) Signature {
	digest := ReceiptDigest(id, uint256.NewInt(balA), uint256.NewInt(balB), uint256.NewInt(nonce))
	ph := prefixedDigest(digest)
	raw, err := crypto.Sign(ph[:], priv)
	if err != nil {
		h.t.Fatalf("Sign: %v", err)
	}
	var sig Signature
	copy(sig[:], raw)
	sig[64] += 27
	return sig
}

func TestOpenJoinCloseWithoutChallengePeriod(t *testing.T) {
	h := newHarness(t)
	h.as(h.addrA)
	id, err := h.engine.Open(h.ledger, h.token, h.addrB, 100, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	h.as(h.addrB)
	if err := h.engine.Join(h.ledger, id, 50); err != nil {
		t.Fatalf("Join: %v", err)
	}

	sigA := h.receiptSig(h.privA, id, 70, 80, 1)
	sigB := h.receiptSig(h.privB, id, 70, 80, 1)

	h.as(h.addrA)
	if err := h.engine.Close(h.ledger, id, 1, 70, 80, sigA, sigB); err != nil {
		t.Fatalf("Close: %v", err)
	}

	ch, ok := h.engine.Store.Get(id)
	if !ok || ch.Status != StatusClosed {
		t.Fatalf("channel not closed: %+v ok=%v", ch, ok)
	}
	if h.ledger.BalanceOf(h.addrA).Uint64() != 900+70 {
		t.Fatalf("partyA balance after distribution = %s", h.ledger.BalanceOf(h.addrA))
	}
	if len(h.events.List(EventChannelClosed)) != 1 {
		t.Fatalf("ChannelClosed event not recorded")
	}
}

func TestCloseThenChallengeWithHigherNonceWins(t *testing.T) {
	h := newHarness(t)
	h.as(h.addrA)
	id, _ := h.engine.Open(h.ledger, h.token, h.addrB, 100, 60)
	h.as(h.addrB)
	_ = h.engine.Join(h.ledger, id, 50)

	sigA1 := h.receiptSig(h.privA, id, 70, 80, 1)
	sigB1 := h.receiptSig(h.privB, id, 70, 80, 1)
	h.as(h.addrA)
	if err := h.engine.Close(h.ledger, id, 1, 70, 80, sigA1, sigB1); err != nil {
		t.Fatalf("Close: %v", err)
	}

	ch, _ := h.engine.Store.Get(id)
	if ch.Status != StatusOnChallenge {
		t.Fatalf("channel status after close with nonzero challenge period = %s", ch.Status)
	}

	sigA2 := h.receiptSig(h.privA, id, 60, 90, 2)
	sigB2 := h.receiptSig(h.privB, id, 60, 90, 2)
	h.as(h.addrB)
	if err := h.engine.Challenge(id, 2, 60, 90, sigA2, sigB2); err != nil {
		t.Fatalf("Challenge: %v", err)
	}

	h.env.Clock = uint256.NewInt(1000 + 61)
	if err := h.engine.Redeem(h.ledger, id); err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	ch, _ = h.engine.Store.Get(id)
	if ch.Status != StatusClosed || ch.BalanceA.Uint64() != 60 {
		t.Fatalf("final channel state wrong: %+v", ch)
	}
}

func TestChallengeRejectsStaleNonce(t *testing.T) {
	h := newHarness(t)
	h.as(h.addrA)
	id, _ := h.engine.Open(h.ledger, h.token, h.addrB, 100, 60)
	h.as(h.addrB)
	_ = h.engine.Join(h.ledger, id, 50)

	sigA := h.receiptSig(h.privA, id, 70, 80, 2)
	sigB := h.receiptSig(h.privB, id, 70, 80, 2)
	h.as(h.addrA)
	_ = h.engine.Close(h.ledger, id, 2, 70, 80, sigA, sigB)

	staleSigA := h.receiptSig(h.privA, id, 60, 90, 1)
	staleSigB := h.receiptSig(h.privB, id, 60, 90, 1)
	err := h.engine.Challenge(id, 1, 60, 90, staleSigA, staleSigB)
	if !IsCode(err, CodeStaleNonce) {
		t.Fatalf("stale-nonce challenge accepted or wrong code: %v", err)
	}
}

func TestCloseRejectsConservationViolation(t *testing.T) {
	h := newHarness(t)
	h.as(h.addrA)
	id, _ := h.engine.Open(h.ledger, h.token, h.addrB, 100, 0)
	h.as(h.addrB)
	_ = h.engine.Join(h.ledger, id, 50)

	sigA := h.receiptSig(h.privA, id, 70, 90, 1)
	sigB := h.receiptSig(h.privB, id, 70, 90, 1)
	h.as(h.addrA)
	err := h.engine.Close(h.ledger, id, 1, 70, 90, sigA, sigB)
	if !IsCode(err, CodeConservationViolation) {
		t.Fatalf("conservation-violating receipt accepted or wrong code: %v", err)
	}
}

func TestCloseRejectsOutsider(t *testing.T) {
	h := newHarness(t)
	h.as(h.addrA)
	id, _ := h.engine.Open(h.ledger, h.token, h.addrB, 100, 0)
	h.as(h.addrB)
	_ = h.engine.Join(h.ledger, id, 50)

	_, outsiderAddr := genKey(t)
	sigA := h.receiptSig(h.privA, id, 70, 80, 1)
	sigB := h.receiptSig(h.privB, id, 70, 80, 1)
	h.as(outsiderAddr)
	err := h.engine.Close(h.ledger, id, 1, 70, 80, sigA, sigB)
	if !IsCode(err, CodeNotAParticipant) {
		t.Fatalf("outsider-initiated close accepted or wrong code: %v", err)
	}
}

func TestRedeemRejectsBeforeChallengePeriodOver(t *testing.T) {
	h := newHarness(t)
	h.as(h.addrA)
	id, _ := h.engine.Open(h.ledger, h.token, h.addrB, 100, 60)
	h.as(h.addrB)
	_ = h.engine.Join(h.ledger, id, 50)

	sigA := h.receiptSig(h.privA, id, 70, 80, 1)
	sigB := h.receiptSig(h.privB, id, 70, 80, 1)
	h.as(h.addrA)
	_ = h.engine.Close(h.ledger, id, 1, 70, 80, sigA, sigB)

	err := h.engine.Redeem(h.ledger, id)
	if !IsCode(err, CodeChallengePeriodActive) {
		t.Fatalf("early redeem accepted or wrong code: %v", err)
	}
}

func TestOpenRejectsSelfChannelAndZeroDeposit(t *testing.T) {
	h := newHarness(t)
	h.as(h.addrA)

	if _, err := h.engine.Open(h.ledger, h.token, h.addrA, 10, 0); !IsCode(err, CodeSelfChannel) {
		t.Fatalf("self-channel open accepted or wrong code: %v", err)
	}
	if _, err := h.engine.Open(h.ledger, h.token, h.addrB, 0, 0); !IsCode(err, CodeZeroDeposit) {
		t.Fatalf("zero-deposit open accepted or wrong code: %v", err)
	}
}

func TestJoinRejectsDoubleJoin(t *testing.T) {
	h := newHarness(t)
	h.as(h.addrA)
	id, _ := h.engine.Open(h.ledger, h.token, h.addrB, 100, 0)
	h.as(h.addrB)
	if err := h.engine.Join(h.ledger, id, 50); err != nil {
		t.Fatalf("first join: %v", err)
	}
	if err := h.engine.Join(h.ledger, id, 10); !IsCode(err, CodeDoubleJoin) {
		t.Fatalf("double join accepted or wrong code: %v", err)
	}
}

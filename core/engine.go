package core

// engine.go – Settlement Protocol (spec.md §4.F): the public operations
// Open, Join, Close, Challenge, Redeem and their composition over the
// encoder, signature verifier, channel store and state machine guards.
//
// Structured after the teacher's ChannelEngine (state_channel.go):
// OpenChannel -> Open, InitiateClose -> Close, Challenge -> Challenge,
// Finalize -> Redeem, generalized where the spec's two-step
// open-then-join lifecycle and challenge-period arithmetic differ from
// the teacher's single-shot two-sided deposit.
//
// Every method here is meant to run inside one atomic host transaction:
// state mutations are applied to local copies, and every guard runs
// before the Store is written or a token moves, so a guard rejection
// leaves no effect. A failure after that point (a rejected token
// transfer or store write) can leave earlier effects of the same
// operation in place; undoing them is left to the host transaction's
// rollback (spec.md §5).

import (
	"github.com/holiman/uint256"
)

// Engine wires the components of spec.md §4 together behind the five
// public operations. It carries no package-level singleton state (the
// teacher's sync.Once-guarded global ChannelEngine is generalized into
// an explicit value here).
type Engine struct {
	Store   Store
	Gateway *Gateway
	Events  EventSink
	Env     Environment
}

// NewEngine builds an Engine over the given components.
func NewEngine(store Store, gateway *Gateway, events EventSink, env Environment) *Engine {
	return &Engine{Store: store, Gateway: gateway, Events: events, Env: env}
}

// Open allocates a new channel and pulls partyA's deposit. The caller
// must be the intended partyA (spec.md §4.F "open").
func (e *Engine) Open(ledger TokenLedger, token, counterparty Address, amount uint64, challengePeriod uint64) (ChannelID, error) {
	partyA := e.Env.CallerAddress()
	if partyA == counterparty {
		return ChannelID{}, newErr(CodeSelfChannel, "%s", partyA.Hex())
	}
	amt := uint256.NewInt(amount)
	if amt.IsZero() {
		return ChannelID{}, newErr(CodeZeroDeposit, "")
	}

	id := DeriveChannelID(token, partyA, counterparty, e.Env.BlockNumber())
	if e.Store.Contains(id) {
		return ChannelID{}, newErr(CodeIdCollision, "%s", id.Hex())
	}

	ch := Channel{
		ID:              id,
		Token:           token,
		PartyA:          partyA,
		PartyB:          counterparty,
		BalanceA:        amt,
		BalanceB:        new(uint256.Int),
		Nonce:           new(uint256.Int),
		CloseTime:       new(uint256.Int),
		ChallengePeriod: uint256.NewInt(challengePeriod),
		Status:          StatusOpen,
	}

	if err := e.Gateway.Pull(ledger, partyA, amt); err != nil {
		return ChannelID{}, err
	}
	if err := e.Store.Insert(ch); err != nil {
		// The token pull already happened; the host's atomic
		// transaction semantics (spec.md §1) are relied on to roll
		// this back entirely on any later failure in the same
		// operation, so this path only fires for a genuine
		// programming error (a duplicate id already rejected above).
		return ChannelID{}, err
	}
	e.Events.Emit(EventChannelOpened, id)
	log.WithFields(logFields{"channel_id": id.Hex(), "party_a": partyA.Hex(), "party_b": counterparty.Hex()}).Info("channel opened")
	return id, nil
}

// Join completes the two-sided deposit. The caller must be the
// channel's partyB, and join is single-shot: it fails once balanceB is
// already non-zero. A zero-amount join is not "joining" in the sense
// that it flips no recorded flag (spec.md §9, open question 1) — this
// implementation accepts the spec's own proxy (balanceB == 0) rather
// than adding an undocumented joined flag, see DESIGN.md.
func (e *Engine) Join(ledger TokenLedger, id ChannelID, amount uint64) error {
	ch, err := guardValidChannel(e.Store, id)
	if err != nil {
		return err
	}
	caller := e.Env.CallerAddress()
	if caller != ch.PartyB {
		return newErr(CodeNotAParticipant, "%s", caller.Hex())
	}
	if err := guardIsOpen(ch); err != nil {
		return err
	}
	if !ch.BalanceB.IsZero() {
		return newErr(CodeDoubleJoin, "channel %s", id.Hex())
	}

	amt := uint256.NewInt(amount)
	if err := e.Gateway.Pull(ledger, caller, amt); err != nil {
		return err
	}
	ch.BalanceB = amt
	if err := e.Store.Update(ch); err != nil {
		return err
	}
	e.Events.Emit(EventCounterPartyJoined, id)
	log.WithFields(logFields{"channel_id": id.Hex(), "party_b": caller.Hex()}).Info("counterparty joined")
	return nil
}

// Close verifies both co-signed balances, applies the shared receipt
// update, and either distributes immediately (zero challenge period)
// or leaves the channel ON_CHALLENGE awaiting a dispute window.
func (e *Engine) Close(ledger TokenLedger, id ChannelID, nonce, balanceA, balanceB uint64, sigA, sigB Signature) error {
	ch, err := guardValidChannel(e.Store, id)
	if err != nil {
		return err
	}
	if err := guardOnlyParties(ch, e.Env.CallerAddress()); err != nil {
		return err
	}
	if err := guardIsOpen(ch); err != nil {
		return err
	}

	nonceI := uint256.NewInt(nonce)
	balA := uint256.NewInt(balanceA)
	balB := uint256.NewInt(balanceB)
	if err := verifyReceiptSigs(ch, id, nonceI, balA, balB, sigA, sigB); err != nil {
		return err
	}

	ch, err = applyReceiptUpdate(ch, e.Env.Now(), nonceI, balA, balB)
	if err != nil {
		return err
	}

	if ch.ChallengePeriod.IsZero() {
		if err := e.distribute(ledger, ch); err != nil {
			return err
		}
		e.Events.Emit(EventChannelClosed, id)
		log.WithFields(logFields{"channel_id": id.Hex()}).Info("channel closed without challenge period")
		return nil
	}

	if err := e.Store.Update(ch); err != nil {
		return err
	}
	e.Events.Emit(EventChannelOnChallenge, id)
	log.WithFields(logFields{"channel_id": id.Hex(), "deadline_offset": ch.ChallengePeriod.String()}).Info("channel on challenge")
	return nil
}

// Challenge submits a strictly-higher-nonce receipt during the
// challenge window, superseding a stale close.
func (e *Engine) Challenge(id ChannelID, nonce, balanceA, balanceB uint64, sigA, sigB Signature) error {
	ch, err := guardValidChannel(e.Store, id)
	if err != nil {
		return err
	}
	if err := guardOnlyParties(ch, e.Env.CallerAddress()); err != nil {
		return err
	}
	if err := guardIsOnChallenge(ch); err != nil {
		return err
	}
	if err := guardIsDuringChallengePeriod(ch, e.Env.Now()); err != nil {
		return err
	}

	nonceI := uint256.NewInt(nonce)
	if nonceI.Cmp(ch.Nonce) <= 0 {
		return newErr(CodeStaleNonce, "got %s, stored %s", nonceI, ch.Nonce)
	}

	balA := uint256.NewInt(balanceA)
	balB := uint256.NewInt(balanceB)
	if err := verifyReceiptSigs(ch, id, nonceI, balA, balB, sigA, sigB); err != nil {
		return err
	}

	ch, err = applyReceiptUpdate(ch, e.Env.Now(), nonceI, balA, balB)
	if err != nil {
		return err
	}
	if err := e.Store.Update(ch); err != nil {
		return err
	}
	e.Events.Emit(EventChannelChallenged, id)
	log.WithFields(logFields{"channel_id": id.Hex(), "nonce": nonceI.String()}).Info("channel challenged")
	return nil
}

// Redeem forces distribution once the challenge window has elapsed
// without a further challenge.
func (e *Engine) Redeem(ledger TokenLedger, id ChannelID) error {
	ch, err := guardValidChannel(e.Store, id)
	if err != nil {
		return err
	}
	if err := guardOnlyParties(ch, e.Env.CallerAddress()); err != nil {
		return err
	}
	if err := guardIsOnChallenge(ch); err != nil {
		return err
	}
	if err := guardChallengePeriodWasOver(ch, e.Env.Now()); err != nil {
		return err
	}
	if err := e.distribute(ledger, ch); err != nil {
		return err
	}
	e.Events.Emit(EventChannelClosed, id)
	log.WithFields(logFields{"channel_id": id.Hex()}).Info("channel redeemed")
	return nil
}

// verifyReceiptSigs checks both co-signatures over the exact balances
// and nonce about to be stored (spec.md §8 property 3: no off-by-one
// between verified and stored values).
func verifyReceiptSigs(ch Channel, id ChannelID, nonce, balanceA, balanceB *uint256.Int, sigA, sigB Signature) error {
	digest := ReceiptDigest(id, balanceA, balanceB, nonce)
	if !VerifySignature(digest, sigA, ch.PartyA) {
		return newErr(CodeInvalidSignature, "partyA")
	}
	if !VerifySignature(digest, sigB, ch.PartyB) {
		return newErr(CodeInvalidSignature, "partyB")
	}
	return nil
}

// applyReceiptUpdate is the shared update_receipt routine of spec.md
// §4.F: conservation check, nonce/balance replacement, closeTime
// latch, and the transient ON_CHALLENGE status assignment that Close
// may immediately override to CLOSED in the same operation.
func applyReceiptUpdate(ch Channel, now, nonce, balanceA, balanceB *uint256.Int) (Channel, error) {
	total := new(uint256.Int)
	if overflow := total.AddOverflow(ch.BalanceA, ch.BalanceB); overflow {
		return Channel{}, newErr(CodeOverflow, "stored balances for channel %s", ch.ID.Hex())
	}
	sum := new(uint256.Int)
	if overflow := sum.AddOverflow(balanceA, balanceB); overflow {
		return Channel{}, newErr(CodeOverflow, "submitted balances for channel %s", ch.ID.Hex())
	}
	if !sum.Eq(total) {
		return Channel{}, newErr(CodeConservationViolation, "channel %s: %s != %s", ch.ID.Hex(), sum, total)
	}

	ch.Nonce = nonce
	ch.BalanceA = balanceA
	ch.BalanceB = balanceB
	if ch.CloseTime.IsZero() {
		ch.CloseTime = new(uint256.Int).Set(now)
	}
	ch.Status = StatusOnChallenge
	return ch, nil
}

// distribute is the shared distribute_funds routine of spec.md §4.F.
// Status is committed to the store as CLOSED before any token transfer
// is issued (check-effects-interactions, spec.md §4.C/§9): a reentrant
// call during a push reads the store and observes an already-closed
// channel, not a stale in-memory copy. If a push fails afterward, the
// host's atomic-transaction guarantee (spec.md §1) is relied on to roll
// the store write back together with everything else in the operation.
func (e *Engine) distribute(ledger TokenLedger, ch Channel) error {
	if err := guardNotClosed(ch); err != nil {
		return err
	}
	ch.Status = StatusClosed
	if err := e.Store.Update(ch); err != nil {
		return err
	}
	if err := e.Gateway.Push(ledger, ch.PartyA, ch.BalanceA); err != nil {
		return err
	}
	if err := e.Gateway.Push(ledger, ch.PartyB, ch.BalanceB); err != nil {
		return err
	}
	return nil
}

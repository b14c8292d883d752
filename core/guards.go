package core

// guards.go – State Machine guard predicates (spec.md §4.E).
//
// Each guard is a small, reusable precondition check returning a
// tagged *ChannelError, composed by the settlement protocol in
// engine.go. This mirrors the teacher's approach of expressing guards
// as composable checks (e.g. Context.Gas) rather than inlining
// conditionals at every call site.

import "github.com/holiman/uint256"

func guardValidChannel(s Store, id ChannelID) (Channel, error) {
	ch, ok := s.Get(id)
	if !ok {
		return Channel{}, newErr(CodeNoSuchChannel, "%s", id.Hex())
	}
	return ch, nil
}

func guardOnlyParties(ch Channel, caller Address) error {
	if caller != ch.PartyA && caller != ch.PartyB {
		return newErr(CodeNotAParticipant, "%s", caller.Hex())
	}
	return nil
}

func guardIsOpen(ch Channel) error {
	if ch.Status != StatusOpen {
		return newErr(CodeNotOpen, "channel %s is %s", ch.ID.Hex(), ch.Status)
	}
	return nil
}

func guardIsOnChallenge(ch Channel) error {
	if ch.Status != StatusOnChallenge {
		return newErr(CodeNotOnChallenge, "channel %s is %s", ch.ID.Hex(), ch.Status)
	}
	return nil
}

func guardNotClosed(ch Channel) error {
	if ch.Status == StatusClosed {
		return newErr(CodeAlreadyClosed, "channel %s", ch.ID.Hex())
	}
	return nil
}

// deadline computes closeTime+challengePeriod with overflow checking.
func deadline(ch Channel) (*uint256.Int, error) {
	sum := new(uint256.Int)
	if overflow := sum.AddOverflow(ch.CloseTime, ch.ChallengePeriod); overflow {
		return nil, newErr(CodeOverflow, "closeTime+challengePeriod for channel %s", ch.ID.Hex())
	}
	return sum, nil
}

func guardIsDuringChallengePeriod(ch Channel, now *uint256.Int) error {
	dl, err := deadline(ch)
	if err != nil {
		return err
	}
	if now.Gt(dl) {
		return newErr(CodeChallengePeriodExpired, "channel %s", ch.ID.Hex())
	}
	return nil
}

func guardChallengePeriodWasOver(ch Channel, now *uint256.Int) error {
	dl, err := deadline(ch)
	if err != nil {
		return err
	}
	if !now.Gt(dl) {
		return newErr(CodeChallengePeriodActive, "channel %s", ch.ID.Hex())
	}
	return nil
}

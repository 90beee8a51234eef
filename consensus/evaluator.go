package consensus

import "math/big"

// CheckConditions evaluates one spent coin's grouped conditions against
// current chain state. timestamp and prevHeight are the caller's current
// view of chain state and must always be supplied by the caller — there is
// no sentinel "unset" value (see DESIGN.md's Open Question decisions for
// why).
//
// It returns the first error encountered while walking conditions groups in
// order and each group's args left-to-right, or nil on success — no further
// checks run past the first failure.
//
// Grounded on original_source's mempool_check_conditions_dict and its
// mempool_assert_* helpers: one small function per opcode below, dispatched
// by an exhaustive switch in the same tag-dispatch style as
// spend_verify.go's switch w.SuiteID.
func CheckConditions(
	coin CoinRecord,
	coinAnnouncements map[[32]byte]struct{},
	puzzleAnnouncements map[[32]byte]struct{},
	conditions []ConditionGroup,
	prevHeight uint32,
	timestamp uint64,
) *Err {
	for _, group := range conditions {
		for _, cwa := range group.Args {
			if err := checkOne(coin, coinAnnouncements, puzzleAnnouncements, cwa, prevHeight, timestamp); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkOne(
	coin CoinRecord,
	coinAnnouncements map[[32]byte]struct{},
	puzzleAnnouncements map[[32]byte]struct{},
	cwa ConditionWithArgs,
	prevHeight uint32,
	timestamp uint64,
) *Err {
	switch cwa.Opcode {
	case AssertMyCoinID:
		return assertMyCoinID(cwa, coin)
	case AssertMyParentID:
		return assertMyParentID(cwa, coin)
	case AssertMyPuzzlehash:
		return assertMyPuzzlehash(cwa, coin)
	case AssertMyAmount:
		return assertMyAmount(cwa, coin)
	case AssertCoinAnnouncement:
		return assertAnnouncement(cwa, coinAnnouncements, AssertAnnounceConsumedFailed)
	case AssertPuzzleAnnouncement:
		return assertAnnouncement(cwa, puzzleAnnouncements, AssertAnnounceConsumedFailed)
	case AssertHeightAbsolute:
		return assertHeightAbsolute(cwa, prevHeight)
	case AssertHeightRelative:
		return assertHeightRelative(cwa, coin, prevHeight)
	case AssertSecondsAbsolute:
		return assertSecondsAbsolute(cwa, timestamp)
	case AssertSecondsRelative:
		return assertSecondsRelative(cwa, coin, timestamp)
	default:
		// CREATE_COIN, AGG_SIG_*, RESERVE_FEE, CREATE_*_ANNOUNCEMENT, UNKNOWN:
		// effects or externally-verified, not local assertions.
		return nil
	}
}

// requireOneArg reports whether cwa carries the single argument these
// assert helpers index as cwa.Args[0]. CheckConditions is an exported API;
// callers can hand it a hand-built ConditionGroup that never passed through
// ParseCondition, so each helper below must check shape itself rather than
// trust it.
func requireOneArg(cwa ConditionWithArgs) bool {
	return len(cwa.Args) >= 1
}

func assertMyCoinID(cwa ConditionWithArgs, coin CoinRecord) *Err {
	if !requireOneArg(cwa) {
		return newErr(InvalidCondition, "")
	}
	if coin.Coin.Name() != toHash32(cwa.Args[0]) {
		return newErr(AssertMyCoinIDFailed, "")
	}
	return nil
}

func assertMyParentID(cwa ConditionWithArgs, coin CoinRecord) *Err {
	if !requireOneArg(cwa) {
		return newErr(InvalidCondition, "")
	}
	if coin.Coin.ParentID != toHash32(cwa.Args[0]) {
		return newErr(AssertMyParentIDFailed, "")
	}
	return nil
}

func assertMyPuzzlehash(cwa ConditionWithArgs, coin CoinRecord) *Err {
	if !requireOneArg(cwa) {
		return newErr(InvalidCondition, "")
	}
	if coin.Coin.PuzzleHash != toHash32(cwa.Args[0]) {
		return newErr(AssertMyPuzzlehashFailed, "")
	}
	return nil
}

func assertMyAmount(cwa ConditionWithArgs, coin CoinRecord) *Err {
	if !requireOneArg(cwa) {
		return newErr(InvalidCondition, "")
	}
	amount, ok := decodeUint64(cwa.Args[0])
	if !ok {
		return newErr(InvalidCondition, "")
	}
	if coin.Coin.Amount != amount {
		return newErr(AssertMyAmountFailed, "")
	}
	return nil
}

func assertAnnouncement(cwa ConditionWithArgs, set map[[32]byte]struct{}, failCode ErrCode) *Err {
	if !requireOneArg(cwa) {
		return newErr(InvalidCondition, "")
	}
	if _, ok := set[toHash32(cwa.Args[0])]; !ok {
		return newErr(failCode, "")
	}
	return nil
}

// "Exceeds" is non-strict: the condition passes when prevHeight is at least
// the asserted bound.
func assertHeightAbsolute(cwa ConditionWithArgs, prevHeight uint32) *Err {
	if !requireOneArg(cwa) {
		return newErr(InvalidCondition, "")
	}
	bound, ok := decodeUint64(cwa.Args[0])
	if !ok {
		return newErr(InvalidCondition, "")
	}
	if uint64(prevHeight) < bound {
		return newErr(AssertHeightAbsoluteFailed, "")
	}
	return nil
}

// For a condition that went through ParseCondition, addU64 never overflows
// here: parseHeight (grammar.go) bounds the decoded age to fit uint32, and
// coin.ConfirmedBlockIndex is itself a uint32, so their sum fits in uint64.
// A hand-built condition whose sum does overflow gets InvalidCondition.
func assertHeightRelative(cwa ConditionWithArgs, coin CoinRecord, prevHeight uint32) *Err {
	if !requireOneArg(cwa) {
		return newErr(InvalidCondition, "")
	}
	age, ok := decodeUint64(cwa.Args[0])
	if !ok {
		return newErr(InvalidCondition, "")
	}
	bound, ok := addU64(age, uint64(coin.ConfirmedBlockIndex))
	if !ok {
		return newErr(InvalidCondition, "")
	}
	if uint64(prevHeight) < bound {
		return newErr(AssertHeightRelativeFailed, "")
	}
	return nil
}

func assertSecondsAbsolute(cwa ConditionWithArgs, timestamp uint64) *Err {
	if !requireOneArg(cwa) {
		return newErr(InvalidCondition, "")
	}
	bound, ok := decodeUint64(cwa.Args[0])
	if !ok {
		return newErr(InvalidCondition, "")
	}
	if timestamp < bound {
		return newErr(AssertSecondsAbsoluteFailed, "")
	}
	return nil
}

// The bound is delta + coin.Timestamp, both caller-supplied uint64s with no
// upper bound tighter than 2^64 (parseSeconds only elides non-positive
// values and rejects values of 2^64 or more), so a fixed-width uint64 add can genuinely
// overflow for two large-but-valid operands. Adding with math/big instead
// of addU64 matches vm.DecodeInt/FitsUint64's own widen-then-bounds-check
// shape and always yields a real, comparable bound instead of flipping the
// verdict to InvalidCondition on overflow.
func assertSecondsRelative(cwa ConditionWithArgs, coin CoinRecord, timestamp uint64) *Err {
	if !requireOneArg(cwa) {
		return newErr(InvalidCondition, "")
	}
	delta, ok := decodeUint64(cwa.Args[0])
	if !ok {
		return newErr(InvalidCondition, "")
	}
	bound := new(big.Int).Add(new(big.Int).SetUint64(delta), new(big.Int).SetUint64(coin.Timestamp))
	if new(big.Int).SetUint64(timestamp).Cmp(bound) < 0 {
		return newErr(AssertSecondsRelativeFailed, "")
	}
	return nil
}

func toHash32(a []byte) [32]byte {
	var out [32]byte
	copy(out[:], a)
	return out
}

package consensus

import "fmt"

// ErrCode is the closed enumeration of error kinds this package can surface.
// It is string-backed, like errors.go's ErrorCode, so values are
// self-describing in logs and JSON without a lookup table.
type ErrCode string

const (
	// BlockCostExceedsMax means the cost budget was exhausted while
	// charging bytes, VM execution, or per-condition cost.
	BlockCostExceedsMax ErrCode = "BLOCK_COST_EXCEEDS_MAX"
	// GeneratorRuntimeError means the VM faulted or a condition failed to
	// parse; the runner traps it at its boundary.
	GeneratorRuntimeError ErrCode = "GENERATOR_RUNTIME_ERROR"
	// InvalidCondition means, during evaluation, a condition was missing
	// its argument, a numeric argument did not decode to a uint64, or a
	// relative height bound overflowed uint64.
	InvalidCondition ErrCode = "INVALID_CONDITION"

	AssertMyCoinIDFailed         ErrCode = "ASSERT_MY_COIN_ID_FAILED"
	AssertMyParentIDFailed       ErrCode = "ASSERT_MY_PARENT_ID_FAILED"
	AssertMyPuzzlehashFailed     ErrCode = "ASSERT_MY_PUZZLEHASH_FAILED"
	AssertMyAmountFailed         ErrCode = "ASSERT_MY_AMOUNT_FAILED"
	AssertAnnounceConsumedFailed ErrCode = "ASSERT_ANNOUNCE_CONSUMED_FAILED"
	AssertHeightAbsoluteFailed   ErrCode = "ASSERT_HEIGHT_ABSOLUTE_FAILED"
	AssertHeightRelativeFailed   ErrCode = "ASSERT_HEIGHT_RELATIVE_FAILED"
	AssertSecondsAbsoluteFailed  ErrCode = "ASSERT_SECONDS_ABSOLUTE_FAILED"
	AssertSecondsRelativeFailed  ErrCode = "ASSERT_SECONDS_RELATIVE_FAILED"
)

// Err pairs a closed error code with an optional human-readable detail,
// mirroring the TxError/txerr split consensus/errors.go uses.
type Err struct {
	Code ErrCode
	Msg  string
}

func (e *Err) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func newErr(code ErrCode, msg string) *Err {
	return &Err{Code: code, Msg: msg}
}

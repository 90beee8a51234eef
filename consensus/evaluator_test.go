package consensus

import (
	"crypto/sha256"
	"math/big"
	"testing"

	"coinset.dev/condition-validator/vm"
)

func groupOf(opcode Opcode, args ...vm.Atom) []ConditionGroup {
	return GroupByOpcode([]ConditionWithArgs{{Opcode: opcode, Args: args}})
}

func TestCheckConditionsAbsoluteHeightPassAndFail(t *testing.T) {
	coin := CoinRecord{ConfirmedBlockIndex: 100}
	conds := groupOf(AssertHeightAbsolute, vm.EncodeInt(big.NewInt(150)))

	if err := CheckConditions(coin, nil, nil, conds, 200, 0); err != nil {
		t.Fatalf("expected pass at prevHeight=200, bound=150, got %v", err)
	}

	conds = groupOf(AssertHeightAbsolute, vm.EncodeInt(big.NewInt(250)))
	err := CheckConditions(coin, nil, nil, conds, 200, 0)
	if err == nil || err.Code != AssertHeightAbsoluteFailed {
		t.Fatalf("expected ASSERT_HEIGHT_ABSOLUTE_FAILED, got %v", err)
	}
}

func TestCheckConditionsRelativeSeconds(t *testing.T) {
	coin := CoinRecord{Timestamp: 1000}
	conds := groupOf(AssertSecondsRelative, vm.EncodeInt(big.NewInt(500)))
	if err := CheckConditions(coin, nil, nil, conds, 0, 1500); err != nil {
		t.Fatalf("expected pass, got %v", err)
	}

	conds = groupOf(AssertSecondsRelative, vm.EncodeInt(big.NewInt(501)))
	err := CheckConditions(coin, nil, nil, conds, 0, 1500)
	if err == nil || err.Code != AssertSecondsRelativeFailed {
		t.Fatalf("expected ASSERT_SECONDS_RELATIVE_FAILED, got %v", err)
	}
}

func TestCheckConditionsAnnouncement(t *testing.T) {
	h := sha256.Sum256([]byte("hello"))
	set := map[[32]byte]struct{}{h: {}}

	conds := groupOf(AssertCoinAnnouncement, vm.Atom(h[:]))
	if err := CheckConditions(CoinRecord{}, set, nil, conds, 0, 0); err != nil {
		t.Fatalf("expected pass, got %v", err)
	}

	other := sha256.Sum256([]byte("goodbye"))
	conds = groupOf(AssertCoinAnnouncement, vm.Atom(other[:]))
	err := CheckConditions(CoinRecord{}, set, nil, conds, 0, 0)
	if err == nil || err.Code != AssertAnnounceConsumedFailed {
		t.Fatalf("expected ASSERT_ANNOUNCE_CONSUMED_FAILED, got %v", err)
	}
}

func TestCheckConditionsIgnoresEffectOpcodes(t *testing.T) {
	conds := groupOf(CreateCoin, vm.Atom(make([]byte, 32)), vm.EncodeInt(big.NewInt(1)))
	if err := CheckConditions(CoinRecord{}, nil, nil, conds, 0, 0); err != nil {
		t.Fatalf("CREATE_COIN must never fail evaluation, got %v", err)
	}
}

func TestCheckConditionsFirstFailureWins(t *testing.T) {
	coin := CoinRecord{}
	wrongParent := [32]byte{1}
	conds := []ConditionGroup{
		{Opcode: AssertMyCoinID, Args: []ConditionWithArgs{{Opcode: AssertMyCoinID, Args: []vm.Atom{make([]byte, 32)}}}},
		{Opcode: AssertMyParentID, Args: []ConditionWithArgs{{Opcode: AssertMyParentID, Args: []vm.Atom{wrongParent[:]}}}},
	}
	err := CheckConditions(coin, nil, nil, conds, 0, 0)
	if err == nil || err.Code != AssertMyCoinIDFailed {
		t.Fatalf("expected the first group's failure to win, got %v", err)
	}
}

// A hand-built ConditionGroup that never passed through ParseCondition can
// carry fewer args than its opcode requires; CheckConditions must report
// InvalidCondition rather than panic on the missing cwa.Args[0].
func TestCheckConditionsMissingArgIsInvalidConditionNotPanic(t *testing.T) {
	for _, op := range []Opcode{
		AssertMyCoinID, AssertMyParentID, AssertMyPuzzlehash, AssertMyAmount,
		AssertCoinAnnouncement, AssertPuzzleAnnouncement,
		AssertHeightAbsolute, AssertHeightRelative,
		AssertSecondsAbsolute, AssertSecondsRelative,
	} {
		conds := []ConditionGroup{{Opcode: op, Args: []ConditionWithArgs{{Opcode: op}}}}
		err := CheckConditions(CoinRecord{}, nil, nil, conds, 0, 0)
		if err == nil || err.Code != InvalidCondition {
			t.Fatalf("opcode %d: expected INVALID_CONDITION for a missing arg, got %v", op, err)
		}
	}
}

// decode(arg) + coin.timestamp must be computed without uint64 wraparound:
// two legitimately large operands must still produce
// ASSERT_SECONDS_RELATIVE_FAILED, not INVALID_CONDITION.
func TestCheckConditionsRelativeSecondsOverflowSafe(t *testing.T) {
	big63 := new(big.Int).Lsh(big.NewInt(1), 63)
	coin := CoinRecord{Timestamp: big63.Uint64()}
	conds := groupOf(AssertSecondsRelative, vm.EncodeInt(big63))

	err := CheckConditions(coin, nil, nil, conds, 0, ^uint64(0))
	if err == nil || err.Code != AssertSecondsRelativeFailed {
		t.Fatalf("expected ASSERT_SECONDS_RELATIVE_FAILED for an overflowing bound, got %v", err)
	}
}

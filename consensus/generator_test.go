package consensus

import (
	"math/big"
	"testing"

	"coinset.dev/condition-validator/vm"
)

func buildList(elems ...vm.Value) vm.Value {
	out := vm.Nil
	for i := len(elems) - 1; i >= 0; i-- {
		out = vm.Cons(elems[i], out)
	}
	return out
}

func atomVal(b []byte) vm.Value { return vm.NewAtom(vm.Atom(b)) }

func spendRecord(parentID, puzzleHash [32]byte, amount uint64, conditions vm.Value) vm.Value {
	return buildList(
		atomVal(parentID[:]),
		atomVal(puzzleHash[:]),
		atomVal(vm.EncodeInt(new(big.Int).SetUint64(amount))),
		conditions,
	)
}

func vmResult(spends ...vm.Value) vm.Value {
	return buildList(buildList(spends...))
}

func TestRunGeneratorNoConditions(t *testing.T) {
	var parentID, puzzleHash [32]byte
	parentID[0] = 1
	result := vmResult(spendRecord(parentID, puzzleHash, 10, vm.Nil))

	runner := &vm.DevRunner{Cost: 100, Result: result}
	gen := BlockGenerator{Program: []byte("prog")}

	out := RunGenerator(runner, gen, 1_000_000, 1, true)
	if out.Error != nil {
		t.Fatalf("unexpected error: %v", out.Error)
	}
	if out.Cost != 100 {
		t.Fatalf("cost = %d, want 100 (VM cost alone)", out.Cost)
	}
	if len(out.NPCs) != 1 {
		t.Fatalf("expected 1 NPC, got %d", len(out.NPCs))
	}
	if len(out.NPCs[0].Conditions) != 0 {
		t.Fatalf("expected zero condition groups, got %d", len(out.NPCs[0].Conditions))
	}
}

func TestRunGeneratorByteBudgetExhausted(t *testing.T) {
	gen := BlockGenerator{Program: []byte("0123456789")}
	runner := &vm.DevRunner{}
	out := RunGenerator(runner, gen, 5, 1, true)
	if out.Error == nil || out.Error.Code != BlockCostExceedsMax {
		t.Fatalf("expected BLOCK_COST_EXCEEDS_MAX, got %v", out.Error)
	}
	if len(out.NPCs) != 0 || out.Cost != 0 {
		t.Fatalf("expected empty NPCs and zero cost on failure, got %v cost=%d", out.NPCs, out.Cost)
	}
}

func TestRunGeneratorElisionStillChargesCost(t *testing.T) {
	var parentID, puzzleHash [32]byte
	secondsZero := cond(byte(AssertSecondsAbsolute), vm.EncodeInt(big.NewInt(0)))
	result := vmResult(spendRecord(parentID, puzzleHash, 0, buildList(secondsZero)))

	runner := &vm.DevRunner{Cost: 0, Result: result}
	gen := BlockGenerator{}

	tooTight := CostAssertSecondsAbsolute - 1
	out := RunGenerator(runner, gen, tooTight, 0, true)
	if out.Error == nil || out.Error.Code != BlockCostExceedsMax {
		t.Fatalf("expected the elided condition's cost to still be charged, got %v", out.Error)
	}

	out = RunGenerator(runner, gen, CostAssertSecondsAbsolute, 0, true)
	if out.Error != nil {
		t.Fatalf("unexpected error with exactly enough budget: %v", out.Error)
	}
	if len(out.NPCs[0].Conditions) != 0 {
		t.Fatalf("elided condition must not appear in output, got %v", out.NPCs[0].Conditions)
	}
}

func TestRunGeneratorUnknownOpcodeStrictVsPermissive(t *testing.T) {
	var parentID, puzzleHash [32]byte
	unknown := cond(0x01, []byte{0x01}, []byte{0x02})
	result := vmResult(spendRecord(parentID, puzzleHash, 0, buildList(unknown)))
	gen := BlockGenerator{}

	strictRunner := &vm.DevRunner{Result: result}
	out := RunGenerator(strictRunner, gen, 1_000_000, 0, true)
	if out.Error == nil || out.Error.Code != GeneratorRuntimeError {
		t.Fatalf("expected GENERATOR_RUNTIME_ERROR in strict mode, got %v", out.Error)
	}

	permissiveRunner := &vm.DevRunner{Result: result}
	out = RunGenerator(permissiveRunner, gen, 1_000_000, 0, false)
	if out.Error != nil {
		t.Fatalf("unexpected error in permissive mode: %v", out.Error)
	}
	groups := out.NPCs[0].Conditions
	if len(groups) != 1 || groups[0].Opcode != Unknown || len(groups[0].Args[0].Args) != 2 {
		t.Fatalf("expected one UNKNOWN group with 2 raw atoms, got %v", groups)
	}
}

func TestRunGeneratorGroupsPreserveFirstSeenOrder(t *testing.T) {
	var parentID, puzzleHash [32]byte
	id1 := [32]byte{1}
	id2 := [32]byte{2}
	c1 := cond(byte(AssertMyParentID), id1[:])
	c2 := cond(byte(AssertMyCoinID), id2[:])
	c3 := cond(byte(AssertMyParentID), id2[:])
	result := vmResult(spendRecord(parentID, puzzleHash, 0, buildList(c1, c2, c3)))

	runner := &vm.DevRunner{Result: result}
	out := RunGenerator(runner, BlockGenerator{}, 1_000_000, 0, true)
	if out.Error != nil {
		t.Fatalf("unexpected error: %v", out.Error)
	}
	groups := out.NPCs[0].Conditions
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups (parent id first, coin id second), got %d", len(groups))
	}
	if groups[0].Opcode != AssertMyParentID || len(groups[0].Args) != 2 {
		t.Fatalf("expected AssertMyParentID group with 2 entries first, got %v", groups[0])
	}
	if groups[1].Opcode != AssertMyCoinID {
		t.Fatalf("expected AssertMyCoinID group second, got %v", groups[1])
	}
}

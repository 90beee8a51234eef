package consensus

import (
	"coinset.dev/condition-validator/vm"
)

// RunGenerator orchestrates a metered VM run over a block generator. It
// charges, in order, byte cost, VM execution cost, and per-condition cost,
// short-circuiting the moment the running budget goes negative, and traps
// any VM or parser fault into GeneratorRuntimeError.
//
// The subtraction order follows get_name_puzzle_conditions; the "accumulate
// into a running sum, short-circuit the first time it goes negative" loop
// shape follows block_basic.go's ParseBlockBasic.
func RunGenerator(r vm.Runner, gen BlockGenerator, maxCost uint64, costPerByte uint64, strict bool) NPCResult {
	byteCost := uint64(len(gen.Bytes())) * costPerByte
	remaining, ok := subU64Checked(maxCost, byteCost)
	if !ok {
		return NPCResult{Error: newErr(BlockCostExceedsMax, "")}
	}

	program, args := generatorArgs(gen)

	var clvmCost uint64
	var result vm.Value
	var err error
	if strict {
		clvmCost, result, err = r.RunSafeWithCost(remaining, program, args)
	} else {
		clvmCost, result, err = r.RunWithCost(remaining, program, args)
	}
	if err != nil {
		return NPCResult{Error: newErr(GeneratorRuntimeError, err.Error())}
	}
	remaining, ok = subU64Checked(remaining, clvmCost)
	if !ok {
		return NPCResult{Error: newErr(BlockCostExceedsMax, "")}
	}

	npcs, err := collectNPCs(result, strict, &remaining)
	if err != nil {
		if costErr, isCostErr := err.(*Err); isCostErr {
			return NPCResult{Error: costErr}
		}
		return NPCResult{Error: newErr(GeneratorRuntimeError, err.Error())}
	}

	return NPCResult{NPCs: npcs, Cost: clvmCost}
}

// generatorArgs builds the (program, args) pair the VM is invoked with.
// Reference-resolution is opaque to this module; it passes Refs through as
// a flat list of atoms for the VM to interpret however it needs to.
func generatorArgs(gen BlockGenerator) (program, args vm.Value) {
	program = vm.NewAtom(vm.Atom(gen.Program))
	refArgs := vm.Nil
	for i := len(gen.Refs) - 1; i >= 0; i-- {
		refArgs = vm.Cons(vm.NewAtom(vm.Atom(gen.Refs[i])), refArgs)
	}
	return program, refArgs
}

// collectNPCs walks the VM result's lazy spend-record sequence: each record
// is (parent_id, puzzle_hash, amount, conditions).
func collectNPCs(result vm.Value, strict bool, remaining *uint64) ([]NPC, error) {
	firstElem, err := result.First()
	if err != nil {
		return nil, err
	}

	var npcs []NPC
	spendCur := vm.NewListCursor(firstElem)
	for {
		spend, ok, err := spendCur.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		npc, err := collectOneNPC(spend, strict, remaining)
		if err != nil {
			return nil, err
		}
		npcs = append(npcs, npc)
	}
	if npcs == nil {
		npcs = []NPC{}
	}
	return npcs, nil
}

func collectOneNPC(spend vm.Value, strict bool, remaining *uint64) (NPC, error) {
	parentIDAtom, puzzleHashAtom, amountAtom, conditionsList, err := unpackSpendRecord(spend)
	if err != nil {
		return NPC{}, err
	}

	amount, ok := vm.FitsUint64(vm.DecodeInt(amountAtom))
	if !ok {
		return NPC{}, errString("invalid spend amount")
	}
	coin := Coin{
		ParentID:   toHash32(parentIDAtom),
		PuzzleHash: toHash32(puzzleHashAtom),
		Amount:     amount,
	}

	var conds []ConditionWithArgs
	condCur := vm.NewListCursor(conditionsList)
	for {
		cond, ok, err := condCur.Next()
		if err != nil {
			return NPC{}, err
		}
		if !ok {
			break
		}
		cost, cwa, err := ParseCondition(cond, strict)
		if err != nil {
			return NPC{}, err
		}
		newRemaining, ok := subU64Checked(*remaining, cost)
		if !ok {
			return NPC{}, newErr(BlockCostExceedsMax, "")
		}
		*remaining = newRemaining
		if cwa != nil {
			conds = append(conds, *cwa)
		}
	}

	return NPC{
		CoinName:   coin.Name(),
		PuzzleHash: coin.PuzzleHash,
		Conditions: GroupByOpcode(conds),
	}, nil
}

// unpackSpendRecord destructures the 4-element spend record: parent_id,
// puzzle_hash, amount, conditions.
func unpackSpendRecord(spend vm.Value) (parentID, puzzleHash, amount vm.Atom, conditions vm.Value, err error) {
	cur := vm.NewListCursor(spend)

	parentElem, ok, err := cur.Next()
	if err != nil || !ok {
		return nil, nil, nil, vm.Nil, errString("spend record missing parent id")
	}
	parentID, err = parentElem.AsAtom()
	if err != nil {
		return nil, nil, nil, vm.Nil, err
	}

	phElem, ok, err := cur.Next()
	if err != nil || !ok {
		return nil, nil, nil, vm.Nil, errString("spend record missing puzzle hash")
	}
	puzzleHash, err = phElem.AsAtom()
	if err != nil {
		return nil, nil, nil, vm.Nil, err
	}

	amountElem, ok, err := cur.Next()
	if err != nil || !ok {
		return nil, nil, nil, vm.Nil, errString("spend record missing amount")
	}
	amount, err = amountElem.AsAtom()
	if err != nil {
		return nil, nil, nil, vm.Nil, err
	}

	condsElem, ok, err := cur.Next()
	if err != nil || !ok {
		return nil, nil, nil, vm.Nil, errString("spend record missing conditions")
	}
	return parentID, puzzleHash, amount, condsElem, nil
}

type errString string

func (e errString) Error() string { return string(e) }

package consensus

import "coinset.dev/condition-validator/vm"

// GetPuzzleAndSolution recovers the puzzle and solution for a specific coin
// inside a block generator by invoking a specialized single-coin VM module.
// No cost is surfaced; the VM's error, if any, is returned unchanged.
//
// Grounded on original_source's get_puzzle_and_solution_for_coin — a thin
// wrapper with no logic of its own beyond unpacking the VM's result pair —
// in the same small single-purpose-wrapper style as validate.go's
// txidFromTx.
func GetPuzzleAndSolution(r vm.SingleCoinRunner, gen BlockGenerator, coinName [32]byte, maxCost uint64) (puzzle, solution vm.Value, err error) {
	program, args := generatorArgs(gen)
	_, result, err := r.RunForCoin(maxCost, program, args, coinName)
	if err != nil {
		return vm.Value{}, vm.Value{}, err
	}
	puzzle, err = result.First()
	if err != nil {
		return vm.Value{}, vm.Value{}, err
	}
	rest, err := result.Rest()
	if err != nil {
		return vm.Value{}, vm.Value{}, err
	}
	solution, err = rest.First()
	if err != nil {
		return vm.Value{}, vm.Value{}, err
	}
	return puzzle, solution, nil
}

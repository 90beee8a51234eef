package consensus

import (
	"sync"
	"testing"

	"coinset.dev/condition-validator/vm"
)

// TestDevRunnerReentrancy exercises the reentrancy contract vm.DevRunner
// documents: the same Runner driving RunGenerator from many goroutines
// concurrently, all with the same inputs, must give every goroutine the
// same uncorrupted result. DevRunner only reads its own fields, so this is
// really a guard against a future change accidentally adding shared mutable
// state to it.
func TestDevRunnerReentrancy(t *testing.T) {
	var parentID, puzzleHash [32]byte
	result := vmResult(spendRecord(parentID, puzzleHash, 7, vm.Nil))
	runner := &vm.DevRunner{Cost: 42, Result: result}

	const n = 50
	var wg sync.WaitGroup
	results := make([]NPCResult, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = RunGenerator(runner, BlockGenerator{}, 1_000_000, 0, true)
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		if r.Error != nil {
			t.Fatalf("goroutine %d: unexpected error %v", i, r.Error)
		}
		if r.Cost != 42 {
			t.Fatalf("goroutine %d: cost = %d, want 42", i, r.Cost)
		}
	}
}

package vm

// DevRunner is a development-only, canned-result implementation of both
// Runner and SingleCoinRunner. It does not execute any bytecode: it returns
// whatever (cost, result, err) triple it was constructed with, regardless of
// the program and args it's handed.
//
// Grounded directly on crypto/devstd.go's DevStdCryptoProvider: "a
// development-only provider... exists only to unblock early tooling."
// DevRunner plays the same role for the VM boundary, which is never given a
// real implementation here — it's what this module's own tests and its CLI
// tool (cmd/condition-validator) use to drive the condition grammar,
// evaluator, generator runner, and single-coin extractor deterministically,
// without a real sandboxed interpreter.
//
// DevRunner is safe for concurrent use by multiple goroutines: every call
// only reads its own fields, never writes.
type DevRunner struct {
	Cost   uint64
	Result Value
	Err    error

	SingleCoinCost   uint64
	SingleCoinResult Value
	SingleCoinErr    error
}

func (r *DevRunner) RunWithCost(maxCost uint64, program, args Value) (uint64, Value, error) {
	return r.Cost, r.Result, r.Err
}

func (r *DevRunner) RunSafeWithCost(maxCost uint64, program, args Value) (uint64, Value, error) {
	return r.Cost, r.Result, r.Err
}

func (r *DevRunner) RunForCoin(maxCost uint64, program, args Value, coinName [32]byte) (uint64, Value, error) {
	return r.SingleCoinCost, r.SingleCoinResult, r.SingleCoinErr
}

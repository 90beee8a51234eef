package vm

// Runner is the injected VM capability the generator runner drives.
// RunWithCost is the permissive dialect; RunSafeWithCost is the strict
// dialect that rejects unknown operators, mirroring a
// run_with_cost/run_safe_with_cost contract. Both report the cost actually
// spent so the caller can charge it against its budget even on a cost-limit
// fault.
//
// Grounded on crypto/provider.go's CryptoProvider interface: a narrow
// interface naming exactly the operations consensus code needs, letting a
// real sandboxed interpreter (never implemented here) and a canned test
// double (DevRunner, below) be swapped without consensus code caring which
// it has.
type Runner interface {
	RunWithCost(maxCost uint64, program, args Value) (cost uint64, result Value, err error)
	RunSafeWithCost(maxCost uint64, program, args Value) (cost uint64, result Value, err error)
}

// SingleCoinRunner is the specialized VM module the single-coin extractor
// drives, modeled on a generator_for_single_coin module.
type SingleCoinRunner interface {
	RunForCoin(maxCost uint64, program, args Value, coinName [32]byte) (cost uint64, result Value, err error)
}

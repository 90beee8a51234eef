package consensus

import (
	"crypto/sha256"
	"math/big"

	"coinset.dev/condition-validator/vm"
)

// Coin is the (parent_id, puzzle_hash, amount) triple a spend acts on.
type Coin struct {
	ParentID   [32]byte
	PuzzleHash [32]byte
	Amount     uint64
}

// Name computes the coin's canonical name:
// SHA-256(parent_id || puzzle_hash || canonical_encode(amount)).
//
// This uses stdlib crypto/sha256 directly rather than an injected provider
// interface like vm.Runner — deliberately, unlike the CryptoProvider
// pattern crypto/provider.go models. The coin name is consensus-critical and
// must be byte-identical across every implementation; it has exactly one
// correct algorithm, not a pluggable one, so there is nothing to inject.
func (c Coin) Name() [32]byte {
	h := sha256.New()
	h.Write(c.ParentID[:])
	h.Write(c.PuzzleHash[:])
	h.Write(vm.EncodeInt(new(big.Int).SetUint64(c.Amount)))
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// CoinRecord is a Coin plus the chain-state fields the evaluator needs: the
// height it was confirmed at and its confirmation timestamp. Spent/unspent
// flags play no role in condition evaluation and are not modeled here.
type CoinRecord struct {
	Coin                Coin
	ConfirmedBlockIndex uint32
	Timestamp           uint64
}

package consensus

import "coinset.dev/condition-validator/vm"

// ConditionWithArgs is one parsed condition: the opcode plus its
// already-validated argument atoms. For an Unknown condition accepted under
// the permissive dialect, Args holds the raw, unvalidated atoms exactly as
// they appeared after the opcode, up to the first element that is not an
// atom.
type ConditionWithArgs struct {
	Opcode Opcode
	Args   []vm.Atom
}

// ConditionGroup collects every ConditionWithArgs sharing one opcode, in the
// order they were first produced. This is a slice keyed by first appearance
// rather than a map, because Go map iteration order is unspecified and
// grouping order must be deterministic and reproducible.
type ConditionGroup struct {
	Opcode Opcode
	Args   []ConditionWithArgs
}

// NPC ("Name-Puzzle-Conditions") is the per-coin result of running a single
// coin's puzzle: its name, the puzzle hash that produced it, and the
// conditions that puzzle returned, grouped by opcode.
type NPC struct {
	CoinName   [32]byte
	PuzzleHash [32]byte
	Conditions []ConditionGroup
}

// NPCResult is what the generator runner hands back: either an error (Error
// non-nil, NPCs/Cost meaningless) or a successful run's per-coin NPCs and
// the VM execution cost. Byte cost and per-condition cost are charged
// against the budget but not included in Cost.
type NPCResult struct {
	Error *Err
	NPCs  []NPC
	Cost  uint64
}

// BlockGenerator is the VM program plus the block references it may resolve
// against. Refs are opaque byte blobs handed to the VM unexamined; this
// module never interprets their contents, only threads them through to the
// Runner.
type BlockGenerator struct {
	Program []byte
	Refs    [][]byte
}

// Bytes returns the canonical serialization the runner's byte-cost step
// charges against: the program followed by each reference, length-prefixed
// so the serialization is unambiguous and the byte cost can't be gamed by
// picking a program/refs split that serializes to the same bytes a
// different split would.
func (g BlockGenerator) Bytes() []byte {
	out := make([]byte, 0, len(g.Program)+8)
	out = appendUint32LenPrefixed(out, g.Program)
	for _, ref := range g.Refs {
		out = appendUint32LenPrefixed(out, ref)
	}
	return out
}

func appendUint32LenPrefixed(out []byte, b []byte) []byte {
	var lenBuf [4]byte
	n := uint32(len(b))
	lenBuf[0] = byte(n >> 24)
	lenBuf[1] = byte(n >> 16)
	lenBuf[2] = byte(n >> 8)
	lenBuf[3] = byte(n)
	out = append(out, lenBuf[:]...)
	out = append(out, b...)
	return out
}

// GroupByOpcode folds a flat, per-coin list of parsed conditions into
// ConditionGroups, preserving first-seen opcode order. It always returns a
// non-nil slice, even for a nil or empty input, so that RunGenerator's
// output is stable for coins with zero conditions.
func GroupByOpcode(conds []ConditionWithArgs) []ConditionGroup {
	groups := []ConditionGroup{}
	index := make(map[Opcode]int)
	for _, c := range conds {
		i, ok := index[c.Opcode]
		if !ok {
			i = len(groups)
			index[c.Opcode] = i
			groups = append(groups, ConditionGroup{Opcode: c.Opcode})
		}
		groups[i].Args = append(groups[i].Args, c)
	}
	return groups
}

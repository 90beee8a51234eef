package consensus

import (
	"fmt"

	"coinset.dev/condition-validator/vm"
)

// maxMessageLen bounds AGG_SIG messages and announcement payloads. Grounded
// on original_source's parse_aggsig/parse_announcement ("len(message) >
// 1024" / "len(msg) > 1024").
const maxMessageLen = 1024

// pubkeyLen is the fixed BLS pubkey length parse_aggsig enforces.
const pubkeyLen = 48

// hashLen is the fixed length of a coin id, parent id, puzzle hash, or
// announcement hash.
const hashLen = 32

// ParseCondition implements the grammar's dispatch step. It consumes one
// condition expression — (opcode . args) — and returns the cost to charge
// plus either a validated ConditionWithArgs, or a nil *ConditionWithArgs on
// elision (a trivially-true time/height lock whose cost is still charged
// but which is not emitted).
//
// Grounded on original_source's parse_condition and parse_condition_args:
// one small parser function per argument shape below, in the same
// one-function-per-wire-shape style as parse.go's
// parseInput/parseOutput/parseWitnessItem, rather than one monolithic parser.
func ParseCondition(expr vm.Value, strict bool) (cost uint64, cwa *ConditionWithArgs, err error) {
	head, err := expr.First()
	if err != nil {
		return 0, nil, fmt.Errorf("condition is not a pair: %w", err)
	}
	tail, err := expr.Rest()
	if err != nil {
		return 0, nil, fmt.Errorf("condition is not a pair: %w", err)
	}
	opcodeAtom, err := head.AsAtom()
	if err != nil {
		return 0, nil, fmt.Errorf("condition opcode is not an atom: %w", err)
	}

	if len(opcodeAtom) == 1 {
		if op, ok := knownOpcodes[opcodeAtom[0]]; ok {
			return parseKnownCondition(op, tail)
		}
	}
	if strict {
		return 0, nil, fmt.Errorf("unknown condition")
	}
	return 0, &ConditionWithArgs{Opcode: Unknown, Args: vm.AsAtomList(tail)}, nil
}

func parseKnownCondition(op Opcode, args vm.Value) (uint64, *ConditionWithArgs, error) {
	switch op {
	case AggSigUnsafe, AggSigMe:
		a, err := parseAggSig(args)
		return CostAggSig, condOrNil(op, a), err
	case CreateCoin:
		a, err := parseCreateCoin(args)
		return CostCreateCoin, condOrNil(op, a), err
	case AssertSecondsAbsolute:
		a, err := parseSeconds(args)
		return CostAssertSecondsAbsolute, condOrNil(op, a), err
	case AssertSecondsRelative:
		a, err := parseSeconds(args)
		return CostAssertSecondsRelative, condOrNil(op, a), err
	case AssertHeightAbsolute:
		a, err := parseHeight(args)
		return CostAssertHeightAbsolute, condOrNil(op, a), err
	case AssertHeightRelative:
		a, err := parseHeight(args)
		return CostAssertHeightRelative, condOrNil(op, a), err
	case AssertMyCoinID:
		a, err := parseFixedHash(args)
		return CostAssertMyCoinID, condOrNil(op, a), err
	case AssertMyParentID:
		a, err := parseFixedHash(args)
		return CostAssertMyParentID, condOrNil(op, a), err
	case ReserveFee:
		a, err := parseAmountLike(args)
		return CostReserveFee, condOrNil(op, a), err
	case CreateCoinAnnouncement:
		a, err := parseAnnouncementMsg(args)
		return CostCreateAnnouncement, condOrNil(op, a), err
	case AssertCoinAnnouncement:
		a, err := parseFixedHash(args)
		return CostAssertAnnouncement, condOrNil(op, a), err
	case CreatePuzzleAnnouncement:
		a, err := parseAnnouncementMsg(args)
		return CostCreateAnnouncement, condOrNil(op, a), err
	case AssertPuzzleAnnouncement:
		a, err := parseFixedHash(args)
		return CostAssertAnnouncement, condOrNil(op, a), err
	case AssertMyPuzzlehash:
		a, err := parseFixedHash(args)
		return CostAssertMyPuzzlehash, condOrNil(op, a), err
	case AssertMyAmount:
		a, err := parseAmountLike(args)
		return CostAssertMyAmount, condOrNil(op, a), err
	default:
		return 0, nil, fmt.Errorf("unhandled known opcode %d", op)
	}
}

func condOrNil(op Opcode, args []vm.Atom) *ConditionWithArgs {
	if args == nil {
		return nil
	}
	return &ConditionWithArgs{Opcode: op, Args: args}
}

// exactlyOneMore consumes exactly one more atom off cur and requires the
// cursor to then be exhausted: trailing elements are rejected.
func exactlyOneMore(cur *vm.ListCursor) (vm.Atom, error) {
	elem, ok, err := cur.Next()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("too few condition arguments")
	}
	a, err := elem.AsAtom()
	if err != nil {
		return nil, fmt.Errorf("condition argument is not an atom")
	}
	if !cur.Rest().IsNil() {
		return nil, fmt.Errorf("too many condition arguments")
	}
	return a, nil
}

// parseAggSig parses (pubkey message), grounded on parse_aggsig.
func parseAggSig(args vm.Value) ([]vm.Atom, error) {
	cur := vm.NewListCursor(args)
	pkElem, ok, err := cur.Next()
	if err != nil || !ok {
		return nil, fmt.Errorf("too few condition arguments")
	}
	pubkey, err := pkElem.AsAtom()
	if err != nil {
		return nil, fmt.Errorf("condition argument is not an atom")
	}
	message, err := exactlyOneMore(cur)
	if err != nil {
		return nil, err
	}
	if len(pubkey) != pubkeyLen {
		return nil, fmt.Errorf("invalid pubkey in AGGSIG condition")
	}
	if len(message) > maxMessageLen {
		return nil, fmt.Errorf("invalid message in AGGSIG condition")
	}
	return []vm.Atom{pubkey, message}, nil
}

// parseCreateCoin parses (puzzle_hash amount), grounded on parse_create_coin.
func parseCreateCoin(args vm.Value) ([]vm.Atom, error) {
	cur := vm.NewListCursor(args)
	phElem, ok, err := cur.Next()
	if err != nil || !ok {
		return nil, fmt.Errorf("too few condition arguments")
	}
	puzzleHash, err := phElem.AsAtom()
	if err != nil {
		return nil, fmt.Errorf("condition argument is not an atom")
	}
	amount, err := exactlyOneMore(cur)
	if err != nil {
		return nil, err
	}
	if len(puzzleHash) != hashLen {
		return nil, fmt.Errorf("invalid puzzle hash in CREATE_COIN condition")
	}
	if _, ok := vm.FitsUint64(vm.DecodeInt(amount)); !ok {
		return nil, fmt.Errorf("invalid coin amount")
	}
	return []vm.Atom{puzzleHash, amount}, nil
}

// parseSeconds parses a single seconds atom, eliding non-positive values,
// grounded on parse_seconds.
func parseSeconds(args vm.Value) ([]vm.Atom, error) {
	cur := vm.NewListCursor(args)
	elem, ok, err := cur.Next()
	if err != nil || !ok {
		return nil, fmt.Errorf("too few condition arguments")
	}
	seconds, err := elem.AsAtom()
	if err != nil {
		return nil, fmt.Errorf("condition argument is not an atom")
	}
	if !cur.Rest().IsNil() {
		return nil, fmt.Errorf("too many condition arguments")
	}
	v := vm.DecodeInt(seconds)
	if v.Sign() <= 0 {
		return nil, nil
	}
	if _, ok := vm.FitsUint64(v); !ok {
		return nil, fmt.Errorf("invalid timestamp")
	}
	return []vm.Atom{seconds}, nil
}

// parseHeight parses a single height atom, eliding non-positive values,
// grounded on parse_height.
func parseHeight(args vm.Value) ([]vm.Atom, error) {
	cur := vm.NewListCursor(args)
	elem, ok, err := cur.Next()
	if err != nil || !ok {
		return nil, fmt.Errorf("too few condition arguments")
	}
	height, err := elem.AsAtom()
	if err != nil {
		return nil, fmt.Errorf("condition argument is not an atom")
	}
	if !cur.Rest().IsNil() {
		return nil, fmt.Errorf("too many condition arguments")
	}
	v := vm.DecodeInt(height)
	if v.Sign() <= 0 {
		return nil, nil
	}
	if _, ok := vm.FitsUint32(v); !ok {
		return nil, fmt.Errorf("invalid height")
	}
	return []vm.Atom{height}, nil
}

// parseFixedHash parses a single 32-byte atom, grounded on parse_coin_id /
// parse_hash (both enforce exactly 32 bytes, just with different error
// strings in the original — this module uses one parser for all of them).
func parseFixedHash(args vm.Value) ([]vm.Atom, error) {
	h, err := exactlyOneMore(vm.NewListCursor(args))
	if err != nil {
		return nil, err
	}
	if len(h) != hashLen {
		return nil, fmt.Errorf("invalid hash length")
	}
	return []vm.Atom{h}, nil
}

// parseAmountLike parses a single atom decoding to 0 <= v < 2^64, grounded
// on parse_fee / parse_amount.
func parseAmountLike(args vm.Value) ([]vm.Atom, error) {
	a, err := exactlyOneMore(vm.NewListCursor(args))
	if err != nil {
		return nil, err
	}
	if _, ok := vm.FitsUint64(vm.DecodeInt(a)); !ok {
		return nil, fmt.Errorf("invalid amount")
	}
	return []vm.Atom{a}, nil
}

// parseAnnouncementMsg parses a single atom of at most maxMessageLen bytes,
// grounded on parse_announcement.
func parseAnnouncementMsg(args vm.Value) ([]vm.Atom, error) {
	msg, err := exactlyOneMore(vm.NewListCursor(args))
	if err != nil {
		return nil, err
	}
	if len(msg) > maxMessageLen {
		return nil, fmt.Errorf("invalid announcement")
	}
	return []vm.Atom{msg}, nil
}

// decodeUint64 decodes a condition argument the same signed big-endian way
// the grammar does, for evaluator.go call sites that only need the uint64
// result.
func decodeUint64(a vm.Atom) (uint64, bool) {
	return vm.FitsUint64(vm.DecodeInt(a))
}

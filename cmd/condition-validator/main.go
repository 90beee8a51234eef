package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"coinset.dev/condition-validator/consensus"
	"coinset.dev/condition-validator/vm"
)

// ValueJSON is a wire representation of vm.Value: an atom is a hex string,
// a pair is exactly two elements [first, rest]. Since this tool has no real
// sandboxed interpreter to call, it drives the condition grammar,
// evaluator, generator runner, and single-coin extractor through
// vm.DevRunner, so request/response fields that would otherwise carry
// VM-produced trees carry them as plain JSON instead.
type ValueJSON struct {
	Atom *string     `json:"atom,omitempty"`
	Pair []ValueJSON `json:"pair,omitempty"`
}

func (v ValueJSON) toValue() (vm.Value, error) {
	if v.Atom != nil {
		b, err := hex.DecodeString(*v.Atom)
		if err != nil {
			return vm.Value{}, fmt.Errorf("bad atom hex: %w", err)
		}
		return vm.NewAtom(vm.Atom(b)), nil
	}
	if len(v.Pair) == 2 {
		first, err := v.Pair[0].toValue()
		if err != nil {
			return vm.Value{}, err
		}
		rest, err := v.Pair[1].toValue()
		if err != nil {
			return vm.Value{}, err
		}
		return vm.Cons(first, rest), nil
	}
	return vm.Nil, nil
}

func fromValue(v vm.Value) ValueJSON {
	if a, err := v.AsAtom(); err == nil {
		s := hex.EncodeToString(a)
		return ValueJSON{Atom: &s}
	}
	first, _ := v.First()
	rest, _ := v.Rest()
	return ValueJSON{Pair: []ValueJSON{fromValue(first), fromValue(rest)}}
}

type CoinJSON struct {
	ParentIDHex         string `json:"parent_id_hex"`
	PuzzleHashHex       string `json:"puzzle_hash_hex"`
	Amount              uint64 `json:"amount"`
	ConfirmedBlockIndex uint32 `json:"confirmed_block_index"`
	Timestamp           uint64 `json:"timestamp"`
}

func (c CoinJSON) toCoinRecord() (consensus.CoinRecord, error) {
	parentID, err := decodeHash32(c.ParentIDHex)
	if err != nil {
		return consensus.CoinRecord{}, fmt.Errorf("bad parent_id_hex: %w", err)
	}
	puzzleHash, err := decodeHash32(c.PuzzleHashHex)
	if err != nil {
		return consensus.CoinRecord{}, fmt.Errorf("bad puzzle_hash_hex: %w", err)
	}
	return consensus.CoinRecord{
		Coin: consensus.Coin{
			ParentID:   parentID,
			PuzzleHash: puzzleHash,
			Amount:     c.Amount,
		},
		ConfirmedBlockIndex: c.ConfirmedBlockIndex,
		Timestamp:           c.Timestamp,
	}, nil
}

type ConditionWithArgsJSON struct {
	Opcode uint8    `json:"opcode"`
	Args   []string `json:"args"`
}

type ConditionGroupJSON struct {
	Opcode uint8                    `json:"opcode"`
	Args   []ConditionWithArgsJSON `json:"args"`
}

// toExpr rebuilds the (opcode . args) pair ParseCondition expects, so
// check_conditions validates caller-supplied args through the same grammar
// the generator runner does rather than trusting raw JSON shape.
func (a ConditionWithArgsJSON) toExpr() (vm.Value, error) {
	args := vm.Nil
	for i := len(a.Args) - 1; i >= 0; i-- {
		b, err := hex.DecodeString(a.Args[i])
		if err != nil {
			return vm.Value{}, fmt.Errorf("bad condition arg hex: %w", err)
		}
		args = vm.Cons(vm.NewAtom(vm.Atom(b)), args)
	}
	return vm.Cons(vm.NewAtom(vm.Atom([]byte{a.Opcode})), args), nil
}

func (g ConditionGroupJSON) toGroup() (consensus.ConditionGroup, error) {
	out := consensus.ConditionGroup{Opcode: consensus.Opcode(g.Opcode)}
	for _, a := range g.Args {
		expr, err := a.toExpr()
		if err != nil {
			return consensus.ConditionGroup{}, err
		}
		// Permissive: an unvalidated UNKNOWN condition is a no-op in
		// CheckConditions, so it needs no shape check here either.
		_, cwa, err := consensus.ParseCondition(expr, false)
		if err != nil {
			return consensus.ConditionGroup{}, fmt.Errorf("invalid args for opcode %d: %w", a.Opcode, err)
		}
		if cwa != nil {
			out.Args = append(out.Args, *cwa)
		}
	}
	return out, nil
}

type NPCJSON struct {
	CoinNameHex   string               `json:"coin_name_hex"`
	PuzzleHashHex string               `json:"puzzle_hash_hex"`
	Conditions    []ConditionGroupJSON `json:"conditions"`
}

func npcToJSON(n consensus.NPC) NPCJSON {
	out := NPCJSON{
		CoinNameHex:   hex.EncodeToString(n.CoinName[:]),
		PuzzleHashHex: hex.EncodeToString(n.PuzzleHash[:]),
		Conditions:    []ConditionGroupJSON{},
	}
	for _, g := range n.Conditions {
		gj := ConditionGroupJSON{Opcode: uint8(g.Opcode)}
		for _, cwa := range g.Args {
			cj := ConditionWithArgsJSON{Opcode: uint8(cwa.Opcode)}
			for _, a := range cwa.Args {
				cj.Args = append(cj.Args, hex.EncodeToString(a))
			}
			gj.Args = append(gj.Args, cj)
		}
		out.Conditions = append(out.Conditions, gj)
	}
	return out
}

// Request is the single JSON object this tool reads from stdin. Only the
// fields relevant to Op are populated by a given caller; everything else is
// left at its zero value, in the same "one flat struct, omitempty on
// every field but op" style as cmd/rubin-consensus-cli's Request.
type Request struct {
	Op string `json:"op"`

	ProgramHex string   `json:"program_hex,omitempty"`
	RefsHex    []string `json:"refs_hex,omitempty"`

	MaxCost     uint64 `json:"max_cost,omitempty"`
	CostPerByte uint64 `json:"cost_per_byte,omitempty"`
	Strict      bool   `json:"strict,omitempty"`

	DevCost   uint64     `json:"dev_cost,omitempty"`
	DevResult *ValueJSON `json:"dev_result,omitempty"`
	DevErr    string     `json:"dev_err,omitempty"`

	Coin                *CoinJSON            `json:"coin,omitempty"`
	CoinAnnouncements   []string             `json:"coin_announcements,omitempty"`
	PuzzleAnnouncements []string             `json:"puzzle_announcements,omitempty"`
	Conditions          []ConditionGroupJSON `json:"conditions,omitempty"`
	PrevHeight          uint32               `json:"prev_height,omitempty"`
	Timestamp           uint64               `json:"timestamp,omitempty"`

	CoinNameHex         string     `json:"coin_name_hex,omitempty"`
	DevSingleCoinCost   uint64     `json:"dev_single_coin_cost,omitempty"`
	DevSingleCoinResult *ValueJSON `json:"dev_single_coin_result,omitempty"`
	DevSingleCoinErr    string     `json:"dev_single_coin_err,omitempty"`
}

type Response struct {
	Ok bool   `json:"ok"`
	Err string `json:"err,omitempty"`

	Cost uint64    `json:"cost,omitempty"`
	NPCs []NPCJSON `json:"npcs,omitempty"`

	Puzzle   *ValueJSON `json:"puzzle,omitempty"`
	Solution *ValueJSON `json:"solution,omitempty"`
}

func writeResp(w io.Writer, resp Response) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(resp)
}

func decodeHash32(s string) ([32]byte, error) {
	var out [32]byte
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != 32 {
		return out, fmt.Errorf("expected 32 bytes of hex, got %q", s)
	}
	copy(out[:], b)
	return out, nil
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResp(os.Stdout, Response{Ok: false, Err: fmt.Sprintf("bad request: %v", err)})
		return
	}

	switch req.Op {
	case "run_generator":
		runGenerator(req)
		return
	case "check_conditions":
		checkConditions(req)
		return
	case "puzzle_and_solution":
		puzzleAndSolution(req)
		return
	default:
		writeResp(os.Stdout, Response{Ok: false, Err: "unknown op"})
		return
	}
}

func runGenerator(req Request) {
	programBytes, err := hex.DecodeString(req.ProgramHex)
	if err != nil {
		writeResp(os.Stdout, Response{Ok: false, Err: "bad program_hex"})
		return
	}
	refs := make([][]byte, 0, len(req.RefsHex))
	for _, r := range req.RefsHex {
		b, err := hex.DecodeString(r)
		if err != nil {
			writeResp(os.Stdout, Response{Ok: false, Err: "bad refs_hex"})
			return
		}
		refs = append(refs, b)
	}

	runner := &vm.DevRunner{Cost: req.DevCost}
	if req.DevResult != nil {
		v, err := req.DevResult.toValue()
		if err != nil {
			writeResp(os.Stdout, Response{Ok: false, Err: err.Error()})
			return
		}
		runner.Result = v
	}
	if req.DevErr != "" {
		runner.Err = fmt.Errorf("%s", req.DevErr)
	}

	gen := consensus.BlockGenerator{Program: programBytes, Refs: refs}
	out := consensus.RunGenerator(runner, gen, req.MaxCost, req.CostPerByte, req.Strict)
	if out.Error != nil {
		writeResp(os.Stdout, Response{Ok: false, Err: string(out.Error.Code)})
		return
	}
	npcs := make([]NPCJSON, 0, len(out.NPCs))
	for _, n := range out.NPCs {
		npcs = append(npcs, npcToJSON(n))
	}
	writeResp(os.Stdout, Response{Ok: true, Cost: out.Cost, NPCs: npcs})
}

func checkConditions(req Request) {
	if req.Coin == nil {
		writeResp(os.Stdout, Response{Ok: false, Err: "missing coin"})
		return
	}
	coin, err := req.Coin.toCoinRecord()
	if err != nil {
		writeResp(os.Stdout, Response{Ok: false, Err: err.Error()})
		return
	}

	coinAnns, err := hashSet(req.CoinAnnouncements)
	if err != nil {
		writeResp(os.Stdout, Response{Ok: false, Err: "bad coin_announcements"})
		return
	}
	puzzleAnns, err := hashSet(req.PuzzleAnnouncements)
	if err != nil {
		writeResp(os.Stdout, Response{Ok: false, Err: "bad puzzle_announcements"})
		return
	}

	groups := make([]consensus.ConditionGroup, 0, len(req.Conditions))
	for _, g := range req.Conditions {
		group, err := g.toGroup()
		if err != nil {
			writeResp(os.Stdout, Response{Ok: false, Err: err.Error()})
			return
		}
		groups = append(groups, group)
	}

	if verdict := consensus.CheckConditions(coin, coinAnns, puzzleAnns, groups, req.PrevHeight, req.Timestamp); verdict != nil {
		writeResp(os.Stdout, Response{Ok: false, Err: string(verdict.Code)})
		return
	}
	writeResp(os.Stdout, Response{Ok: true})
}

func puzzleAndSolution(req Request) {
	programBytes, err := hex.DecodeString(req.ProgramHex)
	if err != nil {
		writeResp(os.Stdout, Response{Ok: false, Err: "bad program_hex"})
		return
	}
	refs := make([][]byte, 0, len(req.RefsHex))
	for _, r := range req.RefsHex {
		b, err := hex.DecodeString(r)
		if err != nil {
			writeResp(os.Stdout, Response{Ok: false, Err: "bad refs_hex"})
			return
		}
		refs = append(refs, b)
	}
	coinName, err := decodeHash32(req.CoinNameHex)
	if err != nil {
		writeResp(os.Stdout, Response{Ok: false, Err: "bad coin_name_hex"})
		return
	}

	runner := &vm.DevRunner{SingleCoinCost: req.DevSingleCoinCost}
	if req.DevSingleCoinResult != nil {
		v, err := req.DevSingleCoinResult.toValue()
		if err != nil {
			writeResp(os.Stdout, Response{Ok: false, Err: err.Error()})
			return
		}
		runner.SingleCoinResult = v
	}
	if req.DevSingleCoinErr != "" {
		runner.SingleCoinErr = fmt.Errorf("%s", req.DevSingleCoinErr)
	}

	gen := consensus.BlockGenerator{Program: programBytes, Refs: refs}
	puzzle, solution, err := consensus.GetPuzzleAndSolution(runner, gen, coinName, req.MaxCost)
	if err != nil {
		writeResp(os.Stdout, Response{Ok: false, Err: err.Error()})
		return
	}
	p := fromValue(puzzle)
	s := fromValue(solution)
	writeResp(os.Stdout, Response{Ok: true, Puzzle: &p, Solution: &s})
}

func hashSet(hexes []string) (map[[32]byte]struct{}, error) {
	out := make(map[[32]byte]struct{}, len(hexes))
	for _, h := range hexes {
		b, err := decodeHash32(h)
		if err != nil {
			return nil, err
		}
		out[b] = struct{}{}
	}
	return out, nil
}

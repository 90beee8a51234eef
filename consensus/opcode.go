package consensus

// Opcode is the single-byte tag identifying a condition kind; its wire
// values are canonical and must be preserved for consensus compatibility.
// Unknown is the pseudo-opcode for conditions only accepted in permissive
// mode; it is never one of the wire values below, so it can never collide
// with a byte a real program emits.
type Opcode uint8

const (
	Unknown Opcode = 0

	AggSigUnsafe Opcode = 49
	AggSigMe     Opcode = 50
	CreateCoin   Opcode = 51
	ReserveFee   Opcode = 52

	CreateCoinAnnouncement   Opcode = 60
	AssertCoinAnnouncement   Opcode = 61
	CreatePuzzleAnnouncement Opcode = 62
	AssertPuzzleAnnouncement Opcode = 63

	AssertMyCoinID     Opcode = 70
	AssertMyParentID   Opcode = 71
	AssertMyPuzzlehash Opcode = 72
	AssertMyAmount     Opcode = 73

	AssertSecondsRelative Opcode = 80
	AssertSecondsAbsolute Opcode = 81
	AssertHeightRelative  Opcode = 82
	AssertHeightAbsolute  Opcode = 83
)

// knownOpcodes is the fixed recognized set. Grouping conditions by opcode
// walks a slice built from first appearance rather than this set, but
// grammar dispatch tests membership against exactly this set.
var knownOpcodes = map[byte]Opcode{
	byte(AggSigUnsafe): AggSigUnsafe,
	byte(AggSigMe):     AggSigMe,
	byte(CreateCoin):   CreateCoin,
	byte(ReserveFee):   ReserveFee,

	byte(CreateCoinAnnouncement):   CreateCoinAnnouncement,
	byte(AssertCoinAnnouncement):   AssertCoinAnnouncement,
	byte(CreatePuzzleAnnouncement): CreatePuzzleAnnouncement,
	byte(AssertPuzzleAnnouncement): AssertPuzzleAnnouncement,

	byte(AssertMyCoinID):     AssertMyCoinID,
	byte(AssertMyParentID):   AssertMyParentID,
	byte(AssertMyPuzzlehash): AssertMyPuzzlehash,
	byte(AssertMyAmount):     AssertMyAmount,

	byte(AssertSecondsRelative): AssertSecondsRelative,
	byte(AssertSecondsAbsolute): AssertSecondsAbsolute,
	byte(AssertHeightRelative):  AssertHeightRelative,
	byte(AssertHeightAbsolute):  AssertHeightAbsolute,
}

// Condition cost weights, grouped by which conditions share a cost category.
// These are an illustrative but fixed table, not pinned mainnet figures —
// once chosen, they must never change, since cost is a consensus-critical
// quantity that every implementation must agree on byte-for-byte.
const (
	CostAggSig                uint64 = 1_200_000
	CostCreateCoin            uint64 = 1_800_000
	CostReserveFee            uint64 = 90
	CostCreateAnnouncement    uint64 = 1_200_000
	CostAssertAnnouncement    uint64 = 1_200_000
	CostAssertMyCoinID        uint64 = 90
	CostAssertMyParentID      uint64 = 90
	CostAssertMyPuzzlehash    uint64 = 90
	CostAssertMyAmount        uint64 = 90
	CostAssertSecondsAbsolute uint64 = 90
	CostAssertSecondsRelative uint64 = 90
	CostAssertHeightAbsolute  uint64 = 90
	CostAssertHeightRelative  uint64 = 90
)

package game

// Status is a game's terminal flag.
type Status uint8

const (
	StatusRunning Status = iota
	StatusGameOver
)

func (s Status) String() string {
	if s == StatusGameOver {
		return "GameOver"
	}
	return "Running"
}

// Spawn anchor: horizontally centered 4x4 box, two rows below the buffer so
// a fresh piece straddles the top of the playable area.
const (
	SpawnX = (BoardWidth - boxSize) / 2
	SpawnY = PlayableRows - 2
)

// PendingClear is the deferred line-clear record: the exact rows that
// matched full at lock time and the timestamp at which the flash ends and
// they may be structurally removed. While one exists the game is frozen —
// every rule transition except reset waits for Finalize.
type PendingClear struct {
	Rows      []int
	ExpiresAt int64 // ms timestamp
}

// ClearResult describes one scoring lock, for HUD/audio one-shots.
type ClearResult struct {
	Lines  int
	Points int64
	Combo  int // consecutive-clear count at payout time
}

// State is the complete record of one game. It is a plain value type owned
// exclusively by its instance: nothing here suspends, performs I/O, or
// reads a clock — timestamps come in from the caller.
type State struct {
	Board  *Board
	Active *Piece
	Next   *Piece

	Score int64
	Level int
	Lines int

	GravityAcc      int64 // ms accumulated toward the next fall step
	GravityInterval int64 // ms, derived from level
	SoftDrop        bool

	Status Status
	Rng    *RNG

	// Combo bookkeeping: timestamp of the last non-empty clear (0 = none
	// yet) and the consecutive-clear count.
	LastClearAt int64
	ComboCount  int

	Pending *PendingClear
}

// NewState builds a fresh game: empty board and two pre-seeded pieces, so
// there is never a single-tick gap without a look-ahead.
func NewState(seed uint64, rules Rules) *State {
	st := &State{
		Board:           NewBoard(),
		Level:           1,
		GravityInterval: rules.GravityInterval(1),
		Rng:             NewRNG(seed),
	}
	active := drawPiece(st.Rng)
	st.Active = &active
	next := drawPiece(st.Rng)
	st.Next = &next
	return st
}

// drawPiece consumes one RNG value and returns a piece at the spawn anchor.
func drawPiece(rng *RNG) Piece {
	return Piece{
		Kind: rng.Intn(NumKinds) + 1,
		X:    SpawnX,
		Y:    SpawnY,
	}
}

// Flashing reports whether a pending line-clear is freezing the game.
func (st *State) Flashing() bool {
	return st.Pending != nil
}

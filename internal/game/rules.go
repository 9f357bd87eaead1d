package game

// KickOffset is one positional offset tried during rotation.
type KickOffset struct {
	DX int
	DY int
}

// Rules holds every tunable constant of the rule engine. The zero value is
// not usable — construct via DefaultRules (or data.LoadRules, which starts
// from these defaults). Instances share one Rules value read-only.
//
// KickOffsets and ScoreTable are ordered contracts: rotation tries offsets
// in slice order and the first non-colliding one wins, so reordering them
// changes observable behavior.
type Rules struct {
	// Kick offsets tried during rotation, first match wins. Index 0 must be
	// the identity offset so an unobstructed rotation never shifts the piece.
	KickOffsets []KickOffset

	// ScoreTable[n] is the base award for clearing n rows in one lock.
	// Index 0 is unused; counts beyond the table award nothing.
	ScoreTable []int64

	// Combo: a clear within ComboWindowMS of the previous clear stacks the
	// counter; payout = base * (1 + counter*ComboIncrement).
	ComboWindowMS  int64
	ComboIncrement float64

	// FlashMS is how long detected full rows stay on the board before
	// Finalize removes them.
	FlashMS int64

	// Gravity curve: interval = clamp(base - level*step, floor, base).
	GravityBaseMS  int64
	GravityStepMS  int64
	GravityFloorMS int64
	SoftDropMS     int64

	LinesPerLevel int

	// Per-call clamp on the elapsed time fed to Gravity. The minimum keeps a
	// zero-length delta from stalling the accumulator, the maximum keeps one
	// delayed tick from dumping a burst of drops.
	DeltaMinMS int64
	DeltaMaxMS int64
}

// DefaultRules returns the fixed rule constants.
func DefaultRules() Rules {
	return Rules{
		KickOffsets: []KickOffset{
			{0, 0}, {-1, 0}, {1, 0}, {-2, 0}, {2, 0}, {0, 1},
		},
		ScoreTable:     []int64{0, 100, 300, 500, 800},
		ComboWindowMS:  4000,
		ComboIncrement: 0.5,
		FlashMS:        600,
		GravityBaseMS:  800,
		GravityStepMS:  60,
		GravityFloorMS: 120,
		SoftDropMS:     50,
		LinesPerLevel:  10,
		DeltaMinMS:     1,
		DeltaMaxMS:     250,
	}
}

// BaseScore returns the table award for clearing n rows, zero for counts
// outside the table's domain.
func (r Rules) BaseScore(n int) int64 {
	if n <= 0 || n >= len(r.ScoreTable) {
		return 0
	}
	return r.ScoreTable[n]
}

// GravityInterval returns the fall interval for a level.
func (r Rules) GravityInterval(level int) int64 {
	iv := r.GravityBaseMS - int64(level)*r.GravityStepMS
	if iv < r.GravityFloorMS {
		iv = r.GravityFloorMS
	}
	if iv > r.GravityBaseMS {
		iv = r.GravityBaseMS
	}
	return iv
}

// LevelFor returns the level for a total cleared-line count.
func (r Rules) LevelFor(lines int) int {
	if r.LinesPerLevel <= 0 {
		return 1
	}
	return lines/r.LinesPerLevel + 1
}

// ClampDelta bounds an elapsed-time value to the per-call window.
func (r Rules) ClampDelta(deltaMS int64) int64 {
	if deltaMS < r.DeltaMinMS {
		return r.DeltaMinMS
	}
	if deltaMS > r.DeltaMaxMS {
		return r.DeltaMaxMS
	}
	return deltaMS
}

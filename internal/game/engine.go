package game

import "sort"

// Engine is the pure rule engine: collision, movement, rotation with kicks,
// drops, locking, line scoring, gravity and game-over detection. It holds
// only the rule constants; all mutable state lives in the State it is
// handed. Movement calls report policy rejections as plain booleans and
// leave the state untouched on failure, so callers may freely probe.
//
// Every method is a no-op once the state is GAME_OVER or while a pending
// line-clear is flashing (Finalize excepted) — callers never need to guard.
type Engine struct {
	Rules Rules
}

func NewEngine(rules Rules) Engine {
	return Engine{Rules: rules}
}

// movable reports whether rule transitions are currently allowed.
func (e Engine) movable(st *State) bool {
	return st.Status == StatusRunning && st.Pending == nil && st.Active != nil
}

// Translate attempts to move the active piece by (dx,dy). Returns false and
// mutates nothing if the result would collide.
func (e Engine) Translate(st *State, dx, dy int) bool {
	if !e.movable(st) {
		return false
	}
	cand := *st.Active
	cand.X += dx
	cand.Y += dy
	if st.Board.Collides(cand) {
		return false
	}
	*st.Active = cand
	return true
}

// Rotate advances the active piece one phase clockwise, trying each kick
// offset in table order and accepting the first that does not collide. The
// table order is a fixed contract: it decides whether a blocked rotation
// prefers sliding off a wall or popping up off the floor. Returns false and
// mutates nothing if every offset collides.
func (e Engine) Rotate(st *State) bool {
	if !e.movable(st) {
		return false
	}
	for _, k := range e.Rules.KickOffsets {
		cand := *st.Active
		cand.Phase = (cand.Phase + 1) % NumPhases
		cand.X += k.DX
		cand.Y += k.DY
		if !st.Board.Collides(cand) {
			*st.Active = cand
			return true
		}
	}
	return false
}

// SoftDropStep is a single unconditional downward translate.
func (e Engine) SoftDropStep(st *State) bool {
	return e.Translate(st, 0, -1)
}

// HardDrop translates the active piece down until blocked, then locks it in
// the same call — there is never a frame where the piece rests unlocked.
func (e Engine) HardDrop(st *State, nowMS int64) *ClearResult {
	if !e.movable(st) {
		return nil
	}
	for e.Translate(st, 0, -1) {
	}
	return e.Lock(st, nowMS)
}

// Lock merges the active piece into the board and resolves the consequences:
// either an immediate respawn (no full rows) or a pending line-clear with
// scoring and combo accounting. Row removal itself is deferred to Finalize
// so the full rows visibly hold on the board for the flash window.
func (e Engine) Lock(st *State, nowMS int64) *ClearResult {
	if !e.movable(st) {
		return nil
	}
	st.Board.Merge(*st.Active)
	st.Active = nil

	full := st.Board.FullRows()
	if len(full) == 0 {
		e.Spawn(st)
		return nil
	}

	// Combo: a clear inside the window stacks the counter, outside it the
	// counter resets and this clear pays the base 1x. Both fields update on
	// every non-empty clear.
	if st.LastClearAt != 0 && nowMS-st.LastClearAt <= e.Rules.ComboWindowMS {
		st.ComboCount++
	} else {
		st.ComboCount = 0
	}
	st.LastClearAt = nowMS

	base := e.Rules.BaseScore(len(full))
	points := int64(float64(base) * (1 + float64(st.ComboCount)*e.Rules.ComboIncrement))

	st.Score += points
	st.Lines += len(full)
	e.applyLevel(st)

	st.Pending = &PendingClear{
		Rows:      full,
		ExpiresAt: nowMS + e.Rules.FlashMS,
	}
	return &ClearResult{
		Lines:  len(full),
		Points: points,
		Combo:  st.ComboCount,
	}
}

// Finalize removes the rows recorded by a pending line-clear, highest index
// first so earlier removals cannot shift later ones, and clears the record.
// Calling it with no pending clear is a no-op.
func (e Engine) Finalize(st *State) {
	if st.Pending == nil {
		return
	}
	rows := append([]int(nil), st.Pending.Rows...)
	sort.Sort(sort.Reverse(sort.IntSlice(rows)))
	for _, y := range rows {
		st.Board.RemoveRow(y)
	}
	st.Pending = nil
}

// Spawn promotes the look-ahead to active, draws a fresh look-ahead and
// checks both game-over conditions: a filled topmost playable row, or the
// fresh piece immediately colliding. On game over the active piece is
// discarded and false is returned.
func (e Engine) Spawn(st *State) bool {
	if st.Status != StatusRunning || st.Pending != nil {
		return false
	}
	if st.Board.TopRowOccupied() {
		st.Status = StatusGameOver
		st.Active = nil
		return false
	}
	next := *st.Next
	st.Active = &next
	fresh := drawPiece(st.Rng)
	st.Next = &fresh
	if st.Board.Collides(*st.Active) {
		st.Status = StatusGameOver
		st.Active = nil
		return false
	}
	return true
}

// Gravity advances the fall accumulator by an elapsed-time delta and
// performs one downward translate per crossed interval — catch-up
// semantics, so a large delta can drop the piece several rows in one call.
// If a downward translate fails the piece locks immediately and the loop
// stops: at most one lock per call. Returns the clear result if that lock
// matched full rows.
func (e Engine) Gravity(st *State, deltaMS, nowMS int64) *ClearResult {
	if !e.movable(st) {
		return nil
	}
	st.GravityAcc += e.Rules.ClampDelta(deltaMS)

	interval := st.GravityInterval
	if st.SoftDrop {
		interval = e.Rules.SoftDropMS
	}
	for st.GravityAcc >= interval {
		st.GravityAcc -= interval
		if !e.Translate(st, 0, -1) {
			return e.Lock(st, nowMS)
		}
	}
	return nil
}

// applyLevel recomputes level and gravity interval from the line total.
// Level only ever rises within one game.
func (e Engine) applyLevel(st *State) {
	lvl := e.Rules.LevelFor(st.Lines)
	if lvl > st.Level {
		st.Level = lvl
	}
	st.GravityInterval = e.Rules.GravityInterval(st.Level)
}

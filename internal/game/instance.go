package game

// Phase is the tick orchestrator's observable state.
type Phase uint8

const (
	PhaseNotStarted Phase = iota
	PhaseRunning
	PhaseFlashing
	PhaseOver
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "NotStarted"
	case PhaseRunning:
		return "Running"
	case PhaseFlashing:
		return "Flashing"
	default:
		return "GameOver"
	}
}

// TickResult carries the one-shot outcomes of a single tick for HUD/audio
// collaborators. The zero value means nothing notable happened.
type TickResult struct {
	Cleared  *ClearResult
	GameOver bool
	LevelUp  int // new level, 0 if unchanged
}

// Instance is one player's game: state, rule engine and input queue, plus
// the tick orchestration that sequences spawn, input, gravity, lock, clear
// and respawn each simulation step. Instances own their state exclusively;
// nothing is shared between them, so many can tick concurrently without
// coordination.
type Instance struct {
	Engine Engine
	State  *State
	Queue  *InputQueue

	started bool

	// Seed the current game was created from. When pinned, every reset
	// reuses it — otherwise each reset reseeds from the RNG stream so the
	// next game is fresh but still clock-free and replayable.
	seed       uint64
	seedPinned bool
}

// NewInstance creates a ready game with a fresh board and two pre-seeded
// pieces. Gravity and input stay inert until an ActionStart arrives.
func NewInstance(seed uint64, pinned bool, rules Rules) *Instance {
	return &Instance{
		Engine:     NewEngine(rules),
		State:      NewState(seed, rules),
		Queue:      NewInputQueue(),
		seed:       seed,
		seedPinned: pinned,
	}
}

// Seed returns the seed the current game started from.
func (in *Instance) Seed() uint64 {
	return in.seed
}

// Started reports whether the start signal has been received.
func (in *Instance) Started() bool {
	return in.started
}

// Phase derives the orchestrator state.
func (in *Instance) Phase() Phase {
	switch {
	case in.State.Status == StatusGameOver:
		return PhaseOver
	case !in.started:
		return PhaseNotStarted
	case in.State.Flashing():
		return PhaseFlashing
	default:
		return PhaseRunning
	}
}

// Reset reinitializes the game in place — fresh board, pieces and score —
// preserving the instance's identity for callers holding a reference. It is
// honored from any phase, immediately, pending flash or not.
func (in *Instance) Reset() {
	seed := in.seed
	if !in.seedPinned {
		seed = in.State.Rng.State()
	}
	in.State = NewState(seed, in.Engine.Rules)
	in.Queue.Clear()
	in.seed = seed
	in.started = false
}

// Tick runs one simulation step. deltaMS is the elapsed time since the
// previous tick, nowMS the current timestamp; both are caller-supplied so
// the instance never touches a clock. Exactly one queued discrete action is
// consumed per call; the held soft-drop flag is read every call.
func (in *Instance) Tick(deltaMS, nowMS int64) TickResult {
	var res TickResult

	action := in.Queue.Pop()

	// Reset is the one action no sub-state can swallow.
	if action == ActionReset {
		in.Reset()
		return res
	}

	if !in.started {
		if action == ActionStart {
			in.started = true
		}
		// Everything else is ignored until started: no gravity, no moves.
		return res
	}

	st := in.State
	eng := in.Engine

	// Flash freeze: while the pending clear has not expired the tick does
	// nothing further — this tick's action (already popped) is dropped.
	if st.Flashing() {
		if nowMS < st.Pending.ExpiresAt {
			return res
		}
		eng.Finalize(st)
	}

	if st.Status == StatusGameOver {
		return res
	}

	prevLevel := st.Level

	// Spawn if the previous tick left no active piece.
	if st.Active == nil && !eng.Spawn(st) {
		res.GameOver = true
		return res
	}

	switch action {
	case ActionLeft:
		eng.Translate(st, -1, 0)
	case ActionRight:
		eng.Translate(st, 1, 0)
	case ActionRotate:
		eng.Rotate(st)
	case ActionHardDrop:
		res.Cleared = eng.HardDrop(st, nowMS)
	case ActionStart:
		// Already started: no-op.
	}

	// Responsive soft drop: one extra downward step per tick while held,
	// independent of the gravity accumulator.
	st.SoftDrop = in.Queue.SoftDropHeld()
	if st.SoftDrop {
		eng.SoftDropStep(st)
	}

	if r := eng.Gravity(st, deltaMS, nowMS); r != nil {
		res.Cleared = r
	}

	// Defensive respawn: gravity's lock path spawns on its own, but an
	// unconditional second attempt closes any gap.
	if st.Status == StatusRunning && !st.Flashing() && st.Active == nil {
		eng.Spawn(st)
	}

	if st.Status == StatusGameOver {
		res.GameOver = true
	}
	if st.Level > prevLevel {
		res.LevelUp = st.Level
	}
	return res
}

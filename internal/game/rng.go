package game

// RNG is a 64-bit linear congruential generator. Unlike math/rand its full
// state is a single inspectable integer, so a game's randomness can be
// persisted across restarts and restored for deterministic replay.
//
// Knuth's MMIX multiplier/increment. Seed 0 is legal — the increment keeps
// the sequence from sticking at zero.
type RNG struct {
	state uint64
}

const (
	rngMul = 6364136223846793005
	rngInc = 1442695040888963407
)

func NewRNG(seed uint64) *RNG {
	return &RNG{state: seed}
}

// Float64 advances the generator and returns a uniform value in [0,1),
// built from the top 53 bits of the new state.
func (r *RNG) Float64() float64 {
	r.state = r.state*rngMul + rngInc
	return float64(r.state>>11) / (1 << 53)
}

// Intn returns a uniform value in [0,n). n must be positive.
func (r *RNG) Intn(n int) int {
	return int(r.Float64() * float64(n))
}

// State returns the current generator state for persistence.
func (r *RNG) State() uint64 {
	return r.state
}

// Restore replaces the generator state with a previously saved value.
func (r *RNG) Restore(state uint64) {
	r.state = state
}

package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingSystem struct {
	phase Phase
	trace *[]Phase
}

func (r *recordingSystem) Phase() Phase { return r.phase }

func (r *recordingSystem) Update(_ time.Duration) {
	*r.trace = append(*r.trace, r.phase)
}

func TestRunnerTicksInPhaseOrder(t *testing.T) {
	var trace []Phase
	r := NewRunner()
	r.Register(&recordingSystem{phase: PhasePersist, trace: &trace})
	r.Register(&recordingSystem{phase: PhaseInput, trace: &trace})
	r.Register(&recordingSystem{phase: PhaseOutput, trace: &trace})
	r.Register(&recordingSystem{phase: PhaseUpdate, trace: &trace})

	r.Tick(50 * time.Millisecond)

	assert.Equal(t, []Phase{PhaseInput, PhaseUpdate, PhaseOutput, PhasePersist}, trace)
}

func TestRunnerTickPhaseRunsOnlyThatPhase(t *testing.T) {
	var trace []Phase
	r := NewRunner()
	r.Register(&recordingSystem{phase: PhaseInput, trace: &trace})
	r.Register(&recordingSystem{phase: PhaseUpdate, trace: &trace})

	r.TickPhase(PhaseInput, 0)
	r.TickPhase(PhaseInput, 0)

	assert.Equal(t, []Phase{PhaseInput, PhaseInput}, trace)
}

package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startedInstance(seed uint64) *Instance {
	in := NewInstance(seed, true, DefaultRules())
	in.Queue.Push(ActionStart)
	in.Tick(50, 0)
	return in
}

func TestInstanceIgnoresEverythingUntilStarted(t *testing.T) {
	in := NewInstance(0, true, DefaultRules())
	require.Equal(t, PhaseNotStarted, in.Phase())

	startY := in.State.Active.Y
	in.Queue.Push(ActionLeft)
	in.Queue.Push(ActionHardDrop)
	for i := 0; i < 10; i++ {
		in.Tick(250, int64(i)*250)
	}
	// No gravity, no moves: the board is untouched and the piece unmoved.
	assert.Equal(t, startY, in.State.Active.Y)
	assert.Equal(t, SpawnX, in.State.Active.X)
	assert.False(t, in.Started())

	in.Queue.Push(ActionStart)
	in.Tick(50, 3000)
	assert.True(t, in.Started())
	assert.Equal(t, PhaseRunning, in.Phase())
}

func TestInstanceConsumesOneActionPerTick(t *testing.T) {
	in := startedInstance(0)
	x := in.State.Active.X

	in.Queue.Push(ActionLeft)
	in.Queue.Push(ActionLeft)
	in.Queue.Push(ActionLeft)

	in.Tick(1, 100)
	assert.Equal(t, x-1, in.State.Active.X)
	assert.Equal(t, 2, in.Queue.Len())

	in.Tick(1, 101)
	in.Tick(1, 102)
	assert.Equal(t, x-3, in.State.Active.X)
	assert.Equal(t, 0, in.Queue.Len())
}

func TestInstanceSoftDropAddsOneStepPerTick(t *testing.T) {
	in := startedInstance(0)
	y := in.State.Active.Y

	in.Queue.SetSoftDrop(true)
	in.Tick(1, 100)
	assert.Equal(t, y-1, in.State.Active.Y, "held flag steps even with a tiny delta")

	in.Queue.SetSoftDrop(false)
	in.Tick(1, 101)
	assert.Equal(t, y-1, in.State.Active.Y, "released flag stops stepping")
}

func TestInstanceFlashFreezeDropsInputButHonorsReset(t *testing.T) {
	in := startedInstance(0)
	st := in.State
	fillRow(st.Board, 0, 9)
	st.Active = &Piece{Kind: KindI, Phase: 1, X: 7, Y: 0}

	in.Queue.Push(ActionHardDrop)
	res := in.Tick(1, 1000)
	require.NotNil(t, res.Cleared)
	require.Equal(t, PhaseFlashing, in.Phase())

	// Actions popped during the flash are swallowed, not deferred.
	in.Queue.Push(ActionLeft)
	in.Tick(1, 1100)
	assert.Equal(t, 0, in.Queue.Len())
	assert.Equal(t, PhaseFlashing, in.Phase())
	assert.NotZero(t, st.Board.Cells[0][0], "rows hold until the flash ends")

	// Once the window expires the rows come out and play resumes.
	in.Tick(1, 1000+in.Engine.Rules.FlashMS)
	assert.Equal(t, PhaseRunning, in.Phase())
	assert.Zero(t, in.State.Board.Cells[0][0])
	require.NotNil(t, in.State.Active)
}

func TestInstanceResetCutsThroughFlash(t *testing.T) {
	in := startedInstance(0)
	st := in.State
	fillRow(st.Board, 0, 9)
	st.Active = &Piece{Kind: KindI, Phase: 1, X: 7, Y: 0}

	in.Queue.Push(ActionHardDrop)
	in.Tick(1, 1000)
	require.Equal(t, PhaseFlashing, in.Phase())

	in.Queue.Push(ActionReset)
	in.Tick(1, 1050)

	assert.Equal(t, PhaseNotStarted, in.Phase())
	assert.Nil(t, in.State.Pending)
	assert.Zero(t, in.State.Score)
	for y := 0; y < PlayableRows; y++ {
		for x := 0; x < BoardWidth; x++ {
			assert.Zero(t, in.State.Board.Cells[y][x])
		}
	}
}

func TestInstanceResetWithPinnedSeedReplaysTheSameGame(t *testing.T) {
	in := NewInstance(7, true, DefaultRules())
	firstKinds := []int{in.State.Active.Kind, in.State.Next.Kind}

	in.Queue.Push(ActionStart)
	in.Tick(50, 0)
	in.Queue.Push(ActionHardDrop)
	in.Tick(50, 100)

	in.Queue.Push(ActionReset)
	in.Tick(50, 200)

	assert.Equal(t, uint64(7), in.Seed())
	assert.Equal(t, firstKinds, []int{in.State.Active.Kind, in.State.Next.Kind})
}

func TestInstanceResetWithoutPinReseedsFromStream(t *testing.T) {
	in := NewInstance(7, false, DefaultRules())
	in.Queue.Push(ActionReset)
	in.Tick(50, 0)
	assert.NotEqual(t, uint64(7), in.Seed())
}

func TestInstanceGameOverThenReset(t *testing.T) {
	in := startedInstance(0)
	// Stack reaching the top playable row ends the game on the next spawn.
	in.State.Board.Cells[PlayableRows-1][0] = 1
	in.State.Active = nil

	res := in.Tick(50, 100)
	assert.True(t, res.GameOver)
	assert.Equal(t, PhaseOver, in.Phase())

	// Dead game stays dead: gravity and moves are inert.
	in.Queue.Push(ActionLeft)
	res = in.Tick(250, 400)
	assert.False(t, res.GameOver, "reported once, not every tick")
	assert.Equal(t, PhaseOver, in.Phase())

	in.Queue.Push(ActionReset)
	in.Tick(50, 500)
	assert.Equal(t, PhaseNotStarted, in.Phase())
	assert.Equal(t, StatusRunning, in.State.Status)
}

func TestInstanceLevelUpReported(t *testing.T) {
	in := startedInstance(0)
	st := in.State
	st.Lines = 9 // one line short of level 2
	fillRow(st.Board, 0, 9)
	st.Active = &Piece{Kind: KindI, Phase: 1, X: 7, Y: 0}

	in.Queue.Push(ActionHardDrop)
	res := in.Tick(1, 1000)
	assert.Equal(t, 2, res.LevelUp)
	assert.Equal(t, 2, st.Level)
	assert.Equal(t, in.Engine.Rules.GravityInterval(2), st.GravityInterval)
}

func TestInstanceGravityUsesCallerTime(t *testing.T) {
	rules := DefaultRules()
	rules.GravityBaseMS = 240
	rules.GravityStepMS = 0
	in := NewInstance(0, true, rules)
	in.Queue.Push(ActionStart)
	in.Tick(50, 0)

	y := in.State.Active.Y
	in.Tick(100, 100)
	in.Tick(100, 200)
	assert.Equal(t, y, in.State.Active.Y, "200ms accumulated, below the interval")

	in.Tick(100, 300)
	assert.Equal(t, y-1, in.State.Active.Y, "third tick crosses 240ms")
}

func TestInstanceInputQueueOverflowDropsExcess(t *testing.T) {
	in := startedInstance(0)
	for i := 0; i < inputQueueCap; i++ {
		require.True(t, in.Queue.Push(ActionLeft))
	}
	assert.False(t, in.Queue.Push(ActionLeft))
	assert.Equal(t, inputQueueCap, in.Queue.Len())
}

package game

// Action is one discrete player input.
type Action uint8

const (
	ActionNone Action = iota
	ActionStart
	ActionLeft
	ActionRight
	ActionRotate
	ActionHardDrop
	ActionReset
)

func (a Action) String() string {
	switch a {
	case ActionStart:
		return "start"
	case ActionLeft:
		return "left"
	case ActionRight:
		return "right"
	case ActionRotate:
		return "rotate"
	case ActionHardDrop:
		return "harddrop"
	case ActionReset:
		return "reset"
	default:
		return "none"
	}
}

// inputQueueCap bounds how many discrete actions may wait between ticks.
// Excess input is dropped — the simulation consumes one action per tick, so
// a deep backlog only adds latency the player did not ask for.
const inputQueueCap = 32

// InputQueue decouples UI event timing from the fixed simulation tick: a
// FIFO of discrete actions plus the continuously-held soft-drop flag.
// Accessed only from the game loop goroutine, so it needs no locking.
type InputQueue struct {
	actions  []Action
	softDrop bool
}

func NewInputQueue() *InputQueue {
	return &InputQueue{actions: make([]Action, 0, inputQueueCap)}
}

// Push enqueues a discrete action. Returns false if the queue is full.
func (q *InputQueue) Push(a Action) bool {
	if len(q.actions) >= inputQueueCap {
		return false
	}
	q.actions = append(q.actions, a)
	return true
}

// Pop dequeues the oldest action, or ActionNone when empty.
func (q *InputQueue) Pop() Action {
	if len(q.actions) == 0 {
		return ActionNone
	}
	a := q.actions[0]
	q.actions = q.actions[1:]
	return a
}

// SetSoftDrop updates the held soft-drop flag.
func (q *InputQueue) SetSoftDrop(held bool) {
	q.softDrop = held
}

// SoftDropHeld reports the current soft-drop flag. Read every tick
// regardless of queue depth.
func (q *InputQueue) SoftDropHeld() bool {
	return q.softDrop
}

// Len returns the number of queued discrete actions.
func (q *InputQueue) Len() int {
	return len(q.actions)
}

// Clear drops all queued actions and releases the soft-drop flag.
func (q *InputQueue) Clear() {
	q.actions = q.actions[:0]
	q.softDrop = false
}

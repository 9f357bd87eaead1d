package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput   Phase = iota // 0: drain packet queues
	PhaseUpdate               // 1: advance game instances
	PhaseOutput               // 2: build + send packets
	PhasePersist              // 3: batch save dirty games
	PhaseCleanup              // 4: remove dead sessions
)

// System is the interface every per-tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}

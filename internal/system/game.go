package system

import (
	"time"

	coresys "github.com/blockfall/server/internal/core/system"
	"github.com/blockfall/server/internal/persist"
	"github.com/blockfall/server/internal/scripting"
	"github.com/blockfall/server/internal/world"
	"go.uber.org/zap"
)

// EventBuffer accumulates score events between the update and persist phases.
// Game-loop goroutine only.
type EventBuffer struct {
	events []persist.ScoreEvent
}

func NewEventBuffer() *EventBuffer {
	return &EventBuffer{events: make([]persist.ScoreEvent, 0, 32)}
}

func (b *EventBuffer) Append(e persist.ScoreEvent) {
	b.events = append(b.events, e)
}

// Drain returns the buffered events and resets the buffer.
func (b *EventBuffer) Drain() []persist.ScoreEvent {
	if len(b.events) == 0 {
		return nil
	}
	out := b.events
	b.events = make([]persist.ScoreEvent, 0, 32)
	return out
}

// GameSystem advances every player's game instance by one simulation step.
// Phase 1 (Update). Each instance is ticked with the loop's measured delta
// and a shared timestamp; the instances themselves never touch a clock.
type GameSystem struct {
	world     *world.State
	scripting *scripting.Engine
	events    *EventBuffer
	log       *zap.Logger
}

func NewGameSystem(ws *world.State, se *scripting.Engine, eb *EventBuffer, log *zap.Logger) *GameSystem {
	return &GameSystem{
		world:     ws,
		scripting: se,
		events:    eb,
		log:       log,
	}
}

func (s *GameSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *GameSystem) Update(dt time.Duration) {
	deltaMS := dt.Milliseconds()
	nowMS := time.Now().UnixMilli()

	s.world.AllPlayers(func(p *world.PlayerInfo) {
		if p.Game == nil {
			return
		}

		// A malformed grid means memory corruption or a broken restore;
		// the engine assumes the shape invariant, so skip the tick
		// instead of letting it index out of bounds.
		if !p.Game.State.Board.ShapeOK() {
			s.log.Error("盤面結構異常，跳過更新",
				zap.String("account", p.AccountName),
			)
			return
		}

		res := p.Game.Tick(deltaMS, nowMS)
		p.LastResult = res
		st := p.Game.State

		if res.Cleared != nil {
			p.Dirty = true
			s.events.Append(persist.ScoreEvent{
				AccountName: p.AccountName,
				Lines:       res.Cleared.Lines,
				Points:      res.Cleared.Points,
				Combo:       res.Cleared.Combo,
				Level:       st.Level,
			})
			if msg := s.scripting.OnLineClear(scripting.LineClearEvent{
				Player: p.AccountName,
				Lines:  res.Cleared.Lines,
				Points: res.Cleared.Points,
				Combo:  res.Cleared.Combo,
				Level:  st.Level,
			}); msg != "" {
				p.Announcements = append(p.Announcements, msg)
			}
		}

		if res.LevelUp > 0 {
			if msg := s.scripting.OnLevelUp(p.AccountName, res.LevelUp); msg != "" {
				p.Announcements = append(p.Announcements, msg)
			}
		}

		if res.GameOver {
			p.Dirty = true
			s.log.Info("遊戲結束",
				zap.String("account", p.AccountName),
				zap.Int64("score", st.Score),
				zap.Int("level", st.Level),
				zap.Int("lines", st.Lines),
			)
			if msg := s.scripting.OnGameOver(scripting.GameOverEvent{
				Player: p.AccountName,
				Score:  st.Score,
				Level:  st.Level,
				Lines:  st.Lines,
			}); msg != "" {
				p.Announcements = append(p.Announcements, msg)
			}
		}
	})
}

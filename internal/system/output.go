package system

import (
	"time"

	coresys "github.com/blockfall/server/internal/core/system"
	"github.com/blockfall/server/internal/game"
	"github.com/blockfall/server/internal/handler"
	"github.com/blockfall/server/internal/net"
	"github.com/blockfall/server/internal/world"
)

// OutputSystem serializes each player's view and flushes all buffered
// session output to the writer goroutines. Phase 2 (Output).
type OutputSystem struct {
	world *world.State
	store *net.SessionStore
}

func NewOutputSystem(ws *world.State, store *net.SessionStore) *OutputSystem {
	return &OutputSystem{world: ws, store: store}
}

func (s *OutputSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *OutputSystem) Update(_ time.Duration) {
	s.world.AllPlayers(func(p *world.PlayerInfo) {
		if p.Game == nil || p.Session == nil || p.Session.IsClosed() {
			return
		}

		// One-shot events first so the client sees them against the board
		// state that produced them, then the snapshot.
		if p.LastResult.Cleared != nil {
			handler.SendClearEvent(p.Session, p.LastResult.Cleared)
		}
		if p.LastResult.LevelUp > 0 {
			handler.SendLevelUp(p.Session, p.LastResult.LevelUp)
		}
		if p.LastResult.GameOver {
			handler.SendGameOver(p.Session, p.Game.State)
		}
		p.LastResult = game.TickResult{}

		for _, msg := range p.Announcements {
			handler.SendAnnounce(p.Session, msg)
		}
		p.Announcements = p.Announcements[:0]

		handler.SendSnapshot(p.Session, p.Game)
	})

	// Flush every session once per tick, players and lobby alike.
	for _, sess := range s.store.Raw() {
		sess.FlushOutput()
	}
}

package system

import (
	"context"
	"time"

	coresys "github.com/blockfall/server/internal/core/system"
	"github.com/blockfall/server/internal/persist"
	"github.com/blockfall/server/internal/world"
	"go.uber.org/zap"
)

// PersistSystem journals score events every tick and periodically saves all
// dirty games. Phase 3 (Persist).
type PersistSystem struct {
	world     *world.State
	saveRepo  *persist.SaveRepo
	eventRepo *persist.EventRepo
	events    *EventBuffer
	log       *zap.Logger
	tickCount int
	interval  int // auto-save every N ticks
}

func NewPersistSystem(ws *world.State, saveRepo *persist.SaveRepo, eventRepo *persist.EventRepo, eb *EventBuffer, log *zap.Logger, intervalTicks int) *PersistSystem {
	return &PersistSystem{
		world:     ws,
		saveRepo:  saveRepo,
		eventRepo: eventRepo,
		events:    eb,
		log:       log,
		interval:  intervalTicks,
	}
}

func (s *PersistSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistSystem) Update(_ time.Duration) {
	// Score events are journaled before the periodic save, so a crash
	// between saves loses at most progress totals, never history.
	if batch := s.events.Drain(); batch != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.eventRepo.WriteBatch(ctx, batch); err != nil {
			s.log.Error("計分事件寫入失敗", zap.Error(err))
		}
	}

	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.savePlayers(true)
}

// SaveAllPlayers persists every player's game immediately, ignoring dirty
// flags. Called for graceful shutdown so no progress is lost.
func (s *PersistSystem) SaveAllPlayers() {
	s.savePlayers(false)
}

// savePlayers persists game progress. If dirtyOnly is true, only players
// whose Dirty flag is set are saved; the flag resets after a successful save.
func (s *PersistSystem) savePlayers(dirtyOnly bool) {
	count := 0
	s.world.AllPlayers(func(p *world.PlayerInfo) {
		if p.Game == nil {
			return
		}
		if dirtyOnly && !p.Dirty {
			return // no state change since last save
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		st := p.Game.State
		row := &persist.SaveRow{
			AccountName: p.AccountName,
			Seed:        p.Game.Seed(),
			RngState:    st.Rng.State(),
			Score:       st.Score,
			Level:       st.Level,
			Lines:       st.Lines,
		}
		if err := s.saveRepo.Upsert(ctx, row); err != nil {
			s.log.Error("自動存檔失敗", zap.String("account", p.AccountName), zap.Error(err))
			return
		}
		p.Dirty = false
		count++
	})
	if count > 0 {
		s.log.Info("自動存檔完成", zap.Int("玩家數", count))
	}

	// Mark journal entries as processed once the batch save has landed.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.eventRepo.MarkProcessed(ctx); err != nil {
		s.log.Error("計分事件標記失敗", zap.Error(err))
	}
}

package system

import (
	"context"
	"time"

	coresys "github.com/blockfall/server/internal/core/system"
	"github.com/blockfall/server/internal/game"
	"github.com/blockfall/server/internal/net"
	"github.com/blockfall/server/internal/net/packet"
	"github.com/blockfall/server/internal/persist"
	"github.com/blockfall/server/internal/world"
	"go.uber.org/zap"
)

// InputSystem drains packet queues from all sessions and dispatches them
// through the packet registry. Phase 0 (Input).
type InputSystem struct {
	netServer   *net.Server
	registry    *packet.Registry
	store       *net.SessionStore
	maxPerTick  int
	accountRepo *persist.AccountRepo
	saveRepo    *persist.SaveRepo
	worldState  *world.State
	log         *zap.Logger
}

func NewInputSystem(
	netServer *net.Server,
	registry *packet.Registry,
	store *net.SessionStore,
	maxPerTick int,
	accountRepo *persist.AccountRepo,
	saveRepo *persist.SaveRepo,
	worldState *world.State,
	log *zap.Logger,
) *InputSystem {
	return &InputSystem{
		netServer:   netServer,
		registry:    registry,
		store:       store,
		maxPerTick:  maxPerTick,
		accountRepo: accountRepo,
		saveRepo:    saveRepo,
		worldState:  worldState,
		log:         log,
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	// Accept new sessions
	for {
		select {
		case sess := <-s.netServer.NewSessions():
			s.store.Add(sess)
		default:
			goto doneNew
		}
	}
doneNew:

	// Process dead sessions
	for {
		select {
		case id := <-s.netServer.DeadSessions():
			s.store.Remove(id)
		default:
			goto doneDead
		}
	}
doneDead:

	// Drain packets from each session (up to maxPerTick per session)
	for id, sess := range s.store.Raw() {
		if sess.IsClosed() {
			// Drain any remaining packets before cleanup, using the last
			// known state, so a final input sent just before disconnect is
			// not lost.
			for i := 0; i < s.maxPerTick; i++ {
				select {
				case data := <-sess.InQueue:
					if err := s.registry.Dispatch(sess, sess.State(), data); err != nil {
						s.log.Debug("封包分派錯誤 (斷線中)",
							zap.Uint64("session", sess.ID),
							zap.Error(err),
						)
					}
				default:
					goto doneClosing
				}
			}
		doneClosing:
			s.handleDisconnect(sess)
			s.netServer.NotifyDead(id)
			s.store.Remove(id)
			continue
		}

		for i := 0; i < s.maxPerTick; i++ {
			select {
			case data := <-sess.InQueue:
				if err := s.registry.Dispatch(sess, sess.State(), data); err != nil {
					s.log.Debug("封包分派錯誤",
						zap.Uint64("session", sess.ID),
						zap.Error(err),
					)
				}
			default:
				goto nextSession
			}
		}
	nextSession:
	}
}

// handleDisconnect saves the player's game and releases the account.
func (s *InputSystem) handleDisconnect(sess *net.Session) {
	if sess.AccountName == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	player := s.worldState.GetPlayer(sess.ID)
	if player != nil && player.Game != nil {
		st := player.Game.State
		if st.Status == game.StatusGameOver {
			// A finished game has nothing to resume.
			if err := s.saveRepo.Delete(ctx, player.AccountName); err != nil {
				s.log.Error("刪除存檔失敗", zap.String("account", player.AccountName), zap.Error(err))
			}
		} else {
			row := &persist.SaveRow{
				AccountName: player.AccountName,
				Seed:        player.Game.Seed(),
				RngState:    st.Rng.State(),
				Score:       st.Score,
				Level:       st.Level,
				Lines:       st.Lines,
			}
			if err := s.saveRepo.Upsert(ctx, row); err != nil {
				s.log.Error("斷線存檔失敗", zap.String("account", player.AccountName), zap.Error(err))
			}
		}
	}

	if err := s.accountRepo.SetOnline(ctx, sess.AccountName, false); err != nil {
		s.log.Error("設定離線狀態資料庫錯誤", zap.Error(err))
	}
	s.worldState.RemovePlayer(sess.ID)
}

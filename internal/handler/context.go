package handler

import (
	"github.com/blockfall/server/internal/config"
	"github.com/blockfall/server/internal/game"
	"github.com/blockfall/server/internal/net"
	"github.com/blockfall/server/internal/net/packet"
	"github.com/blockfall/server/internal/persist"
	"github.com/blockfall/server/internal/scripting"
	"github.com/blockfall/server/internal/world"
	"go.uber.org/zap"
)

// Deps holds shared dependencies injected into all packet handlers.
type Deps struct {
	AccountRepo *persist.AccountRepo
	SaveRepo    *persist.SaveRepo
	EventRepo   *persist.EventRepo
	Config      *config.Config
	Log         *zap.Logger
	World       *world.State
	Scripting   *scripting.Engine
	Rules       game.Rules
}

// RegisterAll registers all packet handlers into the registry.
func RegisterAll(reg *packet.Registry, deps *Deps) {
	// Handshake phase
	reg.Register(packet.C_OPCODE_VERSION,
		[]packet.SessionState{packet.StateHandshake},
		func(sess any, r *packet.Reader) {
			HandleVersion(sess.(*net.Session), r, deps)
		},
	)

	// Login phase
	reg.Register(packet.C_OPCODE_LOGIN,
		[]packet.SessionState{packet.StateVersionOK},
		func(sess any, r *packet.Reader) {
			HandleLogin(sess.(*net.Session), r, deps)
		},
	)

	// Authenticated phase — joining replaces any game in progress, so it is
	// also legal while playing.
	reg.Register(packet.C_OPCODE_JOIN,
		[]packet.SessionState{packet.StateAuthenticated, packet.StatePlaying},
		func(sess any, r *packet.Reader) {
			HandleJoin(sess.(*net.Session), r, deps)
		},
	)

	// In-game phase
	playingStates := []packet.SessionState{packet.StatePlaying}

	reg.Register(packet.C_OPCODE_INPUT, playingStates,
		func(sess any, r *packet.Reader) {
			HandleInput(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_SOFTDROP, playingStates,
		func(sess any, r *packet.Reader) {
			HandleSoftDrop(sess.(*net.Session), r, deps)
		},
	)

	// Always allowed (any active state)
	aliveStates := []packet.SessionState{
		packet.StateVersionOK, packet.StateAuthenticated, packet.StatePlaying,
	}
	reg.Register(packet.C_OPCODE_ALIVE, aliveStates,
		func(sess any, r *packet.Reader) {
			// Keep-alive: no-op, just prevents idle timeout
		},
	)
	reg.Register(packet.C_OPCODE_QUIT, aliveStates,
		func(sess any, r *packet.Reader) {
			HandleQuit(sess.(*net.Session), r, deps)
		},
	)
}

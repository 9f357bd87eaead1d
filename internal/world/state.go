package world

import (
	"github.com/blockfall/server/internal/game"
	"github.com/blockfall/server/internal/net"
)

// PlayerInfo holds in-memory data for a logged-in player.
// Accessed only from the game loop goroutine — no locks needed.
type PlayerInfo struct {
	SessionID   uint64
	Session     *net.Session
	AccountName string

	Game *game.Instance // nil until the player joins a game

	// Dirty marks unsaved score/level/line progress. Set by GameSystem on
	// every lock-with-clear and on game over; cleared after a successful save.
	Dirty bool

	// LastResult carries the most recent tick's one-shot outcomes from
	// GameSystem to OutputSystem within the same tick.
	LastResult game.TickResult

	// Announcements queued by scripting hooks, drained by OutputSystem.
	Announcements []string
}

// State is the authoritative registry of logged-in players, keyed by session
// ID and by account name. Owned by the game loop goroutine.
type State struct {
	players   map[uint64]*PlayerInfo
	byAccount map[string]*PlayerInfo
}

func NewState() *State {
	return &State{
		players:   make(map[uint64]*PlayerInfo, 64),
		byAccount: make(map[string]*PlayerInfo, 64),
	}
}

// AddPlayer registers a player. A previous entry for the same session is
// replaced.
func (s *State) AddPlayer(p *PlayerInfo) {
	s.players[p.SessionID] = p
	if p.AccountName != "" {
		s.byAccount[p.AccountName] = p
	}
}

// RemovePlayer unregisters a player by session ID.
func (s *State) RemovePlayer(sessionID uint64) {
	p, ok := s.players[sessionID]
	if !ok {
		return
	}
	delete(s.players, sessionID)
	if p.AccountName != "" && s.byAccount[p.AccountName] == p {
		delete(s.byAccount, p.AccountName)
	}
}

// GetPlayer returns the player for a session ID, or nil.
func (s *State) GetPlayer(sessionID uint64) *PlayerInfo {
	return s.players[sessionID]
}

// GetPlayerByAccount returns the player for an account name, or nil.
func (s *State) GetPlayerByAccount(name string) *PlayerInfo {
	return s.byAccount[name]
}

// AllPlayers calls fn for every logged-in player.
func (s *State) AllPlayers(fn func(*PlayerInfo)) {
	for _, p := range s.players {
		fn(p)
	}
}

// PlayerCount returns the number of logged-in players.
func (s *State) PlayerCount() int {
	return len(s.players)
}

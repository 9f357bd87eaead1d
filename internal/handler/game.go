package handler

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/blockfall/server/internal/game"
	"github.com/blockfall/server/internal/net"
	"github.com/blockfall/server/internal/net/packet"
	"github.com/blockfall/server/internal/world"
	"go.uber.org/zap"
)

// HandleJoin processes C_JOIN: allocate a game instance for the session.
// Format: [opcode][C resume flag]
//
// resume=1 restores the saved seed, RNG state and score totals so the piece
// stream continues exactly where the interrupted game would have gone. The
// board itself is not persisted — a resumed game starts on a fresh board.
func HandleJoin(sess *net.Session, r *packet.Reader, deps *Deps) {
	resume := r.ReadC() == 1

	player := deps.World.GetPlayer(sess.ID)
	if player == nil {
		player = &world.PlayerInfo{
			SessionID:   sess.ID,
			Session:     sess,
			AccountName: sess.AccountName,
		}
		deps.World.AddPlayer(player)
	}

	seed := rand.Uint64()
	inst := game.NewInstance(seed, false, deps.Rules)
	resumed := false

	if resume {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		save, err := deps.SaveRepo.Load(ctx, sess.AccountName)
		if err != nil {
			deps.Log.Error("載入存檔資料庫錯誤", zap.Error(err))
		} else if save != nil {
			inst = restoreInstance(save.Seed, save.RngState, save.Score, save.Level, save.Lines, deps.Rules)
			resumed = true
		}
	}

	player.Game = inst
	player.Dirty = false
	player.LastResult = game.TickResult{}
	player.Announcements = nil
	sess.SetState(packet.StatePlaying)

	sendJoined(sess, inst, resumed)
	deps.Log.Info(fmt.Sprintf("加入遊戲  帳號=%s  seed=%d  resume=%v", sess.AccountName, inst.Seed(), resumed))
}

// restoreInstance rebuilds an instance from persisted progress. The RNG state
// is restored after construction so the next draw continues the saved stream
// rather than replaying the opening pieces.
func restoreInstance(seed, rngState uint64, score int64, level, lines int, rules game.Rules) *game.Instance {
	inst := game.NewInstance(seed, false, rules)
	st := inst.State
	st.Rng.Restore(rngState)
	st.Score = score
	if level > st.Level {
		st.Level = level
	}
	st.Lines = lines
	st.GravityInterval = rules.GravityInterval(st.Level)
	return inst
}

// HandleInput processes C_INPUT: one discrete action for this player's game.
// Format: [opcode][C action]
//
// The handler only feeds the input queue — consumption happens one action per
// tick inside the instance. A full queue drops the action silently.
func HandleInput(sess *net.Session, r *packet.Reader, deps *Deps) {
	action := game.Action(r.ReadC())
	if action < game.ActionStart || action > game.ActionReset {
		return
	}

	player := deps.World.GetPlayer(sess.ID)
	if player == nil || player.Game == nil {
		return
	}
	if !player.Game.Queue.Push(action) {
		deps.Log.Debug("輸入佇列已滿，丟棄操作",
			zap.Uint64("session", sess.ID),
			zap.String("action", action.String()),
		)
	}
}

// HandleSoftDrop processes C_SOFTDROP: the held soft-drop flag.
// Format: [opcode][C held]
func HandleSoftDrop(sess *net.Session, r *packet.Reader, deps *Deps) {
	held := r.ReadC() == 1

	player := deps.World.GetPlayer(sess.ID)
	if player == nil || player.Game == nil {
		return
	}
	player.Game.Queue.SetSoftDrop(held)
}

// sendJoined 發送 S_JOINED。
// Format: [C opcode][C resumed][Q seed][Q score][C level][H lines]
func sendJoined(sess *net.Session, inst *game.Instance, resumed bool) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_JOINED)
	if resumed {
		w.WriteC(1)
	} else {
		w.WriteC(0)
	}
	w.WriteQ(inst.Seed())
	w.WriteQ(uint64(inst.State.Score))
	w.WriteC(byte(inst.State.Level))
	w.WriteH(uint16(inst.State.Lines))
	sess.Send(w.Bytes())
}

package handler

import (
	"github.com/blockfall/server/internal/game"
	"github.com/blockfall/server/internal/net"
	"github.com/blockfall/server/internal/net/packet"
)

// SendSnapshot serializes the full observable game state into one packet.
// Format:
//
//	[C opcode][C phase][Q score][C level][H lines][C combo]
//	[C active kind][C active phase][C active x][C active y (signed)]
//	[C next kind]
//	[C pending rows n][n x C row]
//	[board: 24 rows x 10 cells, bottom row first]
//
// An absent active piece is kind 0. The board cells are the locked content
// only; the client composes the active piece on top from the catalog.
func SendSnapshot(sess *net.Session, inst *game.Instance) {
	st := inst.State

	w := packet.NewWriterWithOpcode(packet.S_OPCODE_SNAPSHOT)
	w.WriteC(byte(inst.Phase()))
	w.WriteQ(uint64(st.Score))
	w.WriteC(byte(st.Level))
	w.WriteH(uint16(st.Lines))
	w.WriteC(byte(st.ComboCount))

	if st.Active != nil {
		w.WriteC(byte(st.Active.Kind))
		w.WriteC(byte(st.Active.Phase))
		w.WriteC(byte(int8(st.Active.X)))
		w.WriteC(byte(int8(st.Active.Y)))
	} else {
		w.WriteC(0)
		w.WriteC(0)
		w.WriteC(0)
		w.WriteC(0)
	}

	if st.Next != nil {
		w.WriteC(byte(st.Next.Kind))
	} else {
		w.WriteC(0)
	}

	if st.Pending != nil {
		w.WriteC(byte(len(st.Pending.Rows)))
		for _, y := range st.Pending.Rows {
			w.WriteC(byte(y))
		}
	} else {
		w.WriteC(0)
	}

	for y := 0; y < game.BoardRows; y++ {
		w.WriteBytes(st.Board.Cells[y])
	}

	sess.Send(w.Bytes())
}

// SendClearEvent 發送 S_CLEAR_EVENT（單次計分事件）。
// Format: [C opcode][C lines][Q points][C combo]
func SendClearEvent(sess *net.Session, res *game.ClearResult) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_CLEAR_EVENT)
	w.WriteC(byte(res.Lines))
	w.WriteQ(uint64(res.Points))
	w.WriteC(byte(res.Combo))
	sess.Send(w.Bytes())
}

// SendLevelUp 發送 S_LEVEL_UP。
// Format: [C opcode][C level]
func SendLevelUp(sess *net.Session, level int) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_LEVEL_UP)
	w.WriteC(byte(level))
	sess.Send(w.Bytes())
}

// SendGameOver 發送 S_GAME_OVER（終局統計）。
// Format: [C opcode][Q score][C level][H lines]
func SendGameOver(sess *net.Session, st *game.State) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_GAME_OVER)
	w.WriteQ(uint64(st.Score))
	w.WriteC(byte(st.Level))
	w.WriteH(uint16(st.Lines))
	sess.Send(w.Bytes())
}

// SendAnnounce 發送 S_ANNOUNCE（腳本公告）。
// Format: [C opcode][S text]
func SendAnnounce(sess *net.Session, text string) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_ANNOUNCE)
	w.WriteS(text)
	sess.Send(w.Bytes())
}

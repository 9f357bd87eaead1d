package game

// Board geometry. Rows are indexed bottom-up: row 0 is the floor, rows
// PlayableRows..BoardRows-1 are the hidden spawn buffer where a fresh piece
// may sit partially above the visible playfield.
const (
	BoardWidth   = 10
	PlayableRows = 20
	BufferRows   = 4
	BoardRows    = PlayableRows + BufferRows
)

// Board is the locked-cell grid. Cell values are 0 for empty or a piece
// kind (1-7). The grid shape is invariant: rows removed by a clear are
// replaced by fresh empty rows pushed on top, so len(Cells) and the width
// of every row never change over a game's lifetime.
type Board struct {
	Cells [][]uint8
}

func NewBoard() *Board {
	cells := make([][]uint8, BoardRows)
	for y := range cells {
		cells[y] = make([]uint8, BoardWidth)
	}
	return &Board{Cells: cells}
}

// ShapeOK verifies the grid invariant. Callers must check it before running
// a tick; the engine itself assumes a well-formed grid.
func (b *Board) ShapeOK() bool {
	if b == nil || len(b.Cells) != BoardRows {
		return false
	}
	for _, row := range b.Cells {
		if len(row) != BoardWidth {
			return false
		}
	}
	return true
}

// Collides reports whether any occupied cell of p is out of lateral bounds,
// below the floor, or overlapping a locked cell inside the playable rows.
// Cells in the spawn buffer never collide with board content — only lateral
// bounds matter there — which is what lets a piece spawn taller than the
// playable area without an immediate false collision.
func (b *Board) Collides(p Piece) bool {
	for _, c := range p.Cells() {
		if c.X < 0 || c.X >= BoardWidth || c.Y < 0 {
			return true
		}
		if c.Y >= PlayableRows {
			continue
		}
		if b.Cells[c.Y][c.X] != 0 {
			return true
		}
	}
	return false
}

// Merge writes the piece's cells into the grid. Out-of-grid cells are
// impossible for a piece that passed Collides, so no bounds are re-checked
// beyond the top edge.
func (b *Board) Merge(p Piece) {
	for _, c := range p.Cells() {
		if c.Y < BoardRows {
			b.Cells[c.Y][c.X] = uint8(p.Kind)
		}
	}
}

// FullRows returns the playable row indices that are completely filled,
// lowest first.
func (b *Board) FullRows() []int {
	var full []int
	for y := 0; y < PlayableRows; y++ {
		filled := true
		for x := 0; x < BoardWidth; x++ {
			if b.Cells[y][x] == 0 {
				filled = false
				break
			}
		}
		if filled {
			full = append(full, y)
		}
	}
	return full
}

// RemoveRow deletes one row and pushes a fresh empty row on top, keeping
// the row count constant. This is the only structural mutation of the grid.
func (b *Board) RemoveRow(y int) {
	b.Cells = append(b.Cells[:y], b.Cells[y+1:]...)
	b.Cells = append(b.Cells, make([]uint8, BoardWidth))
}

// TopRowOccupied reports whether the topmost playable row holds any locked
// cell — one of the two game-over conditions.
func (b *Board) TopRowOccupied() bool {
	top := b.Cells[PlayableRows-1]
	for x := 0; x < BoardWidth; x++ {
		if top[x] != 0 {
			return true
		}
	}
	return false
}

package game

// Piece kinds. The value doubles as the cell value written to the board on
// lock, so 0 stays reserved for "empty".
const (
	KindI = 1 + iota
	KindO
	KindT
	KindS
	KindZ
	KindJ
	KindL
)

const (
	NumKinds  = 7
	NumPhases = 4
	boxSize   = 4 // side of a piece's bounding box
)

// Mask is a 4x4 occupancy grid packed into 16 bits. Bit dy*4+dx is the cell
// at column dx, row dy, with dy counted upward from the bottom of the box —
// the same direction as board rows.
type Mask uint16

// Occupied reports whether the box cell (dx,dy) is filled.
func (m Mask) Occupied(dx, dy int) bool {
	return m>>(dy*boxSize+dx)&1 != 0
}

// spawnArt is each kind's phase-0 shape, written top-down for readability.
// The other three phases are derived by clockwise rotation at init, so shape
// and rotation can never drift apart.
var spawnArt = [NumKinds + 1][boxSize]string{
	KindI: {
		"....",
		"XXXX",
		"....",
		"....",
	},
	KindO: {
		"....",
		".XX.",
		".XX.",
		"....",
	},
	KindT: {
		"....",
		".X..",
		"XXX.",
		"....",
	},
	KindS: {
		"....",
		".XX.",
		"XX..",
		"....",
	},
	KindZ: {
		"....",
		"XX..",
		".XX.",
		"....",
	},
	KindJ: {
		"....",
		"X...",
		"XXX.",
		"....",
	},
	KindL: {
		"....",
		"..X.",
		"XXX.",
		"....",
	},
}

// catalog[kind][phase] is the static shape table: 7 kinds x 4 phases.
var catalog = buildCatalog()

func buildCatalog() [NumKinds + 1][NumPhases]Mask {
	var cat [NumKinds + 1][NumPhases]Mask
	for kind := KindI; kind <= KindL; kind++ {
		art := spawnArt[kind]
		for phase := 0; phase < NumPhases; phase++ {
			cat[kind][phase] = maskFromArt(art)
			art = rotateArt(art)
		}
	}
	return cat
}

// maskFromArt converts a top-down string grid to a Mask. Art row 0 is the
// top of the box, mask row 0 the bottom.
func maskFromArt(art [boxSize]string) Mask {
	var m Mask
	for row := 0; row < boxSize; row++ {
		for col := 0; col < boxSize; col++ {
			if art[row][col] == 'X' {
				dy := boxSize - 1 - row
				m |= 1 << (dy*boxSize + col)
			}
		}
	}
	return m
}

// rotateArt turns a top-down string grid 90 degrees clockwise.
func rotateArt(art [boxSize]string) [boxSize]string {
	var out [boxSize]string
	for row := 0; row < boxSize; row++ {
		b := make([]byte, boxSize)
		for col := 0; col < boxSize; col++ {
			b[col] = art[boxSize-1-col][row]
		}
		out[row] = string(b)
	}
	return out
}

// Shape returns the occupancy mask for a kind and rotation phase.
func Shape(kind, phase int) Mask {
	return catalog[kind][phase&3]
}

// Piece is an active falling piece: identity, rotation phase and the
// grid-space anchor of its 4x4 bounding box. Occupied cells are always
// derived from (Kind, Phase) via the catalog, never stored.
type Piece struct {
	Kind  int
	Phase int
	X     int
	Y     int
}

// Cell is one occupied board position.
type Cell struct {
	X int
	Y int
}

// Cells returns the piece's four occupied board cells.
func (p Piece) Cells() [4]Cell {
	var cells [4]Cell
	i := 0
	m := Shape(p.Kind, p.Phase)
	for dy := 0; dy < boxSize; dy++ {
		for dx := 0; dx < boxSize; dx++ {
			if m.Occupied(dx, dy) {
				cells[i] = Cell{X: p.X + dx, Y: p.Y + dy}
				i++
			}
		}
	}
	return cells
}

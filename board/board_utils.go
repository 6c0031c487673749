package board

import (
	"fmt"
	"strings"
)

// Snapshot is the boundary representation of a position, as handed to the
// engine by a caller. Grid is indexed [y][x].
type Snapshot struct {
	Rule WinRule  `yaml:"rule"`
	Grid [][]Cell `yaml:"grid"`
}

// FromSnapshot validates a snapshot and builds a board from it.
func FromSnapshot(s Snapshot) (*Board, error) {
	b, err := NewBoard(s.Rule)
	if err != nil {
		return nil, err
	}
	if len(s.Grid) != s.Rule.Dim {
		return nil, fmt.Errorf("%w: %d rows for size %d", ErrDimensionMismatch, len(s.Grid), s.Rule.Dim)
	}
	for y, row := range s.Grid {
		if len(row) != s.Rule.Dim {
			return nil, fmt.Errorf("%w: row %d has %d cells for size %d",
				ErrDimensionMismatch, y, len(row), s.Rule.Dim)
		}
		for x, c := range row {
			if c != Empty && !c.IsPlayer() {
				return nil, fmt.Errorf("%w: %d at (%d, %d)", ErrInvalidCell, c, x, y)
			}
			if c != Empty {
				b.Set(x, y, c)
			}
		}
	}
	return b, nil
}

// Snapshot exports the board.
func (b *Board) Snapshot() Snapshot {
	grid := make([][]Cell, b.dim)
	for y := range grid {
		grid[y] = make([]Cell, b.dim)
		copy(grid[y], b.cells[y*b.dim:(y+1)*b.dim])
	}
	return Snapshot{Rule: b.Rule(), Grid: grid}
}

// FromRows builds a square board from text rows, one string per row.
// '.' is empty, 'X' is PlayerA and 'O' is PlayerB.
func FromRows(rows []string, winLength int) (*Board, error) {
	dim := len(rows)
	b, err := NewBoard(WinRule{Dim: dim, WinLength: winLength})
	if err != nil {
		return nil, err
	}
	for y, row := range rows {
		row = strings.TrimSpace(row)
		if len(row) != dim {
			return nil, fmt.Errorf("%w: row %d has %d cells for size %d",
				ErrDimensionMismatch, y, len(row), dim)
		}
		for x, ch := range row {
			c, ok := CellFromSymbol(ch)
			if !ok {
				return nil, fmt.Errorf("%w: %q at (%d, %d)", ErrInvalidCell, ch, x, y)
			}
			if c != Empty {
				b.Set(x, y, c)
			}
		}
	}
	return b, nil
}

// PlaceAll places a list of stones for a single player. It stops at the
// first invalid placement.
func (b *Board) PlaceAll(p Cell, coords ...[2]int) error {
	for _, c := range coords {
		if err := b.Place(c[0], c[1], p); err != nil {
			return fmt.Errorf("placing %v at (%d, %d): %w", p, c[0], c[1], err)
		}
	}
	return nil
}

// ToDisplayText renders the board. Large boards are cropped to the occupied
// region plus a margin, with column and row numbers.
func (b *Board) ToDisplayText() string {
	box := Box{0, 0, b.dim - 1, b.dim - 1}
	if b.dim > 20 {
		var ok bool
		box, ok = b.OccupiedBoundingBox(3)
		if !ok {
			cx, cy := b.Center()
			box = Box{cx - 3, cy - 3, cx + 3, cy + 3}
		}
	}
	var sb strings.Builder
	sb.WriteString("\n    ")
	for x := box.MinX; x <= box.MaxX; x++ {
		fmt.Fprintf(&sb, "%3d", x)
	}
	sb.WriteString("\n    ")
	sb.WriteString(strings.Repeat("-", 3*box.Width()+1))
	sb.WriteString("\n")
	for y := box.MinY; y <= box.MaxY; y++ {
		fmt.Fprintf(&sb, "%3d|", y)
		for x := box.MinX; x <= box.MaxX; x++ {
			sb.WriteString("  ")
			sb.WriteByte(b.Get(x, y).Symbol())
		}
		sb.WriteString(" |\n")
	}
	sb.WriteString("    ")
	sb.WriteString(strings.Repeat("-", 3*box.Width()+1))
	sb.WriteString("\n")
	return sb.String()
}

// String renders the board as rows of symbols without any decoration.
func (b *Board) String() string {
	var sb strings.Builder
	for y := 0; y < b.dim; y++ {
		for x := 0; x < b.dim; x++ {
			sb.WriteByte(b.Get(x, y).Symbol())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

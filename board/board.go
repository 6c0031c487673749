package board

import (
	"fmt"

	"github.com/cespare/xxhash"
)

// Box is an inclusive, axis-aligned rectangle of cells.
type Box struct {
	MinX, MinY, MaxX, MaxY int
}

// Width returns the number of columns spanned by the box.
func (b Box) Width() int {
	return b.MaxX - b.MinX + 1
}

// Height returns the number of rows spanned by the box.
func (b Box) Height() int {
	return b.MaxY - b.MinY + 1
}

func (b Box) Contains(x, y int) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

// Board is a square grid of cells. The size never changes after creation.
// Per-row and per-column stone counts are kept alongside the grid so the
// occupied region can be found without a full scan.
type Board struct {
	dim       int
	winLength int
	cells     []Cell
	rowCount  []int
	colCount  []int
	numStones int
}

// NewBoard creates an empty board for the given rule.
func NewBoard(rule WinRule) (*Board, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	return &Board{
		dim:       rule.Dim,
		winLength: rule.WinLength,
		cells:     make([]Cell, rule.Dim*rule.Dim),
		rowCount:  make([]int, rule.Dim),
		colCount:  make([]int, rule.Dim),
	}, nil
}

// MakeBoard is like NewBoard but panics on an invalid rule. It is meant for
// fixed, known-good rules.
func MakeBoard(rule WinRule) *Board {
	b, err := NewBoard(rule)
	if err != nil {
		panic(err)
	}
	return b
}

func (b *Board) Dim() int {
	return b.dim
}

func (b *Board) WinLength() int {
	return b.winLength
}

func (b *Board) Rule() WinRule {
	return WinRule{Dim: b.dim, WinLength: b.winLength}
}

func (b *Board) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.dim && y < b.dim
}

// Get returns the cell at (x, y). Callers must check bounds first.
func (b *Board) Get(x, y int) Cell {
	return b.cells[y*b.dim+x]
}

// GetOrOff returns the cell at (x, y), and false if (x, y) is off the board.
func (b *Board) GetOrOff(x, y int) (Cell, bool) {
	if !b.InBounds(x, y) {
		return Empty, false
	}
	return b.cells[y*b.dim+x], true
}

func (b *Board) IsEmpty(x, y int) bool {
	return b.cells[y*b.dim+x] == Empty
}

// IsLegal returns true if (x, y) is on the board and empty.
func (b *Board) IsLegal(x, y int) bool {
	return b.InBounds(x, y) && b.cells[y*b.dim+x] == Empty
}

// Set writes a cell without validation. It keeps the occupancy counters
// correct, so it may be used for placing as well as clearing stones.
func (b *Board) Set(x, y int, c Cell) {
	idx := y*b.dim + x
	old := b.cells[idx]
	if old != Empty {
		b.rowCount[y]--
		b.colCount[x]--
		b.numStones--
	}
	if c != Empty {
		b.rowCount[y]++
		b.colCount[x]++
		b.numStones++
	}
	b.cells[idx] = c
}

// Place is the validated way to put a stone on the board.
func (b *Board) Place(x, y int, p Cell) error {
	if !p.IsPlayer() {
		return ErrInvalidPlayer
	}
	if !b.InBounds(x, y) {
		return ErrOutOfBounds
	}
	if !b.IsEmpty(x, y) {
		return ErrOccupied
	}
	b.Set(x, y, p)
	return nil
}

// Remove clears a cell.
func (b *Board) Remove(x, y int) {
	b.Set(x, y, Empty)
}

func (b *Board) NumStones() int {
	return b.numStones
}

// Full returns true if there is no empty cell left.
func (b *Board) Full() bool {
	return b.numStones == len(b.cells)
}

// Center returns the middle cell of the board.
func (b *Board) Center() (int, int) {
	return b.dim / 2, b.dim / 2
}

// Clear removes all stones.
func (b *Board) Clear() {
	clear(b.cells)
	clear(b.rowCount)
	clear(b.colCount)
	b.numStones = 0
}

// OccupiedBoundingBox returns the smallest box containing every stone,
// expanded by margin and clamped to the board. ok is false if the board
// is empty.
func (b *Board) OccupiedBoundingBox(margin int) (box Box, ok bool) {
	if b.numStones == 0 {
		return Box{}, false
	}
	minY, maxY := firstLast(b.rowCount)
	minX, maxX := firstLast(b.colCount)
	box = Box{
		MinX: max(0, minX-margin),
		MinY: max(0, minY-margin),
		MaxX: min(b.dim-1, maxX+margin),
		MaxY: min(b.dim-1, maxY+margin),
	}
	return box, true
}

func firstLast(counts []int) (int, int) {
	first, last := -1, -1
	for i, c := range counts {
		if c == 0 {
			continue
		}
		if first == -1 {
			first = i
		}
		last = i
	}
	return first, last
}

// Copy returns a deep copy of the board.
func (b *Board) Copy() *Board {
	nb := &Board{
		dim:       b.dim,
		winLength: b.winLength,
		cells:     make([]Cell, len(b.cells)),
		rowCount:  make([]int, len(b.rowCount)),
		colCount:  make([]int, len(b.colCount)),
		numStones: b.numStones,
	}
	copy(nb.cells, b.cells)
	copy(nb.rowCount, b.rowCount)
	copy(nb.colCount, b.colCount)
	return nb
}

// CopyFrom copies the contents of another board of the same size into b.
func (b *Board) CopyFrom(other *Board) {
	copy(b.cells, other.cells)
	copy(b.rowCount, other.rowCount)
	copy(b.colCount, other.colCount)
	b.numStones = other.numStones
}

// Equals compares the cells of two boards.
func (b *Board) Equals(other *Board) bool {
	if b.dim != other.dim || b.winLength != other.winLength || b.numStones != other.numStones {
		return false
	}
	for i := range b.cells {
		if b.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// Fingerprint hashes the full grid. Unlike a zobrist key it is stable
// across processes, which makes it usable for deduplicating positions in
// self-play logs.
func (b *Board) Fingerprint() uint64 {
	buf := make([]byte, len(b.cells)+1)
	buf[0] = byte(b.winLength)
	for i, c := range b.cells {
		buf[i+1] = byte(c)
	}
	return xxhash.Sum64(buf)
}

// Stones calls f for every occupied cell, in row-major order.
func (b *Board) Stones(f func(x, y int, p Cell)) {
	for y := 0; y < b.dim; y++ {
		if b.rowCount[y] == 0 {
			continue
		}
		for x := 0; x < b.dim; x++ {
			if c := b.cells[y*b.dim+x]; c != Empty {
				f(x, y, c)
			}
		}
	}
}

// Simulate puts p on the empty cell (x, y), runs f, and clears the cell
// again on every exit path of f, including a panic. All trial placements
// go through here. It panics if (x, y) is occupied, leaving the stone there
// untouched.
func Simulate[T any](b *Board, x, y int, p Cell, f func() T) T {
	if c := b.Get(x, y); c != Empty {
		panic(fmt.Errorf("%w: simulating %c at (%d,%d) over %c", ErrOccupied, p.Symbol(), x, y, c.Symbol()))
	}
	b.Set(x, y, p)
	defer b.Set(x, y, Empty)
	return f()
}

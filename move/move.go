package move

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Move is a stone placement at (X, Y). The side playing it is implied by
// whoever is on turn.
type Move struct {
	X, Y int
}

// Null signals that there is no legal move, i.e. the board is full.
var Null = Move{X: -1, Y: -1}

var ErrBadCoords = errors.New("coordinates must look like x,y")

func New(x, y int) Move {
	return Move{X: x, Y: y}
}

func (m Move) IsNull() bool {
	return m.X < 0 || m.Y < 0
}

func (m Move) String() string {
	if m.IsNull() {
		return "(none)"
	}
	return fmt.Sprintf("(%d,%d)", m.X, m.Y)
}

// Index returns the row-major cell index of the move on a board of side dim.
func (m Move) Index(dim int) int {
	return m.Y*dim + m.X
}

// FromIndex is the inverse of Index.
func FromIndex(idx, dim int) Move {
	return Move{X: idx % dim, Y: idx / dim}
}

// FromString parses "x,y", "x y" or "(x,y)".
func FromString(s string) (Move, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' '
	})
	if len(fields) != 2 {
		return Null, ErrBadCoords
	}
	x, err := strconv.Atoi(fields[0])
	if err != nil {
		return Null, fmt.Errorf("%w: %v", ErrBadCoords, err)
	}
	y, err := strconv.Atoi(fields[1])
	if err != nil {
		return Null, fmt.Errorf("%w: %v", ErrBadCoords, err)
	}
	return Move{X: x, Y: y}, nil
}

package board

import (
	"errors"
	"fmt"
)

const (
	DefaultDim       = 100
	DefaultWinLength = 5
	// MaxDim keeps a cell index inside 16 bits.
	MaxDim = 255
	// MinWinLength and MaxWinLength bound the supported run length. The
	// shape heuristics are tuned around five in a row and stop ranking
	// positions sensibly past six.
	MinWinLength = 3
	MaxWinLength = 6
)

var (
	ErrOutOfBounds       = errors.New("position is out of bounds")
	ErrOccupied          = errors.New("position is already occupied")
	ErrInvalidPlayer     = errors.New("invalid player")
	ErrInvalidCell       = errors.New("invalid cell value")
	ErrDimensionMismatch = errors.New("board dimensions do not match the stated size")
	ErrInvalidRule       = errors.New("invalid win rule")
)

// Direction is one of the four line axes along which runs are counted.
type Direction struct {
	DX, DY int
}

// Directions holds horizontal, vertical, and both diagonals.
var Directions = [4]Direction{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

// WinRule contains the fixed parameters of a game.
type WinRule struct {
	Dim       int `yaml:"dim"`
	WinLength int `yaml:"win_length"`
}

// DefaultWinRule is the 100x100, five-in-a-row configuration.
var DefaultWinRule = WinRule{Dim: DefaultDim, WinLength: DefaultWinLength}

func (r WinRule) Validate() error {
	if r.Dim < 1 || r.Dim > MaxDim {
		return fmt.Errorf("%w: board size %d must be between 1 and %d", ErrInvalidRule, r.Dim, MaxDim)
	}
	if r.WinLength < MinWinLength || r.WinLength > MaxWinLength || r.WinLength > r.Dim {
		return fmt.Errorf("%w: win length %d must be between %d and %d, and fit the board size %d",
			ErrInvalidRule, r.WinLength, MinWinLength, MaxWinLength, r.Dim)
	}
	return nil
}

func (r WinRule) String() string {
	return fmt.Sprintf("%dx%d, %d in a row", r.Dim, r.Dim, r.WinLength)
}

// Package pattern classifies the lines running through a cell. A line is
// read as a Window: the nine cells at offsets -4..+4 along one direction,
// seen from one player's side. Windows and the shape templates they are
// matched against are small packed integers.
package pattern

import (
	"strings"

	"github.com/domino14/gomoku/board"
)

// Symbol is a cell as seen by the player a window was extracted for.
type Symbol uint8

const (
	Empty    Symbol = 0
	Self     Symbol = 1
	Opponent Symbol = 2
	OffBoard Symbol = 3
)

const (
	// WindowRadius is how far a window reaches on each side of its centre.
	WindowRadius = 4
	// WindowSize is the number of symbols in a window.
	WindowSize = 2*WindowRadius + 1
	centre     = WindowRadius
)

// Window packs WindowSize symbols, two bits each. The symbol at offset
// i-WindowRadius lives at bits 2i and 2i+1.
type Window uint32

func (w Window) At(i int) Symbol {
	return Symbol((w >> (2 * i)) & 3)
}

func (w Window) with(i int, s Symbol) Window {
	return w&^(3<<(2*i)) | Window(s)<<(2*i)
}

func symbolChar(s Symbol) byte {
	switch s {
	case Self:
		return 'X'
	case Opponent:
		return 'O'
	case OffBoard:
		return 'W'
	}
	return '_'
}

// String renders the window with X for self, O for the opponent, _ for empty
// and W for off the board.
func (w Window) String() string {
	var sb strings.Builder
	for i := 0; i < WindowSize; i++ {
		sb.WriteByte(symbolChar(w.At(i)))
	}
	return sb.String()
}

// ParseWindow is the inverse of String. Unknown characters and missing
// trailing symbols are read as off-board.
func ParseWindow(s string) Window {
	var w Window
	for i := 0; i < WindowSize; i++ {
		sym := OffBoard
		if i < len(s) {
			switch s[i] {
			case 'X':
				sym = Self
			case 'O':
				sym = Opponent
			case '_':
				sym = Empty
			}
		}
		w = w.with(i, sym)
	}
	return w
}

// ExtractWindow reads the window centred on (x, y) along d, from p's side.
func ExtractWindow(b *board.Board, x, y int, d board.Direction, p board.Cell) Window {
	var w Window
	for i := 0; i < WindowSize; i++ {
		nx := x + (i-WindowRadius)*d.DX
		ny := y + (i-WindowRadius)*d.DY
		var sym Symbol
		c, ok := b.GetOrOff(nx, ny)
		switch {
		case !ok:
			sym = OffBoard
		case c == board.Empty:
			sym = Empty
		case c == p:
			sym = Self
		default:
			sym = Opponent
		}
		w |= Window(sym) << (2 * i)
	}
	return w
}

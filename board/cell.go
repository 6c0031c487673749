package board

// Cell is the content of a single intersection on the board.
type Cell uint8

const (
	Empty Cell = iota
	PlayerA
	PlayerB
)

// NumPlayers is the number of sides in a game.
const NumPlayers = 2

func (c Cell) String() string {
	switch c {
	case Empty:
		return "empty"
	case PlayerA:
		return "A"
	case PlayerB:
		return "B"
	}
	return "invalid"
}

// Symbol returns the character used to show this cell in plain text.
func (c Cell) Symbol() byte {
	switch c {
	case PlayerA:
		return 'X'
	case PlayerB:
		return 'O'
	}
	return '.'
}

// IsPlayer returns true if c is one of the two sides.
func (c Cell) IsPlayer() bool {
	return c == PlayerA || c == PlayerB
}

// Opponent returns the other side. Empty maps to Empty.
func Opponent(p Cell) Cell {
	switch p {
	case PlayerA:
		return PlayerB
	case PlayerB:
		return PlayerA
	}
	return Empty
}

// PlayerIndex maps a side to 0 or 1, for array lookups.
func PlayerIndex(p Cell) int {
	return int(p) - 1
}

// CellFromSymbol is the inverse of Symbol.
func CellFromSymbol(ch rune) (Cell, bool) {
	switch ch {
	case '.', '_', ' ':
		return Empty, true
	case 'X', 'x':
		return PlayerA, true
	case 'O', 'o':
		return PlayerB, true
	}
	return Empty, false
}

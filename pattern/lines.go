package pattern

import (
	"github.com/domino14/gomoku/board"
)

// Run describes the unbroken line of one player's stones through a cell.
type Run struct {
	Length int
	// OpenLow and OpenHigh are true if the cell just past each end of the
	// run is on the board and empty.
	OpenLow, OpenHigh bool
	// Ends of the flanking cells, for callers that want to play there.
	LowX, LowY, HighX, HighY int
}

// OpenEnds returns how many of the two flanks are open.
func (r Run) OpenEnds() int {
	n := 0
	if r.OpenLow {
		n++
	}
	if r.OpenHigh {
		n++
	}
	return n
}

// RunThrough measures the run of p through (x, y) along d. The cell itself
// counts as p whatever it holds, so this can be asked about a hypothetical
// placement as well as a real one.
func RunThrough(b *board.Board, x, y int, d board.Direction, p board.Cell) Run {
	r := Run{Length: 1}
	hx, hy := x+d.DX, y+d.DY
	for b.InBounds(hx, hy) && b.Get(hx, hy) == p {
		r.Length++
		hx, hy = hx+d.DX, hy+d.DY
	}
	lx, ly := x-d.DX, y-d.DY
	for b.InBounds(lx, ly) && b.Get(lx, ly) == p {
		r.Length++
		lx, ly = lx-d.DX, ly-d.DY
	}
	r.LowX, r.LowY, r.HighX, r.HighY = lx, ly, hx, hy
	r.OpenLow = b.InBounds(lx, ly) && b.IsEmpty(lx, ly)
	r.OpenHigh = b.InBounds(hx, hy) && b.IsEmpty(hx, hy)
	return r
}

// MaxRunAt returns the longest run of p through (x, y) over all directions.
func MaxRunAt(b *board.Board, x, y int, p board.Cell) int {
	best := 0
	for _, d := range board.Directions {
		if l := RunThrough(b, x, y, d, p).Length; l > best {
			best = l
		}
	}
	return best
}

// IsRunOfLengthAt reports whether some direction through (x, y) holds a run
// of exactly n stones of p.
func IsRunOfLengthAt(b *board.Board, x, y int, p board.Cell, n int) bool {
	for _, d := range board.Directions {
		if RunThrough(b, x, y, d, p).Length == n {
			return true
		}
	}
	return false
}

// IsWinAt reports whether p has at least WinLength in a row through (x, y).
func IsWinAt(b *board.Board, x, y int, p board.Cell) bool {
	k := b.WinLength()
	for _, d := range board.Directions {
		if RunThrough(b, x, y, d, p).Length >= k {
			return true
		}
	}
	return false
}

// IsOpenFour reports whether some line through (x, y) is a run of exactly
// WinLength-1 with both flanks open: two winning squares at once.
func IsOpenFour(b *board.Board, x, y int, p board.Cell) bool {
	k := b.WinLength()
	for _, d := range board.Directions {
		r := RunThrough(b, x, y, d, p)
		if r.Length == k-1 && r.OpenLow && r.OpenHigh {
			return true
		}
	}
	return false
}

// IsFourThreat reports whether some line through (x, y) is a run of
// exactly WinLength-1 with at least one open flank.
func IsFourThreat(b *board.Board, x, y int, p board.Cell) bool {
	return CountFourThreatDirections(b, x, y, p) > 0
}

// CountFourThreatDirections counts the directions through (x, y) that hold
// a four threat for p.
func CountFourThreatDirections(b *board.Board, x, y int, p board.Cell) int {
	k := b.WinLength()
	n := 0
	for _, d := range board.Directions {
		r := RunThrough(b, x, y, d, p)
		if r.Length == k-1 && (r.OpenLow || r.OpenHigh) {
			n++
		}
	}
	return n
}

// CountOpenThreesAt sums CountOpenThrees over the four windows through
// (x, y). The cell should already hold p.
func CountOpenThreesAt(b *board.Board, x, y int, p board.Cell) int {
	n := 0
	for _, d := range board.Directions {
		n += CountOpenThrees(ExtractWindow(b, x, y, d, p))
	}
	return n
}

// CountOpenThreeDirections counts the directions through (x, y) holding at
// least one open three.
func CountOpenThreeDirections(b *board.Board, x, y int, p board.Cell) int {
	n := 0
	for _, d := range board.Directions {
		if CountOpenThrees(ExtractWindow(b, x, y, d, p)) > 0 {
			n++
		}
	}
	return n
}

// CombinedThreatScore weighs the open-three and four-threat directions
// through (x, y): each four counts double.
func CombinedThreatScore(b *board.Board, x, y int, p board.Cell) int {
	return CountOpenThreeDirections(b, x, y, p) + 2*CountFourThreatDirections(b, x, y, p)
}

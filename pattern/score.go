package pattern

import (
	"github.com/domino14/gomoku/board"
)

// CountOpenThrees counts the distinct open threes in w that pass through the
// centre stone. Sub-windows holding an opponent or off-board symbol never
// match. A three seen by more than one template (a solid three with room on
// both sides matches both _XXX_ and __XXX__) is counted once.
func CountOpenThrees(w Window) int {
	if w.At(centre) != Self {
		return 0
	}
	var seen [4]uint16
	n := 0
	for _, t := range openThreeTemplates {
		m := t.mask()
		for shift := 0; shift+t.length <= WindowSize; shift++ {
			if centre < shift || centre >= shift+t.length {
				continue
			}
			if (uint32(w)>>(2*shift))&m != t.bits {
				continue
			}
			stones := stoneMask(t, shift)
			dup := false
			for i := 0; i < n; i++ {
				if seen[i] == stones {
					dup = true
					break
				}
			}
			if dup {
				continue
			}
			if n < len(seen) {
				seen[n] = stones
			}
			n++
		}
	}
	return n
}

// stoneMask returns which window cells hold the template's stones when it
// is matched at shift.
func stoneMask(t template, shift int) uint16 {
	var m uint16
	for i := 0; i < t.length; i++ {
		if (t.bits>>(2*i))&3 == sX {
			m |= 1 << (shift + i)
		}
	}
	return m
}

// ScoreWindow rates the best shape found anywhere in w.
func ScoreWindow(w Window) int {
	for _, t := range scoreTable {
		if w.contains(t) {
			return t.score
		}
	}
	return 0
}

// LocalPatternScore sums ScoreWindow over the four windows through (x, y).
func LocalPatternScore(b *board.Board, x, y int, p board.Cell) int {
	s := 0
	for _, d := range board.Directions {
		s += ScoreWindow(ExtractWindow(b, x, y, d, p))
	}
	return s
}

var pow10 = [...]int{1, 10, 100, 1000, 10000, 100000, 1000000, 10000000, 100000000}

// SequenceScore rates the potential of every segment of length 2 through
// WinLength that contains (x, y): a segment with no opponent stone and no
// off-board cell scores 10^k times its length for k own stones, plus a
// bonus when it is one or two stones short of full.
func SequenceScore(b *board.Board, x, y int, p board.Cell) int {
	score := 0
	k := b.WinLength()
	for _, d := range board.Directions {
		for length := 2; length <= k; length++ {
			for start := 0; start < length; start++ {
				own, blocked := 0, false
				for i := 0; i < length; i++ {
					c, ok := b.GetOrOff(x+(i-start)*d.DX, y+(i-start)*d.DY)
					if !ok || (c != board.Empty && c != p) {
						blocked = true
						break
					}
					if c == p {
						own++
					}
				}
				if blocked {
					continue
				}
				score += pow10[min(own, len(pow10)-1)] * length
				if own == length-1 {
					score += 1000
				} else if own == length-2 {
					score += 100
				}
			}
		}
	}
	return score
}

// TacticalScore is the per-cell value used by the static evaluator and by
// the attacking half of move ordering.
func TacticalScore(b *board.Board, x, y int, p board.Cell) int {
	return 3*LocalPatternScore(b, x, y, p) + 2*SequenceScore(b, x, y, p)
}

// Package threats finds forcing moves: immediate wins, forks and the
// squares that create them. Every scan is limited to the bounding box of
// the stones on the board, widened by a margin.
package threats

import (
	"github.com/samber/lo"

	"github.com/domino14/gomoku/board"
	"github.com/domino14/gomoku/move"
	"github.com/domino14/gomoku/movegen"
	"github.com/domino14/gomoku/pattern"
)

const DefaultMargin = 6

// neutralizeSuggestions is how many of the orderer's moves are tried on
// top of the threat squares and their neighbours.
const neutralizeSuggestions = 16

type Scanner struct {
	board  *board.Board
	gen    *movegen.Generator
	margin int
}

// NewScanner returns a scanner over gen's board.
func NewScanner(gen *movegen.Generator, margin int) *Scanner {
	if margin <= 0 {
		margin = DefaultMargin
	}
	return &Scanner{board: gen.Board(), gen: gen, margin: margin}
}

func (s *Scanner) Margin() int {
	return s.margin
}

// eachEmpty calls f for the empty cells of the scan box in row-major order
// until f returns false.
func (s *Scanner) eachEmpty(f func(x, y int) bool) {
	s.eachCell(func(x, y int, c board.Cell) bool {
		if c != board.Empty {
			return true
		}
		return f(x, y)
	})
}

func (s *Scanner) eachCell(f func(x, y int, c board.Cell) bool) {
	s.eachCellWithin(s.margin, f)
}

func (s *Scanner) eachCellWithin(margin int, f func(x, y int, c board.Cell) bool) {
	box, ok := s.board.OccupiedBoundingBox(margin)
	if !ok {
		return
	}
	for y := box.MinY; y <= box.MaxY; y++ {
		for x := box.MinX; x <= box.MaxX; x++ {
			if !f(x, y, s.board.Get(x, y)) {
				return
			}
		}
	}
}

// findFirst returns the first empty cell satisfying pred.
func (s *Scanner) findFirst(pred func(x, y int) bool) move.Move {
	found := move.Null
	s.eachEmpty(func(x, y int) bool {
		if pred(x, y) {
			found = move.New(x, y)
			return false
		}
		return true
	})
	return found
}

func (s *Scanner) listAll(pred func(x, y int) bool) []move.Move {
	var moves []move.Move
	s.eachEmpty(func(x, y int) bool {
		if pred(x, y) {
			moves = append(moves, move.New(x, y))
		}
		return true
	})
	return moves
}

// FindImmediateWin returns a square that wins on the spot for p.
func (s *Scanner) FindImmediateWin(p board.Cell) move.Move {
	return s.findFirst(func(x, y int) bool {
		return pattern.IsWinAt(s.board, x, y, p)
	})
}

// ListAllImmediateWins returns every square that wins on the spot for p.
func (s *Scanner) ListAllImmediateWins(p board.Cell) []move.Move {
	return s.listAll(func(x, y int) bool {
		return pattern.IsWinAt(s.board, x, y, p)
	})
}

// FindDualImmediateThreat returns a square where p, by playing there,
// would hold two or more winning squares at once. Asked about the
// opponent, that is the fork that must be taken away now.
func (s *Scanner) FindDualImmediateThreat(p board.Cell) move.Move {
	existing := s.ListAllImmediateWins(p)
	if len(existing) >= 2 {
		// The fork is already on the board; its squares are the threat.
		return existing[0]
	}
	b := s.board
	k := b.WinLength()
	return s.findFirst(func(x, y int) bool {
		// A win that exists already survives the placement, unless it is
		// the square being played.
		n := len(existing)
		if lo.Contains(existing, move.New(x, y)) {
			n--
		}
		// Any new win must lie on a line through (x, y).
		return board.Simulate(b, x, y, p, func() bool {
			for _, d := range board.Directions {
				for sign := -1; sign <= 1; sign += 2 {
					for i := 1; i < k; i++ {
						wx, wy := x+sign*i*d.DX, y+sign*i*d.DY
						c, ok := b.GetOrOff(wx, wy)
						if !ok {
							break
						}
						if c != board.Empty {
							continue
						}
						if lo.Contains(existing, move.New(wx, wy)) {
							continue
						}
						if pattern.IsWinAt(b, wx, wy, p) {
							n++
							if n >= 2 {
								return true
							}
						}
					}
				}
			}
			return false
		})
	})
}

// FindCreatesOpenFour returns a square where p would make an open four.
func (s *Scanner) FindCreatesOpenFour(p board.Cell) move.Move {
	return s.findFirst(func(x, y int) bool {
		return pattern.IsOpenFour(s.board, x, y, p)
	})
}

func (s *Scanner) ListCreatesOpenFour(p board.Cell) []move.Move {
	return s.listAll(func(x, y int) bool {
		return pattern.IsOpenFour(s.board, x, y, p)
	})
}

// FindAnyExistingOpenFour looks for an open four p already has on the
// board and returns one of its two open ends.
func (s *Scanner) FindAnyExistingOpenFour(p board.Cell) move.Move {
	found := move.Null
	k := s.board.WinLength()
	s.eachCell(func(x, y int, c board.Cell) bool {
		if c != p {
			return true
		}
		for _, d := range board.Directions {
			r := pattern.RunThrough(s.board, x, y, d, p)
			if r.Length == k-1 && r.OpenLow && r.OpenHigh {
				found = move.New(r.LowX, r.LowY)
				return false
			}
		}
		return true
	})
	return found
}

// FindCreatesFourThreat returns a square where p would make a four with at
// least one open end.
func (s *Scanner) FindCreatesFourThreat(p board.Cell) move.Move {
	return s.findFirst(func(x, y int) bool {
		return pattern.IsFourThreat(s.board, x, y, p)
	})
}

func (s *Scanner) ListCreatesFourThreat(p board.Cell) []move.Move {
	return s.listAll(func(x, y int) bool {
		return pattern.IsFourThreat(s.board, x, y, p)
	})
}

// FindCreatesDualFourThreat returns a square giving p four threats in two
// or more directions at once.
func (s *Scanner) FindCreatesDualFourThreat(p board.Cell) move.Move {
	return s.findFirst(func(x, y int) bool {
		return pattern.CountFourThreatDirections(s.board, x, y, p) >= 2
	})
}

// FindCreatesDoubleOpenThree returns the square giving p the most open
// threes, as long as that is at least two. Ties go to the first square
// scanned.
func (s *Scanner) FindCreatesDoubleOpenThree(p board.Cell) move.Move {
	b := s.board
	best, bestCount := move.Null, 1
	s.eachEmpty(func(x, y int) bool {
		n := board.Simulate(b, x, y, p, func() int {
			return pattern.CountOpenThreesAt(b, x, y, p)
		})
		if n > bestCount {
			best, bestCount = move.New(x, y), n
		}
		return true
	})
	return best
}

// FindCombinedThreatBlock returns the square where the opponent opp would
// build the strongest intersection of threes and fours, if it is stronger
// than two open threes.
func (s *Scanner) FindCombinedThreatBlock(opp board.Cell) move.Move {
	b := s.board
	best, bestScore := move.Null, 2
	s.eachEmpty(func(x, y int) bool {
		sc := board.Simulate(b, x, y, opp, func() int {
			return pattern.CombinedThreatScore(b, x, y, opp)
		})
		if sc > bestScore {
			best, bestScore = move.New(x, y), sc
		}
		return true
	})
	return best
}

// openThreeRun calls f for every solid run of exactly three of p's stones
// with both ends empty. Each run is reported once per stone in it.
func (s *Scanner) openThreeRun(p board.Cell, f func(r pattern.Run) bool) {
	s.eachCell(func(x, y int, c board.Cell) bool {
		if c != p {
			return true
		}
		for _, d := range board.Directions {
			r := pattern.RunThrough(s.board, x, y, d, p)
			if r.Length == 3 && r.OpenLow && r.OpenHigh {
				if !f(r) {
					return false
				}
			}
		}
		return true
	})
}

// ExtendOpenThree turns one of p's open threes into a four, preferring the
// end that leaves an open four.
func (s *Scanner) ExtendOpenThree(p board.Cell) move.Move {
	found := move.Null
	s.openThreeRun(p, func(r pattern.Run) bool {
		for _, end := range []move.Move{move.New(r.LowX, r.LowY), move.New(r.HighX, r.HighY)} {
			if pattern.IsOpenFour(s.board, end.X, end.Y, p) {
				found = end
				return false
			}
		}
		found = move.New(r.LowX, r.LowY)
		return false
	})
	return found
}

// FindOpenThreeBlock returns the lower end of one of opp's open threes.
func (s *Scanner) FindOpenThreeBlock(opp board.Cell) move.Move {
	found := move.Null
	s.openThreeRun(opp, func(r pattern.Run) bool {
		found = move.New(r.LowX, r.LowY)
		return false
	})
	return found
}

// FindSemiFourBlock returns the single open end of a four of opp's that
// is closed on the other side.
func (s *Scanner) FindSemiFourBlock(opp board.Cell) move.Move {
	found := move.Null
	k := s.board.WinLength()
	s.eachCell(func(x, y int, c board.Cell) bool {
		if c != opp {
			return true
		}
		for _, d := range board.Directions {
			r := pattern.RunThrough(s.board, x, y, d, opp)
			if r.Length != k-1 || r.OpenLow == r.OpenHigh {
				continue
			}
			if r.OpenLow {
				found = move.New(r.LowX, r.LowY)
			} else {
				found = move.New(r.HighX, r.HighY)
			}
			return false
		}
		return true
	})
	return found
}

// NeutralizeMultipleFourThreats handles the case where opp has two or more
// distinct squares that each make a four. No single block covers them
// all, so it picks the move for self that leaves the fewest open-four
// squares, then the fewest other four squares, then the best quick score.
// Returns Null when there are fewer than two such squares.
func (s *Scanner) NeutralizeMultipleFourThreats(opp, self board.Cell) move.Move {
	b := s.board
	open := s.ListCreatesOpenFour(opp)
	threats := lo.Uniq(append(open, s.ListCreatesFourThreat(opp)...))
	if len(threats) <= 1 {
		return move.Null
	}

	var cands []move.Move
	add := func(x, y int) {
		if b.IsLegal(x, y) {
			cands = append(cands, move.New(x, y))
		}
	}
	for _, t := range threats {
		add(t.X, t.Y)
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx != 0 || dy != 0 {
					add(t.X+dx, t.Y+dy)
				}
			}
		}
	}
	for _, m := range s.gen.OrderedMoves(self, move.Null, neutralizeSuggestions) {
		add(m.X, m.Y)
	}
	cands = lo.Uniq(cands)

	type remaining struct{ open, semi int }
	best := move.Null
	var bestRem remaining
	bestScore := 0
	for _, c := range cands {
		rem := board.Simulate(b, c.X, c.Y, self, func() remaining {
			o := len(s.ListCreatesOpenFour(opp))
			all := len(s.ListCreatesFourThreat(opp))
			return remaining{open: o, semi: max(0, all-o)}
		})
		sc := s.gen.QuickScore(c.X, c.Y, self)
		if best.IsNull() ||
			rem.open < bestRem.open ||
			(rem.open == bestRem.open && rem.semi < bestRem.semi) ||
			(rem == bestRem && sc > bestScore) {
			best, bestRem, bestScore = c, rem, sc
		}
	}
	return best
}

package threats

import (
	"github.com/domino14/gomoku/board"
	"github.com/domino14/gomoku/move"
	"github.com/domino14/gomoku/pattern"
)

// Mode is how hard the side to move should press, judged from the
// threats both sides can build.
type Mode int

const (
	ModeNormal Mode = iota
	ModeAggressive
	ModeForcing
)

func (m Mode) String() string {
	switch m {
	case ModeAggressive:
		return "aggressive"
	case ModeForcing:
		return "forcing"
	}
	return "normal"
}

const (
	// overloadSquares of the opponent's squares each worth at least
	// overloadScore mean more threats than can be answered one by one.
	overloadSquares = 3
	overloadScore   = 3
	// criticalIntersection is the combined score (an open three crossing a
	// four, or two fours) past which a square is worth spending a move on.
	criticalIntersection = 4

	intersectionCandidates = 30
	lookaheadCandidates    = 16
	lookaheadMargin        = 4
	lookaheadCutoff        = 12
	openThreeCandidates    = 40
)

// Analysis summarises the tactical balance before a move.
type Analysis struct {
	// SelfLines3 and OppLines3 count, stone by stone, the directions that
	// hold an open three.
	SelfLines3, OppLines3 int
	// SelfCombinedMax and OppCombinedMax are the best CombinedThreatScore
	// each side could reach with one stone.
	SelfCombinedMax, OppCombinedMax int
	// OverloadRisk is set when opp has several strong squares at once.
	OverloadRisk bool
}

// Mode picks forcing play when opp is clearly ahead in threes or holds a
// critical intersection, aggressive play when it is slightly ahead or
// threatens an overload, and normal play otherwise.
func (a Analysis) Mode() Mode {
	diff := a.OppLines3 - a.SelfLines3
	switch {
	case diff >= 2 || a.OppCombinedMax >= criticalIntersection:
		return ModeForcing
	case diff >= 1 || a.OverloadRisk:
		return ModeAggressive
	}
	return ModeNormal
}

func (s *Scanner) combinedAt(x, y int, p board.Cell) int {
	return board.Simulate(s.board, x, y, p, func() int {
		return pattern.CombinedThreatScore(s.board, x, y, p)
	})
}

// Analyze measures both sides' threat potential inside the scan box.
func (s *Scanner) Analyze(self, opp board.Cell) Analysis {
	var a Analysis
	risky := 0
	s.eachCell(func(x, y int, c board.Cell) bool {
		switch c {
		case board.Empty:
			a.SelfCombinedMax = max(a.SelfCombinedMax, s.combinedAt(x, y, self))
			sc := s.combinedAt(x, y, opp)
			a.OppCombinedMax = max(a.OppCombinedMax, sc)
			if sc >= overloadScore {
				risky++
			}
		case self:
			a.SelfLines3 += pattern.CountOpenThreeDirections(s.board, x, y, self)
		case opp:
			a.OppLines3 += pattern.CountOpenThreeDirections(s.board, x, y, opp)
		}
		return true
	})
	a.OverloadRisk = risky >= overloadSquares
	return a
}

// FindForcingThreat returns a move that makes p an open four, or failing
// that one that leaves p two winning squares.
func (s *Scanner) FindForcingThreat(p board.Cell) move.Move {
	if m := s.FindCreatesOpenFour(p); !m.IsNull() {
		return m
	}
	return s.FindDualImmediateThreat(p)
}

// worstIntersection is opp's best combined score over the empty squares
// of the scan box, stopping early once it reaches the critical level.
func (s *Scanner) worstIntersection(opp board.Cell) int {
	worst := 0
	s.eachEmpty(func(x, y int) bool {
		worst = max(worst, s.combinedAt(x, y, opp))
		return worst < criticalIntersection
	})
	return worst
}

// MinimizeCriticalIntersections looks for self's move that leaves opp the
// weakest best intersection, with ties going to the move that gives self
// the most open threes. It only answers when opp can already reach a
// critical intersection and some move lowers it.
func (s *Scanner) MinimizeCriticalIntersections(self, opp board.Cell) move.Move {
	current := s.worstIntersection(opp)
	if current < criticalIntersection {
		return move.Null
	}
	best := move.Null
	bestWorst, bestThrees := current, -1
	for _, m := range s.gen.OrderedMoves(self, move.Null, intersectionCandidates) {
		worst, threes := 0, 0
		board.Simulate(s.board, m.X, m.Y, self, func() bool {
			worst = s.worstIntersection(opp)
			threes = pattern.CountOpenThreeDirections(s.board, m.X, m.Y, self)
			return true
		})
		if worst < bestWorst || (!best.IsNull() && worst == bestWorst && threes > bestThrees) {
			best, bestWorst, bestThrees = m, worst, threes
		}
	}
	return best
}

// nextDanger is how bad opp's best reply could be: a win counts 10, an open
// four 6, plus the combined threat score of the square.
func (s *Scanner) nextDanger(opp board.Cell) int {
	worst := 0
	s.eachCellWithin(min(s.margin, lookaheadMargin), func(x, y int, c board.Cell) bool {
		if c != board.Empty {
			return true
		}
		danger := board.Simulate(s.board, x, y, opp, func() int {
			d := pattern.CombinedThreatScore(s.board, x, y, opp)
			if pattern.IsWinAt(s.board, x, y, opp) {
				d += 10
			}
			if pattern.IsOpenFour(s.board, x, y, opp) {
				d += 6
			}
			return d
		})
		worst = max(worst, danger)
		return worst < lookaheadCutoff
	})
	return worst
}

// LookaheadSteer tries self's best ordered moves one ply deep and keeps the
// one that leaves opp the least dangerous reply. Ties go to the move with
// the better combined score and centre bonus.
func (s *Scanner) LookaheadSteer(self, opp board.Cell) move.Move {
	best := move.Null
	bestWorst, bestTie := 0, 0
	for _, m := range s.gen.OrderedMoves(self, move.Null, lookaheadCandidates) {
		worst, tie := 0, 0
		board.Simulate(s.board, m.X, m.Y, self, func() bool {
			worst = s.nextDanger(opp)
			tie = pattern.CombinedThreatScore(s.board, m.X, m.Y, self) + s.gen.CenterBonus(m.X, m.Y)
			return true
		})
		if best.IsNull() || worst < bestWorst || (worst == bestWorst && tie > bestTie) {
			best, bestWorst, bestTie = m, worst, tie
		}
	}
	return best
}

// MaximizeOpenThrees returns the candidate giving p open threes in the most
// directions, the centre bonus breaking ties.
func (s *Scanner) MaximizeOpenThrees(p board.Cell) move.Move {
	best := move.Null
	bestScore := 0
	for _, m := range s.gen.OrderedMoves(p, move.Null, openThreeCandidates) {
		sc := board.Simulate(s.board, m.X, m.Y, p, func() int {
			return pattern.CountOpenThreeDirections(s.board, m.X, m.Y, p)
		})
		sc = sc*100 + s.gen.CenterBonus(m.X, m.Y)
		if best.IsNull() || sc > bestScore {
			best, bestScore = m, sc
		}
	}
	return best
}

// Package movegen contains the candidate move generator and the move
// orderer used at every search node.
package movegen

import (
	"sort"

	"github.com/samber/lo"

	"github.com/domino14/gomoku/board"
	"github.com/domino14/gomoku/move"
	"github.com/domino14/gomoku/pattern"
)

// NeighborRadius is how far from an existing stone a candidate can be.
const NeighborRadius = 2

const (
	DefaultCandidateLimit = 48
	DefaultBreadth        = 28
	centerBonusMax        = 20
)

// BiasFunc adds an outside opinion to a move's quick score. The engine
// calls it during ordering but never updates it.
type BiasFunc func(b *board.Board, x, y int, p board.Cell) int

type Generator struct {
	board          *board.Board
	bias           BiasFunc
	candidateLimit int

	ring1, ring2 []move.Move
	scored       []scoredMove
}

type scoredMove struct {
	m     move.Move
	score int
}

// NewGenerator creates a generator bound to b. The board is read and
// temporarily mutated during scoring, but is always restored.
func NewGenerator(b *board.Board, candidateLimit int, bias BiasFunc) *Generator {
	if candidateLimit <= 0 {
		candidateLimit = DefaultCandidateLimit
	}
	return &Generator{
		board:          b,
		bias:           bias,
		candidateLimit: candidateLimit,
	}
}

func (g *Generator) Board() *board.Board {
	return g.board
}

func (g *Generator) SetBias(bias BiasFunc) {
	g.bias = bias
}

func (g *Generator) CandidateLimit() int {
	return g.candidateLimit
}

// CandidateMoves returns the empty cells within NeighborRadius of a stone.
// Cells touching a stone come first, then the outer ring, each in row-major
// order; the list is cut at limit (limit <= 0 means no cap). An empty board
// yields just the centre.
func (g *Generator) CandidateMoves(limit int) []move.Move {
	b := g.board
	box, ok := b.OccupiedBoundingBox(NeighborRadius)
	if !ok {
		cx, cy := b.Center()
		return []move.Move{move.New(cx, cy)}
	}
	g.ring1 = g.ring1[:0]
	g.ring2 = g.ring2[:0]
	for y := box.MinY; y <= box.MaxY; y++ {
		for x := box.MinX; x <= box.MaxX; x++ {
			if !b.IsEmpty(x, y) {
				continue
			}
			switch g.nearestStone(x, y) {
			case 1:
				g.ring1 = append(g.ring1, move.New(x, y))
			case 2:
				g.ring2 = append(g.ring2, move.New(x, y))
			}
		}
	}
	moves := make([]move.Move, 0, len(g.ring1)+len(g.ring2))
	moves = append(moves, g.ring1...)
	moves = append(moves, g.ring2...)
	if limit > 0 && len(moves) > limit {
		moves = moves[:limit]
	}
	return moves
}

// nearestStone returns the Chebyshev distance to the closest stone, or 0
// if there is none within NeighborRadius.
func (g *Generator) nearestStone(x, y int) int {
	best := 0
	for dy := -NeighborRadius; dy <= NeighborRadius; dy++ {
		for dx := -NeighborRadius; dx <= NeighborRadius; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			c, ok := g.board.GetOrOff(x+dx, y+dy)
			if !ok || c == board.Empty {
				continue
			}
			d := chebyshev(dx, dy)
			if d == 1 {
				return 1
			}
			if best == 0 || d < best {
				best = d
			}
		}
	}
	return best
}

func chebyshev(dx, dy int) int {
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return max(dx, dy)
}

// CenterBonus falls off linearly with the Chebyshev distance from the
// centre of the board.
func (g *Generator) CenterBonus(x, y int) int {
	cx, cy := g.board.Center()
	return max(0, centerBonusMax-chebyshev(x-cx, y-cy))
}

// QuickScore rates an empty cell for p: the shapes p would make there, the
// shapes it takes away from the opponent (weighted a little higher), and
// a pull towards the centre. Attack is local*3 + seq*2 and defence is
// local*3.5 + seq*2, kept in integers by doubling and halving.
func (g *Generator) QuickScore(x, y int, p board.Cell) int {
	b := g.board
	opp := board.Opponent(p)
	attack := board.Simulate(b, x, y, p, func() int {
		return 6*pattern.LocalPatternScore(b, x, y, p) + 4*pattern.SequenceScore(b, x, y, p)
	})
	defense := board.Simulate(b, x, y, opp, func() int {
		return 7*pattern.LocalPatternScore(b, x, y, opp) + 4*pattern.SequenceScore(b, x, y, opp)
	})
	score := (attack+defense)/2 + g.CenterBonus(x, y)
	if g.bias != nil {
		score += g.bias(b, x, y, p)
	}
	return score
}

// OrderedMoves returns at most breadth moves for p, best first. pv, if it
// is a legal move, always leads the list.
func (g *Generator) OrderedMoves(p board.Cell, pv move.Move, breadth int) []move.Move {
	if breadth <= 0 {
		breadth = DefaultBreadth
	}
	b := g.board
	pvLegal := !pv.IsNull() && b.IsLegal(pv.X, pv.Y)
	cands := g.CandidateMoves(g.candidateLimit)
	if pvLegal {
		cands = lo.Filter(cands, func(m move.Move, _ int) bool {
			return m != pv
		})
	}

	g.scored = g.scored[:0]
	for _, m := range cands {
		g.scored = append(g.scored, scoredMove{m: m, score: g.QuickScore(m.X, m.Y, p)})
	}
	sort.SliceStable(g.scored, func(i, j int) bool {
		return g.scored[i].score > g.scored[j].score
	})

	moves := make([]move.Move, 0, min(breadth, len(g.scored)+1))
	if pvLegal {
		moves = append(moves, pv)
	}
	for _, sm := range g.scored {
		if len(moves) >= breadth {
			break
		}
		moves = append(moves, sm.m)
	}
	return moves
}

// BestByQuickScore returns the highest scoring of moves for p, and its
// score. Ties go to the earlier move. Null if moves is empty.
func (g *Generator) BestByQuickScore(moves []move.Move, p board.Cell) (move.Move, int) {
	best := move.Null
	bestScore := 0
	for _, m := range moves {
		if !g.board.IsLegal(m.X, m.Y) {
			continue
		}
		s := g.QuickScore(m.X, m.Y, p)
		if best.IsNull() || s > bestScore {
			best, bestScore = m, s
		}
	}
	return best, bestScore
}

// Package negamax implements the time-bounded search: negamax with
// alpha-beta pruning, iterative deepening and a transposition table.
package negamax

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/gomoku/board"
	"github.com/domino14/gomoku/common"
	"github.com/domino14/gomoku/move"
	"github.com/domino14/gomoku/movegen"
	"github.com/domino14/gomoku/pattern"
	"github.com/domino14/gomoku/zobrist"
)

// thanks Wikipedia:
/*
function negamax(node, depth, α, β, color) is
    if depth = 0 or node is a terminal node then
        return color × the heuristic value of node

    childNodes := generateMoves(node)
    childNodes := orderMoves(childNodes)
    value := −∞
    foreach child in childNodes do
        value := max(value, −negamax(child, depth − 1, −β, −α, −color))
        α := max(α, value)
        if α ≥ β then
            break (* cut-off *)
    return value
(* Initial call for Player A's root node *)
negamax(rootNode, depth, −∞, +∞, 1)
**/

const (
	// WinScore is the value of a finished five, less one per ply it took.
	WinScore = 1_000_000_000
	// CertainWin is the threshold past which a score means a forced result.
	CertainWin = 100_000_000
	HugeNumber = WinScore + 1
	// MaxStaticEval bounds Evaluate below CertainWin.
	MaxStaticEval = CertainWin - 1
	// MaxDepthLimit fits the 6 depth bits of a table entry.
	MaxDepthLimit = depthMask
)

const (
	DefaultMaxDepth       = 6
	DefaultTimeBudget     = 700 * time.Millisecond
	DefaultEvalCandidates = 24
)

var (
	ErrNotInitialized = errors.New("solver was not initialized")
	ErrBadDepth       = errors.New("search depth out of range")
)

type Options struct {
	MaxDepth int
	// TimeBudget bounds one Solve call. Zero means only the context and
	// MaxDepth limit the search.
	TimeBudget         time.Duration
	Breadth            int
	EvalCandidates     int
	TTSizePowerOf2     int
	TTFractionOfMemory float64
}

func DefaultOptions() Options {
	return Options{
		MaxDepth:       DefaultMaxDepth,
		TimeBudget:     DefaultTimeBudget,
		Breadth:        movegen.DefaultBreadth,
		EvalCandidates: DefaultEvalCandidates,
		TTSizePowerOf2: DefaultTTSizePowerOf2,
	}
}

// Result is the outcome of a search. Move is Null if not even the first
// iteration finished, or if the board has no empty cell near the stones.
type Result struct {
	Move  move.Move
	Score int
	// Depth is the last fully searched depth.
	Depth int
	Nodes uint64
	PV    []move.Move
}

type Solver struct {
	board   *board.Board
	gen     *movegen.Generator
	zobrist *zobrist.Zobrist
	ttable  *TranspositionTable
	opts    Options

	solvingPlayer board.Cell
	// history is the stack of stones placed by the search; it is empty
	// whenever Solve returns.
	history []move.Move

	principalVariation common.PVLine
	bestPVValue        int
	completedDepth     int
	currentIDDepth     int

	nodes atomic.Uint64
}

// Init binds the solver to a board and its move generator. The
// transposition table is kept across calls to Init and cleared on every
// Solve.
func (s *Solver) Init(gen *movegen.Generator, z *zobrist.Zobrist, opts Options) error {
	b := gen.Board()
	if z == nil || z.BoardDim() != b.Dim() {
		z = &zobrist.Zobrist{}
		z.Initialize(b.Dim())
	}
	if opts.MaxDepth < 1 || opts.MaxDepth > MaxDepthLimit {
		return ErrBadDepth
	}
	if opts.Breadth <= 0 {
		opts.Breadth = movegen.DefaultBreadth
	}
	if opts.EvalCandidates <= 0 {
		opts.EvalCandidates = DefaultEvalCandidates
	}
	s.board = b
	s.gen = gen
	s.zobrist = z
	s.opts = opts
	if s.ttable == nil {
		s.ttable = &TranspositionTable{}
		s.ttable.SetSingleThreadedMode()
	}
	return nil
}

func (s *Solver) SetTranspositionTable(tt *TranspositionTable) {
	s.ttable = tt
}

func (s *Solver) TranspositionTable() *TranspositionTable {
	return s.ttable
}

// Evaluate scores the position for p: the tactical value p would get from
// the nearby cells, minus what the opponent would get, averaged over those
// cells. It is antisymmetric: Evaluate(p) == -Evaluate(Opponent(p)).
func (s *Solver) Evaluate(p board.Cell) int {
	b := s.board
	opp := board.Opponent(p)
	cells := s.gen.CandidateMoves(s.opts.EvalCandidates)
	if len(cells) == 0 {
		return 0
	}
	sum := 0
	for _, c := range cells {
		own := board.Simulate(b, c.X, c.Y, p, func() int {
			return pattern.TacticalScore(b, c.X, c.Y, p)
		})
		theirs := board.Simulate(b, c.X, c.Y, opp, func() int {
			return pattern.TacticalScore(b, c.X, c.Y, opp)
		})
		sum += own - theirs
	}
	// A static guess must never read as a proven result.
	return min(max(sum/len(cells), -MaxStaticEval), MaxStaticEval)
}

type childResult struct {
	value int
	err   error
}

func (s *Solver) negamax(ctx context.Context, posKey uint64, depth, α, β int,
	onTurn board.Cell, color int, pv *common.PVLine, root bool) (int, error) {

	if ctx.Err() != nil {
		return 0, ctx.Err()
	}
	if depth == 0 {
		return color * s.Evaluate(s.solvingPlayer), nil
	}
	dim := s.board.Dim()
	nodeKey := s.zobrist.Key(posKey, onTurn)
	alphaOrig := α
	hashMove := move.Null
	if root {
		hashMove = s.principalVariation.GetPVMove()
	} else {
		ttEntry := s.ttable.lookup(nodeKey)
		if ttEntry.valid() {
			hashMove = ttEntry.move().Move(dim)
			if int(ttEntry.depth()) >= depth {
				score := int(ttEntry.score)
				switch ttEntry.flag() {
				case TTExact:
					return score, nil
				case TTLower:
					α = max(α, score)
				case TTUpper:
					β = min(β, score)
				}
				if α >= β {
					return score, nil
				}
			}
		}
	}

	children := s.gen.OrderedMoves(onTurn, hashMove, s.opts.Breadth)
	if len(children) == 0 {
		return 0, nil
	}
	childPV := common.PVLine{}
	bestValue := -HugeNumber
	bestMove := move.Null
	for _, child := range children {
		s.nodes.Add(1)
		if pattern.IsWinAt(s.board, child.X, child.Y, onTurn) {
			// fastest win first: the score drops with every ply used.
			bestValue = WinScore - (len(s.history) + 1)
			bestMove = child
			childPV.Clear()
			pv.Update(child, childPV, bestValue)
			s.ttable.store(nodeKey, TableEntry{
				score:        int32(bestValue),
				flagAndDepth: TTExact<<6 + uint8(depth),
				play:         move.ToTiny(child, dim),
			})
			return bestValue, nil
		}
		childKey := s.zobrist.AddMove(posKey, child.X, child.Y, onTurn)
		res := board.Simulate(s.board, child.X, child.Y, onTurn, func() childResult {
			s.history = append(s.history, child)
			defer func() { s.history = s.history[:len(s.history)-1] }()
			v, err := s.negamax(ctx, childKey, depth-1, -β, -α, board.Opponent(onTurn), -color, &childPV, false)
			return childResult{v, err}
		})
		if res.err != nil {
			return 0, res.err
		}
		if -res.value > bestValue {
			bestValue = -res.value
			bestMove = child
			pv.Update(child, childPV, bestValue)
		}
		α = max(α, bestValue)
		if bestValue >= β {
			break // beta cut-off
		}
		childPV.Clear() // clear the child node's pv for the next child node
	}

	var flag uint8
	if bestValue <= alphaOrig {
		flag = TTUpper
	} else if bestValue >= β {
		flag = TTLower
	} else {
		flag = TTExact
	}
	s.ttable.store(nodeKey, TableEntry{
		score:        int32(bestValue),
		flagAndDepth: flag<<6 + uint8(depth),
		play:         move.ToTiny(bestMove, dim),
	})
	return bestValue, nil
}

func (s *Solver) iterativelyDeepen(ctx context.Context, onTurn board.Cell) error {
	posKey := s.zobrist.Hash(s.board)
	for p := 1; p <= s.opts.MaxDepth; p++ {
		log.Debug().Int("plies", p).Msg("deepening-iteratively")
		s.currentIDDepth = p
		pv := common.PVLine{}
		val, err := s.negamax(ctx, posKey, p, -HugeNumber, HugeNumber, onTurn, 1, &pv, true)
		if err != nil {
			// an unfinished pass is thrown away
			return err
		}
		s.principalVariation = pv.Copy()
		s.bestPVValue = val
		s.completedDepth = p
		log.Debug().Int("score", val).Int("ply", p).Str("pv", pv.NLBString()).Msg("best-val")
		if val >= CertainWin || val <= -CertainWin {
			break
		}
	}
	return nil
}

// Solve searches for onTurn's best move. Running out of time is not an
// error: the result of the last finished depth is returned.
func (s *Solver) Solve(ctx context.Context, onTurn board.Cell) (Result, error) {
	if s.board == nil {
		return Result{Move: move.Null}, ErrNotInitialized
	}
	if !onTurn.IsPlayer() {
		return Result{Move: move.Null}, board.ErrInvalidPlayer
	}
	tstart := time.Now()
	s.solvingPlayer = onTurn
	s.principalVariation = common.PVLine{}
	s.bestPVValue = 0
	s.completedDepth = 0
	s.history = s.history[:0]
	s.nodes.Store(0)
	s.ttable.Reset(s.opts.TTSizePowerOf2, s.opts.TTFractionOfMemory)

	if s.opts.TimeBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.TimeBudget)
		defer cancel()
	}

	g := &errgroup.Group{}
	done := make(chan bool)

	g.Go(func() error {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		var lastNodes uint64
		for {
			select {
			case <-done:
				return nil
			case <-ticker.C:
				nodes := s.nodes.Load()
				log.Debug().Uint64("nps", nodes-lastNodes).Msg("nodes-per-second")
				lastNodes = nodes
			}
		}
	})

	g.Go(func() error {
		err := s.iterativelyDeepen(ctx, onTurn)
		done <- true
		return err
	})

	err := g.Wait()
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		err = nil
	}
	created, lookups, hits, t2 := s.ttable.Stats()
	log.Debug().
		Uint64("ttable-created", created).
		Uint64("ttable-lookups", lookups).
		Uint64("ttable-hits", hits).
		Uint64("ttable-t2collisions", t2).
		Uint64("nodes", s.nodes.Load()).
		Int("depth", s.completedDepth).
		Float64("time-elapsed-sec", time.Since(tstart).Seconds()).
		Msg("solve-returning")

	return Result{
		Move:  s.principalVariation.GetPVMove(),
		Score: s.bestPVValue,
		Depth: s.completedDepth,
		Nodes: s.nodes.Load(),
		PV:    s.principalVariation.Moves,
	}, err
}

// HistoryLen is the number of stones the search currently has on the
// board. Outside of Solve it is always zero.
func (s *Solver) HistoryLen() int {
	return len(s.history)
}

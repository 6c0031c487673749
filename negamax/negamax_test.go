package negamax

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/gomoku/board"
	"github.com/domino14/gomoku/move"
	"github.com/domino14/gomoku/movegen"
	"github.com/domino14/gomoku/zobrist"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func setUpSolver(t *testing.T, b *board.Board, depth int, budget time.Duration) *Solver {
	t.Helper()
	gen := movegen.NewGenerator(b, 0, nil)
	z := &zobrist.Zobrist{}
	z.Initialize(b.Dim())
	s := &Solver{}
	opts := DefaultOptions()
	opts.MaxDepth = depth
	opts.TimeBudget = budget
	opts.TTSizePowerOf2 = 16
	if err := s.Init(gen, z, opts); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestInitErrors(t *testing.T) {
	is := is.New(t)
	b := board.FourOnRow.Board()
	gen := movegen.NewGenerator(b, 0, nil)
	s := &Solver{}
	_, err := s.Solve(context.Background(), board.PlayerA)
	is.Equal(err, ErrNotInitialized)

	opts := DefaultOptions()
	opts.MaxDepth = 0
	is.Equal(s.Init(gen, nil, opts), ErrBadDepth)
	opts.MaxDepth = 64
	is.Equal(s.Init(gen, nil, opts), ErrBadDepth)

	opts.MaxDepth = 2
	is.NoErr(s.Init(gen, nil, opts))
	_, err = s.Solve(context.Background(), board.Empty)
	is.Equal(err, board.ErrInvalidPlayer)
}

func TestEvaluateAntisymmetric(t *testing.T) {
	is := is.New(t)
	for _, sample := range []board.SamplePosition{
		board.FourOnRow, board.OpenThreeForO, board.CrossingTwos,
	} {
		b := sample.Board()
		before := b.Copy()
		s := setUpSolver(t, b, 2, 0)
		is.Equal(s.Evaluate(board.PlayerA), -s.Evaluate(board.PlayerB))
		is.True(b.Equals(before))
	}
	// X's four in a row is worth more to X than O's scattered stones.
	s := setUpSolver(t, board.FourOnRow.Board(), 2, 0)
	is.True(s.Evaluate(board.PlayerA) > 0)
}

func TestEvaluateStaysBelowCertainWin(t *testing.T) {
	is := is.New(t)
	b, err := board.FromRows([]string{
		"...........",
		".XXXXX.....",
		".X.........",
		".X...XXXXX.",
		".X.........",
		".X...X.X...",
		"......X....",
		".....X.X...",
		"...........",
		"...........",
		"...........",
	}, board.MaxWinLength)
	is.NoErr(err)
	s := setUpSolver(t, b, 2, 0)
	v := s.Evaluate(board.PlayerA)
	is.True(v > 0)
	is.True(v <= MaxStaticEval)
	is.Equal(s.Evaluate(board.PlayerB), -v)
}

func TestSolveImmediateWin(t *testing.T) {
	is := is.New(t)
	b := board.FourOnRow.Board()
	before := b.Copy()
	s := setUpSolver(t, b, 4, 0)
	res, err := s.Solve(context.Background(), board.PlayerA)
	is.NoErr(err)
	is.True(res.Move == move.New(6, 7) || res.Move == move.New(11, 7))
	is.Equal(res.Score, WinScore-1)
	is.Equal(res.Depth, 1)
	is.True(b.Equals(before))
	is.Equal(s.HistoryLen(), 0)
}

func TestSolveBlocksOpenFourLoss(t *testing.T) {
	is := is.New(t)
	// X has an open four and O is on turn: every O move loses in two.
	b := board.OpenFourForX.Board()
	s := setUpSolver(t, b, 3, 0)
	res, err := s.Solve(context.Background(), board.PlayerB)
	is.NoErr(err)
	is.Equal(res.Score, -(WinScore - 2))
	is.Equal(res.Depth, 2)
}

func TestDeepeningMonotonic(t *testing.T) {
	is := is.New(t)
	// X's open three becomes an open four, then five: a forced win at
	// the third ply.
	last := -HugeNumber
	for depth := 1; depth <= 5; depth++ {
		b := board.OpenThreeForX.Board()
		before := b.Copy()
		s := setUpSolver(t, b, depth, 0)
		res, err := s.Solve(context.Background(), board.PlayerA)
		is.NoErr(err)
		is.True(!res.Move.IsNull())
		is.True(b.IsEmpty(res.Move.X, res.Move.Y))
		is.True(b.Equals(before))
		if depth < 3 {
			is.True(res.Score < CertainWin)
			continue
		}
		is.Equal(res.Score, WinScore-3)
		is.Equal(res.Depth, 3)
		is.True(res.Score >= last)
		last = res.Score
		is.True(res.Move == move.New(5, 7) || res.Move == move.New(9, 7))
		is.Equal(len(res.PV), 3)
	}
}

func TestDeadlineKeepsLastDepth(t *testing.T) {
	is := is.New(t)
	b := board.CrossingTwos.Board()
	before := b.Copy()
	s := setUpSolver(t, b, MaxDepthLimit, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	res, err := s.Solve(ctx, board.PlayerA)
	is.NoErr(err)
	is.True(res.Depth < MaxDepthLimit)
	is.True(b.Equals(before))
	is.Equal(s.HistoryLen(), 0)
	if res.Depth > 0 {
		is.True(!res.Move.IsNull())
		is.True(b.IsEmpty(res.Move.X, res.Move.Y))
	}
}

func TestAlreadyCancelled(t *testing.T) {
	is := is.New(t)
	b := board.CrossingTwos.Board()
	s := setUpSolver(t, b, 4, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := s.Solve(ctx, board.PlayerA)
	is.NoErr(err)
	is.True(res.Move.IsNull())
	is.Equal(res.Depth, 0)
}

func TestFullBoardNoMove(t *testing.T) {
	is := is.New(t)
	b := board.MakeBoard(board.WinRule{Dim: 3, WinLength: 3})
	// X O X / X O O / O X X: full, nobody has three.
	is.NoErr(b.PlaceAll(board.PlayerA, [2]int{0, 0}, [2]int{2, 0}, [2]int{0, 1}, [2]int{1, 2}, [2]int{2, 2}))
	is.NoErr(b.PlaceAll(board.PlayerB, [2]int{1, 0}, [2]int{1, 1}, [2]int{2, 1}, [2]int{0, 2}))
	is.True(b.Full())
	s := setUpSolver(t, b, 3, 0)
	res, err := s.Solve(context.Background(), board.PlayerA)
	is.NoErr(err)
	is.True(res.Move.IsNull())
}

func TestTranspositionTableUsed(t *testing.T) {
	is := is.New(t)
	b := board.CrossingTwos.Board()
	s := setUpSolver(t, b, 3, 0)
	_, err := s.Solve(context.Background(), board.PlayerA)
	is.NoErr(err)
	created, lookups, _, _ := s.TranspositionTable().Stats()
	is.True(created > 0)
	is.True(lookups > 0)
}

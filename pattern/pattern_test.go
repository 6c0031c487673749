package pattern

import (
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/gomoku/board"
)

func parseTemplate(s string) uint32 {
	var bits uint32
	for i, ch := range s {
		if ch == 'X' {
			bits |= sX << (2 * i)
		}
	}
	return bits
}

func TestTemplatesMatchNames(t *testing.T) {
	is := is.New(t)
	for _, tpl := range append(append([]template{}, scoreTable...), openThreeTemplates...) {
		is.Equal(tpl.length, len(tpl.name))
		is.Equal(tpl.bits, parseTemplate(tpl.name))
	}
}

func TestWindowRoundTrip(t *testing.T) {
	is := is.New(t)
	for _, s := range []string{"_________", "WWX_X_X__", "O_XXX_O__", "XXXXXXXXX"} {
		is.Equal(ParseWindow(s).String(), s)
	}
}

func TestExtractWindow(t *testing.T) {
	is := is.New(t)
	b := board.FourOnRow.Board()
	w := ExtractWindow(b, 7, 7, board.Directions[0], board.PlayerA)
	is.Equal(w.String(), "____XXXX_")
	w = ExtractWindow(b, 7, 7, board.Directions[0], board.PlayerB)
	is.Equal(w.String(), "____OOOO_")
	w = ExtractWindow(b, 1, 1, board.Directions[2], board.PlayerA)
	is.Equal(w.String(), "WWW___O__")
}

func TestCountOpenThrees(t *testing.T) {
	is := is.New(t)
	cases := []struct {
		window string
		count  int
	}{
		{"__XXX____", 1},
		{"__X_XX___", 1},
		{"___XX_X__", 1},
		{"O_XXX_O__", 1},
		{"_OXXX____", 0},
		{"___X_____", 0},
		{"XXX______", 0},
		{"___X_X___", 0},
		// the three does not pass through the centre
		{"_XXX_____", 0},
		{"_XXX_XXX_", 0},
		{"WW_XXX_WW", 1},
		{"WWWWXXX_W", 0},
	}
	for _, c := range cases {
		is.Equal(CountOpenThrees(ParseWindow(c.window)), c.count) // window
	}
}

func TestCountOpenThreesAtCrossing(t *testing.T) {
	is := is.New(t)
	b := board.CrossingTwos.Board()
	n := board.Simulate(b, 7, 7, board.PlayerB, func() int {
		return CountOpenThreesAt(b, 7, 7, board.PlayerB)
	})
	is.Equal(n, 2)
	is.Equal(b.Get(7, 7), board.Empty)
	n = board.Simulate(b, 4, 7, board.PlayerB, func() int {
		return CountOpenThreesAt(b, 4, 7, board.PlayerB)
	})
	is.Equal(n, 1)
}

func TestScoreWindow(t *testing.T) {
	is := is.New(t)
	cases := []struct {
		window string
		score  int
	}{
		{"____XXXXX", ScoreFive},
		{"___XXXX__", ScoreOpenFour},
		{"__OXXXX__", ScoreClosedFour},
		{"___XXX___", ScoreOpenThree},
		{"__X_XX___", ScoreSplitFour},
		{"__OXXX__O", ScoreClosedThree},
		{"WWX_X_X__", ScoreGapThree},
		{"___XX____", ScoreOpenTwo},
		{"____X____", 0},
		{"OOOOXOOOO", 0},
	}
	for _, c := range cases {
		is.Equal(ScoreWindow(ParseWindow(c.window)), c.score) // window
	}
}

func TestRunOfLength(t *testing.T) {
	is := is.New(t)
	const k = 5
	for _, d := range board.Directions {
		for _, n := range []int{k, k - 1} {
			b := board.MakeBoard(board.DefaultWinRule)
			sx, sy := 40, 40
			for i := 0; i < n; i++ {
				is.NoErr(b.Place(sx+i*d.DX, sy+i*d.DY, board.PlayerA))
			}
			for i := 0; i < n; i++ {
				x, y := sx+i*d.DX, sy+i*d.DY
				is.True(IsRunOfLengthAt(b, x, y, board.PlayerA, n))
				is.Equal(IsRunOfLengthAt(b, x, y, board.PlayerA, k), n == k)
				is.Equal(IsWinAt(b, x, y, board.PlayerA), n == k)
				is.True(!IsWinAt(b, x, y, board.PlayerB))
			}
		}
	}
}

func TestFours(t *testing.T) {
	is := is.New(t)
	b := board.OpenFourForX.Board()
	is.True(IsOpenFour(b, 5, 7, board.PlayerA))
	is.True(IsFourThreat(b, 8, 7, board.PlayerA))
	is.Equal(CountFourThreatDirections(b, 6, 7, board.PlayerA), 1)

	is.NoErr(b.Place(4, 7, board.PlayerB))
	is.True(!IsOpenFour(b, 5, 7, board.PlayerA))
	is.True(IsFourThreat(b, 5, 7, board.PlayerA))

	is.NoErr(b.Place(9, 7, board.PlayerB))
	is.True(!IsFourThreat(b, 5, 7, board.PlayerA))

	// a four against the edge has only one flank to give
	e := board.MakeBoard(board.WinRule{Dim: 15, WinLength: 5})
	is.NoErr(e.PlaceAll(board.PlayerA, [2]int{0, 0}, [2]int{1, 0}, [2]int{2, 0}, [2]int{3, 0}))
	is.True(!IsOpenFour(e, 0, 0, board.PlayerA))
	is.True(IsFourThreat(e, 0, 0, board.PlayerA))
	r := RunThrough(e, 2, 0, board.Directions[0], board.PlayerA)
	is.Equal(r.Length, 4)
	is.True(!r.OpenLow)
	is.True(r.OpenHigh)
	is.Equal(r.OpenEnds(), 1)
	is.Equal([2]int{r.HighX, r.HighY}, [2]int{4, 0})
}

func TestSequenceScore(t *testing.T) {
	is := is.New(t)
	b := board.MakeBoard(board.DefaultWinRule)
	is.NoErr(b.Place(50, 50, board.PlayerA))
	// per direction: 2*(20+1000) + 3*(30+100) + 4*40 + 5*50
	is.Equal(SequenceScore(b, 50, 50, board.PlayerA), 4*2840)
	is.Equal(TacticalScore(b, 50, 50, board.PlayerA), 2*4*2840)
}

func TestCombinedThreatScore(t *testing.T) {
	is := is.New(t)
	b := board.CrossingTwos.Board()
	s := board.Simulate(b, 7, 7, board.PlayerB, func() int {
		return CombinedThreatScore(b, 7, 7, board.PlayerB)
	})
	is.Equal(s, 2)
}

package bot

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/gomoku/board"
	"github.com/domino14/gomoku/config"
	"github.com/domino14/gomoku/move"
	"github.com/domino14/gomoku/movegen"
	"github.com/domino14/gomoku/negamax"
	"github.com/domino14/gomoku/threats"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

func testBot(t *testing.T, tier string) *Bot {
	t.Helper()
	caps, err := Preset(tier)
	if err != nil {
		t.Fatal(err)
	}
	caps.TTSizePowerOf2 = 14
	caps.TimeBudget = 300 * time.Millisecond
	caps.MaxDepth = 3
	return NewBot(nil, caps)
}

func selectMove(t *testing.T, bot *Bot, b *board.Board, onTurn board.Cell) Decision {
	t.Helper()
	before := b.Copy()
	dec, err := bot.SelectMove(context.Background(), b, onTurn)
	if err != nil {
		t.Fatal(err)
	}
	if !b.Equals(before) {
		t.Fatal("board changed during move selection")
	}
	return dec
}

func TestCompletesFive(t *testing.T) {
	for _, tier := range []string{TierMedium, TierHard, TierLegendary, TierElite} {
		t.Run(tier, func(t *testing.T) {
			is := is.New(t)
			dec := selectMove(t, testBot(t, tier), board.FourOnRow.Board(), board.PlayerA)
			is.True(dec.Move == move.New(6, 7) || dec.Move == move.New(11, 7))
			is.Equal(dec.Rule, RuleWinNow)
		})
	}
}

func TestBlocksFive(t *testing.T) {
	for _, tier := range []string{TierMedium, TierHard, TierLegendary, TierElite} {
		t.Run(tier, func(t *testing.T) {
			is := is.New(t)
			dec := selectMove(t, testBot(t, tier), board.FourOnRow.Board(), board.PlayerB)
			is.True(dec.Move == move.New(6, 7) || dec.Move == move.New(11, 7))
			is.Equal(dec.Rule, RuleBlockWin)
		})
	}
}

func TestThreeIsNotAWin(t *testing.T) {
	is := is.New(t)
	dec := selectMove(t, testBot(t, TierElite), board.DiagonalThree.Board(), board.PlayerA)
	is.True(dec.Rule != RuleWinNow)
	is.True(dec.Rule != RuleBlockWin)
	// O's three has room on both sides, so either end is the fork square.
	is.Equal(dec.Rule, RuleBlockDualImmediate)
	is.True(dec.Move == move.New(4, 4) || dec.Move == move.New(8, 8))
}

func TestPreemptsFork(t *testing.T) {
	is := is.New(t)
	b := board.OpenThreeForO.Board()
	dec := selectMove(t, testBot(t, TierElite), b, board.PlayerA)
	is.NoErr(b.Place(dec.Move.X, dec.Move.Y, board.PlayerA))
	sc := threats.NewScanner(movegen.NewGenerator(b, 0, nil), 0)
	is.True(sc.FindDualImmediateThreat(board.PlayerB).IsNull())
}

func TestOpenFourIsConverted(t *testing.T) {
	is := is.New(t)
	dec := selectMove(t, testBot(t, TierElite), board.OpenFourForX.Board(), board.PlayerA)
	is.True(dec.Move == move.New(4, 7) || dec.Move == move.New(9, 7))
}

func TestBlocksDoubleThree(t *testing.T) {
	is := is.New(t)
	dec := selectMove(t, testBot(t, TierElite), board.CrossingTwos.Board(), board.PlayerA)
	is.Equal(dec.Move, move.New(7, 7))
	is.Equal(dec.Rule, RuleBlockDoubleThree)
}

func TestTierRules(t *testing.T) {
	is := is.New(t)
	dec := selectMove(t, testBot(t, TierMedium), board.OpenThreeForX.Board(), board.PlayerA)
	is.Equal(dec.Rule, RuleCreateFourThreat)
	is.Equal(dec.Move, move.New(5, 7))

	dec = selectMove(t, testBot(t, TierLegendary), board.OpenThreeForX.Board(), board.PlayerA)
	is.Equal(dec.Rule, RuleExtendOpenThree)
	is.Equal(dec.Move, move.New(5, 7))

	dec = selectMove(t, testBot(t, TierHard), board.OpenThreeForO.Board(), board.PlayerA)
	is.Equal(dec.Rule, RuleBlockFourThreat)
	is.Equal(dec.Move, move.New(5, 7))
}

func TestSearchRuns(t *testing.T) {
	is := is.New(t)
	b := board.MakeBoard(board.WinRule{Dim: 15, WinLength: 5})
	is.NoErr(b.Place(7, 7, board.PlayerA))
	bot := testBot(t, TierElite)
	caps := bot.Capabilities()
	caps.MaxDepth = 2
	caps.TimeBudget = 0
	bot.SetCapabilities(caps)
	dec := selectMove(t, bot, b, board.PlayerB)
	is.Equal(dec.Rule, RuleSearch)
	is.Equal(dec.Depth, 2)
	is.True(b.IsLegal(dec.Move.X, dec.Move.Y))
	is.True(len(dec.PV) > 0)
}

func TestEasyStaysNearStones(t *testing.T) {
	is := is.New(t)
	b := board.CrossingTwos.Board()
	gen := movegen.NewGenerator(b, 0, nil)
	allowed := map[move.Move]bool{}
	for _, m := range gen.CandidateMoves(15) {
		allowed[m] = true
	}
	bot := testBot(t, TierEasy)
	for i := 0; i < 20; i++ {
		dec := selectMove(t, bot, b, board.PlayerA)
		is.Equal(dec.Rule, RuleRandom)
		is.True(allowed[dec.Move])
	}
}

func TestEmptyBoardCenter(t *testing.T) {
	is := is.New(t)
	for _, tier := range Tiers() {
		dec := selectMove(t, testBot(t, tier), board.MakeBoard(board.DefaultWinRule), board.PlayerA)
		is.Equal(dec.Move, move.New(50, 50))
	}
}

func TestFullBoard(t *testing.T) {
	is := is.New(t)
	b := board.MakeBoard(board.WinRule{Dim: 3, WinLength: 3})
	is.NoErr(b.PlaceAll(board.PlayerA, [2]int{0, 0}, [2]int{2, 0}, [2]int{0, 1}, [2]int{1, 2}, [2]int{2, 2}))
	is.NoErr(b.PlaceAll(board.PlayerB, [2]int{1, 0}, [2]int{1, 1}, [2]int{2, 1}, [2]int{0, 2}))
	for _, tier := range Tiers() {
		dec, err := testBot(t, tier).SelectMove(context.Background(), b, board.PlayerB)
		is.NoErr(err)
		is.Equal(dec.Rule, RuleNoMove)
		is.True(dec.Move.IsNull())
	}
}

func TestBadInput(t *testing.T) {
	is := is.New(t)
	bot := testBot(t, TierElite)
	_, err := bot.SelectMove(context.Background(), board.FourOnRow.Board(), board.Empty)
	is.Equal(err, board.ErrInvalidPlayer)

	snap := board.FourOnRow.Board().Snapshot()
	snap.Rule.Dim = 19
	_, err = bot.SelectMoveFromSnapshot(context.Background(), snap, board.PlayerA)
	is.True(err != nil)

	snap = board.FourOnRow.Board().Snapshot()
	dec, err := bot.SelectMoveFromSnapshot(context.Background(), snap, board.PlayerA)
	is.NoErr(err)
	is.Equal(dec.Rule, RuleWinNow)
}

func TestPresets(t *testing.T) {
	is := is.New(t)
	_, err := Preset("grandmaster")
	is.Equal(err, ErrUnknownTier)
	for _, tier := range Tiers() {
		c, err := Preset(tier)
		is.NoErr(err)
		is.Equal(c.Name, tier)
		is.Equal(c.Searches(), tier == TierElite)
	}
	c, err := Preset("ELITE")
	is.NoErr(err)
	is.Equal(c.Rules[len(c.Rules)-1], RuleSearch)
	is.Equal(RuleBlockDualImmediate.String(), "block-dual-immediate")
	is.Equal(RuleMinimizeIntersections.String(), "minimize-intersections")
	is.Equal(Rule(999).String(), "unknown")

	c, err = Preset(TierLegendary)
	is.NoErr(err)
	is.Equal(c.Rules[len(c.Rules)-1], RuleMaximizeThrees)
}

func TestLegendaryForcingAttack(t *testing.T) {
	is := is.New(t)
	// two closed threes meet at (4,6): playing there leaves two winning
	// squares, (5,6) and (4,7)
	b, err := board.FromRows([]string{
		"..........",
		"..........",
		"....O.....",
		"....X.....",
		"....X.....",
		"....X.....",
		"OXXX......",
		"..........",
		"..........",
		"..........",
	}, 5)
	is.NoErr(err)
	dec := selectMove(t, testBot(t, TierLegendary), b, board.PlayerA)
	is.Equal(dec.Rule, RuleForcingAttack)
	is.Equal(dec.Move, move.New(4, 6))
}

func TestLegendaryQuietPosition(t *testing.T) {
	is := is.New(t)
	b := board.MakeBoard(board.WinRule{Dim: 15, WinLength: 5})
	is.NoErr(b.Place(7, 7, board.PlayerA))
	dec := selectMove(t, testBot(t, TierLegendary), b, board.PlayerB)
	// no tactics on either side, so the one-ply lookahead picks the move
	is.Equal(dec.Rule, RuleLookahead)
	is.True(max(abs(dec.Move.X-7), abs(dec.Move.Y-7)) <= movegen.NeighborRadius)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func TestNewBotFromConfig(t *testing.T) {
	is := is.New(t)
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigEngineTier, "hard")
	cfg.Set(config.ConfigMaxDepth, 4)
	cfg.Set(config.ConfigTimeBudget, 250*time.Millisecond)
	bot, err := NewBotFromConfig(cfg)
	is.NoErr(err)
	caps := bot.Capabilities()
	is.Equal(caps.Name, TierHard)
	is.Equal(caps.MaxDepth, 4)
	is.Equal(caps.TimeBudget, 250*time.Millisecond)
	is.Equal(caps.Breadth, 28)

	cfg.Set(config.ConfigEngineTier, "nope")
	_, err = NewBotFromConfig(cfg)
	is.True(err != nil)
}

func TestCapabilitiesRejectBadConfig(t *testing.T) {
	is := is.New(t)
	is.Equal(config.MaxSearchDepth, negamax.MaxDepthLimit)

	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigMaxDepth, 0)
	_, err := CapabilitiesFromConfig(cfg, TierElite)
	is.True(errors.Is(err, config.ErrBadValue))

	cfg.Set(config.ConfigMaxDepth, "abc")
	_, err = CapabilitiesFromConfig(cfg, TierElite)
	is.True(errors.Is(err, config.ErrBadValue))

	cfg.Set(config.ConfigMaxDepth, config.MaxSearchDepth)
	caps, err := CapabilitiesFromConfig(cfg, TierElite)
	is.NoErr(err)
	is.Equal(caps.MaxDepth, negamax.MaxDepthLimit)
}

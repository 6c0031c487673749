package shell

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/gomoku/board"
	"github.com/domino14/gomoku/bot"
	"github.com/domino14/gomoku/config"
	"github.com/domino14/gomoku/experience"
	"github.com/domino14/gomoku/game"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

func testController(t *testing.T) (*ShellController, *bytes.Buffer) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigBoardSize, 15)
	cfg.Set(config.ConfigTimeBudget, 100*time.Millisecond)
	cfg.Set(config.ConfigMaxDepth, 2)
	cfg.Set(config.ConfigTTSizePower, 12)
	cfg.Set(config.ConfigSelfplayLog, filepath.Join(t.TempDir(), "selfplay.csv"))
	var out bytes.Buffer
	sc, err := newController(cfg, &out)
	if err != nil {
		t.Fatal(err)
	}
	return sc, &out
}

func run(t *testing.T, sc *ShellController, line string) string {
	t.Helper()
	out, err := sc.ProcessLine(line)
	if err != nil {
		t.Fatalf("%s: %v", line, err)
	}
	return out
}

func TestExtractFields(t *testing.T) {
	is := is.New(t)
	type testdata struct {
		line   string
		expCmd *shellcmd
		expErr error
	}
	cases := []testdata{
		{"", nil, errNoData},
		{"autoplay -file /path/to/log.txt",
			&shellcmd{"autoplay", nil, CmdOptions{"file": {"/path/to/log.txt"}}},
			nil},
		{"autoplay stop",
			&shellcmd{"autoplay", []string{"stop"}, CmdOptions{}},
			nil},
		{"autoplay hard elite -games 10 ",
			&shellcmd{"autoplay",
				[]string{"hard", "elite"},
				CmdOptions{"games": {"10"}}},
			nil,
		},
		{"play -1 4",
			&shellcmd{"play", []string{"-1", "4"}, CmdOptions{}},
			nil},
		{`experience save "my file.yaml"`,
			&shellcmd{"experience", []string{"save", "my file.yaml"}, CmdOptions{}},
			nil},
		{"autoplay hard elite -games",
			nil, errWrongOptionSyntax},
	}
	for _, tc := range cases {
		cmd, err := extractFields(tc.line)
		is.Equal(cmd, tc.expCmd)
		is.Equal(err, tc.expErr)
	}
}

func TestNoGameYet(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)
	for _, line := range []string{"play 7 7", "go", "undo", "show", "threats", "candidates"} {
		_, err := sc.ProcessLine(line)
		is.True(errors.Is(err, errNoGame))
	}
}

func TestPlayAndUndo(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)
	run(t, sc, "new")
	is.Equal(sc.game.Board().Dim(), 15)
	run(t, sc, "play 7 7")
	run(t, sc, "play 8,8")
	is.Equal(sc.game.Board().Get(7, 7), board.PlayerA)
	is.Equal(sc.game.Board().Get(8, 8), board.PlayerB)

	_, err := sc.ProcessLine("play 7 7")
	is.True(errors.Is(err, board.ErrOccupied))

	out := run(t, sc, "show history")
	is.True(strings.Contains(out, "1: X (7,7)"))
	is.True(strings.Contains(out, "2: O (8,8)"))

	run(t, sc, "undo 2")
	is.Equal(sc.game.Turn(), 0)
	_, err = sc.ProcessLine("undo")
	is.True(errors.Is(err, game.ErrNothingToUndo))
}

func TestNewWithRule(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)
	run(t, sc, "new 9 4")
	is.Equal(sc.game.Board().Rule(), board.WinRule{Dim: 9, WinLength: 4})
	_, err := sc.ProcessLine("new 3 5")
	is.True(errors.Is(err, board.ErrInvalidRule))
}

func TestEngineFinishesFive(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)
	run(t, sc, "new")
	for _, line := range []string{
		"play 3 7", "play 3 9", "play 4 7", "play 4 9", "play 5 7", "play 5 9", "play 6 7", "play 0 0",
	} {
		run(t, sc, line)
	}
	out := run(t, sc, "go")
	is.True(strings.Contains(out, "by win-now"))
	is.Equal(sc.game.Winner(), board.PlayerA)
}

func TestEngineMovesSeveralTimes(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)
	run(t, sc, "tier hard")
	run(t, sc, "new")
	run(t, sc, "go -n 4")
	is.Equal(sc.game.Turn(), 4)
	// The first engine move on an empty board is the centre.
	is.Equal(sc.game.History()[0].Move.String(), "(7,7)")
}

func TestThreatsAndCandidates(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)
	run(t, sc, "new")
	for _, line := range []string{
		"play 3 7", "play 3 9", "play 4 7", "play 4 9", "play 5 7", "play 5 9",
	} {
		run(t, sc, line)
	}
	out := run(t, sc, "threats")
	// X to move holds an open three on row 7 and can make an open four.
	is.True(strings.Contains(out, "open fours:      (2,7) (6,7)"))

	out = run(t, sc, "candidates 3")
	is.Equal(strings.Count(out, "\n"), 4)
	is.Equal(sc.game.Turn(), 6)
}

func TestTierAndSet(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)
	out := run(t, sc, "tier")
	is.True(strings.Contains(out, "elite"))
	run(t, sc, "tier legendary")
	is.Equal(sc.bot.Capabilities().Name, bot.TierLegendary)
	_, err := sc.ProcessLine("tier grandmaster")
	is.True(errors.Is(err, bot.ErrUnknownTier))
	is.Equal(sc.config.GetString(config.ConfigEngineTier), bot.TierLegendary)

	run(t, sc, "set max-depth 3")
	is.Equal(sc.bot.Capabilities().MaxDepth, 3)
	run(t, sc, "set time-budget 50ms")
	is.Equal(sc.bot.Capabilities().TimeBudget, 50*time.Millisecond)
	_, err = sc.ProcessLine("set no-such-key 1")
	is.True(errors.Is(err, config.ErrUnknownKey))
}

func TestSetRejectsBadDepth(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)
	for _, line := range []string{"set max-depth 0", "set max-depth abc", "set time-budget 0s"} {
		_, err := sc.ProcessLine(line)
		is.True(errors.Is(err, config.ErrBadValue))
	}
	is.Equal(sc.bot.Capabilities().MaxDepth, 2)

	_, err := sc.ProcessLine("set engine-tier grandmaster")
	is.True(errors.Is(err, bot.ErrUnknownTier))
	is.Equal(sc.config.GetString(config.ConfigEngineTier), bot.TierElite)

	// the engine still moves afterwards
	run(t, sc, "tier elite")
	run(t, sc, "new")
	run(t, sc, "play 7 7")
	run(t, sc, "go")
	is.Equal(sc.game.Turn(), 2)
}

func TestExperienceCommands(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)
	path := filepath.Join(t.TempDir(), "exp.yaml")
	out := run(t, sc, "experience show")
	is.Equal(out, "no experience loaded")
	run(t, sc, "experience save "+path)
	out = run(t, sc, "experience load "+path)
	is.Equal(out, "loaded experience from 0 games")
	run(t, sc, "experience off")
	is.True(sc.store == nil)
}

func TestExperienceFileFromConfig(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "exp.yaml")
	is.NoErr(experience.New().Save(path))

	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigBoardSize, 15)
	cfg.Set(config.ConfigExperienceFile, path)
	var out bytes.Buffer
	sc, err := newController(cfg, &out)
	is.NoErr(err)
	is.True(sc.store != nil)
	is.Equal(run(t, sc, "experience show"), "games 0, wins [0 0], draws 0")

	cfg.Set(config.ConfigExperienceFile, filepath.Join(t.TempDir(), "bad.yaml"))
	is.NoErr(os.WriteFile(cfg.GetString(config.ConfigExperienceFile), []byte("center_buckets: [1, 2]\n"), 0o644))
	_, err = newController(cfg, &out)
	is.True(errors.Is(err, experience.ErrBadBuckets))
}

func TestAutoplaySync(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)
	out := run(t, sc, "autoplay hard medium -games 2 -threads 2 -sync true")
	is.True(strings.Contains(out, "Games played: 2"))
	_, err := sc.ProcessLine("autoplay stop")
	is.True(err != nil)
}

func TestAutoplayThenAnalyze(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)
	logfile := filepath.Join(t.TempDir(), "games.csv")
	run(t, sc, "autoplay hard medium -games 2 -threads 1 -sync true -file "+logfile)
	out := run(t, sc, "autoanalyze "+logfile)
	is.True(strings.Contains(out, "Games played: 2"))

	// Without an argument the configured log is read.
	run(t, sc, "autoplay easy -games 1 -threads 1 -sync true")
	out = run(t, sc, "autoanalyze")
	is.True(strings.Contains(out, "Games played: 1"))

	_, err := sc.ProcessLine("autoanalyze " + filepath.Join(t.TempDir(), "missing.csv"))
	is.True(err != nil)
}

func TestAutoplayBackground(t *testing.T) {
	is := is.New(t)
	sc, out := testController(t)
	run(t, sc, "autoplay hard -games 1000 -threads 1")
	is.True(sc.autoplaying())
	run(t, sc, "autoplay stop")
	is.True(!sc.autoplaying())
	is.True(strings.Contains(out.String(), "Games played:"))
}

func TestHelp(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)
	is.True(strings.Contains(run(t, sc, "help"), "autoplay"))
	is.True(strings.Contains(run(t, sc, "help tier"), "legendary"))
	_, err := sc.ProcessLine("help nothing")
	is.True(err != nil)
	_, err = sc.ProcessLine("exit")
	is.True(errors.Is(err, errQuit))
	_, err = sc.ProcessLine("frobnicate")
	is.True(err != nil)
}

func TestCompleter(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)
	c := NewShellCompleter(sc)
	matches, n := c.Do([]rune("ti"), 2)
	is.Equal(n, 2)
	is.Equal(matches, [][]rune{[]rune("er")})

	matches, n = c.Do([]rune("tier le"), 7)
	is.Equal(n, 2)
	is.Equal(matches, [][]rune{[]rune("gendary")})

	matches, _ = c.Do([]rune("autoplay -thr"), 13)
	is.Equal(matches, [][]rune{[]rune("eads")})
}

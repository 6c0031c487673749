package shell

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/gomoku/automatic"
	"github.com/domino14/gomoku/board"
	"github.com/domino14/gomoku/bot"
	"github.com/domino14/gomoku/config"
	"github.com/domino14/gomoku/experience"
	"github.com/domino14/gomoku/game"
	"github.com/domino14/gomoku/move"
	"github.com/domino14/gomoku/movegen"
	"github.com/domino14/gomoku/threats"
)

const defaultCandidatesShown = 10

type CmdOptions map[string][]string

func (c CmdOptions) String(key string) string {
	v := c[key]
	if len(v) > 0 {
		return v[0]
	}
	return ""
}

func (c CmdOptions) Int(key string) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return 0, errors.New(key + " not found in options")
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) IntDefault(key string, defaultI int) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultI, nil
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) Bool(key string) bool {
	v := c[key]
	if len(v) == 0 {
		return false
	}
	return strings.ToLower(v[0]) == "true"
}

func (sc *ShellController) newGame(cmd *shellcmd) (*Response, error) {
	rule := sc.ruleFromConfig()
	if len(cmd.args) > 0 {
		dim, err := strconv.Atoi(cmd.args[0])
		if err != nil {
			return nil, err
		}
		rule.Dim = dim
	}
	if len(cmd.args) > 1 {
		k, err := strconv.Atoi(cmd.args[1])
		if err != nil {
			return nil, err
		}
		rule.WinLength = k
	}
	g, err := game.NewGame(rule)
	if err != nil {
		return nil, err
	}
	sc.game = g
	log.Debug().Str("rule", rule.String()).Msg("new-game")
	return msg(sc.game.ToDisplayText()), nil
}

func (sc *ShellController) tier(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg(fmt.Sprintf("engine tier: %s (choices: %s)",
			sc.bot.Capabilities().Name, strings.Join(bot.Tiers(), ", "))), nil
	}
	if _, err := bot.Preset(cmd.args[0]); err != nil {
		return nil, fmt.Errorf("%w: %q", err, cmd.args[0])
	}
	if err := sc.config.SetFromString(config.ConfigEngineTier, cmd.args[0]); err != nil {
		return nil, err
	}
	if err := sc.rebuildBot(); err != nil {
		return nil, err
	}
	return msg("engine tier set to " + sc.bot.Capabilities().Name), nil
}

func (sc *ShellController) rebuildBot() error {
	caps, err := bot.CapabilitiesFromConfig(sc.config, sc.config.GetString(config.ConfigEngineTier))
	if err != nil {
		return err
	}
	sc.bot.SetCapabilities(caps)
	return nil
}

func parseCoords(args []string) (move.Move, error) {
	switch len(args) {
	case 1:
		return move.FromString(args[0])
	case 2:
		return move.FromString(args[0] + "," + args[1])
	}
	return move.Null, errors.New("usage: play <x> <y>")
}

func (sc *ShellController) play(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	m, err := parseCoords(cmd.args)
	if err != nil {
		return nil, err
	}
	if err := sc.game.PlayMove(m); err != nil {
		return nil, err
	}
	return msg(sc.game.ToDisplayText()), nil
}

// engineMove plays the engine's choice for the side on turn, -n times.
func (sc *ShellController) engineMove(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	n, err := cmd.options.IntDefault("n", 1)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	for i := 0; i < n && sc.game.Playing(); i++ {
		onTurn := sc.game.OnTurn()
		dec, err := sc.bot.SelectMove(context.Background(), sc.game.Board(), onTurn)
		if err != nil {
			return nil, err
		}
		if dec.Rule == bot.RuleNoMove {
			break
		}
		if err := sc.game.PlayMove(dec.Move); err != nil {
			return nil, err
		}
		fmt.Fprintf(&sb, "%c plays %s (%.3fs)\n", onTurn.Symbol(), dec, dec.Elapsed.Seconds())
		if len(dec.PV) > 1 {
			fmt.Fprintf(&sb, "  line: %s\n", strings.Join(lo.Map(dec.PV, func(m move.Move, _ int) string {
				return m.String()
			}), " "))
		}
	}
	sb.WriteString(sc.game.ToDisplayText())
	return msg(sb.String()), nil
}

func (sc *ShellController) undo(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	n := 1
	if len(cmd.args) > 0 {
		var err error
		if n, err = strconv.Atoi(cmd.args[0]); err != nil {
			return nil, err
		}
	}
	for i := 0; i < n; i++ {
		if err := sc.game.Undo(); err != nil {
			return nil, err
		}
	}
	return msg(sc.game.ToDisplayText()), nil
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	if len(cmd.args) > 0 && cmd.args[0] == "history" {
		h := sc.game.History()
		lines := lo.Map(h, func(p game.Placement, i int) string {
			return fmt.Sprintf("%3d: %s", i+1, p)
		})
		return msg(strings.Join(lines, "\n")), nil
	}
	return msg(sc.game.ToDisplayText()), nil
}

func (sc *ShellController) scanner() (*movegen.Generator, *threats.Scanner) {
	caps := sc.bot.Capabilities()
	gen := movegen.NewGenerator(sc.game.Board(), caps.CandidateLimit, nil)
	if sc.store != nil {
		gen.SetBias(sc.store.Bias)
	}
	return gen, threats.NewScanner(gen, caps.Margin)
}

func moveList(ms []move.Move) string {
	if len(ms) == 0 {
		return "-"
	}
	return strings.Join(lo.Map(ms, func(m move.Move, _ int) string { return m.String() }), " ")
}

func (sc *ShellController) threats(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	_, scan := sc.scanner()
	var sb strings.Builder
	for _, p := range []board.Cell{sc.game.OnTurn(), board.Opponent(sc.game.OnTurn())} {
		fmt.Fprintf(&sb, "%c:\n", p.Symbol())
		fmt.Fprintf(&sb, "  wins now:        %s\n", moveList(scan.ListAllImmediateWins(p)))
		fmt.Fprintf(&sb, "  open fours:      %s\n", moveList(scan.ListCreatesOpenFour(p)))
		fmt.Fprintf(&sb, "  four threats:    %s\n", moveList(scan.ListCreatesFourThreat(p)))
		fork := scan.FindDualImmediateThreat(p)
		if !fork.IsNull() {
			fmt.Fprintf(&sb, "  double win:      %s\n", fork)
		}
		if m := scan.FindCreatesDoubleOpenThree(p); !m.IsNull() {
			fmt.Fprintf(&sb, "  double three:    %s\n", m)
		}
	}
	return msg(sb.String()), nil
}

func (sc *ShellController) candidates(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	n := defaultCandidatesShown
	if len(cmd.args) > 0 {
		var err error
		if n, err = strconv.Atoi(cmd.args[0]); err != nil {
			return nil, err
		}
	}
	gen, _ := sc.scanner()
	onTurn := sc.game.OnTurn()
	var sb strings.Builder
	fmt.Fprintf(&sb, "     Move        Score\n")
	for i, m := range gen.OrderedMoves(onTurn, move.Null, n) {
		fmt.Fprintf(&sb, "%3d: %-12s%d\n", i+1, m, gen.QuickScore(m.X, m.Y, onTurn))
	}
	return msg(sb.String()), nil
}

func (sc *ShellController) autoplaying() bool {
	sc.autoplayMu.Lock()
	defer sc.autoplayMu.Unlock()
	return sc.autoplayCancel != nil
}

func (sc *ShellController) stopAutoplay() {
	sc.autoplayMu.Lock()
	cancel, done := sc.autoplayCancel, sc.autoplayDone
	sc.autoplayMu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// autoplay runs a self-play batch:
//
//	autoplay [tierA] [tierB] -games n -threads t -file f -opening k -seeds f -sync true
//	autoplay stop
func (sc *ShellController) autoplay(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 1 && cmd.args[0] == "stop" {
		if !sc.autoplaying() {
			return nil, errors.New("no automatic games are running")
		}
		sc.stopAutoplay()
		return msg("automatic games stopped"), nil
	}
	if sc.autoplaying() {
		return nil, errors.New("automatic games are already running; `autoplay stop` first")
	}
	opts := automatic.OptionsFromConfig(sc.config)
	if len(cmd.args) > 0 {
		opts.TierA, opts.TierB = cmd.args[0], cmd.args[0]
	}
	if len(cmd.args) > 1 {
		opts.TierB = cmd.args[1]
	}
	var err error
	if opts.Games, err = cmd.options.IntDefault("games", opts.Games); err != nil {
		return nil, err
	}
	if opts.Threads, err = cmd.options.IntDefault("threads", opts.Threads); err != nil {
		return nil, err
	}
	if opts.OpeningPlies, err = cmd.options.IntDefault("opening", opts.OpeningPlies); err != nil {
		return nil, err
	}
	if f := cmd.options.String("file"); f != "" {
		opts.LogFile = f
	}
	if f := cmd.options.String("seeds"); f != "" {
		if opts.Seeds, err = automatic.LoadSeeds(f); err != nil {
			return nil, err
		}
	}
	opts.Experience = sc.store

	if cmd.options.Bool("sync") {
		summary, err := automatic.StartCompVComp(context.Background(), sc.config, opts)
		if err != nil {
			return nil, err
		}
		return msg(summary.ToDisplayText()), nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	sc.autoplayMu.Lock()
	sc.autoplayCancel, sc.autoplayDone = cancel, done
	sc.autoplayMu.Unlock()
	go func() {
		defer close(done)
		summary, err := automatic.StartCompVComp(ctx, sc.config, opts)
		sc.autoplayMu.Lock()
		sc.autoplayCancel, sc.autoplayDone = nil, nil
		sc.autoplayMu.Unlock()
		cancel()
		if err != nil {
			sc.showError(err)
			return
		}
		sc.showMessage(summary.ToDisplayText())
	}()
	return msg(fmt.Sprintf("playing %d games in the background; log in %s", opts.Games, opts.LogFile)), nil
}

// autoAnalyze summarises a self-play log. Without a file it reads the
// configured selfplay-log.
func (sc *ShellController) autoAnalyze(cmd *shellcmd) (*Response, error) {
	filename := sc.config.GetString(config.ConfigSelfplayLog)
	if len(cmd.args) > 0 {
		filename = cmd.args[0]
	}
	if filename == "" {
		return nil, errors.New("please provide a filename to analyze")
	}
	analysis, err := automatic.AnalyzeLogFile(filename)
	if err != nil {
		return nil, err
	}
	return msg(analysis), nil
}

func (sc *ShellController) experience(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("usage: experience load|save <file>, experience show, experience off")
	}
	switch cmd.args[0] {
	case "load":
		if len(cmd.args) != 2 {
			return nil, errors.New("usage: experience load <file>")
		}
		store, err := experience.Load(cmd.args[1])
		if err != nil {
			return nil, err
		}
		sc.store = store
		sc.bot.SetBias(store.Bias)
		return msg(fmt.Sprintf("loaded experience from %d games", store.TotalGames())), nil
	case "save":
		if len(cmd.args) != 2 {
			return nil, errors.New("usage: experience save <file>")
		}
		if sc.store == nil {
			sc.store = experience.New()
		}
		if err := sc.store.Save(cmd.args[1]); err != nil {
			return nil, err
		}
		return msg("saved experience to " + cmd.args[1]), nil
	case "show":
		if sc.store == nil {
			return msg("no experience loaded"), nil
		}
		d := sc.store.Snapshot()
		return msg(fmt.Sprintf("games %d, wins %v, draws %d", d.TotalGames, d.Wins, d.Draws)), nil
	case "off":
		sc.store = nil
		sc.bot.SetBias(nil)
		return msg("experience bias removed"), nil
	}
	return nil, fmt.Errorf("unknown experience command %q", cmd.args[0])
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg(sc.config.ToDisplayText()), nil
	}
	key := cmd.args[0]
	if len(cmd.args) == 1 {
		return msg(fmt.Sprintf("%s %v", key, sc.config.Get(key))), nil
	}
	prev := sc.config.Get(key)
	if err := sc.config.SetFromString(key, cmd.args[1]); err != nil {
		return nil, err
	}
	if err := sc.rebuildBot(); err != nil {
		sc.config.Set(key, prev)
		return nil, err
	}
	return msg(fmt.Sprintf("set %s to %v", key, sc.config.Get(key))), nil
}

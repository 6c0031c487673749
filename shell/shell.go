package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/gomoku/board"
	"github.com/domino14/gomoku/bot"
	"github.com/domino14/gomoku/config"
	"github.com/domino14/gomoku/experience"
	"github.com/domino14/gomoku/game"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errNoGame            = errors.New("please start a game first with the `new` command")
)

type ShellController struct {
	l      *readline.Instance
	out    io.Writer
	config *config.Config

	game  *game.Game
	bot   *bot.Bot
	store *experience.Store

	autoplayMu     sync.Mutex
	autoplayCancel context.CancelFunc
	autoplayDone   chan struct{}
}

type Response struct {
	message string
}

func msg(message string) *Response {
	return &Response{message: message}
}

type shellcmd struct {
	cmd     string
	args    []string
	options CmdOptions
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

// NewShellController creates a controller attached to the terminal.
func NewShellController(cfg *config.Config) (*ShellController, error) {
	sc, err := newController(cfg, os.Stderr)
	if err != nil {
		return nil, err
	}
	sc.l, err = readline.NewEx(&readline.Config{
		Prompt:          "\033[34mgomoku>\033[0m ",
		HistoryFile:     "/tmp/gomoku_readline.tmp",
		AutoComplete:    NewShellCompleter(sc),
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return nil, err
	}
	sc.out = sc.l.Stderr()
	return sc, nil
}

// newController builds everything but the terminal, writing to out.
func newController(cfg *config.Config, out io.Writer) (*ShellController, error) {
	caps, err := bot.CapabilitiesFromConfig(cfg, cfg.GetString(config.ConfigEngineTier))
	if err != nil {
		return nil, err
	}
	b := bot.NewBot(cfg, caps)
	sc := &ShellController{out: out, config: cfg, bot: b}
	// The shell keeps the store itself so `experience` can show and save it.
	if fn := cfg.GetString(config.ConfigExperienceFile); fn != "" {
		sc.store, err = experience.Load(fn)
		if err != nil {
			return nil, err
		}
		b.SetBias(sc.store.Bias)
	}
	return sc, nil
}

func (sc *ShellController) showMessage(msg string) {
	showMessage(msg, sc.out)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

func (sc *ShellController) ruleFromConfig() board.WinRule {
	return board.WinRule{
		Dim:       sc.config.GetInt(config.ConfigBoardSize),
		WinLength: sc.config.GetInt(config.ConfigWinLength),
	}
}

// extractFields splits a line into a command, its positional arguments and
// its -options. Every option takes exactly one value; repeating an option
// collects all of its values.
func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := CmdOptions{}
	for i := 1; i < len(fields); i++ {
		if !strings.HasPrefix(fields[i], "-") || isNumber(fields[i]) {
			args = append(args, fields[i])
			continue
		}
		if i+1 >= len(fields) {
			return nil, errWrongOptionSyntax
		}
		opt := strings.TrimPrefix(fields[i], "-")
		options[opt] = append(options[opt], fields[i+1])
		i++
	}
	return &shellcmd{cmd: cmd, args: args, options: options}, nil
}

func isNumber(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

var errQuit = errors.New("quit")

func (sc *ShellController) dispatch(cmd *shellcmd) (*Response, error) {
	switch cmd.cmd {
	case "new":
		return sc.newGame(cmd)
	case "tier":
		return sc.tier(cmd)
	case "play", "p":
		return sc.play(cmd)
	case "go", "g":
		return sc.engineMove(cmd)
	case "undo", "u":
		return sc.undo(cmd)
	case "show", "s":
		return sc.show(cmd)
	case "threats":
		return sc.threats(cmd)
	case "candidates", "cands":
		return sc.candidates(cmd)
	case "autoplay":
		return sc.autoplay(cmd)
	case "autoanalyze":
		return sc.autoAnalyze(cmd)
	case "experience":
		return sc.experience(cmd)
	case "set":
		return sc.set(cmd)
	case "help":
		return sc.help(cmd)
	case "exit", "bye":
		return nil, errQuit
	}
	return nil, fmt.Errorf("command %q not found; try `help`", cmd.cmd)
}

// ProcessLine runs one command line and returns what it would print.
func (sc *ShellController) ProcessLine(line string) (string, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return "", err
	}
	resp, err := sc.dispatch(cmd)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", nil
	}
	return resp.message, nil
}

// Execute runs a single command, as when the program is given one on its
// command line. An exit command raises SIGINT.
func (sc *ShellController) Execute(sig chan os.Signal, line string) {
	out, err := sc.ProcessLine(line)
	switch {
	case errors.Is(err, errQuit):
		sig <- syscall.SIGINT
	case errors.Is(err, errNoData):
	case err != nil:
		sc.showError(err)
	case out != "":
		sc.showMessage(out)
	}
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()
	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			}
			continue
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		out, err := sc.ProcessLine(line)
		if errors.Is(err, errQuit) {
			sc.stopAutoplay()
			sig <- syscall.SIGINT
			break
		}
		if errors.Is(err, errNoData) {
			continue
		}
		if err != nil {
			sc.showError(err)
			continue
		}
		if out != "" {
			sc.showMessage(out)
		}
	}
	log.Debug().Msg("exiting-readline-loop")
}

// Cleanup stops any background self-play before the program exits.
func (sc *ShellController) Cleanup() {
	sc.stopAutoplay()
}

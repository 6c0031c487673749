// Package automatic plays engines against each other, for tuning tiers and
// for collecting experience data.
package automatic

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/domino14/gomoku/board"
	"github.com/domino14/gomoku/bot"
	"github.com/domino14/gomoku/config"
	"github.com/domino14/gomoku/experience"
	"github.com/domino14/gomoku/game"
	"github.com/domino14/gomoku/move"
	"github.com/domino14/gomoku/stats"
)

// openingRadius bounds the random opening placements around the centre.
const openingRadius = 2

// GameResult describes one finished game. Players holds the tier names of
// PlayerA and PlayerB, in that order.
type GameResult struct {
	ID          int
	Players     [board.NumPlayers]string
	Winner      board.Cell
	Moves       int
	Fingerprint uint64
	MoveTime    stats.Statistic
	Elapsed     time.Duration
	// Swapped is set when the runner's second bot played PlayerA.
	Swapped bool
	// Aborted is set if the context ended the game early.
	Aborted bool
}

// WinnerName is the winning tier, or "draw".
func (g GameResult) WinnerName() string {
	if !g.Winner.IsPlayer() {
		return "draw"
	}
	return g.Players[board.PlayerIndex(g.Winner)]
}

func (g GameResult) csvLine() string {
	return fmt.Sprintf("%d,%s,%s,%s,%c,%d,%016x,%.3f\n",
		g.ID, g.Players[0], g.Players[1], g.WinnerName(), g.Winner.Symbol(), g.Moves,
		g.Fingerprint, g.Elapsed.Seconds())
}

const csvHeader = "gameID,playerA,playerB,winner,winnerSymbol,moves,fingerprint,seconds\n"

// GameRunner is the master struct here for the automatic game logic. Each
// runner has its own bots, so runners can play in parallel.
type GameRunner struct {
	game     *game.Game
	rule     board.WinRule
	config   *config.Config
	bots     [board.NumPlayers]*bot.Bot
	logchan  chan string
	gamechan chan string
	store    *experience.Store

	openingPlies int
	rng          *frand.RNG
	gamesPlayed  int
	swapped      bool
}

// NewGameRunner creates a runner whose first bot plays PlayerA.
func NewGameRunner(logchan chan string, cfg *config.Config, capsA, capsB bot.Capabilities) (*GameRunner, error) {
	rule := board.WinRule{
		Dim:       cfg.GetInt(config.ConfigBoardSize),
		WinLength: cfg.GetInt(config.ConfigWinLength),
	}
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	return &GameRunner{
		rule:    rule,
		config:  cfg,
		bots:    [board.NumPlayers]*bot.Bot{bot.NewBot(cfg, capsA), bot.NewBot(cfg, capsB)},
		logchan: logchan,
	}, nil
}

// SetOpening makes each game start with the given number of random stones
// near the centre. A non-nil seed makes the openings reproducible.
func (r *GameRunner) SetOpening(plies int, seed *[32]byte) {
	r.openingPlies = plies
	r.rng = nil
	if seed != nil {
		r.rng = frand.NewCustom(seed[:], 1024, 12)
	}
}

// SetExperience makes the runner feed results into the store and use its
// bias for both bots.
func (r *GameRunner) SetExperience(s *experience.Store) {
	r.store = s
	for _, b := range r.bots {
		if s == nil {
			b.SetBias(nil)
		} else {
			b.SetBias(s.Bias)
		}
	}
}

// SetGameChan makes the runner send the final board of every game.
func (r *GameRunner) SetGameChan(c chan string) {
	r.gamechan = c
}

// SwapBots exchanges colours between the two bots.
func (r *GameRunner) SwapBots() {
	r.bots[0], r.bots[1] = r.bots[1], r.bots[0]
	r.swapped = !r.swapped
}

func (r *GameRunner) Game() *game.Game {
	return r.game
}

func (r *GameRunner) intn(n int) int {
	if r.rng != nil {
		return r.rng.Intn(n)
	}
	return frand.Intn(n)
}

func (r *GameRunner) playOpening() error {
	b := r.game.Board()
	cx, cy := b.Center()
	rad := min(openingRadius, cx, b.Dim()-1-cx)
	side := 2*rad + 1
	// At most half the square gets filled, so the retry loop ends quickly.
	plies := min(r.openingPlies, side*side/2)
	for i := 0; i < plies && r.game.Playing(); i++ {
		for {
			m := move.New(cx-rad+r.intn(side), cy-rad+r.intn(side))
			if !b.IsLegal(m.X, m.Y) {
				continue
			}
			if err := r.game.PlayMove(m); err != nil {
				return err
			}
			break
		}
	}
	return nil
}

// PlayGame plays a new game to the end. If ctx ends first, the partial
// result is returned with Aborted set, along with ctx's error.
func (r *GameRunner) PlayGame(ctx context.Context) (GameResult, error) {
	r.gamesPlayed++
	return r.play(ctx, r.gamesPlayed)
}

func (r *GameRunner) play(ctx context.Context, id int) (GameResult, error) {
	var err error
	r.game, err = game.NewGame(r.rule)
	if err != nil {
		return GameResult{}, err
	}
	res := GameResult{
		ID:      id,
		Swapped: r.swapped,
		Players: [board.NumPlayers]string{
			r.bots[0].Capabilities().Name, r.bots[1].Capabilities().Name,
		},
	}
	start := time.Now()
	if r.openingPlies > 0 {
		if err := r.playOpening(); err != nil {
			return res, err
		}
	}

	for r.game.Playing() {
		if err := ctx.Err(); err != nil {
			res.Aborted = true
			r.finish(&res, start)
			return res, err
		}
		onTurn := r.game.OnTurn()
		dec, err := r.bots[board.PlayerIndex(onTurn)].SelectMove(ctx, r.game.Board(), onTurn)
		if err != nil {
			return res, err
		}
		if dec.Rule == bot.RuleNoMove {
			break
		}
		if err := r.game.PlayMove(dec.Move); err != nil {
			return res, fmt.Errorf("%s played %s: %w", res.Players[board.PlayerIndex(onTurn)], dec, err)
		}
		res.MoveTime.Push(dec.Elapsed.Seconds())
		log.Trace().Int("turn", r.game.Turn()).Str("decision", dec.String()).Msg("selfplay-move")
	}
	r.finish(&res, start)

	if r.store != nil {
		if err := r.store.UpdateFromGame(r.rule, r.game.History(), res.Winner); err != nil {
			return res, err
		}
	}
	if r.logchan != nil {
		r.logchan <- res.csvLine()
	}
	if r.gamechan != nil {
		r.gamechan <- r.game.ToDisplayText()
	}
	log.Debug().Int("game", res.ID).Str("winner", res.WinnerName()).Int("moves", res.Moves).
		Msg("selfplay-game-over")
	return res, nil
}

func (r *GameRunner) finish(res *GameResult, start time.Time) {
	res.Winner = r.game.Winner()
	res.Moves = r.game.Turn()
	res.Fingerprint = r.game.Board().Fingerprint()
	res.Elapsed = time.Since(start)
}

package automatic

// Batches of computer vs computer games.

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/gomoku/board"
	"github.com/domino14/gomoku/bot"
	"github.com/domino14/gomoku/config"
	"github.com/domino14/gomoku/experience"
	"github.com/domino14/gomoku/stats"
)

var (
	CVCCounter *expvar.Int
	IsPlaying  *expvar.Int
)

var ErrAlreadyPlaying = errors.New("games are already being played, please wait till complete")

func init() {
	CVCCounter = expvar.NewInt("cvcCounter")
	IsPlaying = expvar.NewInt("isPlaying")
}

// Options describe a self-play batch.
type Options struct {
	Games   int
	Threads int
	// TierA plays PlayerA in odd-numbered games, TierB in the others if
	// AlternateColors is set.
	TierA, TierB    string
	AlternateColors bool
	// LogFile gets one CSV line per game. Empty disables it.
	LogFile      string
	OpeningPlies int
	// Seeds, if given, make the random openings reproducible. Game i uses
	// seed (i-1) mod len(Seeds).
	Seeds      [][32]byte
	Experience *experience.Store
}

// OptionsFromConfig fills in a batch from the selfplay-* keys. Both sides
// play the configured engine tier.
func OptionsFromConfig(cfg *config.Config) Options {
	tier := cfg.GetString(config.ConfigEngineTier)
	return Options{
		Games:           cfg.GetInt(config.ConfigSelfplayGames),
		Threads:         cfg.GetInt(config.ConfigSelfplayThreads),
		TierA:           tier,
		TierB:           tier,
		AlternateColors: true,
		LogFile:         cfg.GetString(config.ConfigSelfplayLog),
		OpeningPlies:    2,
	}
}

// Summary aggregates a batch. Wins are by side of the batch: index 0 is
// TierA whatever colour it played.
type Summary struct {
	Players         [board.NumPlayers]string
	Games           int
	Wins            [board.NumPlayers]int
	Draws           int
	FirstPlayerWins int
	GameLength      stats.Statistic
	MoveTime        stats.Statistic

	fingerprints []uint64
	lengths      []float64
}

func (s *Summary) add(res GameResult) {
	s.Games++
	if res.Winner.IsPlayer() {
		slot := board.PlayerIndex(res.Winner)
		if res.Swapped {
			slot = 1 - slot
		}
		s.Wins[slot]++
		if res.Winner == board.PlayerA {
			s.FirstPlayerWins++
		}
	} else {
		s.Draws++
	}
	s.GameLength.Push(float64(res.Moves))
	s.MoveTime.Merge(&res.MoveTime)
	s.fingerprints = append(s.fingerprints, res.Fingerprint)
	s.lengths = append(s.lengths, float64(res.Moves))
}

// DistinctBoards counts the different final positions reached.
func (s *Summary) DistinctBoards() int {
	return len(lo.Uniq(s.fingerprints))
}

func (s *Summary) ToDisplayText() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Games played: %d\n", s.Games)
	for i, name := range s.Players {
		rate, margin := stats.WinRate(s.Wins[i], s.Draws, s.Games, 95)
		fmt.Fprintf(&sb, "%s (side %d) wins: %d  score %.3f ± %.3f\n", name, i+1, s.Wins[i], rate, margin)
	}
	fmt.Fprintf(&sb, "Draws: %d\n", s.Draws)
	fmt.Fprintf(&sb, "First player wins: %d\n", s.FirstPlayerWins)
	fmt.Fprintf(&sb, "Distinct final boards: %d\n", s.DistinctBoards())
	fmt.Fprintf(&sb, "Game length: mean %.2f  stdev %.2f  min %.0f  max %.0f\n",
		s.GameLength.Mean(), s.GameLength.Stdev(), s.GameLength.Min(), s.GameLength.Max())
	fmt.Fprintf(&sb, "Seconds per move: mean %.4f  max %.4f\n", s.MoveTime.Mean(), s.MoveTime.Max())
	if hist, err := stats.Histogram(s.lengths, 10); err == nil && hist != "" {
		sb.WriteString("Game length histogram:\n")
		sb.WriteString(hist)
	}
	return sb.String()
}

// StartCompVComp plays a batch of games on opts.Threads goroutines and
// blocks until they are done. Cancelling ctx stops the batch early; the
// games finished so far are still summarised.
func StartCompVComp(ctx context.Context, cfg *config.Config, opts Options) (*Summary, error) {
	if IsPlaying.Value() > 0 {
		return nil, ErrAlreadyPlaying
	}
	capsA, err := bot.CapabilitiesFromConfig(cfg, opts.TierA)
	if err != nil {
		return nil, err
	}
	capsB, err := bot.CapabilitiesFromConfig(cfg, opts.TierB)
	if err != nil {
		return nil, err
	}
	threads := max(opts.Threads, 1)

	var logfile *os.File
	if opts.LogFile != "" {
		logfile, err = os.Create(opts.LogFile)
		if err != nil {
			return nil, err
		}
		defer logfile.Close()
	}
	log.Info().Int("games", opts.Games).Int("threads", threads).
		Str("tier-a", capsA.Name).Str("tier-b", capsB.Name).Msg("starting-selfplay")

	CVCCounter.Set(0)
	jobs := make(chan int, 100)
	results := make(chan GameResult, 100)
	logChan := make(chan string, 100)
	summary := &Summary{Players: [board.NumPlayers]string{capsA.Name, capsB.Name}}

	var sinks errgroup.Group
	sinks.Go(func() error {
		if logfile == nil {
			for range logChan {
			}
			return nil
		}
		// Keep draining after a failed write so workers never block on
		// logChan; the first error is reported once the batch is done.
		_, werr := logfile.WriteString(csvHeader)
		for msg := range logChan {
			if werr != nil {
				continue
			}
			_, werr = logfile.WriteString(msg)
		}
		if werr != nil {
			log.Error().Err(werr).Str("file", opts.LogFile).Msg("selfplay-log-write-failed")
		}
		return werr
	})
	sinks.Go(func() error {
		for res := range results {
			summary.add(res)
		}
		return nil
	})

	workers, wctx := errgroup.WithContext(ctx)
	workers.Go(func() error {
		defer close(jobs)
		for i := 1; i <= opts.Games; i++ {
			select {
			case jobs <- i:
			case <-wctx.Done():
				log.Info().Msg("got-stop-signal-exiting-soon")
				return nil
			}
		}
		log.Debug().Msg("finished-queueing-jobs")
		return nil
	})
	for t := 0; t < threads; t++ {
		workers.Go(func() error {
			r, err := NewGameRunner(logChan, cfg, capsA, capsB)
			if err != nil {
				return err
			}
			r.SetOpening(opts.OpeningPlies, nil)
			if opts.Experience != nil {
				r.SetExperience(opts.Experience)
			}
			IsPlaying.Add(1)
			defer IsPlaying.Add(-1)
			for id := range jobs {
				if opts.AlternateColors && r.swapped != (id%2 == 0) {
					r.SwapBots()
				}
				if len(opts.Seeds) > 0 {
					r.SetOpening(opts.OpeningPlies, &opts.Seeds[(id-1)%len(opts.Seeds)])
				}
				res, err := r.play(wctx, id)
				if err != nil {
					if wctx.Err() != nil {
						return nil
					}
					return err
				}
				CVCCounter.Add(1)
				results <- res
			}
			return nil
		})
	}

	werr := workers.Wait()
	close(logChan)
	close(results)
	if err := sinks.Wait(); err != nil {
		return summary, err
	}
	log.Info().Int("games", summary.Games).Msg("all-games-finished")
	return summary, werr
}

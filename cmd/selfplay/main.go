// selfplay runs a batch of engine-versus-engine games and prints a summary.
// Flags are the same configuration keys the shell accepts, e.g.
//
//	selfplay --engine-tier hard --selfplay-games 200 --experience-file exp.yaml
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/gomoku/automatic"
	"github.com/domino14/gomoku/config"
	"github.com/domino14/gomoku/experience"
)

func main() {
	cfg := config.DefaultConfig()
	if err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	level := zerolog.InfoLevel
	if cfg.GetBool(config.ConfigDebug) {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).With().Timestamp().Logger()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := automatic.OptionsFromConfig(cfg)
	expFile := cfg.GetString(config.ConfigExperienceFile)
	var store *experience.Store
	if expFile != "" {
		var err error
		store, err = experience.Load(expFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", expFile).Msg("loading experience")
		}
		opts.Experience = store
	}

	log.Info().Int("games", opts.Games).Int("threads", opts.Threads).
		Str("tier", opts.TierA).Str("log", opts.LogFile).Msg("selfplay-starting")

	summary, err := automatic.StartCompVComp(ctx, cfg, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("selfplay failed")
	}
	fmt.Println(summary.ToDisplayText())

	if store != nil {
		if err := store.Save(expFile); err != nil {
			log.Fatal().Err(err).Str("file", expFile).Msg("saving experience")
		}
		log.Info().Int("games", store.TotalGames()).Str("file", expFile).Msg("experience-saved")
	}
}

package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"strconv"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/domino14/gomoku/board"
)

const (
	ConfigBoardSize          = "board-size"
	ConfigWinLength          = "win-length"
	ConfigEngineTier         = "engine-tier"
	ConfigTimeBudget         = "time-budget"
	ConfigMaxDepth           = "max-depth"
	ConfigSearchBreadth      = "search-breadth"
	ConfigCandidateLimit     = "candidate-limit"
	ConfigEvalCandidates     = "eval-candidates"
	ConfigScanMargin         = "scan-margin"
	ConfigTTSizePower        = "tt-size-power"
	ConfigTTFractionOfMemory = "tt-fraction-of-memory"
	ConfigDebug              = "debug"
	ConfigExperienceFile     = "experience-file"
	ConfigSelfplayThreads    = "selfplay-threads"
	ConfigSelfplayGames      = "selfplay-games"
	ConfigSelfplayLog        = "selfplay-log"
	ConfigCPUProfile         = "cpu-profile"
)

// Config embeds a viper instance. Values come from, in increasing order of
// priority: defaults, a YAML config file, GOMOKU_* environment variables,
// and command-line flags.
type Config struct {
	viper.Viper
}

var (
	ErrUnknownKey = errors.New("unknown config key")
	ErrBadValue   = errors.New("bad config value")
)

// MaxSearchDepth is the deepest iterative deepening the search supports.
const MaxSearchDepth = 63

type defaultVal struct {
	key   string
	value any
	usage string
	// min and max bound numeric keys; durations are in seconds. Both zero
	// means unbounded.
	min, max float64
}

var defaults = []defaultVal{
	{ConfigBoardSize, 100, "side of the square board", board.MinWinLength, board.MaxDim},
	{ConfigWinLength, 5, "stones in a row needed to win", board.MinWinLength, board.MaxWinLength},
	{ConfigEngineTier, "elite", "engine tier: easy, medium, hard, legendary or elite", 0, 0},
	{ConfigTimeBudget, 700 * time.Millisecond, "wall-clock budget for one engine move", 0.001, 3600},
	{ConfigMaxDepth, 6, "iterative deepening depth cap", 1, MaxSearchDepth},
	{ConfigSearchBreadth, 28, "moves searched per node", 1, 1000},
	{ConfigCandidateLimit, 48, "candidate moves scored per node before truncation to the breadth", 1, 10000},
	{ConfigEvalCandidates, 24, "cells averaged by the static evaluator", 1, 10000},
	{ConfigScanMargin, 6, "bounding-box margin for threat scans", 0, board.MaxDim},
	{ConfigTTSizePower, 20, "transposition table holds 2^n entries (0 for the default)", 0, 30},
	{ConfigTTFractionOfMemory, 0.05, "cap on the transposition table as a fraction of system memory (0 for none)", 0, 1},
	{ConfigDebug, false, "debug logging", 0, 0},
	{ConfigExperienceFile, "", "YAML file with the optional move-ordering bias", 0, 0},
	{ConfigSelfplayThreads, 4, "concurrent self-play games", 1, 1024},
	{ConfigSelfplayGames, 100, "games per self-play run", 1, 100_000_000},
	{ConfigSelfplayLog, "/tmp/gomoku_selfplay.csv", "per-game CSV log for self-play", 0, 0},
	{ConfigCPUProfile, "", "write a CPU profile to this file", 0, 0},
}

func (d defaultVal) checkRange(v float64) error {
	if d.min == 0 && d.max == 0 {
		return nil
	}
	if v < d.min || v > d.max {
		return fmt.Errorf("%w: %s must be between %v and %v, got %v", ErrBadValue, d.key, d.min, d.max, v)
	}
	return nil
}

// DefaultConfig returns a configuration with only defaults set. It is
// mostly meant for tests.
func DefaultConfig() *Config {
	c := &Config{Viper: *viper.New()}
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	for _, d := range defaults {
		c.SetDefault(d.key, d.value)
	}
}

// Load reads configuration from the environment, an optional config file
// (--config), and the given command-line arguments.
func (c *Config) Load(args []string) error {
	c.Viper = *viper.New()
	c.setDefaults()

	fs := pflag.NewFlagSet("gomoku", pflag.ContinueOnError)
	configFile := fs.String("config", "", "YAML config file")
	for _, d := range defaults {
		switch v := d.value.(type) {
		case int:
			fs.Int(d.key, v, d.usage)
		case bool:
			fs.Bool(d.key, v, d.usage)
		case float64:
			fs.Float64(d.key, v, d.usage)
		case time.Duration:
			fs.Duration(d.key, v, d.usage)
		case string:
			fs.String(d.key, v, d.usage)
		}
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	c.SetEnvPrefix("gomoku")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	if *configFile != "" {
		c.SetConfigFile(*configFile)
		c.SetConfigType("yaml")
		if err := c.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file: %w", err)
		}
	}
	// Only flags that were actually given override the other sources.
	var bindErr error
	fs.Visit(func(f *pflag.Flag) {
		if f.Name == "config" {
			return
		}
		if err := c.BindPFlag(f.Name, f); err != nil {
			bindErr = err
		}
	})
	if bindErr != nil {
		return bindErr
	}
	return c.Validate()
}

// SetFromString changes a known key from a string, as typed in the shell.
// The value must parse as the key's type and lie in its range; otherwise
// the setting is left alone.
func (c *Config) SetFromString(key, value string) error {
	for _, d := range defaults {
		if d.key != key {
			continue
		}
		var v any
		var num float64
		switch d.value.(type) {
		case int:
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrBadValue, key, err)
			}
			v, num = n, float64(n)
		case float64:
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrBadValue, key, err)
			}
			v, num = f, f
		case bool:
			bv, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrBadValue, key, err)
			}
			v = bv
		case time.Duration:
			dur, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrBadValue, key, err)
			}
			v, num = dur, dur.Seconds()
		default:
			v = value
		}
		if err := d.checkRange(num); err != nil {
			return err
		}
		c.Set(key, v)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

// Validate checks every numeric key against its range, whichever source
// the value came from.
func (c *Config) Validate() error {
	for _, d := range defaults {
		var num float64
		switch d.value.(type) {
		case int:
			n, err := cast.ToIntE(c.Get(d.key))
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrBadValue, d.key, err)
			}
			num = float64(n)
		case float64:
			f, err := cast.ToFloat64E(c.Get(d.key))
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrBadValue, d.key, err)
			}
			num = f
		case time.Duration:
			dur, err := cast.ToDurationE(c.Get(d.key))
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrBadValue, d.key, err)
			}
			num = dur.Seconds()
		default:
			continue
		}
		if err := d.checkRange(num); err != nil {
			return err
		}
	}
	return nil
}

// SanitizedSettings returns all settings, for logging.
func (c *Config) SanitizedSettings() map[string]any {
	return c.AllSettings()
}

// ToDisplayText lists every known key and its current value.
func (c *Config) ToDisplayText() string {
	keys := make([]string, 0, len(defaults))
	for _, d := range defaults {
		keys = append(keys, d.key)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%-24s %v\n", k, c.Get(k))
	}
	return sb.String()
}

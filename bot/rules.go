package bot

import (
	"errors"
	"strings"
	"time"

	"github.com/domino14/gomoku/movegen"
	"github.com/domino14/gomoku/negamax"
	"github.com/domino14/gomoku/threats"
)

// Rule is one step of the decision chain.
type Rule int

const (
	RuleNoMove Rule = iota
	RuleWinNow
	RuleBlockWin
	RuleBlockDualImmediate
	RuleNeutralizeFours
	RuleBlockFourThreat
	RuleBlockOpenFour
	RuleBlockDoubleThree
	RuleCreateDoubleThree
	RuleExtendOpenThree
	RuleBlockDualFour
	RuleCreateOpenFour
	RuleBlockCombined
	RuleBlockOpenThree
	RuleBlockSemiFour
	RuleCreateFourThreat
	RuleForcingAttack
	RuleMinimizeIntersections
	RuleOverloadCounter
	RuleLookahead
	RuleMaximizeThrees
	RuleSearch
	RuleHeuristic
	RuleRandom
	RuleCenter
)

var ruleNames = map[Rule]string{
	RuleNoMove:             "no-move",
	RuleWinNow:             "win-now",
	RuleBlockWin:           "block-win",
	RuleBlockDualImmediate: "block-dual-immediate",
	RuleNeutralizeFours:    "neutralize-fours",
	RuleBlockFourThreat:    "block-four-threat",
	RuleBlockOpenFour:      "block-open-four",
	RuleBlockDoubleThree:   "block-double-three",
	RuleCreateDoubleThree:  "create-double-three",
	RuleExtendOpenThree:    "extend-open-three",
	RuleBlockDualFour:      "block-dual-four",
	RuleCreateOpenFour:     "create-open-four",
	RuleBlockCombined:      "block-combined",
	RuleBlockOpenThree:     "block-open-three",
	RuleBlockSemiFour:      "block-semi-four",
	RuleCreateFourThreat:   "create-four-threat",
	RuleForcingAttack:      "forcing-attack",
	RuleSearch:             "search",
	RuleHeuristic:          "heuristic",
	RuleRandom:             "random",
	RuleCenter:             "center",

	RuleMinimizeIntersections: "minimize-intersections",
	RuleOverloadCounter:       "overload-counter",
	RuleLookahead:             "lookahead",
	RuleMaximizeThrees:        "maximize-threes",
}

func (r Rule) String() string {
	if s, ok := ruleNames[r]; ok {
		return s
	}
	return "unknown"
}

const (
	TierEasy      = "easy"
	TierMedium    = "medium"
	TierHard      = "hard"
	TierLegendary = "legendary"
	TierElite     = "elite"
)

var ErrUnknownTier = errors.New("unknown engine tier")

// Capabilities is everything that tells engine tiers apart: which rules
// run, in which order, what happens when none fires, and the search knobs.
type Capabilities struct {
	Name  string
	Rules []Rule
	// Fallback is RuleHeuristic or RuleRandom.
	Fallback           Rule
	FallbackCandidates int

	MaxDepth           int
	TimeBudget         time.Duration
	Breadth            int
	CandidateLimit     int
	EvalCandidates     int
	Margin             int
	TTSizePowerOf2     int
	TTFractionOfMemory float64
}

func (c Capabilities) searchOptions() negamax.Options {
	return negamax.Options{
		MaxDepth:           c.MaxDepth,
		TimeBudget:         c.TimeBudget,
		Breadth:            c.Breadth,
		EvalCandidates:     c.EvalCandidates,
		TTSizePowerOf2:     c.TTSizePowerOf2,
		TTFractionOfMemory: c.TTFractionOfMemory,
	}
}

// Searches reports whether the tier runs the negamax search.
func (c Capabilities) Searches() bool {
	for _, r := range c.Rules {
		if r == RuleSearch {
			return true
		}
	}
	return false
}

func base(name string) Capabilities {
	return Capabilities{
		Name:               name,
		Fallback:           RuleHeuristic,
		FallbackCandidates: 20,
		MaxDepth:           negamax.DefaultMaxDepth,
		TimeBudget:         negamax.DefaultTimeBudget,
		Breadth:            movegen.DefaultBreadth,
		CandidateLimit:     movegen.DefaultCandidateLimit,
		EvalCandidates:     negamax.DefaultEvalCandidates,
		Margin:             threats.DefaultMargin,
		TTSizePowerOf2:     negamax.DefaultTTSizePowerOf2,
	}
}

// Preset returns the capabilities of a named tier.
func Preset(tier string) (Capabilities, error) {
	c := base(strings.ToLower(tier))
	switch c.Name {
	case TierEasy:
		c.Fallback = RuleRandom
		c.FallbackCandidates = 15
	case TierMedium:
		c.Rules = []Rule{RuleWinNow, RuleBlockWin, RuleCreateFourThreat}
		c.FallbackCandidates = 25
	case TierHard:
		c.Rules = []Rule{RuleWinNow, RuleBlockWin, RuleBlockFourThreat, RuleBlockOpenFour}
		c.FallbackCandidates = 25
	case TierLegendary:
		c.Rules = []Rule{
			RuleWinNow, RuleBlockWin, RuleExtendOpenThree, RuleBlockDualImmediate,
			RuleBlockDualFour, RuleCreateOpenFour, RuleForcingAttack, RuleBlockCombined,
			RuleMinimizeIntersections, RuleOverloadCounter, RuleBlockOpenThree,
			RuleBlockSemiFour, RuleBlockDoubleThree, RuleLookahead, RuleMaximizeThrees,
		}
		c.FallbackCandidates = 30
	case TierElite:
		c.Rules = []Rule{
			RuleWinNow, RuleBlockWin, RuleBlockDualImmediate, RuleNeutralizeFours,
			RuleBlockFourThreat, RuleBlockOpenFour, RuleBlockDoubleThree,
			RuleCreateDoubleThree, RuleSearch,
		}
	default:
		return Capabilities{}, ErrUnknownTier
	}
	return c, nil
}

// Tiers lists the preset names, weakest first.
func Tiers() []string {
	return []string{TierEasy, TierMedium, TierHard, TierLegendary, TierElite}
}

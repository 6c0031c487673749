// Package bot picks a move for one side of a five-in-a-row position by
// running a tier's rule chain, then its search or fallback.
package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/domino14/gomoku/board"
	"github.com/domino14/gomoku/config"
	"github.com/domino14/gomoku/experience"
	"github.com/domino14/gomoku/move"
	"github.com/domino14/gomoku/movegen"
	"github.com/domino14/gomoku/negamax"
	"github.com/domino14/gomoku/threats"
	"github.com/domino14/gomoku/zobrist"
)

var ErrIllegalDecision = errors.New("engine chose an occupied or off-board cell")

// Decision is the engine's answer. Move is move.Null only with RuleNoMove,
// when the board is full.
type Decision struct {
	Move    move.Move
	Rule    Rule
	Score   int
	Depth   int
	Nodes   uint64
	PV      []move.Move
	Elapsed time.Duration
}

func (d Decision) String() string {
	s := fmt.Sprintf("%s by %s", d.Move, d.Rule)
	if d.Rule == RuleSearch {
		s += fmt.Sprintf(" (score %d, depth %d, nodes %d)", d.Score, d.Depth, d.Nodes)
	}
	return s
}

type Bot struct {
	config *config.Config
	caps   Capabilities
	bias   movegen.BiasFunc
	solver negamax.Solver
}

// NewBot creates an engine with the given capabilities. cfg may be nil.
func NewBot(cfg *config.Config, caps Capabilities) *Bot {
	return &Bot{config: cfg, caps: caps}
}

// CapabilitiesFromConfig returns the named preset with its search knobs
// taken from the config.
func CapabilitiesFromConfig(cfg *config.Config, tier string) (Capabilities, error) {
	caps, err := Preset(tier)
	if err != nil {
		return caps, fmt.Errorf("%w: %q", err, tier)
	}
	if err := cfg.Validate(); err != nil {
		return caps, err
	}
	caps.MaxDepth = cfg.GetInt(config.ConfigMaxDepth)
	caps.TimeBudget = cfg.GetDuration(config.ConfigTimeBudget)
	caps.Breadth = cfg.GetInt(config.ConfigSearchBreadth)
	caps.CandidateLimit = cfg.GetInt(config.ConfigCandidateLimit)
	caps.EvalCandidates = cfg.GetInt(config.ConfigEvalCandidates)
	caps.Margin = cfg.GetInt(config.ConfigScanMargin)
	caps.TTSizePowerOf2 = cfg.GetInt(config.ConfigTTSizePower)
	caps.TTFractionOfMemory = cfg.GetFloat64(config.ConfigTTFractionOfMemory)
	return caps, nil
}

// NewBotFromConfig picks the preset named by engine-tier, takes the search
// knobs from the config and loads the experience bias if a file is set.
func NewBotFromConfig(cfg *config.Config) (*Bot, error) {
	caps, err := CapabilitiesFromConfig(cfg, cfg.GetString(config.ConfigEngineTier))
	if err != nil {
		return nil, err
	}
	bot := NewBot(cfg, caps)
	if fn := cfg.GetString(config.ConfigExperienceFile); fn != "" {
		store, err := experience.Load(fn)
		if err != nil {
			return nil, err
		}
		bot.SetBias(store.Bias)
	}
	return bot, nil
}

func (bot *Bot) Capabilities() Capabilities {
	return bot.caps
}

func (bot *Bot) SetCapabilities(caps Capabilities) {
	bot.caps = caps
}

// SetBias installs a move-ordering bias. nil removes it.
func (bot *Bot) SetBias(bias movegen.BiasFunc) {
	bot.bias = bias
}

func (bot *Bot) zobristFor(dim int) *zobrist.Zobrist {
	z, err := zobrist.Get(bot.config, dim)
	if err != nil {
		log.Err(err).Msg("zobrist-cache")
		return nil
	}
	return z
}

// SelectMoveFromSnapshot validates a snapshot, then selects a move on a
// board built from it.
func (bot *Bot) SelectMoveFromSnapshot(ctx context.Context, snap board.Snapshot, onTurn board.Cell) (Decision, error) {
	b, err := board.FromSnapshot(snap)
	if err != nil {
		return Decision{Move: move.Null}, err
	}
	return bot.SelectMove(ctx, b, onTurn)
}

// SelectMove returns onTurn's move. The board is used as scratch space
// during the call but is left exactly as it was found.
func (bot *Bot) SelectMove(ctx context.Context, b *board.Board, onTurn board.Cell) (Decision, error) {
	if !onTurn.IsPlayer() {
		return Decision{Move: move.Null}, board.ErrInvalidPlayer
	}
	start := time.Now()
	if b.Full() {
		return Decision{Move: move.Null, Rule: RuleNoMove}, nil
	}
	gen := movegen.NewGenerator(b, bot.caps.CandidateLimit, bot.bias)
	sc := threats.NewScanner(gen, bot.caps.Margin)

	dec, err := bot.decide(ctx, b, gen, sc, onTurn)
	if err != nil {
		return Decision{Move: move.Null}, err
	}
	dec.Elapsed = time.Since(start)
	if dec.Rule != RuleNoMove && !b.IsLegal(dec.Move.X, dec.Move.Y) {
		return Decision{Move: move.Null}, fmt.Errorf("%w: %s by %s", ErrIllegalDecision, dec.Move, dec.Rule)
	}
	log.Debug().
		Str("tier", bot.caps.Name).
		Str("move", dec.Move.String()).
		Str("rule", dec.Rule.String()).
		Int("score", dec.Score).
		Int("depth", dec.Depth).
		Dur("elapsed", dec.Elapsed).
		Msg("move-selected")
	return dec, nil
}

func (bot *Bot) decide(ctx context.Context, b *board.Board, gen *movegen.Generator,
	sc *threats.Scanner, onTurn board.Cell) (Decision, error) {

	rc := &ruleContext{sc: sc, self: onTurn, opp: board.Opponent(onTurn)}
	for _, r := range bot.caps.Rules {
		if r == RuleSearch {
			dec, err := bot.search(ctx, gen, onTurn)
			if err != nil {
				return Decision{}, err
			}
			if !dec.Move.IsNull() {
				return dec, nil
			}
			continue
		}
		if m := rc.apply(r); !m.IsNull() {
			return Decision{Move: m, Rule: r}, nil
		}
	}
	return bot.fallback(b, gen, onTurn), nil
}

// ruleContext carries one decision's scanner and sides. The positional
// analysis is computed at most once, by the first rule that asks for it.
type ruleContext struct {
	sc        *threats.Scanner
	self, opp board.Cell
	analysis  *threats.Analysis
}

func (rc *ruleContext) analyze() threats.Analysis {
	if rc.analysis == nil {
		a := rc.sc.Analyze(rc.self, rc.opp)
		rc.analysis = &a
	}
	return *rc.analysis
}

func (rc *ruleContext) apply(r Rule) move.Move {
	sc, self, opp := rc.sc, rc.self, rc.opp
	switch r {
	case RuleWinNow:
		return sc.FindImmediateWin(self)
	case RuleBlockWin:
		return sc.FindImmediateWin(opp)
	case RuleBlockDualImmediate:
		return sc.FindDualImmediateThreat(opp)
	case RuleNeutralizeFours:
		return sc.NeutralizeMultipleFourThreats(opp, self)
	case RuleBlockFourThreat:
		return sc.FindCreatesFourThreat(opp)
	case RuleBlockOpenFour:
		return sc.FindCreatesOpenFour(opp)
	case RuleBlockDoubleThree:
		return sc.FindCreatesDoubleOpenThree(opp)
	case RuleCreateDoubleThree:
		return sc.FindCreatesDoubleOpenThree(self)
	case RuleExtendOpenThree:
		return sc.ExtendOpenThree(self)
	case RuleBlockDualFour:
		return sc.FindCreatesDualFourThreat(opp)
	case RuleCreateOpenFour:
		return sc.FindCreatesOpenFour(self)
	case RuleBlockCombined:
		return sc.FindCombinedThreatBlock(opp)
	case RuleBlockOpenThree:
		return sc.FindOpenThreeBlock(opp)
	case RuleBlockSemiFour:
		return sc.FindSemiFourBlock(opp)
	case RuleCreateFourThreat:
		return sc.FindCreatesFourThreat(self)
	case RuleForcingAttack:
		if rc.analyze().Mode() == threats.ModeNormal {
			return sc.FindDualImmediateThreat(self)
		}
		return sc.FindForcingThreat(self)
	case RuleMinimizeIntersections:
		return sc.MinimizeCriticalIntersections(self, opp)
	case RuleOverloadCounter:
		if !rc.analyze().OverloadRisk {
			return move.Null
		}
		if m := sc.FindForcingThreat(self); !m.IsNull() {
			return m
		}
		return sc.ExtendOpenThree(self)
	case RuleLookahead:
		if rc.analyze().Mode() == threats.ModeForcing {
			return move.Null
		}
		return sc.LookaheadSteer(self, opp)
	case RuleMaximizeThrees:
		return sc.MaximizeOpenThrees(self)
	}
	return move.Null
}

func (bot *Bot) search(ctx context.Context, gen *movegen.Generator, onTurn board.Cell) (Decision, error) {
	z := bot.zobristFor(gen.Board().Dim())
	if err := bot.solver.Init(gen, z, bot.caps.searchOptions()); err != nil {
		return Decision{}, err
	}
	res, err := bot.solver.Solve(ctx, onTurn)
	if err != nil {
		return Decision{}, err
	}
	return Decision{
		Move:  res.Move,
		Rule:  RuleSearch,
		Score: res.Score,
		Depth: res.Depth,
		Nodes: res.Nodes,
		PV:    res.PV,
	}, nil
}

func (bot *Bot) fallback(b *board.Board, gen *movegen.Generator, onTurn board.Cell) Decision {
	cands := gen.CandidateMoves(bot.caps.FallbackCandidates)
	if len(cands) > 0 {
		if bot.caps.Fallback == RuleRandom {
			return Decision{Move: cands[frand.Intn(len(cands))], Rule: RuleRandom}
		}
		m, score := gen.BestByQuickScore(cands, onTurn)
		if !m.IsNull() {
			return Decision{Move: m, Rule: RuleHeuristic, Score: score}
		}
	}
	cx, cy := b.Center()
	if b.IsEmpty(cx, cy) {
		return Decision{Move: move.New(cx, cy), Rule: RuleCenter}
	}
	// Only possible if no empty cell is near a stone: take any.
	for y := 0; y < b.Dim(); y++ {
		for x := 0; x < b.Dim(); x++ {
			if b.IsEmpty(x, y) {
				return Decision{Move: move.New(x, y), Rule: RuleCenter}
			}
		}
	}
	return Decision{Move: move.Null, Rule: RuleNoMove}
}

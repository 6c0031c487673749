// Package experience keeps a small table of placement preferences gathered
// from finished games. It does no learning of its own: callers feed it game
// results and it hands back a bias that move ordering can add to its scores.
package experience

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/domino14/gomoku/board"
	"github.com/domino14/gomoku/game"
)

const (
	NumCenterBuckets    = 51
	NumProximityBuckets = 11

	centerWeight    = 0.5
	proximityWeight = 0.7

	winnerReward = 1.0
	loserPenalty = -0.7

	// DefaultScale turns the fractional bias into quick-score units.
	DefaultScale = 10
)

var ErrBadBuckets = errors.New("experience file has the wrong number of buckets")

// Data is the persisted form of a Store.
type Data struct {
	CenterBuckets    []float64 `yaml:"center_buckets"`
	ProximityBuckets []float64 `yaml:"proximity_buckets"`
	TotalGames       int       `yaml:"total_games"`
	// Wins are indexed by board.PlayerIndex.
	Wins  [board.NumPlayers]int `yaml:"wins"`
	Draws int                   `yaml:"draws"`
}

// Store is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	data  Data
	scale float64
}

func New() *Store {
	return &Store{
		data: Data{
			CenterBuckets:    make([]float64, NumCenterBuckets),
			ProximityBuckets: make([]float64, NumProximityBuckets),
		},
		scale: DefaultScale,
	}
}

// SetScale changes the multiplier applied by Bias.
func (s *Store) SetScale(scale float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scale = scale
}

func centerBucket(b *board.Board, x, y int) int {
	cx, cy := b.Center()
	d := max(abs(x-cx), abs(y-cy))
	return min(d, NumCenterBuckets-1)
}

// proximityBucket is the Chebyshev distance from (x, y) to the nearest stone
// of p, capped at the last bucket. Only the cap-sized square around the cell
// is looked at.
func proximityBucket(b *board.Board, x, y int, p board.Cell) int {
	limit := NumProximityBuckets - 1
	for r := 1; r < limit; r++ {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if max(abs(dx), abs(dy)) != r {
					continue
				}
				if c, ok := b.GetOrOff(x+dx, y+dy); ok && c == p {
					return r
				}
			}
		}
	}
	return limit
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Bias matches the movegen.BiasFunc signature.
func (s *Store) Bias(b *board.Board, x, y int, p board.Cell) int {
	cb := centerBucket(b, x, y)
	pb := proximityBucket(b, x, y, p)
	s.mu.RLock()
	defer s.mu.RUnlock()
	v := centerWeight*s.data.CenterBuckets[cb] + proximityWeight*s.data.ProximityBuckets[pb]
	return int(math.Round(v * s.scale))
}

// UpdateFromGame credits every placement of the winner and debits every
// placement of the loser. A drawn game only bumps the counters. The game is
// replayed on a scratch board so each placement is bucketed against the
// stones that were there when it was played.
func (s *Store) UpdateFromGame(rule board.WinRule, history []game.Placement, winner board.Cell) error {
	b, err := board.NewBoard(rule)
	if err != nil {
		return err
	}
	type delta struct{ cb, pb int }
	deltas := make([]delta, 0, len(history))
	for _, pl := range history {
		deltas = append(deltas, delta{centerBucket(b, pl.X, pl.Y), proximityBucket(b, pl.X, pl.Y, pl.Player)})
		if err := b.Place(pl.X, pl.Y, pl.Player); err != nil {
			return fmt.Errorf("replaying %s: %w", pl, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.TotalGames++
	if !winner.IsPlayer() {
		s.data.Draws++
		return nil
	}
	s.data.Wins[board.PlayerIndex(winner)]++
	for i, pl := range history {
		r := loserPenalty
		if pl.Player == winner {
			r = winnerReward
		}
		s.data.CenterBuckets[deltas[i].cb] += r
		s.data.ProximityBuckets[deltas[i].pb] += r
	}
	return nil
}

// Snapshot returns a copy of the store contents.
func (s *Store) Snapshot() Data {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d := s.data
	d.CenterBuckets = append([]float64(nil), s.data.CenterBuckets...)
	d.ProximityBuckets = append([]float64(nil), s.data.ProximityBuckets...)
	return d
}

func (s *Store) TotalGames() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.TotalGames
}

// Load reads a store from a YAML file. A missing file gives an empty store.
func Load(path string) (*Store, error) {
	s := New()
	bts, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Info().Str("file", path).Msg("experience-file-not-found-starting-empty")
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	var d Data
	if err := yaml.Unmarshal(bts, &d); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(d.CenterBuckets) != NumCenterBuckets || len(d.ProximityBuckets) != NumProximityBuckets {
		return nil, fmt.Errorf("%w: %s", ErrBadBuckets, path)
	}
	s.data = d
	log.Debug().Str("file", path).Int("games", d.TotalGames).Msg("experience-loaded")
	return s, nil
}

// Save writes the store to a YAML file.
func (s *Store) Save(path string) error {
	bts, err := yaml.Marshal(s.Snapshot())
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, bts, 0o644); err != nil {
		return err
	}
	log.Debug().Str("file", path).Msg("experience-saved")
	return nil
}

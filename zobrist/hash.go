package zobrist

import (
	"fmt"

	"lukechampine.com/frand"

	"github.com/domino14/gomoku/board"
	"github.com/domino14/gomoku/cache"
	"github.com/domino14/gomoku/config"
)

const bignum = 1<<63 - 2

// Zobrist holds the random keys for hashing a five-in-a-row position.
// https://en.wikipedia.org/wiki/Zobrist_hashing
type Zobrist struct {
	// posTable[cell][player index]
	posTable [][2]uint64
	// sideToMove salts a position key with whoever is on turn.
	sideToMove [2]uint64

	boardDim int
}

func (z *Zobrist) Initialize(boardDim int) {
	z.boardDim = boardDim
	z.posTable = make([][2]uint64, boardDim*boardDim)
	for i := range z.posTable {
		for j := 0; j < 2; j++ {
			z.posTable[i][j] = frand.Uint64n(bignum) + 1
		}
	}
	for j := 0; j < 2; j++ {
		z.sideToMove[j] = frand.Uint64n(bignum) + 1
	}
}

func (z *Zobrist) BoardDim() int {
	return z.boardDim
}

// Hash computes the key of every stone on the board from scratch.
func (z *Zobrist) Hash(b *board.Board) uint64 {
	key := uint64(0)
	b.Stones(func(x, y int, p board.Cell) {
		key ^= z.posTable[y*z.boardDim+x][board.PlayerIndex(p)]
	})
	return key
}

// Stone returns the key of a single stone. XOR it into a position key to
// add the stone, and XOR it again to take it away.
func (z *Zobrist) Stone(x, y int, p board.Cell) uint64 {
	return z.posTable[y*z.boardDim+x][board.PlayerIndex(p)]
}

// AddMove returns the key after p plays at (x, y).
func (z *Zobrist) AddMove(key uint64, x, y int, p board.Cell) uint64 {
	return key ^ z.Stone(x, y, p)
}

// Key salts a position key with the side to move. This is the value the
// transposition table is indexed by.
func (z *Zobrist) Key(posKey uint64, onTurn board.Cell) uint64 {
	return posKey ^ z.sideToMove[board.PlayerIndex(onTurn)]
}

// Get returns a shared table for the given board size. Tables are read-only
// after creation, so one instance can serve any number of engines.
func Get(cfg *config.Config, boardDim int) (*Zobrist, error) {
	key := fmt.Sprintf("zobrist-%d", boardDim)
	obj, err := cache.Load(cfg, key, func(*config.Config, string) (any, error) {
		z := &Zobrist{}
		z.Initialize(boardDim)
		return z, nil
	})
	if err != nil {
		return nil, err
	}
	return obj.(*Zobrist), nil
}

// Package game keeps the record of a single game: the board, whose turn it
// is, the moves played so far and the result. Engines and humans play a game
// from outside this package; a Game only enforces the rules.
package game

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/domino14/gomoku/board"
	"github.com/domino14/gomoku/move"
	"github.com/domino14/gomoku/pattern"
)

var (
	ErrGameOver      = errors.New("the game is over")
	ErrNothingToUndo = errors.New("there are no moves to undo")
	ErrNullMove      = errors.New("cannot play a null move")
)

// PlayState is the status of a game.
type PlayState int

const (
	StatePlaying PlayState = iota
	StateWon
	StateDrawn
)

func (s PlayState) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StateWon:
		return "won"
	case StateDrawn:
		return "drawn"
	}
	return "unknown"
}

// Placement is one entry of the game history.
type Placement struct {
	move.Move
	Player board.Cell
}

func (p Placement) String() string {
	return fmt.Sprintf("%c %s", p.Player.Symbol(), p.Move)
}

// Game is the internal game structure. Player A always moves first.
type Game struct {
	board   *board.Board
	onturn  board.Cell
	history []Placement
	winner  board.Cell
	state   PlayState
}

// NewGame creates an empty game on a fresh board.
func NewGame(rule board.WinRule) (*Game, error) {
	b, err := board.NewBoard(rule)
	if err != nil {
		return nil, err
	}
	return &Game{board: b, onturn: board.PlayerA}, nil
}

// NewFromBoard starts a game from an arbitrary position. The position has no
// history, so Undo cannot go behind it.
func NewFromBoard(b *board.Board, onturn board.Cell) (*Game, error) {
	if !onturn.IsPlayer() {
		return nil, board.ErrInvalidPlayer
	}
	g := &Game{board: b.Copy(), onturn: onturn}
	g.state, g.winner = scanResult(g.board)
	return g, nil
}

func scanResult(b *board.Board) (PlayState, board.Cell) {
	state, winner := StatePlaying, board.Empty
	b.Stones(func(x, y int, p board.Cell) {
		if winner == board.Empty && pattern.MaxRunAt(b, x, y, p) >= b.WinLength() {
			state, winner = StateWon, p
		}
	})
	if state == StatePlaying && b.Full() {
		state = StateDrawn
	}
	return state, winner
}

// PlayMove places a stone for the player on turn and passes the turn.
func (g *Game) PlayMove(m move.Move) error {
	if g.state != StatePlaying {
		return ErrGameOver
	}
	if m.IsNull() {
		return ErrNullMove
	}
	// The win has to be checked against the empty cell.
	wins := g.board.IsLegal(m.X, m.Y) && pattern.IsWinAt(g.board, m.X, m.Y, g.onturn)
	if err := g.board.Place(m.X, m.Y, g.onturn); err != nil {
		return fmt.Errorf("playing %s: %w", m, err)
	}
	g.history = append(g.history, Placement{Move: m, Player: g.onturn})
	switch {
	case wins:
		g.state, g.winner = StateWon, g.onturn
		log.Debug().Str("winner", g.onturn.String()).Int("turn", len(g.history)).Msg("game-won")
	case g.board.Full():
		g.state = StateDrawn
		log.Debug().Int("turn", len(g.history)).Msg("game-drawn")
	}
	g.onturn = board.Opponent(g.onturn)
	return nil
}

// Undo takes back the last move.
func (g *Game) Undo() error {
	if len(g.history) == 0 {
		return ErrNothingToUndo
	}
	last := g.history[len(g.history)-1]
	g.history = g.history[:len(g.history)-1]
	g.board.Remove(last.X, last.Y)
	g.onturn = last.Player
	g.state, g.winner = StatePlaying, board.Empty
	return nil
}

func (g *Game) Playing() bool {
	return g.state == StatePlaying
}

func (g *Game) State() PlayState {
	return g.state
}

// Winner returns board.Empty while the game is running or when it was drawn.
func (g *Game) Winner() board.Cell {
	return g.winner
}

// History returns a copy of the moves played so far.
func (g *Game) History() []Placement {
	h := make([]Placement, len(g.history))
	copy(h, g.history)
	return h
}

// Board returns the live board. Callers must not modify it.
func (g *Game) Board() *board.Board {
	return g.board
}

func (g *Game) OnTurn() board.Cell {
	return g.onturn
}

func (g *Game) Turn() int {
	return len(g.history)
}

func (g *Game) LastMove() move.Move {
	if len(g.history) == 0 {
		return move.Null
	}
	return g.history[len(g.history)-1].Move
}

// Copy returns a deep copy of the game.
func (g *Game) Copy() *Game {
	return &Game{
		board:   g.board.Copy(),
		onturn:  g.onturn,
		history: g.History(),
		winner:  g.winner,
		state:   g.state,
	}
}

// ToDisplayText renders the board followed by a status line.
func (g *Game) ToDisplayText() string {
	var sb strings.Builder
	sb.WriteString(g.board.ToDisplayText())
	fmt.Fprintf(&sb, "Rule: %s. Turn %d. ", g.board.Rule(), len(g.history))
	switch g.state {
	case StateWon:
		fmt.Fprintf(&sb, "%c wins.", g.winner.Symbol())
	case StateDrawn:
		sb.WriteString("Drawn.")
	default:
		fmt.Fprintf(&sb, "%c to move.", g.onturn.Symbol())
		if !g.LastMove().IsNull() {
			fmt.Fprintf(&sb, " Last move %s.", g.LastMove())
		}
	}
	sb.WriteString("\n")
	return sb.String()
}

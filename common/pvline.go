package common

import (
	"fmt"
	"strings"

	"github.com/domino14/gomoku/board"
	"github.com/domino14/gomoku/move"
)

// PVLine is the principal variation: the line of best play found so far,
// starting with the side that was on turn at the root.
// Credit: MIT-licensed https://github.com/algerbrex/blunder/blob/main/engine/search.go
type PVLine struct {
	Moves []move.Move
	score int
}

// Clear the principal variation line.
func (pvLine *PVLine) Clear() {
	pvLine.Moves = pvLine.Moves[:0]
}

// Update the principal variation line with a new best move,
// and a new line of best play after the best move.
func (pvLine *PVLine) Update(m move.Move, newPVLine PVLine, score int) {
	pvLine.Clear()
	pvLine.Moves = append(pvLine.Moves, m)
	pvLine.Moves = append(pvLine.Moves, newPVLine.Moves...)
	pvLine.score = score
}

// GetPVMove returns the best move, or move.Null for an empty line.
func (pvLine *PVLine) GetPVMove() move.Move {
	if len(pvLine.Moves) == 0 {
		return move.Null
	}
	return pvLine.Moves[0]
}

func (pvLine PVLine) Score() int {
	return pvLine.score
}

// Copy returns a line that does not share storage with this one.
func (pvLine PVLine) Copy() PVLine {
	return PVLine{Moves: append([]move.Move(nil), pvLine.Moves...), score: pvLine.score}
}

// String lists the line one move per row, naming the player of each move
// when first is the side on turn at the root.
func (pvLine PVLine) String(first board.Cell) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "PV; val %d\n", pvLine.score)
	p := first
	for i, m := range pvLine.Moves {
		fmt.Fprintf(&sb, "%d: %c %s\n", i+1, p.Symbol(), m)
		p = board.Opponent(p)
	}
	return sb.String()
}

func (pvLine PVLine) NLBString() string {
	// no line breaks
	var sb strings.Builder
	fmt.Fprintf(&sb, "PV; val %d; ", pvLine.score)
	for i, m := range pvLine.Moves {
		fmt.Fprintf(&sb, "%d: %s; ", i+1, m)
	}
	return sb.String()
}

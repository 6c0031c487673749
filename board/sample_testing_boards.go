package board

// This file contains some sample positions on a 15x15 board, used solely
// for testing. X is PlayerA and O is PlayerB; in every sample it is X's turn.

import "strings"

// SamplePosition is a plain-text board, one row per line.
type SamplePosition string

const (
	// FourOnRow: X has (7,7) through (10,7). O never blocked.
	FourOnRow SamplePosition = `
...............
...............
...............
...O...........
...............
...............
...............
.......XXXX....
...............
...............
...............
...O.......O...
...............
...............
...............
`
	// DiagonalThree: O has (5,5), (6,6), (7,7) and nothing else is near.
	DiagonalThree SamplePosition = `
...............
...............
...............
...............
...............
.....O.........
......O........
.......O.......
...............
...............
...............
...............
...............
...............
...............
`
	// OpenFourForX: X holds an open four on row 7; O has no immediate win.
	OpenFourForX SamplePosition = `
...............
...............
..O............
...............
...............
...............
...............
.....XXXX......
...............
......O.O.O....
...............
...............
...............
...............
...............
`
	// OpenThreeForO: O has an open three on row 7. Either end would give O
	// two winning squares at once.
	OpenThreeForO SamplePosition = `
...............
...............
...............
...X...........
...............
...............
.......X.......
......OOO......
...............
...............
...............
...........X...
...............
...............
...............
`
	// OpenThreeForX: X has an open three on row 7 and O has only scattered
	// single stones.
	OpenThreeForX SamplePosition = `
...............
...............
...............
...O...........
...............
...............
...............
......XXX......
...............
...............
...............
...O.......O...
...............
...............
...............
`
	// CrossingTwos: O can play (7,7) and get open threes on two lines.
	CrossingTwos SamplePosition = `
...............
...............
............X..
...............
...............
.......O.......
.......O.......
.....OO........
...............
...............
...X......X....
...............
..X............
...............
...............
`
)

// Rows splits the sample into its board rows.
func (s SamplePosition) Rows() []string {
	var rows []string
	for _, line := range strings.Split(string(s), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			rows = append(rows, line)
		}
	}
	return rows
}

// Board builds a five-in-a-row board from the sample. It panics on a
// malformed sample.
func (s SamplePosition) Board() *Board {
	b, err := FromRows(s.Rows(), DefaultWinLength)
	if err != nil {
		panic(err)
	}
	return b
}

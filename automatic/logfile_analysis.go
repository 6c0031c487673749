package automatic

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/domino14/gomoku/stats"
)

var ErrBadLogLine = errors.New("malformed self-play log line")

// AnalyzeLogFile reads a self-play CSV file and returns a summary of it.
func AnalyzeLogFile(filepath string) (string, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return "", err
	}
	defer file.Close()
	r := csv.NewReader(file)

	// Record looks like:
	// gameID,playerA,playerB,winner,winnerSymbol,moves,fingerprint,seconds
	wins := map[string]int{}
	var draws, firstWins, games int
	var lengths, seconds stats.Statistic
	var fingerprints []string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if record[0] == "gameID" {
			continue
		}
		if len(record) != 8 {
			return "", fmt.Errorf("%w: %v", ErrBadLogLine, record)
		}
		moves, err := strconv.Atoi(record[5])
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrBadLogLine, err)
		}
		secs, err := strconv.ParseFloat(record[7], 64)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrBadLogLine, err)
		}
		games++
		switch record[4] {
		case "X":
			firstWins++
			wins[record[3]]++
		case "O":
			wins[record[3]]++
		default:
			draws++
		}
		lengths.Push(float64(moves))
		seconds.Push(secs)
		fingerprints = append(fingerprints, record[6])
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Games played: %d\n", games)
	names := lo.Keys(wins)
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&sb, "%s wins: %d (%.3f%%)\n", name, wins[name], 100.0*float64(wins[name])/float64(games))
	}
	fmt.Fprintf(&sb, "Draws: %d\n", draws)
	fmt.Fprintf(&sb, "Player who went first wins: %d (%.3f%%)\n",
		firstWins, 100.0*float64(firstWins)/float64(max(games, 1)))
	fmt.Fprintf(&sb, "Distinct final boards: %d\n", len(lo.Uniq(fingerprints)))
	fmt.Fprintf(&sb, "Moves per game: mean %.2f  stdev %.2f\n", lengths.Mean(), lengths.Stdev())
	fmt.Fprintf(&sb, "Seconds per game: mean %.3f  stdev %.3f\n", seconds.Mean(), seconds.Stdev())
	return sb.String(), nil
}

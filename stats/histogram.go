package stats

import (
	"strings"

	"github.com/aybabtme/uniplot/histogram"
)

const histogramWidth = 40

// Histogram renders the samples as a text histogram with the given number
// of bins. It returns an empty string when there is nothing to show.
func Histogram(samples []float64, bins int) (string, error) {
	if len(samples) == 0 {
		return "", nil
	}
	h := histogram.Hist(bins, samples)
	var sb strings.Builder
	if err := histogram.Fprint(&sb, h, histogram.Linear(histogramWidth)); err != nil {
		return "", err
	}
	return sb.String(), nil
}

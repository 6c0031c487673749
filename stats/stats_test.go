package stats

import (
	"math"
	"strings"
	"testing"

	"github.com/matryer/is"
)

func TestRunningStat(t *testing.T) {
	is := is.New(t)
	type tc struct {
		scores []int
		mean   float64
		stdev  float64
	}
	cases := []tc{
		{[]int{10, 12, 23, 23, 16, 23, 21, 16}, 18, 5.2372293656638},
		{[]int{14, 35, 71, 124, 10, 24, 55, 33, 87, 19}, 47.2, 36.937785531891},
		{[]int{1}, 1, 0},
		{[]int{}, 0, 0},
		{[]int{1, 1}, 1, 0},
	}
	for _, c := range cases {
		s := &Statistic{}
		for _, score := range c.scores {
			s.Push(float64(score))
		}
		is.True(FuzzyEqual(s.Mean(), c.mean))
		is.True(FuzzyEqual(s.Stdev(), c.stdev))
	}
}

func TestMinMax(t *testing.T) {
	is := is.New(t)
	s := &Statistic{}
	for _, v := range []float64{4, -2, 9, 3} {
		s.Push(v)
	}
	is.Equal(s.Min(), -2.0)
	is.Equal(s.Max(), 9.0)
	is.Equal(s.Last(), 3.0)
	is.Equal(s.Iterations(), 4)
}

func TestMerge(t *testing.T) {
	is := is.New(t)
	vals := []float64{14, 35, 71, 124, 10, 24, 55, 33, 87, 19}
	a, b, all := &Statistic{}, &Statistic{}, &Statistic{}
	for i, v := range vals {
		if i < 4 {
			a.Push(v)
		} else {
			b.Push(v)
		}
		all.Push(v)
	}
	a.Merge(b)
	is.Equal(a.Iterations(), 10)
	is.True(FuzzyEqual(a.Mean(), all.Mean()))
	is.True(FuzzyEqual(a.Stdev(), all.Stdev()))
	is.Equal(a.Min(), 10.0)
	is.Equal(a.Max(), 124.0)

	empty := &Statistic{}
	empty.Merge(all)
	is.True(FuzzyEqual(empty.Mean(), 47.2))
}

func TestZVal(t *testing.T) {
	is := is.New(t)
	is.True(math.Abs(ZVal(95)-1.959964) < 1e-5)
	is.True(math.Abs(ZVal(99)-2.575829) < 1e-5)
}

func TestWinRate(t *testing.T) {
	is := is.New(t)
	rate, margin := WinRate(60, 20, 100, 95)
	is.True(FuzzyEqual(rate, 0.7))
	is.True(math.Abs(margin-1.959964*math.Sqrt(0.7*0.3/100)) < 1e-5)

	rate, margin = WinRate(0, 0, 0, 95)
	is.Equal(rate, 0.0)
	is.Equal(margin, 0.0)
}

func TestHistogram(t *testing.T) {
	is := is.New(t)
	out, err := Histogram([]float64{9, 11, 11, 14, 30, 31}, 4)
	is.NoErr(err)
	is.True(strings.Count(out, "\n") >= 4)

	out, err = Histogram(nil, 4)
	is.NoErr(err)
	is.Equal(out, "")
}

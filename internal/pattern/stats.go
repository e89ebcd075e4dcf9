package pattern

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/olivier-w/chladni/internal/grid"
)

// Stats summarises the values of a level map.
type Stats struct {
	Peak    float32
	Mean    float64
	StdDev  float64
	NonZero int
}

// Summarize computes Stats for g. An empty grid yields the zero Stats.
func Summarize(g *grid.Grid) Stats {
	if g == nil || g.Empty() {
		return Stats{}
	}

	values := g.Values()
	xs := make([]float64, len(values))
	nonZero := 0
	for i, v := range values {
		xs[i] = float64(v)
		if v != 0 {
			nonZero++
		}
	}

	mean, std := stat.MeanStdDev(xs, nil)
	if len(xs) < 2 {
		std = 0
	}
	return Stats{
		Peak:    float32(floats.Max(xs)),
		Mean:    mean,
		StdDev:  std,
		NonZero: nonZero,
	}
}

package pattern

import (
	"math"

	"github.com/olivier-w/chladni/internal/grid"
)

// cancelStride is the column interval between cancellation polls.
const cancelStride = 64

type term struct {
	amplitude float64
	q         float64
	phase     float64
}

func contributingTerms(waves []Wave) []term {
	terms := make([]term, 0, len(waves))
	for _, w := range waves {
		if !w.Contributes() {
			continue
		}
		terms = append(terms, term{
			amplitude: float64(w.Amplitude),
			q:         2 * math.Pi * float64(w.Frequency),
			phase:     float64(w.Phase) * math.Pi / 180,
		})
	}
	return terms
}

// Compute fills g with the pattern produced by waves over a width x height
// plate and returns the largest value written. A grid of a different size
// is resized first, which discards its contents; otherwise it is cleared.
//
// On cancellation the cells already visited keep their values, the rest
// stay zero, and the returned peak covers the visited cells only.
func Compute(g *grid.Grid, waves []Wave, width, height int, cancel Canceler) float32 {
	return ComputeWithProgress(g, waves, width, height, cancel, nil)
}

// ComputeWithProgress is Compute with a callback invoked after each
// completed row.
func ComputeWithProgress(g *grid.Grid, waves []Wave, width, height int, cancel Canceler, progress func(done, total int)) float32 {
	if g.Width() != width || g.Height() != height {
		g.Resize(width, height)
	} else {
		g.Clear()
	}
	if g.Empty() || g.Width() != width || g.Height() != height {
		return 0
	}

	terms := contributingTerms(waves)
	if len(terms) == 0 {
		return 0
	}

	values := g.Values()
	rWidth := 1.0 / float64(width)
	rHeight := 1.0 / float64(height)
	var peak float32

	for y := range height {
		if canceled(cancel) {
			break
		}
		ry := float64(y) * rHeight
		row := values[y*width : (y+1)*width]

		stopped := false
		for x := range width {
			if x%cancelStride == 0 && canceled(cancel) {
				stopped = true
				break
			}
			rx := float64(x) * rWidth

			var v float64
			for _, t := range terms {
				v += t.amplitude * math.Cos(t.q*rx+t.phase) * math.Cos(t.q*ry+t.phase)
			}

			cell := float32(math.Abs(v) * IterationMultiplier)
			row[x] = cell
			if cell > peak {
				peak = cell
			}
		}
		if stopped {
			break
		}
		if progress != nil {
			progress(y+1, height)
		}
	}

	return peak
}

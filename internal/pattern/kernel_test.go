package pattern

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/olivier-w/chladni/internal/grid"
)

func TestComputeEmptyWavesClearsGrid(t *testing.T) {
	for _, size := range [][2]int{{1, 1}, {7, 3}, {64, 65}} {
		g := grid.New(size[0], size[1])
		g.Values()[0] = 42

		peak := Compute(g, nil, size[0], size[1], nil)
		if peak != 0 {
			t.Fatalf("Compute(%v) = %v, want 0", size, peak)
		}
		for i, v := range g.Values() {
			if v != 0 {
				t.Fatalf("cell %d = %v, want 0", i, v)
			}
		}
	}
}

func TestComputeSkipsLowFrequencyTerms(t *testing.T) {
	waves := []Wave{
		{Enabled: true, Amplitude: 1, Frequency: 0.05, Phase: 0},
		{Enabled: false, Amplitude: -1, Frequency: 0.09, Phase: 90},
		{Enabled: true, Amplitude: 0.5, Frequency: 0, Phase: 45},
	}
	g := grid.New(0, 0)
	if peak := Compute(g, waves, 16, 16, nil); peak != 0 {
		t.Fatalf("Compute() = %v, want 0", peak)
	}
	if g.Width() != 16 || g.Height() != 16 {
		t.Fatalf("grid size = %dx%d, want 16x16", g.Width(), g.Height())
	}
}

func TestComputeSkipsDisabledTerms(t *testing.T) {
	g := grid.New(8, 8)
	waves := []Wave{{Enabled: false, Amplitude: 1, Frequency: 4, Phase: 0}}
	if peak := Compute(g, waves, 8, 8, nil); peak != 0 {
		t.Fatalf("Compute() = %v, want 0", peak)
	}
}

func TestComputeKnownCell(t *testing.T) {
	g := grid.New(0, 0)
	waves := []Wave{{Enabled: true, Amplitude: 1, Frequency: 2, Phase: 0}}

	peak := Compute(g, waves, 10, 10, nil)

	v, err := g.At(5, 5)
	if err != nil {
		t.Fatalf("At(5,5) error = %v", err)
	}
	if v != 256 {
		t.Fatalf("At(5,5) = %v, want 256", v)
	}
	if peak != 256 {
		t.Fatalf("peak = %v, want 256", peak)
	}
}

func TestComputeMatchesFormula(t *testing.T) {
	waves := []Wave{
		{Enabled: true, Amplitude: 1, Frequency: 4, Phase: 0},
		{Enabled: true, Amplitude: 0.5, Frequency: 6, Phase: 90},
	}
	const w, h = 64, 48
	g := grid.New(w, h)
	peak := Compute(g, waves, w, h, nil)

	var want float32
	for y := range h {
		for x := range w {
			rx := float64(x) / w
			ry := float64(y) / h
			var v float64
			for _, wave := range waves {
				q := 2 * math.Pi * float64(wave.Frequency)
				p := float64(wave.Phase) * math.Pi / 180
				v += float64(wave.Amplitude) * math.Cos(q*rx+p) * math.Cos(q*ry+p)
			}
			expected := float32(math.Abs(v) * IterationMultiplier)
			got, _ := g.At(x, y)
			if math.Abs(float64(got-expected)) > 1e-3 {
				t.Fatalf("At(%d,%d) = %v, want %v", x, y, got, expected)
			}
			want = max(want, got)
		}
	}
	if peak != want {
		t.Fatalf("peak = %v, want max cell %v", peak, want)
	}
}

func TestComputeResizesMismatchedGrid(t *testing.T) {
	g := grid.New(4, 4)
	_ = g.Set(0, 0, 99)
	Compute(g, []Wave{{Enabled: true, Amplitude: 1, Frequency: 1}}, 12, 6, nil)
	if g.Width() != 12 || g.Height() != 6 {
		t.Fatalf("grid size = %dx%d, want 12x6", g.Width(), g.Height())
	}
}

func TestComputeZeroSize(t *testing.T) {
	g := grid.New(5, 5)
	peak := Compute(g, []Wave{{Enabled: true, Amplitude: 1, Frequency: 2}}, 0, 5, nil)
	if peak != 0 {
		t.Fatalf("Compute() = %v, want 0", peak)
	}
	if !g.Empty() {
		t.Fatal("expected absent buffer after zero-width compute")
	}
}

func TestComputeCanceledBeforeFirstRow(t *testing.T) {
	waves := []Wave{{Enabled: true, Amplitude: 1, Frequency: 4, Phase: 0}}
	full := Compute(grid.New(0, 0), waves, 50, 50, nil)
	if full <= 0 {
		t.Fatalf("full peak = %v, want > 0", full)
	}

	var flag Flag
	flag.Cancel()
	g := grid.New(50, 50)
	partial := Compute(g, waves, 50, 50, &flag)
	if partial > full {
		t.Fatalf("canceled peak %v exceeds full peak %v", partial, full)
	}
	if partial != 0 {
		t.Fatalf("canceled peak = %v, want 0", partial)
	}
	for i, v := range g.Values() {
		if v != 0 {
			t.Fatalf("cell %d = %v after immediate cancel, want 0", i, v)
		}
	}
}

// cancelAfter reports cancellation once it has been polled n times.
type cancelAfter struct {
	n     int
	polls int
}

func (c *cancelAfter) Canceled() bool {
	c.polls++
	return c.polls > c.n
}

func TestComputePollsAtRowAndColumnCheckpoints(t *testing.T) {
	waves := []Wave{{Enabled: true, Amplitude: 1, Frequency: 3}}
	const w, h = 200, 3

	// Per row: one poll before the row plus columns 0, 64, 128, 192.
	counter := &cancelAfter{n: 1 << 30}
	Compute(grid.New(w, h), waves, w, h, counter)
	if counter.polls != h*5 {
		t.Fatalf("polls = %d, want %d", counter.polls, h*5)
	}

	// Stop at the column-64 checkpoint of row 1: row 0 complete, row 1
	// filled up to column 63.
	stop := &cancelAfter{n: 5 + 2}
	g := grid.New(w, h)
	Compute(g, waves, w, h, stop)

	ref := grid.New(w, h)
	Compute(ref, waves, w, h, nil)

	for y := range h {
		for x := range w {
			got, _ := g.At(x, y)
			want, _ := ref.At(x, y)
			visited := y == 0 || (y == 1 && x < 64)
			if visited && got != want {
				t.Fatalf("At(%d,%d) = %v, want %v", x, y, got, want)
			}
			if !visited && got != 0 {
				t.Fatalf("At(%d,%d) = %v, want 0 (not visited)", x, y, got)
			}
		}
	}
}

func TestComputeWithProgressReportsRows(t *testing.T) {
	var rows []int
	ComputeWithProgress(grid.New(0, 0), []Wave{{Enabled: true, Amplitude: 1, Frequency: 1}}, 4, 3, nil, func(done, total int) {
		if total != 3 {
			t.Fatalf("total = %d, want 3", total)
		}
		rows = append(rows, done)
	})
	if len(rows) != 3 || rows[0] != 1 || rows[2] != 3 {
		t.Fatalf("progress rows = %v, want [1 2 3]", rows)
	}
}

func TestContextCanceler(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := ContextCanceler(ctx)
	if c.Canceled() {
		t.Fatal("expected live context to report not canceled")
	}
	cancel()
	if !c.Canceled() {
		t.Fatal("expected canceled context to report canceled")
	}
}

func TestFlagReset(t *testing.T) {
	var f Flag
	f.Cancel()
	f.Reset()
	if f.Canceled() {
		t.Fatal("Canceled() after Reset() = true")
	}
}

func TestWaveClampAndRandom(t *testing.T) {
	w := Wave{Amplitude: 3, Frequency: 0, Phase: -720}.Clamp()
	if w.Amplitude != MaxAmplitude || w.Frequency != MinFrequency || w.Phase != MinPhase {
		t.Fatalf("Clamp() = %+v", w)
	}

	rng := rand.New(rand.NewPCG(1, 2))
	for range 100 {
		r := RandomWave(rng)
		if r != r.Clamp() {
			t.Fatalf("RandomWave() = %+v outside policy ranges", r)
		}
	}
}

func TestComputeOversizedGridIsRefused(t *testing.T) {
	g := grid.New(4, 4)
	waves := []Wave{{Enabled: true, Amplitude: 1, Frequency: 2}}
	if peak := Compute(g, waves, math.MaxInt32, math.MaxInt32, nil); peak != 0 {
		t.Fatalf("Compute() = %v, want 0", peak)
	}
	if g.Width() != 4 || g.Height() != 4 {
		t.Fatalf("grid resized to %dx%d", g.Width(), g.Height())
	}
}

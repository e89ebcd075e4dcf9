package pattern

import "math/rand/v2"

// Policy ranges for wave parameters. The kernel does not enforce them.
const (
	MinAmplitude = -1.0
	MaxAmplitude = 1.0
	MinFrequency = 0.1
	MaxFrequency = 20.0
	MinPhase     = -360.0
	MaxPhase     = 360.0
)

// IterationMultiplier scales |v| into the level map and is the colour
// map's default range.
const IterationMultiplier = 256.0

// Wave is one term of the superposition. Phase is in degrees.
type Wave struct {
	Enabled   bool
	Amplitude float32
	Frequency float32
	Phase     float32
}

// Clamp returns w with every parameter forced into its policy range.
func (w Wave) Clamp() Wave {
	w.Amplitude = clampf(w.Amplitude, MinAmplitude, MaxAmplitude)
	w.Frequency = clampf(w.Frequency, MinFrequency, MaxFrequency)
	w.Phase = clampf(w.Phase, MinPhase, MaxPhase)
	return w
}

// Contributes reports whether the kernel evaluates this term.
func (w Wave) Contributes() bool {
	return w.Enabled && w.Frequency >= MinFrequency
}

// RandomWave draws amplitude, frequency and phase uniformly from their
// policy ranges. Enabled is left to the caller.
func RandomWave(rng *rand.Rand) Wave {
	return Wave{
		Amplitude: uniform(rng, MinAmplitude, MaxAmplitude),
		Frequency: uniform(rng, MinFrequency, MaxFrequency),
		Phase:     uniform(rng, MinPhase, MaxPhase),
	}
}

func uniform(rng *rand.Rand, lo, hi float64) float32 {
	return float32(lo + (hi-lo)*rng.Float64())
}

func clampf(v float32, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

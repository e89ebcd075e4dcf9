package palette

import "math"

// mixScale is the resolution of the blend weight between neighbouring
// entries.
const mixScale = 100

// DefaultMaxIter is the range a fresh ColorMap maps onto its palette.
const DefaultMaxIter = 256.0

// ColorMap maps level values onto a palette over [0, MaxIter].
type ColorMap struct {
	palette    *Palette
	maxIter    float32
	reciprocal float64
}

// NewColorMap returns a colour map over p with MaxIter set to DefaultMaxIter.
func NewColorMap(p *Palette) *ColorMap {
	cm := &ColorMap{palette: p}
	cm.setMaxIter(DefaultMaxIter)
	return cm
}

func (cm *ColorMap) Palette() *Palette { return cm.palette }
func (cm *ColorMap) MaxIter() float32  { return cm.maxIter }

// SetMaxIter sets the value mapped to the last palette entry. A value of
// zero or less sends every positive level to that entry.
func (cm *ColorMap) SetMaxIter(v float32) {
	if v == cm.maxIter {
		return
	}
	cm.setMaxIter(v)
}

func (cm *ColorMap) setMaxIter(v float32) {
	cm.maxIter = v
	if v > 0 {
		cm.reciprocal = 1 / float64(v)
	} else {
		cm.reciprocal = 0
	}
}

// Map returns the colour for value. The palette position is rounded to a
// percentage between two neighbouring entries first, then each channel of
// the blend is rounded.
func (cm *ColorMap) Map(value float32) RGB {
	if value >= cm.maxIter {
		return cm.palette.colors[Size-1]
	}
	if value <= 0 || math.IsNaN(float64(value)) {
		return cm.palette.colors[0]
	}

	scaled := float64(value) * cm.reciprocal * (Size - 1)
	scaled = math.Min(math.Max(scaled, 0), Size-1)

	i := min(int(scaled), Size-2)
	frac := scaled - float64(i)
	w := int(math.Round(frac * mixScale))
	w = min(max(w, 0), mixScale)

	return mix(cm.palette.colors[i], cm.palette.colors[i+1], w)
}

// mix blends a and b with b weighted w/mixScale.
func mix(a, b RGB, w int) RGB {
	return RGB{
		R: mixChannel(a.R, b.R, w),
		G: mixChannel(a.G, b.G, w),
		B: mixChannel(a.B, b.B, w),
	}
}

func mixChannel(a, b uint8, w int) uint8 {
	v := (int(a)*(mixScale-w) + int(b)*w + mixScale/2) / mixScale
	return uint8(min(max(v, 0), 255))
}

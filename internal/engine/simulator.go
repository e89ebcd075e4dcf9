package engine

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/olivier-w/chladni/internal/chl"
	"github.com/olivier-w/chladni/internal/config"
	"github.com/olivier-w/chladni/internal/grid"
	"github.com/olivier-w/chladni/internal/palette"
	"github.com/olivier-w/chladni/internal/pattern"
	"github.com/olivier-w/chladni/internal/render"
)

// Dimension limits applied by SetDimensions.
const (
	MinDimension = 10
	MaxDimension = 16384
)

var (
	ErrWaveIndex      = errors.New("wave index out of range")
	ErrUnknownPalette = errors.New("unknown palette")
)

// Simulator owns one document: its waves, rendering settings, the level
// map and the peak of the last computation. It holds no locks; callers
// run one Recalculate at a time.
type Simulator struct {
	cfg config.Config
	log *zap.Logger

	filename string
	modified bool

	width     int
	height    int
	normalize bool
	paletteID palette.ID
	waves     []pattern.Wave

	grid        *grid.Grid
	peak        float32
	needsRecalc bool

	colorMaps map[palette.ID]*palette.ColorMap
}

// Option configures New.
type Option func(*Simulator)

// WithConfig sets the defaults used by New and Reset.
func WithConfig(cfg config.Config) Option {
	return func(s *Simulator) {
		s.cfg = cfg
	}
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(log *zap.Logger) Option {
	return func(s *Simulator) {
		if log != nil {
			s.log = log
		}
	}
}

// New returns a simulator holding a fresh untitled document.
func New(opts ...Option) *Simulator {
	s := &Simulator{
		cfg:       config.Default(),
		log:       zap.NewNop(),
		grid:      grid.New(0, 0),
		colorMaps: make(map[palette.ID]*palette.ColorMap),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Reset()
	return s
}

// Reset discards the document and starts over from the configured defaults.
func (s *Simulator) Reset() {
	s.width = clampDimension(s.cfg.Width)
	s.height = clampDimension(s.cfg.Height)
	s.normalize = s.cfg.Normalize
	s.paletteID = s.cfg.Palette
	if !s.paletteID.Valid() {
		s.paletteID = palette.Default
	}
	s.waves = make([]pattern.Wave, max(s.cfg.Capacity, 1))

	s.grid.Resize(s.width, s.height)
	s.grid.Clear()
	s.peak = 0
	s.needsRecalc = true

	s.filename = chl.Untitled
	s.modified = false
}

func clampDimension(v int) int {
	return min(max(v, MinDimension), MaxDimension)
}

func (s *Simulator) Filename() string { return s.filename }
func (s *Simulator) Modified() bool   { return s.modified }
func (s *Simulator) Width() int       { return s.width }
func (s *Simulator) Height() int      { return s.height }
func (s *Simulator) Capacity() int    { return len(s.waves) }
func (s *Simulator) Peak() float32    { return s.peak }
func (s *Simulator) Normalize() bool  { return s.normalize }

// NeedsRecalculation reports whether the level map does not reflect the
// current waves, as after Reset or loading a file without a grid.
func (s *Simulator) NeedsRecalculation() bool { return s.needsRecalc }

// Grid exposes the level map. It is replaced by the next Load.
func (s *Simulator) Grid() *grid.Grid { return s.grid }

// SetDimensions clamps both sides to [MinDimension, MaxDimension]. A change
// discards the level map.
func (s *Simulator) SetDimensions(width, height int) {
	width = clampDimension(width)
	height = clampDimension(height)
	if width == s.width && height == s.height {
		return
	}
	s.width = width
	s.height = height
	s.grid.Resize(width, height)
	s.peak = 0
	s.needsRecalc = true
	s.modified = true
}

// SetCapacity sets the number of wave slots, at least one. New slots are
// disabled zero waves; surplus slots are dropped.
func (s *Simulator) SetCapacity(n int) {
	n = max(n, 1)
	if n == len(s.waves) {
		return
	}
	if n < len(s.waves) {
		s.waves = s.waves[:n:n]
	} else {
		s.waves = append(s.waves, make([]pattern.Wave, n-len(s.waves))...)
	}
	s.modified = true
}

// Waves returns a copy of the wave slots.
func (s *Simulator) Waves() []pattern.Wave {
	return append([]pattern.Wave(nil), s.waves...)
}

// SetWave replaces slot i.
func (s *Simulator) SetWave(i int, w pattern.Wave) error {
	if i < 0 || i >= len(s.waves) {
		return fmt.Errorf("%w: %d (capacity %d)", ErrWaveIndex, i, len(s.waves))
	}
	if s.waves[i] == w {
		return nil
	}
	s.waves[i] = w
	s.needsRecalc = true
	s.modified = true
	return nil
}

// Randomize redraws the parameters of every enabled wave uniformly from
// the policy ranges. Disabled waves are left alone.
func (s *Simulator) Randomize(rng *rand.Rand) {
	for i, w := range s.waves {
		if !w.Enabled {
			continue
		}
		r := pattern.RandomWave(rng)
		r.Enabled = true
		s.waves[i] = r
	}
	s.needsRecalc = true
	s.modified = true
}

// Recalculate fills the level map from the current waves and reports the
// peak and whether the run finished. A canceled run keeps its partial map
// and peak but does not mark the document modified.
func (s *Simulator) Recalculate(cancel pattern.Canceler) (float32, bool) {
	return s.RecalculateWithProgress(cancel, nil)
}

// RecalculateWithProgress is Recalculate with a per-row callback.
func (s *Simulator) RecalculateWithProgress(cancel pattern.Canceler, progress func(done, total int)) (float32, bool) {
	s.peak = pattern.ComputeWithProgress(s.grid, s.waves, s.width, s.height, cancel, progress)
	if cancel != nil && cancel.Canceled() {
		s.log.Debug("computation canceled",
			zap.Int("width", s.width),
			zap.Int("height", s.height),
			zap.Float32("partial_peak", s.peak),
		)
		return s.peak, false
	}

	s.needsRecalc = false
	s.modified = true
	s.log.Debug("pattern computed",
		zap.Int("width", s.width),
		zap.Int("height", s.height),
		zap.Int("waves", len(s.waves)),
		zap.Float32("peak", s.peak),
	)
	return s.peak, true
}

// Palette returns the selected palette.
func (s *Simulator) Palette() palette.ID { return s.paletteID }

// SetPalette selects a built-in palette.
func (s *Simulator) SetPalette(id palette.ID) error {
	if !id.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownPalette, id)
	}
	if id != s.paletteID {
		s.paletteID = id
		s.modified = true
	}
	return nil
}

// SetNormalize toggles scaling the palette to the computed peak.
func (s *Simulator) SetNormalize(on bool) {
	if on != s.normalize {
		s.normalize = on
		s.modified = true
	}
}

// ColorMap returns the colour map of the selected palette. Colour maps are
// kept per palette so switching back and forth reuses them.
func (s *Simulator) ColorMap() *palette.ColorMap {
	cm, ok := s.colorMaps[s.paletteID]
	if !ok {
		cm = palette.NewColorMap(s.paletteID.Palette())
		s.colorMaps[s.paletteID] = cm
	}
	return cm
}

// Bitmap renders the level map with the selected palette.
func (s *Simulator) Bitmap() *render.Bitmap {
	return render.Render(s.grid, s.ColorMap(), s.peak, s.normalize)
}

// Stats summarises the current level map.
func (s *Simulator) Stats() pattern.Stats {
	return pattern.Summarize(s.grid)
}

// Document snapshots the simulator state for the codec. The grid is
// shared, not copied.
func (s *Simulator) Document() *chl.Document {
	return &chl.Document{
		Waves:        s.Waves(),
		PaletteIndex: s.paletteID.Index(),
		Width:        uint32(s.width),
		Height:       uint32(s.height),
		Normalize:    s.normalize,
		Grid:         s.grid,
	}
}

// Load replaces the document with the one stored at path. On error the
// current state is left untouched.
func (s *Simulator) Load(path string) error {
	doc, err := chl.Load(path)
	if err == nil {
		err = checkDimensions(path, doc)
	}
	if err != nil {
		s.log.Warn("load failed", zap.String("path", path), zap.Error(err))
		return err
	}
	s.adopt(doc)
	s.filename = path
	s.modified = false

	s.log.Info("document loaded",
		zap.String("path", path),
		zap.Int("width", s.width),
		zap.Int("height", s.height),
		zap.Int("waves", len(s.waves)),
		zap.Stringer("palette", s.paletteID),
		zap.Bool("has_grid", !s.needsRecalc),
	)
	return nil
}

// checkDimensions rejects documents whose size the simulator would refuse
// through SetDimensions.
func checkDimensions(path string, doc *chl.Document) error {
	inRange := func(v uint32) bool { return v >= MinDimension && v <= MaxDimension }
	if !inRange(doc.Width) || !inRange(doc.Height) {
		return fmt.Errorf("load %s: %w: size %dx%d outside [%d, %d]",
			path, chl.ErrFormat, doc.Width, doc.Height, MinDimension, MaxDimension)
	}
	return nil
}

func (s *Simulator) adopt(doc *chl.Document) {
	s.width = int(doc.Width)
	s.height = int(doc.Height)
	s.normalize = doc.Normalize

	s.waves = doc.Waves
	if len(s.waves) == 0 {
		s.waves = make([]pattern.Wave, 1)
	}

	id, ok := palette.FromIndex(doc.PaletteIndex)
	if !ok {
		s.log.Warn("unknown palette index, using default",
			zap.Uint32("index", doc.PaletteIndex),
			zap.Stringer("palette", id),
		)
	}
	s.paletteID = id

	if doc.Grid != nil && !doc.Grid.Empty() {
		s.grid = doc.Grid
		s.peak = pattern.Summarize(doc.Grid).Peak
		s.needsRecalc = false
		return
	}
	s.grid = grid.New(s.width, s.height)
	s.peak = 0
	s.needsRecalc = true
}

// Save writes the document to path, with the level map when includeGrid
// is set.
func (s *Simulator) Save(path string, includeGrid bool) error {
	if s.grid.Width() != s.width || s.grid.Height() != s.height {
		s.grid.Resize(s.width, s.height)
	}
	if err := chl.Save(path, s.Document(), includeGrid); err != nil {
		s.log.Warn("save failed", zap.String("path", path), zap.Error(err))
		return err
	}
	s.filename = path
	s.modified = false
	s.log.Info("document saved", zap.String("path", path), zap.Bool("grid", includeGrid))
	return nil
}

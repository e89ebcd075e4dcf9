package grid

import "fmt"

// MaxCells bounds width*height for any grid.
const MaxCells = 1 << 28

// CheckSize reports whether a width x height grid can be allocated.
func CheckSize(width, height int) error {
	if width < 0 || height < 0 {
		return &SizeError{Width: width, Height: height}
	}
	if width > 0 && height > MaxCells/width {
		return fmt.Errorf("%w: %dx%d exceeds %d cells", ErrTooLarge, width, height, MaxCells)
	}
	return nil
}

// Grid is a rectangular, row-major buffer of float32 values.
// The buffer is nil whenever either dimension is zero.
type Grid struct {
	width  int
	height int
	values []float32
}

// New returns a zero-filled grid of the given size.
func New(width, height int) *Grid {
	g := &Grid{}
	g.Resize(width, height)
	return g
}

// FromValues adopts values as the backing buffer of a width x height grid.
// The slice is not copied.
func FromValues(width, height int, values []float32) (*Grid, error) {
	if width < 0 || height < 0 {
		return nil, &SizeError{Width: width, Height: height, Len: len(values)}
	}
	if err := CheckSize(width, height); err != nil {
		return nil, err
	}
	if width*height != len(values) {
		return nil, &SizeError{Width: width, Height: height, Len: len(values)}
	}
	if width == 0 || height == 0 {
		return &Grid{width: width, height: height}, nil
	}
	return &Grid{width: width, height: height, values: values}, nil
}

// Width and Height return the dimensions; both are zero for an absent grid.
func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// Values returns the backing buffer. It aliases the grid.
func (g *Grid) Values() []float32 { return g.values }

// Resize changes the grid dimensions and reports whether they changed.
// Any change discards the old contents. A size rejected by CheckSize
// leaves the grid as it was.
func (g *Grid) Resize(width, height int) bool {
	width = max(width, 0)
	height = max(height, 0)
	if width == g.width && height == g.height {
		return false
	}
	if CheckSize(width, height) != nil {
		return false
	}

	g.width = width
	g.height = height
	if width == 0 || height == 0 {
		g.values = nil
	} else {
		g.values = make([]float32, width*height)
	}
	return true
}

// Reset releases the buffer and sets both dimensions to zero.
func (g *Grid) Reset() {
	g.Resize(0, 0)
}

// Clear zero-fills the grid in place.
func (g *Grid) Clear() {
	clear(g.values)
}

// Empty reports whether the grid has no buffer.
func (g *Grid) Empty() bool {
	return len(g.values) == 0
}

// At returns the value at (x, y).
func (g *Grid) At(x, y int) (float32, error) {
	i, err := g.index(x, y)
	if err != nil {
		return 0, err
	}
	return g.values[i], nil
}

// Set stores v at (x, y).
func (g *Grid) Set(x, y int, v float32) error {
	i, err := g.index(x, y)
	if err != nil {
		return err
	}
	g.values[i] = v
	return nil
}

// Row returns scanline y. Callers must treat it as read-only; its capacity
// ends at the row boundary.
func (g *Grid) Row(y int) ([]float32, error) {
	if g.Empty() {
		return nil, ErrUninitialized
	}
	if y < 0 || y >= g.height {
		return nil, &BoundsError{X: 0, Y: y, Width: g.width, Height: g.height}
	}
	off := y * g.width
	return g.values[off : off+g.width : off+g.width], nil
}

func (g *Grid) index(x, y int) (int, error) {
	if g.Empty() {
		return 0, ErrUninitialized
	}
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return 0, &BoundsError{X: x, Y: y, Width: g.width, Height: g.height}
	}
	return y*g.width + x, nil
}

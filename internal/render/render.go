package render

import (
	"image"
	"image/color"

	"github.com/olivier-w/chladni/internal/grid"
	"github.com/olivier-w/chladni/internal/palette"
	"github.com/olivier-w/chladni/internal/pattern"
)

// Bitmap is an RGB24 pixel buffer, 3 bytes per pixel, row-major.
type Bitmap struct {
	Width  int
	Height int
	Pix    []uint8
}

func newBitmap(width, height int) *Bitmap {
	return &Bitmap{Width: width, Height: height, Pix: make([]uint8, width*height*3)}
}

// At returns the pixel at (x, y). Out-of-range coordinates read black.
func (b *Bitmap) At(x, y int) palette.RGB {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return palette.RGB{}
	}
	off := (y*b.Width + x) * 3
	return palette.RGB{R: b.Pix[off], G: b.Pix[off+1], B: b.Pix[off+2]}
}

func (b *Bitmap) set(x, y int, c palette.RGB) {
	off := (y*b.Width + x) * 3
	b.Pix[off] = c.R
	b.Pix[off+1] = c.G
	b.Pix[off+2] = c.B
}

// Image converts the bitmap to an opaque RGBA image.
func (b *Bitmap) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	for y := range b.Height {
		for x := range b.Width {
			c := b.At(x, y)
			img.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff})
		}
	}
	return img
}

// Render maps every cell of g through cm. With normalize set and a positive
// peak the palette spans [0, peak]; otherwise it spans [0, 256]. A
// non-positive peak means no peak is known. A grid with a zero dimension
// yields a single black pixel.
func Render(g *grid.Grid, cm *palette.ColorMap, peak float32, normalize bool) *Bitmap {
	if g.Width() == 0 || g.Height() == 0 {
		return newBitmap(1, 1)
	}

	if normalize && peak > 0 {
		cm.SetMaxIter(peak)
	} else {
		cm.SetMaxIter(pattern.IterationMultiplier)
	}

	b := newBitmap(g.Width(), g.Height())
	values := g.Values()
	for y := range g.Height() {
		row := values[y*g.Width() : (y+1)*g.Width()]
		for x, v := range row {
			b.set(x, y, cm.Map(v))
		}
	}
	return b
}

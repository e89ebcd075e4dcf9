package palette

import "strings"

// Size is the fixed number of entries in every palette.
const Size = 256

// RGB is one palette entry.
type RGB struct {
	R uint8
	G uint8
	B uint8
}

// Palette is an immutable 256-entry colour table.
type Palette struct {
	name   string
	colors [Size]RGB
}

func (p *Palette) Name() string { return p.name }

// At returns entry i. Indices outside [0,255] are clamped.
func (p *Palette) At(i int) RGB {
	return p.colors[min(max(i, 0), Size-1)]
}

// ID enumerates the built-in palettes. The order is the palette index
// stored in documents.
type ID int

const (
	Grayscale ID = iota
	Spectrum
	numPalettes
)

// Default is the palette used when none is selected.
const Default = Spectrum

var builtins = [numPalettes]*Palette{
	Grayscale: newGrayscale(),
	Spectrum:  newSpectrum(),
}

// All returns the built-in palettes in index order.
func All() []ID {
	ids := make([]ID, numPalettes)
	for i := range ids {
		ids[i] = ID(i)
	}
	return ids
}

// Names returns the built-in palette names in index order.
func Names() []string {
	ids := All()
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = id.String()
	}
	return names
}

// Lookup finds a palette by name, ignoring case.
func Lookup(name string) (ID, bool) {
	for i, p := range builtins {
		if strings.EqualFold(p.name, strings.TrimSpace(name)) {
			return ID(i), true
		}
	}
	return Default, false
}

// FromIndex maps a stored palette index to an ID.
func FromIndex(index uint32) (ID, bool) {
	if index >= uint32(numPalettes) {
		return Default, false
	}
	return ID(index), true
}

func (id ID) Index() uint32 { return uint32(id) }

func (id ID) Valid() bool { return id >= 0 && id < numPalettes }

// Palette returns the table for id, or the default palette for an unknown id.
func (id ID) Palette() *Palette {
	if !id.Valid() {
		return builtins[Default]
	}
	return builtins[id]
}

func (id ID) String() string { return id.Palette().name }

func newGrayscale() *Palette {
	p := &Palette{name: "Grayscale"}
	for i := range Size {
		v := uint8(i)
		p.colors[i] = RGB{R: v, G: v, B: v}
	}
	return p
}

// newSpectrum builds four 64-entry hue ramps: blue to cyan, cyan to green,
// green to yellow, yellow to red.
func newSpectrum() *Palette {
	p := &Palette{name: "Spectrum"}
	for i := range Size {
		var c RGB
		switch {
		case i < 64:
			c.B = 255
			c.G = uint8(i * 4)
		case i < 128:
			c.G = 255
			c.B = uint8(255 - (i-64)*4)
		case i < 192:
			c.G = 255
			c.R = uint8((i - 128) * 4)
		default:
			c.R = 255
			c.G = uint8(255 - (i-192)*4)
		}
		p.colors[i] = c
	}
	return p
}

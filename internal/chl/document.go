package chl

import (
	"path/filepath"
	"strings"

	"github.com/olivier-w/chladni/internal/grid"
	"github.com/olivier-w/chladni/internal/pattern"
)

// Untitled is the file name given to a document that was never saved.
const Untitled = "Untitled.chl"

// Ext is the document file extension.
const Ext = ".chl"

// Document is everything a CHL file stores. Grid is nil when the file
// carries no precomputed values.
type Document struct {
	Waves        []pattern.Wave
	PaletteIndex uint32
	Width        uint32
	Height       uint32
	Normalize    bool
	Grid         *grid.Grid
}

// IsDocumentPath reports whether path has the CHL extension.
func IsDocumentPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), Ext)
}

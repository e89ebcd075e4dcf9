package chl

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"

	"github.com/olivier-w/chladni/internal/grid"
	"github.com/olivier-w/chladni/internal/pattern"
)

// Magic opens every CHL payload.
const Magic = "\xa4CHL"

const (
	VersionStandard uint16 = 10
	VersionWithGrid uint16 = 11
)

const (
	waveRecordSize = 13
	// gridChunk bounds how many grid values are buffered per read.
	gridChunk = 1 << 14
	// preallocWaves caps the up-front slice capacity taken from the header.
	preallocWaves = 1024
)

type header struct {
	WaveCount    uint32
	PaletteIndex uint32
	Width        uint32
	Height       uint32
	Normalize    uint8
}

type waveRecord struct {
	Enabled   uint8
	Amplitude float32
	Frequency float32
	Phase     float32
}

// Load reads the document stored at path. On failure no document is
// returned, so callers can keep whatever they had loaded before.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ioFailure("open", err)
	}
	defer f.Close()

	doc, err := Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return doc, nil
}

// Save writes doc to path. The grid is stored only when includeGrid is
// set and doc carries one. The document is written to a temporary file in
// the same directory and renamed over path, so a failed save leaves any
// existing file intact.
func Save(path string, doc *Document, includeGrid bool) (err error) {
	if err := validate(doc, includeGrid); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return ioFailure("create", err)
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			os.Remove(tmp)
		}
	}()
	_ = f.Chmod(0o644)

	bw := bufio.NewWriter(f)
	if err := Encode(bw, doc, includeGrid); err != nil {
		f.Close()
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return ioFailure("flush", err)
	}
	if err := f.Close(); err != nil {
		return ioFailure("close", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return ioFailure("rename", err)
	}
	return nil
}

// Encode writes doc as a gzip-compressed CHL stream.
func Encode(w io.Writer, doc *Document, includeGrid bool) error {
	if err := validate(doc, includeGrid); err != nil {
		return err
	}
	withGrid := includeGrid && doc.Grid != nil

	zw := gzip.NewWriter(w)
	if err := writePayload(zw, doc, withGrid); err != nil {
		zw.Close()
		return ioFailure("write", err)
	}
	if err := zw.Close(); err != nil {
		return ioFailure("compress", err)
	}
	return nil
}

func validate(doc *Document, includeGrid bool) error {
	if includeGrid && doc.Grid != nil {
		if doc.Grid.Width() != int(doc.Width) || doc.Grid.Height() != int(doc.Height) {
			return formatf("grid is %dx%d but document is %dx%d",
				doc.Grid.Width(), doc.Grid.Height(), doc.Width, doc.Height)
		}
	}
	if uint64(len(doc.Waves)) > math.MaxUint32 {
		return formatf("too many waves: %d", len(doc.Waves))
	}
	return nil
}

func writePayload(w io.Writer, doc *Document, withGrid bool) error {
	version := VersionStandard
	if withGrid {
		version = VersionWithGrid
	}
	if _, err := io.WriteString(w, Magic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, version); err != nil {
		return err
	}

	h := header{
		WaveCount:    uint32(len(doc.Waves)),
		PaletteIndex: doc.PaletteIndex,
		Width:        doc.Width,
		Height:       doc.Height,
	}
	if doc.Normalize {
		h.Normalize = 1
	}
	if err := binary.Write(w, binary.LittleEndian, h); err != nil {
		return err
	}

	for _, wv := range doc.Waves {
		rec := waveRecord{Amplitude: wv.Amplitude, Frequency: wv.Frequency, Phase: wv.Phase}
		if wv.Enabled {
			rec.Enabled = 1
		}
		if err := binary.Write(w, binary.LittleEndian, rec); err != nil {
			return err
		}
	}

	if withGrid && len(doc.Grid.Values()) > 0 {
		return binary.Write(w, binary.LittleEndian, doc.Grid.Values())
	}
	return nil
}

// Decode reads a gzip-compressed CHL stream.
func Decode(r io.Reader) (*Document, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, readFailure("gzip header", err)
	}
	defer zr.Close()

	var magic [len(Magic)]byte
	if _, err := io.ReadFull(zr, magic[:]); err != nil {
		return nil, readFailure("magic", err)
	}
	if string(magic[:]) != Magic {
		return nil, formatf("bad magic % x", magic[:])
	}

	var version uint16
	if err := binary.Read(zr, binary.LittleEndian, &version); err != nil {
		return nil, readFailure("version", err)
	}
	if version != VersionStandard && version != VersionWithGrid {
		return nil, &VersionError{Version: version}
	}

	var h header
	if err := binary.Read(zr, binary.LittleEndian, &h); err != nil {
		return nil, readFailure("header", err)
	}

	doc := &Document{
		PaletteIndex: h.PaletteIndex,
		Width:        h.Width,
		Height:       h.Height,
		Normalize:    h.Normalize != 0,
	}
	doc.Waves, err = readWaves(zr, h.WaveCount)
	if err != nil {
		return nil, err
	}

	if version == VersionWithGrid {
		doc.Grid, err = readGrid(zr, h.Width, h.Height)
		if err != nil {
			return nil, err
		}
	}

	// Drain so the gzip trailer checksum is verified.
	if _, err := io.Copy(io.Discard, zr); err != nil {
		return nil, readFailure("trailer", err)
	}
	return doc, nil
}

func readWaves(r io.Reader, count uint32) ([]pattern.Wave, error) {
	waves := make([]pattern.Wave, 0, min(count, preallocWaves))
	var rec [waveRecordSize]byte
	for i := range count {
		if _, err := io.ReadFull(r, rec[:]); err != nil {
			return nil, readFailure(fmt.Sprintf("wave %d of %d", i+1, count), err)
		}
		waves = append(waves, pattern.Wave{
			Enabled:   rec[0] != 0,
			Amplitude: math.Float32frombits(binary.LittleEndian.Uint32(rec[1:5])),
			Frequency: math.Float32frombits(binary.LittleEndian.Uint32(rec[5:9])),
			Phase:     math.Float32frombits(binary.LittleEndian.Uint32(rec[9:13])),
		})
	}
	return waves, nil
}

func readGrid(r io.Reader, width, height uint32) (*grid.Grid, error) {
	if uint64(width) > math.MaxInt32 || uint64(height) > math.MaxInt32 {
		return nil, formatf("grid %dx%d is too large", width, height)
	}
	if err := grid.CheckSize(int(width), int(height)); err != nil {
		return nil, formatf("%v", err)
	}
	total := uint64(width) * uint64(height)

	values := make([]float32, 0, min(total, gridChunk))
	buf := make([]byte, 4*min(total, gridChunk))
	for remaining := total; remaining > 0; {
		n := min(remaining, gridChunk)
		b := buf[:4*n]
		if _, err := io.ReadFull(r, b); err != nil {
			return nil, readFailure(fmt.Sprintf("grid values (%d of %d missing)", remaining, total), err)
		}
		for i := 0; i < len(b); i += 4 {
			values = append(values, math.Float32frombits(binary.LittleEndian.Uint32(b[i:])))
		}
		remaining -= n
	}

	g, err := grid.FromValues(int(width), int(height), values)
	if err != nil {
		return nil, formatf("%v", err)
	}
	return g, nil
}

// readFailure sorts a read error into the codec's error kinds.
func readFailure(section string, err error) error {
	var corrupt flate.CorruptInputError
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return truncated(section)
	case errors.Is(err, gzip.ErrHeader), errors.Is(err, gzip.ErrChecksum), errors.As(err, &corrupt):
		return fmt.Errorf("%w: %s: %w", ErrFormat, section, err)
	default:
		return ioFailure("read "+section, err)
	}
}

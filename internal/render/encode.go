package render

import (
	"errors"
	"fmt"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Format is an image file encoding.
type Format uint8

const (
	FormatPNG Format = iota
	FormatJPEG
	FormatGIF
	FormatBMP
	FormatTIFF
)

var ErrUnsupportedFormat = errors.New("unsupported image format")

var imageExts = map[string]Format{
	".png":  FormatPNG,
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".gif":  FormatGIF,
	".bmp":  FormatBMP,
	".tif":  FormatTIFF,
	".tiff": FormatTIFF,
}

// FormatFromPath picks the encoding from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	f, ok := imageExts[ext]
	if !ok {
		return 0, fmt.Errorf("%w %q (supported: %s)", ErrUnsupportedFormat, ext, SupportedExtsList())
	}
	return f, nil
}

// SupportedExtsList returns a human-readable list of image extensions.
func SupportedExtsList() string {
	return ".png, .jpg, .jpeg, .gif, .bmp, .tif, .tiff"
}

// Encode writes b to w in format f.
func (b *Bitmap) Encode(w io.Writer, f Format) error {
	img := b.Image()
	switch f {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
	case FormatGIF:
		return gif.Encode(w, img, nil)
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedFormat, f)
	}
}

// WriteFile encodes b to path using the format implied by its extension.
func (b *Bitmap) WriteFile(path string) (err error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := b.Encode(out, f); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}

package render

import (
	"image"
	"strings"

	"golang.org/x/image/draw"
)

// Preview renders b into at most cols x rows terminal cells. In colour
// modes each cell packs two pixel rows with "▀" (fg = top, bg = bottom);
// with colour off each pixel becomes a brightness character.
func Preview(b *Bitmap, cols, rows int, mode ColorMode) string {
	if b == nil || b.Width <= 0 || b.Height <= 0 || cols <= 0 || rows <= 0 {
		return ""
	}

	color := mode != ColorOff
	outW, outH, scaleW, scaleH := FitCells(cols, rows, b.Width, b.Height, color)
	scaled := scale(b.Image(), scaleW, scaleH)

	var sb strings.Builder
	sb.Grow(outW * outH * 24)
	if color {
		previewHalfBlock(&sb, scaled, mode, outW, outH)
	} else {
		previewASCII(&sb, scaled, outW, outH)
	}
	return sb.String()
}

func scale(src image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

func samplePixel(img *image.RGBA, x, y int) (uint8, uint8, uint8) {
	if !(image.Point{X: x, Y: y}).In(img.Rect) {
		return 0, 0, 0
	}
	off := img.PixOffset(x, y)
	return img.Pix[off], img.Pix[off+1], img.Pix[off+2]
}

func previewHalfBlock(sb *strings.Builder, img *image.RGBA, mode ColorMode, outW, outH int) {
	var lastFg, lastBg string
	for row := range outH {
		for col := range outW {
			tr, tg, tb := samplePixel(img, col, row*2)
			br, bg, bb := samplePixel(img, col, row*2+1)

			fg := colorSeq(mode, 38, tr, tg, tb)
			bgc := colorSeq(mode, 48, br, bg, bb)
			if fg != lastFg {
				sb.WriteString(fg)
				lastFg = fg
			}
			if bgc != lastBg {
				sb.WriteString(bgc)
				lastBg = bgc
			}
			sb.WriteString("▀")
		}
		sb.WriteString(ansiReset)
		lastFg, lastBg = "", ""
		if row < outH-1 {
			sb.WriteByte('\n')
		}
	}
}

func previewASCII(sb *strings.Builder, img *image.RGBA, outW, outH int) {
	for row := range outH {
		for col := range outW {
			r, g, b := samplePixel(img, col, row)
			sb.WriteByte(brightnessChar(luminance(r, g, b)))
		}
		if row < outH-1 {
			sb.WriteByte('\n')
		}
	}
}

// FitCells computes the terminal cell size and the pixel size to scale the
// source to, keeping the source aspect ratio. Terminal cells are taken to
// be twice as tall as wide; in colour mode each cell holds two pixel rows.
func FitCells(cols, rows, srcW, srcH int, color bool) (outW, outH, scaleW, scaleH int) {
	if srcW <= 0 || srcH <= 0 || cols <= 0 || rows <= 0 {
		return 0, 0, 0, 0
	}

	pixelRows := rows
	if color {
		pixelRows = rows * 2
	}
	// Pixel rows per pixel column needed to keep a square source square.
	squash := 2.0
	if color {
		squash = 1.0
	}

	aspect := float64(srcW) / float64(srcH)
	scaleW = cols
	scaleH = int(float64(cols) / aspect / squash)
	if scaleH > pixelRows {
		scaleH = pixelRows
		scaleW = int(float64(pixelRows) * aspect * squash)
		if scaleW > cols {
			scaleW = cols
		}
	}
	scaleW = max(scaleW, 2)
	scaleH = max(scaleH, 2)

	outW = scaleW
	outH = scaleH
	if color {
		outH = (scaleH + 1) / 2
	}
	return outW, outH, scaleW, scaleH
}

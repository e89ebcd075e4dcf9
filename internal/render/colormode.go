package render

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
)

// asciiRamp runs from darkest to brightest.
const asciiRamp = " .:-=+*#%@"

// ColorMode is the colour depth used for terminal previews.
type ColorMode uint8

const (
	ColorOff ColorMode = iota // NO_COLOR or dumb terminal
	Color16
	Color256
	ColorTrue
)

var (
	detectOnce sync.Once
	termColor  ColorMode
)

// DetectColorMode inspects the environment once per process.
func DetectColorMode() ColorMode {
	detectOnce.Do(func() {
		termColor = colorModeFromEnv(os.LookupEnv)
	})
	return termColor
}

func colorModeFromEnv(lookup func(string) (string, bool)) ColorMode {
	if _, ok := lookup("NO_COLOR"); ok {
		return ColorOff
	}
	term, _ := lookup("TERM")
	ct, _ := lookup("COLORTERM")
	term = strings.ToLower(term)
	ct = strings.ToLower(ct)
	switch {
	case strings.Contains(ct, "truecolor"), strings.Contains(ct, "24bit"):
		return ColorTrue
	case strings.Contains(term, "256color"):
		return Color256
	case term == "dumb":
		return ColorOff
	case term == "" && runtime.GOOS == "windows":
		return Color16
	case term == "":
		return ColorOff
	default:
		return Color16
	}
}

// brightnessChar maps a 0-255 luminance to an ASCII character.
func brightnessChar(lum uint8) byte {
	idx := int(lum) * (len(asciiRamp) - 1) / 255
	return asciiRamp[idx]
}

// luminance computes perceived brightness (ITU-R BT.601).
func luminance(r, g, b uint8) uint8 {
	return uint8((299*int(r) + 587*int(g) + 114*int(b)) / 1000)
}

const ansiReset = "\x1b[0m"

// colorSeq returns the escape selecting r,g,b as foreground (base 38) or
// background (base 48).
func colorSeq(mode ColorMode, base int, r, g, b uint8) string {
	switch mode {
	case ColorTrue:
		return fmt.Sprintf("\x1b[%d;2;%d;%d;%dm", base, r, g, b)
	case Color256:
		ri := int(r) * 5 / 255
		gi := int(g) * 5 / 255
		bi := int(b) * 5 / 255
		return fmt.Sprintf("\x1b[%d;5;%dm", base, 16+36*ri+6*gi+bi)
	case Color16:
		idx := nearestANSI16(r, g, b)
		code := base - 8 + idx
		if idx >= 8 {
			code = base + 52 + idx - 8
		}
		return fmt.Sprintf("\x1b[%dm", code)
	default:
		return ""
	}
}

func nearestANSI16(r, g, b uint8) int {
	best := 0
	bestDist := 1<<31 - 1
	for i, c := range ansi16Palette {
		dr := int(r) - int(c[0])
		dg := int(g) - int(c[1])
		db := int(b) - int(c[2])
		d := dr*dr + dg*dg + db*db
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

var ansi16Palette = [16][3]uint8{
	{0, 0, 0},       // black
	{205, 49, 49},   // red
	{13, 188, 121},  // green
	{229, 229, 16},  // yellow
	{36, 114, 200},  // blue
	{188, 63, 188},  // magenta
	{17, 168, 205},  // cyan
	{229, 229, 229}, // white
	{102, 102, 102}, // bright black
	{241, 76, 76},   // bright red
	{35, 209, 139},  // bright green
	{245, 245, 67},  // bright yellow
	{59, 142, 234},  // bright blue
	{214, 112, 214}, // bright magenta
	{41, 184, 219},  // bright cyan
	{255, 255, 255}, // bright white
}

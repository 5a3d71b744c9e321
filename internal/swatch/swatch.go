// Package swatch validates color selections and rasterizes solid color swatches.
package swatch

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strconv"
	"strings"

	"golang.org/x/image/draw"
)

// DefaultSize is the swatch edge length in pixels.
const DefaultSize = 256

// Normalize validates a color code of the form "#" followed by one to six hex
// digits. Short codes are right padded with zeros. The result is upper-case
// "#RRGGBB"; ok is false for anything else, meaning no color is selected.
func Normalize(input string) (hex string, ok bool) {
	s := strings.TrimSpace(input)
	digits, found := strings.CutPrefix(s, "#")
	if !found || len(digits) == 0 || len(digits) > 6 {
		return "", false
	}
	for _, r := range digits {
		if !isHexDigit(r) {
			return "", false
		}
	}
	digits += strings.Repeat("0", 6-len(digits))
	return "#" + strings.ToUpper(digits), true
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// Parse converts a normalized "#RRGGBB" code to an opaque color.
func Parse(hex string) (color.RGBA, error) {
	norm, ok := Normalize(hex)
	if !ok {
		return color.RGBA{}, fmt.Errorf("invalid color %q", hex)
	}
	v, err := strconv.ParseUint(norm[1:], 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// Render returns a PNG square of the given size filled with hex.
func Render(hex string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}
	c, err := Parse(hex)
	if err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode swatch: %w", err)
	}
	return buf.Bytes(), nil
}

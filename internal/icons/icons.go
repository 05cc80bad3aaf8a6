// Package icons holds the SVG glyphs drawn on cards and watermarks.
package icons

import (
	"bytes"
	"embed"
	"fmt"
	"image"
	"image/color"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

//go:embed svg/*.svg
var files embed.FS

// Name identifies an embedded glyph.
type Name string

const (
	Brand Name = "brand"
	Phone Name = "phone"
	Mail  Name = "mail"
	Globe Name = "globe"
	Pin   Name = "pin"
)

// SVG returns the glyph source with currentColor replaced by tint.
func SVG(name Name, tint color.Color) ([]byte, error) {
	src, err := files.ReadFile("svg/" + string(name) + ".svg")
	if err != nil {
		return nil, fmt.Errorf("icon %q: %w", name, err)
	}
	return bytes.ReplaceAll(src, []byte("currentColor"), []byte(hex(tint))), nil
}

// Rasterize draws the glyph into a transparent w x h image.
func Rasterize(name Name, w, h int, tint color.Color) (*image.RGBA, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("icon %q: invalid size %dx%d", name, w, h)
	}
	src, err := SVG(name, tint)
	if err != nil {
		return nil, err
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(src), oksvg.WarnErrorMode)
	if err != nil {
		return nil, fmt.Errorf("parse icon %q: %w", name, err)
	}
	icon.SetTarget(0, 0, float64(w), float64(h))

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1)
	return img, nil
}

func hex(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// Package qr renders vCard payloads as QR symbols at error-correction level H.
package qr

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/cristianadrielbraun/cardqr/internal/vcard"
)

// CapacityHighBytes is the byte-mode capacity of the largest QR symbol
// (version 40) at error-correction level H.
const CapacityHighBytes = 1273

// DefaultQuietZone is the light margin around the symbol, in modules.
const DefaultQuietZone = 4

var (
	// ErrPayloadTooLarge marks a payload the symbol cannot hold at level H.
	ErrPayloadTooLarge = errors.New("payload exceeds QR capacity at level H")
	// ErrRendererUnavailable is reported when a tier has no renderer configured.
	ErrRendererUnavailable = errors.New("renderer unavailable")
)

// Tier names the rendering path that produced a symbol.
type Tier string

const (
	TierStyled Tier = "styled"
	TierBasic  Tier = "basic"
)

// RenderFailure is the only error returned by Generator.Render.
type RenderFailure struct {
	Tier Tier
	Err  error
}

func (e *RenderFailure) Error() string {
	return fmt.Sprintf("qr %s render failed: %v", e.Tier, e.Err)
}

func (e *RenderFailure) Unwrap() error { return e.Err }

// Geometry describes where modules land in a rendered raster.
type Geometry struct {
	// Modules is the symbol width in modules, quiet zone excluded.
	Modules int
	// ModulePx is the edge of one module in pixels.
	ModulePx int
	// QuietZone is the margin on every side, in modules.
	QuietZone int
}

// Size is the raster edge in pixels.
func (g Geometry) Size() int { return (g.Modules + 2*g.QuietZone) * g.ModulePx }

// SymbolBounds is the module area of the raster, quiet zone excluded.
func (g Geometry) SymbolBounds() image.Rectangle {
	off := g.QuietZone * g.ModulePx
	edge := g.Modules * g.ModulePx
	return image.Rect(off, off, off+edge, off+edge)
}

// FinderRegions returns the three position-detection corners (top-left,
// top-right, bottom-left), each 7 modules plus the 1-module separator.
func (g Geometry) FinderRegions() [3]image.Rectangle {
	s := g.SymbolBounds()
	edge := 8 * g.ModulePx
	return [3]image.Rectangle{
		image.Rect(s.Min.X, s.Min.Y, s.Min.X+edge, s.Min.Y+edge),
		image.Rect(s.Max.X-edge, s.Min.Y, s.Max.X, s.Min.Y+edge),
		image.Rect(s.Min.X, s.Max.Y-edge, s.Min.X+edge, s.Max.Y),
	}
}

// geometryFor fits a symbol of the given module count into roughly sizePx.
func geometryFor(modules, quietZone, sizePx int) Geometry {
	total := modules + 2*quietZone
	px := sizePx / total
	if px < 1 {
		px = 1
	}
	if px > 255 {
		px = 255
	}
	return Geometry{Modules: modules, ModulePx: px, QuietZone: quietZone}
}

// Symbol is a rendered QR raster.
type Symbol struct {
	Image    *image.RGBA
	Geometry Geometry
	Tier     Tier
	Payload  vcard.Payload
}

// Style is the cosmetic skin applied by the styled tier. It never changes the
// encoded bit matrix; the basic tier ignores everything but SizePx.
type Style struct {
	// SizePx is the target raster edge; the result is the nearest whole-module fit.
	SizePx     int
	Foreground color.RGBA
	Background color.RGBA
	// Gradient, when it has two or more stops, replaces Foreground.
	Gradient      []color.RGBA
	GradientAngle float64
	Shape         Shape
	// FinderColor paints the position-detection modules.
	FinderColor color.RGBA
	// FinderRadius is the corner radius of finder modules as a fraction of a module.
	FinderRadius float64
}

// Shape of the data modules in the styled tier.
type Shape string

const (
	ShapeRounded Shape = "rounded"
	ShapeCircle  Shape = "circle"
	ShapeSquare  Shape = "square"
)

// DefaultStyle is the purple gradient card style.
func DefaultStyle() Style {
	return Style{
		SizePx:        512,
		Foreground:    color.RGBA{0x66, 0x7e, 0xea, 0xff},
		Background:    color.RGBA{0xff, 0xff, 0xff, 0xff},
		Gradient:      []color.RGBA{{0x66, 0x7e, 0xea, 0xff}, {0x76, 0x4b, 0xa2, 0xff}},
		GradientAngle: 0,
		Shape:         ShapeRounded,
		FinderColor:   color.RGBA{0x66, 0x7e, 0xea, 0xff},
		FinderRadius:  0.35,
	}
}

func checkCapacity(p vcard.Payload) error {
	if p.ByteLength > CapacityHighBytes {
		return fmt.Errorf("%w: %d > %d bytes", ErrPayloadTooLarge, p.ByteLength, CapacityHighBytes)
	}
	if p.ByteLength == 0 {
		return errors.New("empty payload")
	}
	return nil
}

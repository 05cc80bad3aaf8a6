package qr

import (
	"fmt"
	"image"
	"image/draw"

	skipqr "github.com/skip2/go-qrcode"

	"github.com/cristianadrielbraun/cardqr/internal/vcard"
)

// BasicRenderer draws plain black modules on white. It is the fallback
// whenever the styled tier is missing or fails.
type BasicRenderer struct{}

// Render implements Renderer. Only style.SizePx is honoured.
func (BasicRenderer) Render(p vcard.Payload, style Style) (*Symbol, error) {
	if err := checkCapacity(p); err != nil {
		return nil, err
	}
	q, err := skipqr.New(p.Text, skipqr.Highest)
	if err != nil {
		return nil, fmt.Errorf("encode symbol: %w", err)
	}

	// Bitmap includes the 4-module quiet zone.
	bitmap := q.Bitmap()
	geo := geometryFor(len(bitmap)-2*DefaultQuietZone, DefaultQuietZone, style.SizePx)

	img := image.NewRGBA(image.Rect(0, 0, geo.Size(), geo.Size()))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	px := geo.ModulePx
	for y, row := range bitmap {
		for x, dark := range row {
			if !dark {
				continue
			}
			cell := image.Rect(x*px, y*px, (x+1)*px, (y+1)*px)
			draw.Draw(img, cell, image.Black, image.Point{}, draw.Src)
		}
	}

	return &Symbol{Image: img, Geometry: geo, Tier: TierBasic, Payload: p}, nil
}

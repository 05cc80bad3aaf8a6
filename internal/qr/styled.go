package qr

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/fogleman/gg"
	"github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"

	"github.com/cristianadrielbraun/cardqr/internal/vcard"
)

// StyledRenderer draws gradient, rounded modules with rounded finder markers.
//
// The bit matrix comes from go-qrcode rendered at one pixel per module; the
// skin is then painted module by module, so finder rings stay continuous
// whatever shape the data modules take.
type StyledRenderer struct{}

// Render implements Renderer.
func (StyledRenderer) Render(p vcard.Payload, style Style) (*Symbol, error) {
	if err := checkCapacity(p); err != nil {
		return nil, err
	}
	qrc, err := qrcode.NewWith(p.Text,
		qrcode.WithEncodingMode(qrcode.EncModeByte),
		qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionHighest),
	)
	if err != nil {
		return nil, fmt.Errorf("encode symbol: %w", err)
	}
	bits, err := moduleBits(qrc)
	if err != nil {
		return nil, fmt.Errorf("read symbol matrix: %w", err)
	}

	geo := geometryFor(len(bits), DefaultQuietZone, style.SizePx)
	img := image.NewRGBA(image.Rect(0, 0, geo.Size(), geo.Size()))
	dc := gg.NewContextForRGBA(img)
	dc.SetColor(style.Background)
	dc.Clear()

	drawDataModules(dc, bits, geo, style)
	drawFinders(dc, geo, style)

	return &Symbol{
		Image:    img,
		Geometry: geo,
		Tier:     TierStyled,
		Payload:  p,
	}, nil
}

// symbolBuffer lets the standard writer encode into memory.
type symbolBuffer struct {
	bytes.Buffer
}

func (b *symbolBuffer) Close() error { return nil }

// moduleBits renders qrc at one pixel per module without a border and reads
// the dark pixels back as the module matrix, indexed [y][x].
func moduleBits(qrc *qrcode.QRCode) ([][]bool, error) {
	buf := &symbolBuffer{}
	w := standard.NewWithWriter(buf,
		standard.WithQRWidth(1),
		standard.WithBorderWidth(0),
		standard.WithBgColor(color.RGBA{255, 255, 255, 255}),
		standard.WithFgColor(color.RGBA{0, 0, 0, 255}),
		standard.WithBuiltinImageEncoder(standard.PNG_FORMAT),
	)
	if err := qrc.Save(w); err != nil {
		return nil, err
	}
	img, err := png.Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	if b.Dx() != b.Dy() || b.Dx() < 21 {
		return nil, fmt.Errorf("unexpected matrix %dx%d", b.Dx(), b.Dy())
	}
	bits := make([][]bool, b.Dy())
	for y := range bits {
		row := make([]bool, b.Dx())
		for x := range row {
			r, _, _, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			row[x] = r < 0x8000
		}
		bits[y] = row
	}
	return bits, nil
}

// inFinder reports whether module (x, y) belongs to a finder pattern or its
// separator in a symbol n modules wide.
func inFinder(x, y, n int) bool {
	return (x < 8 && y < 8) || (x >= n-8 && y < 8) || (x < 8 && y >= n-8)
}

func dark(bits [][]bool, x, y int) bool {
	n := len(bits)
	if x < 0 || y < 0 || x >= n || y >= n || inFinder(x, y, n) {
		return false
	}
	return bits[y][x]
}

// drawDataModules paints every dark module outside the finders in one fill.
// Subpaths share a winding direction, so overlaps union.
func drawDataModules(dc *gg.Context, bits [][]bool, geo Geometry, style Style) {
	n := len(bits)
	m := float64(geo.ModulePx)
	off := float64(geo.QuietZone * geo.ModulePx)

	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if !dark(bits, x, y) {
				continue
			}
			px, py := off+float64(x)*m, off+float64(y)*m
			switch style.Shape {
			case ShapeSquare:
				dc.DrawRectangle(px, py, m, m)
			case ShapeCircle:
				dc.DrawCircle(px+m/2, py+m/2, m/2)
			default:
				// Liquid blocks: rounded cells bridged to dark neighbours.
				dc.DrawRoundedRectangle(px, py, m, m, 0.4*m)
				if dark(bits, x+1, y) {
					dc.DrawRectangle(px+m/2, py, m, m)
				}
				if dark(bits, x, y+1) {
					dc.DrawRectangle(px, py+m/2, m, m)
				}
			}
		}
	}
	dc.SetFillStyle(foreground(style, float64(geo.Size())))
	dc.Fill()
}

// foreground is the data-module paint: a linear gradient across the raster
// when the style has two or more stops, the flat colour otherwise.
func foreground(style Style, size float64) gg.Pattern {
	if len(style.Gradient) < 2 {
		return gg.NewSolidPattern(style.Foreground)
	}
	rad := style.GradientAngle * math.Pi / 180
	dx, dy := math.Cos(rad)*size/2, math.Sin(rad)*size/2
	g := gg.NewLinearGradient(size/2-dx, size/2-dy, size/2+dx, size/2+dy)
	last := float64(len(style.Gradient) - 1)
	for i, c := range style.Gradient {
		g.AddColorStop(float64(i)/last, c)
	}
	return g
}

// drawFinders paints each position-detection pattern as three nested rounded
// squares (7, 5 and 3 modules), keeping the 1:1:3:1:1 profile intact.
func drawFinders(dc *gg.Context, geo Geometry, style Style) {
	ink := style.FinderColor
	if ink.A == 0 {
		ink = style.Foreground
	}
	m := float64(geo.ModulePx)
	r := style.FinderRadius * m

	for _, f := range geo.FinderRegions() {
		x, y := float64(f.Min.X), float64(f.Min.Y)
		if f.Min.X > geo.SymbolBounds().Min.X {
			// Top-right region includes the separator on its left.
			x += m
		}
		if f.Min.Y > geo.SymbolBounds().Min.Y {
			y += m
		}
		rings := []struct {
			inset, edge, radius float64
			c                   color.Color
		}{
			{0, 7, 3 * r, ink},
			{1, 5, 2 * r, style.Background},
			{2, 3, 1.5 * r, ink},
		}
		for _, ring := range rings {
			dc.DrawRoundedRectangle(x+ring.inset*m, y+ring.inset*m, ring.edge*m, ring.edge*m, ring.radius)
			dc.SetColor(ring.c)
			dc.Fill()
		}
	}
}

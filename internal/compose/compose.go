// Package compose overlays a user logo or the default watermark on a QR raster.
package compose

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"

	"github.com/cristianadrielbraun/cardqr/internal/asset"
	"github.com/cristianadrielbraun/cardqr/internal/icons"
	"github.com/cristianadrielbraun/cardqr/internal/qr"
)

const (
	// MaxCoverage is the largest share of the module area a mark may cover.
	MaxCoverage = 0.20

	// LogoFraction sizes a user logo against the raster's shorter side.
	LogoFraction    = 0.18
	minLogoFraction = 0.15
	maxLogoFraction = 0.20

	// WatermarkFraction sizes the watermark plate against the shorter side.
	WatermarkFraction = 0.10
)

// Kind is the mark that was applied.
type Kind string

const (
	KindUserLogo  Kind = "user_logo"
	KindWatermark Kind = "watermark"
)

// Placement reports where a mark was painted.
type Placement struct {
	Kind Kind
	// Bounds is the painted region, ring or plate included.
	Bounds image.Rectangle
	// Coverage is the share of module pixels changed by the mark.
	Coverage float64
}

// Compositor paints marks. The zero value is not usable; see New.
type Compositor struct {
	LogoFraction      float64
	WatermarkFraction float64
	// Ring is the colour of the halo around a user logo and of the watermark plate.
	Ring color.RGBA
	// Brand tints the watermark glyph.
	Brand color.RGBA
}

// New returns a compositor with the default sizes and colours.
func New() *Compositor {
	return &Compositor{
		LogoFraction:      LogoFraction,
		WatermarkFraction: WatermarkFraction,
		Ring:              color.RGBA{0xff, 0xff, 0xff, 0xff},
		Brand:             color.RGBA{0x4c, 0x1d, 0x95, 0xff},
	}
}

// ApplyMark composites with the default compositor.
func ApplyMark(sym *qr.Symbol, mark *asset.Asset, isUserLogo bool) (*image.RGBA, Placement) {
	return New().ApplyMark(sym, mark, isUserLogo)
}

// ApplyMark returns a copy of the symbol raster with the user logo centred
// when isUserLogo is set and mark decodes, and the corner watermark otherwise.
// The symbol itself is never modified.
func (c *Compositor) ApplyMark(sym *qr.Symbol, mark *asset.Asset, isUserLogo bool) (*image.RGBA, Placement) {
	out := image.NewRGBA(sym.Image.Bounds())
	draw.Draw(out, out.Bounds(), sym.Image, sym.Image.Bounds().Min, draw.Src)

	var p Placement
	logo, ok := userLogo(mark, isUserLogo)
	if ok {
		p = c.drawLogo(out, sym.Geometry, logo)
	} else {
		p = c.drawWatermark(out, sym.Geometry)
	}
	p.Coverage = Coverage(sym.Image, out, sym.Geometry.SymbolBounds())
	return out, p
}

func userLogo(mark *asset.Asset, isUserLogo bool) (image.Image, bool) {
	if !isUserLogo || mark == nil {
		return nil, false
	}
	img, err := mark.Image()
	if err != nil {
		return nil, false
	}
	return img, true
}

func (c *Compositor) drawLogo(out *image.RGBA, geo qr.Geometry, logo image.Image) Placement {
	b := out.Bounds()
	short := min(b.Dx(), b.Dy())
	frac := math.Max(minLogoFraction, math.Min(maxLogoFraction, c.LogoFraction))

	ring := math.Max(3, math.Round(float64(short)*0.006))
	r := math.Round(frac * float64(short) / 2)
	r = fitDisc(r, ring, symbolArea(geo))
	d := int(2 * r)
	if d < 1 {
		return Placement{Kind: KindUserLogo}
	}

	cx := float64(b.Min.X) + float64(b.Dx())/2
	cy := float64(b.Min.Y) + float64(b.Dy())/2

	dc := gg.NewContextForRGBA(out)
	dc.DrawCircle(cx, cy, r+ring)
	dc.SetColor(c.Ring)
	dc.Fill()

	dc.DrawCircle(cx, cy, r)
	dc.Clip()
	dc.DrawImageAnchored(squareLogo(logo, d), int(cx), int(cy), 0.5, 0.5)
	dc.ResetClip()

	outer := int(math.Ceil(r + ring))
	return Placement{
		Kind:   KindUserLogo,
		Bounds: image.Rect(int(cx)-outer, int(cy)-outer, int(cx)+outer, int(cy)+outer).Intersect(b),
	}
}

// squareLogo centre-crops logo to a square and resamples it to d x d.
func squareLogo(logo image.Image, d int) *image.RGBA {
	lb := logo.Bounds()
	side := min(lb.Dx(), lb.Dy())
	cropped := imaging.CropCenter(logo, side, side)

	dst := image.NewRGBA(image.Rect(0, 0, d, d))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), cropped, cropped.Bounds(), draw.Over, nil)
	return dst
}

func (c *Compositor) drawWatermark(out *image.RGBA, geo qr.Geometry) Placement {
	b := out.Bounds()
	short := min(b.Dx(), b.Dy())
	frac := math.Min(c.WatermarkFraction, WatermarkFraction*2)
	plate := int(math.Round(frac * float64(short)))
	if limit := int(math.Sqrt(MaxCoverage * symbolArea(geo))); plate > limit {
		plate = limit
	}
	if plate < 4 {
		return Placement{Kind: KindWatermark}
	}

	rect := watermarkRect(geo, plate).Add(b.Min)
	if rect.Dx() < 4 {
		return Placement{Kind: KindWatermark}
	}
	plate = rect.Dx()
	x, y := float64(rect.Min.X), float64(rect.Min.Y)
	size := float64(plate)

	dc := gg.NewContextForRGBA(out)
	dc.DrawRoundedRectangle(x, y, size, size, size*0.2)
	dc.SetColor(c.Ring)
	dc.Fill()

	pad := int(math.Max(1, math.Round(size*0.15)))
	if glyph, err := icons.Rasterize(icons.Brand, plate-2*pad, plate-2*pad, c.Brand); err == nil {
		dc.DrawImage(glyph, rect.Min.X+pad, rect.Min.Y+pad)
	}

	return Placement{Kind: KindWatermark, Bounds: rect}
}

// alignmentClearance is how far in from the module edge the bottom-right
// alignment pattern ends; modules closer to the corner hold only data.
const alignmentClearance = 4

// watermarkRect places the plate in the bottom-right corner, starting past
// the last alignment pattern and running out into the quiet zone. The plate
// shrinks to fit between there and the raster edge.
func watermarkRect(geo qr.Geometry, plate int) image.Rectangle {
	s := geo.SymbolBounds()
	px := geo.ModulePx
	start := s.Max.X - alignmentClearance*px
	edge := geo.Size() - max(1, px/2)
	if limit := edge - start; plate > limit {
		plate = limit
	}
	return image.Rect(start, start, start+plate, start+plate)
}

// fitDisc shrinks r until a disc of radius r+ring fits within MaxCoverage of area.
func fitDisc(r, ring, area float64) float64 {
	limit := math.Sqrt(MaxCoverage*area/math.Pi) - ring
	if r > limit {
		r = math.Floor(limit)
	}
	return math.Max(r, 0)
}

func symbolArea(geo qr.Geometry) float64 {
	s := geo.SymbolBounds()
	return float64(s.Dx() * s.Dy())
}

// Coverage is the share of pixels in area that differ between before and after.
func Coverage(before, after image.Image, area image.Rectangle) float64 {
	area = area.Intersect(before.Bounds()).Intersect(after.Bounds())
	total := area.Dx() * area.Dy()
	if total == 0 {
		return 0
	}
	changed := 0
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			if !sameColor(before.At(x, y), after.At(x, y)) {
				changed++
			}
		}
	}
	return float64(changed) / float64(total)
}

func sameColor(a, b color.Color) bool {
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	return ar == br && ag == bg && ab == bb && aa == ba
}

// DarkFraction is the share of pixels in area darker than mid-grey.
func DarkFraction(img image.Image, area image.Rectangle) float64 {
	area = area.Intersect(img.Bounds())
	total := area.Dx() * area.Dy()
	if total == 0 {
		return 0
	}
	dark := 0
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			if color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y < 0x80 {
				dark++
			}
		}
	}
	return float64(dark) / float64(total)
}

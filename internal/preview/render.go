package preview

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/cristianadrielbraun/cardqr/internal/icons"
	"github.com/cristianadrielbraun/cardqr/internal/vcard"
)

// Theme holds the card colours.
type Theme struct {
	Primary    color.RGBA
	Text       color.RGBA
	Light      color.RGBA
	Background color.RGBA
}

// DefaultTheme is the purple professional card.
var DefaultTheme = Theme{
	Primary:    color.RGBA{0x4c, 0x1d, 0x95, 0xff},
	Text:       color.RGBA{0x1f, 0x29, 0x37, 0xff},
	Light:      color.RGBA{0xf3, 0xf4, 0xf6, 0xff},
	Background: color.RGBA{0xff, 0xff, 0xff, 0xff},
}

const (
	DefaultWidth  = 300
	DefaultHeight = 400

	avatarWidth  = 80
	avatarHeight = 100
	avatarTop    = 40
	bandHeight   = 36
	lineHeight   = 16
	iconSize     = 11
	margin       = 15
)

// Renderer draws card previews. The zero value uses the defaults.
type Renderer struct {
	Width  int
	Height int
	Theme  Theme
}

// Render draws a card preview with the default renderer.
func Render(r vcard.Record) (*image.RGBA, error) {
	return (&Renderer{}).Render(r)
}

// Render draws the card: a light header holding the photo or a placeholder
// block, a band with name and role, then one line per contact detail.
func (rd *Renderer) Render(r vcard.Record) (*image.RGBA, error) {
	w, h := rd.size()
	theme := rd.theme()
	faces, err := loadFaces()
	if err != nil {
		return nil, err
	}
	s := Summarize(r)

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	dc := gg.NewContextForRGBA(img)
	dc.SetColor(theme.Background)
	dc.Clear()

	header := h / 2
	dc.SetColor(theme.Light)
	dc.DrawRectangle(0, 0, float64(w), float64(header))
	dc.Fill()

	ax := w/2 - avatarWidth/2
	if photo := avatar(r); photo != nil {
		dc.DrawImage(photo, ax, avatarTop)
	} else {
		dc.SetColor(theme.Primary)
		dc.DrawRectangle(float64(ax), avatarTop, avatarWidth, avatarHeight)
		dc.Fill()
	}

	dc.SetColor(theme.Primary)
	dc.DrawRectangle(0, float64(header), float64(w), bandHeight)
	dc.Fill()

	dc.SetColor(color.White)
	dc.SetFontFace(faces.bold)
	dc.DrawStringAnchored(s.BandName, float64(w)/2, float64(header)+12, 0.5, 0.5)
	dc.SetFontFace(faces.regular)
	dc.DrawStringAnchored(s.BandRole, float64(w)/2, float64(header)+26, 0.5, 0.5)

	y := header + bandHeight + 10
	dc.SetFontFace(faces.small)
	for _, line := range s.Lines {
		if y+lineHeight > h {
			break
		}
		if glyph, err := icons.Rasterize(line.Icon, iconSize, iconSize, theme.Primary); err == nil {
			dc.DrawImage(glyph, margin, y)
		}
		dc.SetColor(theme.Text)
		dc.DrawStringAnchored(line.String(), margin+iconSize+6, float64(y)+iconSize/2, 0, 0.5)
		y += lineHeight
	}
	return img, nil
}

func (rd *Renderer) size() (int, int) {
	w, h := rd.Width, rd.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return w, h
}

func (rd *Renderer) theme() Theme {
	if rd.Theme == (Theme{}) {
		return DefaultTheme
	}
	return rd.Theme
}

func avatar(r vcard.Record) image.Image {
	if !r.HasPhoto() {
		return nil
	}
	img, err := r.Photo.Image()
	if err != nil {
		return nil
	}
	return imaging.Fill(img, avatarWidth, avatarHeight, imaging.Center, imaging.Lanczos)
}

type faceSet struct {
	bold    font.Face
	regular font.Face
	small   font.Face
}

var (
	fontsOnce   sync.Once
	boldFont    *opentype.Font
	regularFont *opentype.Font
	fontsErr    error
)

// loadFaces builds fresh faces per render; font.Face values are not safe for
// concurrent use, the parsed fonts are.
func loadFaces() (faceSet, error) {
	fontsOnce.Do(func() {
		if boldFont, fontsErr = opentype.Parse(gobold.TTF); fontsErr != nil {
			return
		}
		regularFont, fontsErr = opentype.Parse(goregular.TTF)
	})
	if fontsErr != nil {
		return faceSet{}, fmt.Errorf("parse font: %w", fontsErr)
	}

	var fs faceSet
	var err error
	if fs.bold, err = newFace(boldFont, 14); err != nil {
		return faceSet{}, err
	}
	if fs.regular, err = newFace(regularFont, 12); err != nil {
		return faceSet{}, err
	}
	if fs.small, err = newFace(regularFont, 10); err != nil {
		return faceSet{}, err
	}
	return fs, nil
}

func newFace(f *opentype.Font, size float64) (font.Face, error) {
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("load font face: %w", err)
	}
	return face, nil
}

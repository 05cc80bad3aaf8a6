package icons

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSVGTintsCurrentColor(t *testing.T) {
	src, err := SVG(Brand, color.RGBA{0x4c, 0x1d, 0x95, 0xff})
	require.NoError(t, err)
	assert.Contains(t, string(src), `fill="#4c1d95"`)
	assert.NotContains(t, string(src), "currentColor")
}

func TestSVGUnknownName(t *testing.T) {
	_, err := SVG(Name("rocket"), color.Black)
	assert.Error(t, err)
}

func TestRasterizeDrawsInk(t *testing.T) {
	for _, name := range []Name{Brand, Phone, Mail, Globe, Pin} {
		t.Run(string(name), func(t *testing.T) {
			img, err := Rasterize(name, 32, 32, color.Black)
			require.NoError(t, err)
			assert.Equal(t, 32, img.Bounds().Dx())

			ink := 0
			for i := 3; i < len(img.Pix); i += 4 {
				if img.Pix[i] > 0 {
					ink++
				}
			}
			assert.Positive(t, ink)
			assert.Less(t, ink, 32*32)
		})
	}
}

func TestRasterizeRejectsEmptySize(t *testing.T) {
	_, err := Rasterize(Brand, 0, 10, color.Black)
	assert.Error(t, err)
}

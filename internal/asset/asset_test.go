package asset

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestFromBytesDecodesPNG(t *testing.T) {
	a := FromBytes(pngBytes(t, 30, 20))
	assert.True(t, a.Decoded())
	assert.Equal(t, MediaPNG, a.MediaType())
	assert.Equal(t, 30, a.Width())
	assert.Equal(t, 20, a.Height())
}

func TestFromBytesKeepsUndecodableData(t *testing.T) {
	a := FromBytes([]byte("definitely not an image"))
	assert.False(t, a.Decoded())
	_, err := a.Image()
	assert.ErrorIs(t, err, ErrUndecodable)
	assert.Equal(t, "definitely not an image", string(a.Bytes()))
	assert.Equal(t, 0, a.Width())
}

func TestIsImage(t *testing.T) {
	assert.True(t, IsImage(pngBytes(t, 2, 2)))
	assert.False(t, IsImage([]byte("plain text")))
}

func TestAutoCropExactSize(t *testing.T) {
	cases := []struct {
		name   string
		w, h   int
		tw, th int
	}{
		{"wide", 800, 200, 400, 350},
		{"tall", 200, 900, 400, 350},
		{"same aspect", 800, 700, 400, 350},
		{"square target", 640, 480, 64, 64},
		{"one pixel wide", 1, 50, 400, 350},
		{"one pixel tall", 50, 1, 400, 350},
		{"single pixel", 1, 1, 40, 30},
		{"upscale", 10, 10, 100, 50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := AutoCrop(FromBytes(pngBytes(t, tc.w, tc.h)), tc.tw, tc.th)
			require.True(t, out.Decoded())
			assert.Equal(t, tc.tw, out.Width())
			assert.Equal(t, tc.th, out.Height())
			assert.Equal(t, MediaJPEG, out.MediaType())
		})
	}
}

func TestAutoCropPassesThroughUndecodable(t *testing.T) {
	in := FromBytes([]byte{0x00, 0x01, 0x02})
	out := AutoCrop(in, 400, 350)
	assert.Same(t, in, out)
}

func TestAutoCropDoesNotModifyInput(t *testing.T) {
	data := pngBytes(t, 120, 40)
	in := FromBytes(data)
	_ = AutoCrop(in, 40, 40)
	assert.Equal(t, data, in.Bytes())
	assert.Equal(t, 120, in.Width())
}

func TestSourceRect(t *testing.T) {
	cases := []struct {
		name   string
		w, h   int
		tw, th int
		want   image.Rectangle
	}{
		{"wider crops horizontally", 400, 100, 100, 100, image.Rect(150, 0, 250, 100)},
		{"taller crops vertically", 100, 400, 100, 100, image.Rect(0, 150, 100, 250)},
		{"matching aspect keeps all", 400, 350, 800, 700, image.Rect(0, 0, 400, 350)},
		{"degenerate column", 1, 10, 4, 3, image.Rect(0, 4, 1, 5)},
		{"degenerate row", 10, 1, 1, 1, image.Rect(4, 0, 5, 1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SourceRect(tc.w, tc.h, tc.tw, tc.th)
			assert.Equal(t, tc.want, got)
			assert.True(t, got.In(image.Rect(0, 0, tc.w, tc.h)), "rect %v escapes source", got)
			assert.False(t, got.Empty())
		})
	}
}

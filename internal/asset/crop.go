package asset

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Card photo frame used by the digital card layout.
const (
	DefaultPhotoWidth  = 400
	DefaultPhotoHeight = 350
	DefaultJPEGQuality = 90
)

// Cropper fills a fixed frame with the centre of a photo.
type Cropper struct {
	// Quality is the JPEG quality of the cropped output.
	Quality int
	Filter  imaging.ResampleFilter
}

// NewCropper returns a Cropper producing JPEG output at quality.
func NewCropper(quality int) *Cropper {
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	return &Cropper{Quality: quality, Filter: imaging.Lanczos}
}

// AutoCrop crops a to the aspect ratio of targetWidth x targetHeight and resamples
// it to exactly that size. If a cannot be decoded (or the target is not a real
// frame) a is returned unchanged: cropping improves quality but never blocks.
func (c *Cropper) AutoCrop(a *Asset, targetWidth, targetHeight int) *Asset {
	if a == nil || targetWidth <= 0 || targetHeight <= 0 {
		return a
	}
	src, err := a.Image()
	if err != nil {
		return a
	}
	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return a
	}

	rect := SourceRect(b.Dx(), b.Dy(), targetWidth, targetHeight).Add(b.Min)
	cropped := imaging.Crop(src, rect)
	filled := imaging.Resize(cropped, targetWidth, targetHeight, c.Filter)

	out, err := FromImage(filled, c.Quality)
	if err != nil {
		return a
	}
	return out
}

// AutoCrop is Cropper.AutoCrop with the default JPEG quality.
func AutoCrop(a *Asset, targetWidth, targetHeight int) *Asset {
	return NewCropper(DefaultJPEGQuality).AutoCrop(a, targetWidth, targetHeight)
}

// SourceRect returns the centred region of a width x height image that has the
// aspect ratio of the target frame. The rectangle is clamped to the image and is
// never empty.
func SourceRect(width, height, targetWidth, targetHeight int) image.Rectangle {
	imgAspect := float64(width) / float64(height)
	targetAspect := float64(targetWidth) / float64(targetHeight)

	sx, sy := 0.0, 0.0
	sw, sh := float64(width), float64(height)
	if imgAspect > targetAspect {
		// wider than the frame: keep full height
		sw = float64(height) * targetAspect
		sx = (float64(width) - sw) / 2
	} else {
		sh = float64(width) / targetAspect
		sy = (float64(height) - sh) / 2
	}

	x0 := clamp(int(math.Floor(sx)), 0, width-1)
	y0 := clamp(int(math.Floor(sy)), 0, height-1)
	w := clamp(int(math.Round(sw)), 1, width-x0)
	h := clamp(int(math.Round(sh)), 1, height-y0)
	return image.Rect(x0, y0, x0+w, y0+h)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

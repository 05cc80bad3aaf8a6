// Package asset holds decoded raster images as they move through the card pipeline.
package asset

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
)

// Media types as they appear in a vCard PHOTO line.
const (
	MediaJPEG    = "JPEG"
	MediaPNG     = "PNG"
	MediaGIF     = "GIF"
	MediaUnknown = ""
)

// ErrUndecodable is returned when the bytes of an asset are not a supported image.
var ErrUndecodable = errors.New("asset: image could not be decoded")

// Asset is an encoded image plus its decoded raster. An Asset is never
// modified after construction; transforms return a new Asset.
type Asset struct {
	data      []byte
	mediaType string
	img       image.Image
}

// FromBytes wraps uploaded or captured image bytes. Decoding failures are not
// reported here: the asset keeps its bytes and Image returns ErrUndecodable.
func FromBytes(data []byte) *Asset {
	a := &Asset{data: data, mediaType: sniffMediaType(data)}
	if img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true)); err == nil {
		a.img = img
	}
	return a
}

// FromImage encodes img as JPEG at the given quality.
// Transparent pixels are flattened onto white.
func FromImage(img image.Image, quality int) (*Asset, error) {
	b := img.Bounds()
	flat := imaging.New(b.Dx(), b.Dy(), color.White)
	flat = imaging.Overlay(flat, img, image.Point{}, 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, flat, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return &Asset{data: buf.Bytes(), mediaType: MediaJPEG, img: flat}, nil
}

// FromPNG encodes img losslessly.
func FromPNG(img image.Image) (*Asset, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return &Asset{data: buf.Bytes(), mediaType: MediaPNG, img: img}, nil
}

// Bytes returns a copy of the encoded image.
func (a *Asset) Bytes() []byte {
	return append([]byte(nil), a.data...)
}

// Len is the encoded size in bytes.
func (a *Asset) Len() int { return len(a.data) }

// MediaType is the vCard TYPE value for the encoded bytes, e.g. "JPEG".
func (a *Asset) MediaType() string { return a.mediaType }

// Base64 is the standard base64 form embedded in vCard PHOTO lines.
func (a *Asset) Base64() string {
	return base64.StdEncoding.EncodeToString(a.data)
}

// Image returns the decoded raster.
func (a *Asset) Image() (image.Image, error) {
	if a.img == nil {
		return nil, ErrUndecodable
	}
	return a.img, nil
}

// Decoded reports whether the asset carries a usable raster.
func (a *Asset) Decoded() bool { return a.img != nil }

// Width of the decoded raster, 0 when undecodable.
func (a *Asset) Width() int {
	if a.img == nil {
		return 0
	}
	return a.img.Bounds().Dx()
}

// Height of the decoded raster, 0 when undecodable.
func (a *Asset) Height() int {
	if a.img == nil {
		return 0
	}
	return a.img.Bounds().Dy()
}

func sniffMediaType(data []byte) string {
	switch mimetype.Detect(data).String() {
	case "image/jpeg":
		return MediaJPEG
	case "image/png":
		return MediaPNG
	case "image/gif":
		return MediaGIF
	default:
		return MediaUnknown
	}
}

// IsImage reports whether data sniffs as an image/* type. Used to reject
// uploads before they reach the pipeline.
func IsImage(data []byte) bool {
	return strings.HasPrefix(mimetype.Detect(data).String(), "image/")
}

// Package budget decides whether a contact photo fits in the QR payload.
package budget

import (
	"log/slog"

	"github.com/cristianadrielbraun/cardqr/internal/asset"
	"github.com/cristianadrielbraun/cardqr/internal/qr"
	"github.com/cristianadrielbraun/cardqr/internal/vcard"
)

// MaxPhotoPayloadBytes is the largest base64 photo the payload will carry.
const MaxPhotoPayloadBytes = 2000

// Path records which branch of the policy produced a payload.
type Path string

const (
	PathNoPhoto         Path = "no_photo"
	PathPhotoIncluded   Path = "photo_included"
	PathPhotoOverBudget Path = "photo_over_budget"
	// PathPhotoDroppedAtRender is set by the caller when the generator
	// rejected a with-photo payload and the render was retried without it.
	PathPhotoDroppedAtRender Path = "photo_dropped_at_render"
)

// Decision describes what Select did.
type Decision struct {
	Path Path
	// PhotoBytes is the base64 length of the photo, zero without one.
	PhotoBytes int
	// PayloadBytes is the length of the with-photo payload that was evaluated.
	PayloadBytes int
	Limit        int
}

// PhotoIncluded reports whether the selected payload carries the photo.
func (d Decision) PhotoIncluded() bool { return d.Path == PathPhotoIncluded }

// Policy selects between the with-photo and no-photo encodings of a record.
type Policy struct {
	// MaxPhotoBytes caps the encoded photo field.
	MaxPhotoBytes int
	// MaxPayloadBytes caps the whole payload; it defaults to the level-H capacity.
	MaxPayloadBytes int

	logger *slog.Logger
}

// NewPolicy returns a policy with the given photo budget. A non-positive
// budget means MaxPhotoPayloadBytes.
func NewPolicy(maxPhotoBytes int, logger *slog.Logger) *Policy {
	if maxPhotoBytes <= 0 {
		maxPhotoBytes = MaxPhotoPayloadBytes
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Policy{
		MaxPhotoBytes:   maxPhotoBytes,
		MaxPayloadBytes: qr.CapacityHighBytes,
		logger:          logger,
	}
}

// Select never fails: it returns the with-photo payload when it fits and
// the no-photo payload otherwise. The record itself is left untouched.
func (p *Policy) Select(record vcard.Record, photo *asset.Asset) (vcard.Payload, Decision) {
	if photo == nil || photo.Len() == 0 {
		return vcard.Encode(record.WithPhoto(nil), false), Decision{Path: PathNoPhoto, Limit: p.maxPhoto()}
	}

	withPhoto := vcard.Encode(record.WithPhoto(photo), true)
	d := Decision{
		PhotoBytes:   withPhoto.PhotoBytes,
		PayloadBytes: withPhoto.ByteLength,
		Limit:        p.maxPhoto(),
	}
	if withPhoto.PhotoBytes <= p.maxPhoto() && withPhoto.ByteLength <= p.maxPayload() {
		d.Path = PathPhotoIncluded
		return withPhoto, d
	}

	d.Path = PathPhotoOverBudget
	p.log().Warn("photo dropped from payload",
		"photo_bytes", d.PhotoBytes,
		"payload_bytes", d.PayloadBytes,
		"limit", d.Limit,
		"capacity", p.maxPayload(),
	)
	return vcard.Encode(record.WithPhoto(nil), false), d
}

func (p *Policy) maxPhoto() int {
	if p.MaxPhotoBytes <= 0 {
		return MaxPhotoPayloadBytes
	}
	return p.MaxPhotoBytes
}

func (p *Policy) maxPayload() int {
	if p.MaxPayloadBytes <= 0 {
		return qr.CapacityHighBytes
	}
	return p.MaxPayloadBytes
}

func (p *Policy) log() *slog.Logger {
	if p.logger == nil {
		return slog.Default()
	}
	return p.logger
}

// Package vcard builds and reads the vCard 3.0 text embedded in contact QR codes.
package vcard

import (
	"strings"

	"github.com/cristianadrielbraun/cardqr/internal/asset"
)

// Social holds the profile links a card can carry, one per platform.
type Social struct {
	LinkedIn  string
	X         string
	Facebook  string
	Instagram string
	YouTube   string
}

// URLs returns the non-empty links in emission order.
func (s Social) URLs() []string {
	var out []string
	for _, u := range []string{s.LinkedIn, s.X, s.Facebook, s.Instagram, s.YouTube} {
		if v := strings.TrimSpace(u); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Record is the contact as typed into the card form. A new Record is built for
// every edit; values are never changed in place.
type Record struct {
	FirstName   string
	LastName    string
	JobTitle    string
	Company     string
	Department  string
	MobilePhone string
	WorkPhone   string
	Email       string
	Website     string
	Address     string
	Social      Social

	// Photo is optional.
	Photo *asset.Asset
}

// FullName is the trimmed "First Last".
func (r Record) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(r.FirstName) + " " + strings.TrimSpace(r.LastName))
}

// HasPhoto reports whether a photo is attached.
func (r Record) HasPhoto() bool { return r.Photo != nil && r.Photo.Len() > 0 }

// WithPhoto returns a copy of r carrying photo.
func (r Record) WithPhoto(photo *asset.Asset) Record {
	r.Photo = photo
	return r
}

// Empty reports whether no text field is populated.
func (r Record) Empty() bool {
	for _, v := range []string{
		r.FirstName, r.LastName, r.JobTitle, r.Company, r.Department,
		r.MobilePhone, r.WorkPhone, r.Email, r.Website, r.Address,
	} {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return len(r.Social.URLs()) == 0
}

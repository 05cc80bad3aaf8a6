package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/cardqr/internal/asset"
	"github.com/cristianadrielbraun/cardqr/internal/vcard"
)

var errBadUpload = errors.New("bad upload")

// readRecord builds a contact from the posted form. The photo, when present,
// is attached as uploaded; cropping happens downstream.
func (h *Handler) readRecord(c *gin.Context) (vcard.Record, error) {
	photo, err := h.readUpload(c, "photo")
	if err != nil {
		return vcard.Record{}, err
	}
	return vcard.Record{
		FirstName:   c.PostForm("firstName"),
		LastName:    c.PostForm("lastName"),
		JobTitle:    c.PostForm("jobTitle"),
		Company:     c.PostForm("company"),
		Department:  c.PostForm("department"),
		MobilePhone: c.PostForm("mobile"),
		WorkPhone:   c.PostForm("workPhone"),
		Email:       c.PostForm("email"),
		Website:     c.PostForm("website"),
		Address:     c.PostForm("address"),
		Social: vcard.Social{
			LinkedIn:  c.PostForm("linkedin"),
			X:         firstNonEmpty(c.PostForm("x"), c.PostForm("twitter")),
			Facebook:  c.PostForm("facebook"),
			Instagram: c.PostForm("instagram"),
			YouTube:   c.PostForm("youtube"),
		},
		Photo: photo,
	}, nil
}

// readUpload returns the named image upload, or nil when none was sent.
func (h *Handler) readUpload(c *gin.Context, field string) (*asset.Asset, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errBadUpload, field, err)
	}
	if fh.Size > h.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", errBadUpload, field, h.cfg.MaxUploadBytes)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errBadUpload, field, err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errBadUpload, field, err)
	}
	if int64(len(data)) > h.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", errBadUpload, field, h.cfg.MaxUploadBytes)
	}
	if len(data) == 0 {
		return nil, nil
	}
	if !asset.IsImage(data) {
		return nil, fmt.Errorf("%w: %s is not an image", errBadUpload, field)
	}
	return asset.FromBytes(data), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

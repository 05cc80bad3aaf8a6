package handlers

import (
	"fmt"
	"image/png"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/cardqr/internal/asset"
	"github.com/cristianadrielbraun/cardqr/internal/preview"
	"github.com/cristianadrielbraun/cardqr/internal/vcard"
	"github.com/cristianadrielbraun/cardqr/web/components"
)

// CardPreview renders the HTML card for live editing feedback.
func (h *Handler) CardPreview(c *gin.Context) {
	record, err := h.readRecord(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var props components.CardProps
	if photo := h.cropPhoto(record.Photo); photo != nil {
		props.PhotoSrc = dataURI(photo)
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := components.CardPreview(preview.Summarize(record), props).Render(c.Request.Context(), c.Writer); err != nil {
		h.logger.Error("render card preview", "error", err)
	}
}

// CardPreviewPNG renders the card as an image.
func (h *Handler) CardPreviewPNG(c *gin.Context) {
	record, err := h.readRecord(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	img, err := preview.Render(record.WithPhoto(h.cropPhoto(record.Photo)))
	if err != nil {
		h.logger.Error("render card image", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render card preview"})
		return
	}
	c.Header("Content-Type", "image/png")
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, vcard.Filename(record, "card", "png")))
	if err := png.Encode(c.Writer, img); err != nil {
		h.logger.Error("encode card image", "error", err)
	}
}

// VCardFile serves the full .vcf for the contact. The photo is always
// embedded; no QR capacity applies to files.
func (h *Handler) VCardFile(c *gin.Context) {
	record, err := h.readRecord(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	record = record.WithPhoto(h.cropPhoto(record.Photo))

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, vcard.Filename(record, "vcard", "vcf")))
	c.Data(http.StatusOK, "text/vcard; charset=utf-8", vcard.EncodeFile(record))
}

func (h *Handler) cropPhoto(photo *asset.Asset) *asset.Asset {
	if photo == nil {
		return nil
	}
	return h.cropper.AutoCrop(photo, h.cfg.PhotoWidth, h.cfg.PhotoHeight)
}

func dataURI(a *asset.Asset) string {
	mt := "image/jpeg"
	switch a.MediaType() {
	case asset.MediaPNG:
		mt = "image/png"
	case asset.MediaGIF:
		mt = "image/gif"
	}
	return "data:" + mt + ";base64," + a.Base64()
}

package handlers

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/cardqr/internal/pipeline"
	"github.com/cristianadrielbraun/cardqr/internal/qr"
	toast "github.com/cristianadrielbraun/cardqr/web/components/ui/toast"
)

// VCardQR renders the contact in the posted form as a branded QR image.
func (h *Handler) VCardQR(c *gin.Context) {
	record, err := h.readRecord(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	logo, err := h.readUpload(c, "logo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Parse format parameter (default to PNG)
	format := strings.ToLower(c.DefaultPostForm("format", "png"))
	if format == "jpeg" {
		format = "jpg"
	}
	if format != "png" && format != "jpg" {
		format = "png"
	}

	style := h.styleFromForm(c)
	res, err := h.pipeline.Generate(c.Request.Context(), pipeline.Request{
		Record:       record,
		Logo:         logo,
		LogoUnlocked: logo != nil && h.entitlements.CustomLogo(c),
		Style:        &style,
	})
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.Header("X-QR-Tier", string(res.UsedStyle))
	c.Header("X-QR-Photo", strconv.FormatBool(res.PhotoIncluded))
	c.Header("X-QR-Mark", string(res.Mark.Kind))
	c.Header("X-Render-ID", res.ID)
	c.Header("Cache-Control", "no-store")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, res.Filename(format)))

	if format == "jpg" {
		// Composite onto opaque background, encode JPEG
		out := flatten(res.Raster, style.Background)
		c.Header("Content-Type", "image/jpeg")
		if err := jpeg.Encode(c.Writer, out, &jpeg.Options{Quality: 92}); err != nil {
			h.logger.Error("encode jpeg", "error", err, "render_id", res.ID)
		}
		return
	}

	c.Header("Content-Type", "image/png")
	if err := png.Encode(c.Writer, res.Raster); err != nil {
		h.logger.Error("encode png", "error", err, "render_id", res.ID)
	}
}

// renderError maps pipeline failures to 422; HTMX callers get a toast.
func (h *Handler) renderError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "Failed to generate QR code"
	if errors.Is(err, pipeline.ErrCouldNotGenerate) {
		status = http.StatusUnprocessableEntity
		msg = "Could not generate the QR code for this contact"
	}
	if c.GetHeader("HX-Request") == "true" {
		h.renderToast(c, status, toast.Props{
			Title:       "QR generation failed",
			Description: msg,
			Variant:     toast.VariantError,
			Dismissible: true,
		})
		return
	}
	c.JSON(status, gin.H{"error": msg})
}

// styleFromForm overlays the posted colour and shape options on the
// pipeline's default style.
func (h *Handler) styleFromForm(c *gin.Context) qr.Style {
	style := h.pipeline.Style()
	if h.cfg.QRSizePx > 0 {
		style.SizePx = h.cfg.QRSizePx
	}

	style.Background = parseColorParam(c.PostForm("bg"), style.Background)
	if style.Background.A == 0 {
		// Symbols need an opaque light background to scan reliably.
		style.Background = color.RGBA{255, 255, 255, 255}
	}

	switch c.DefaultPostForm("colorMode", "gradient") {
	case "flat":
		style.Foreground = inkColorParam(c.PostForm("fg"), style.Foreground)
		style.Gradient = nil
		style.FinderColor = style.Foreground
	default:
		start, end := style.Foreground, style.Foreground
		if len(style.Gradient) >= 2 {
			start, end = style.Gradient[0], style.Gradient[len(style.Gradient)-1]
		}
		start = inkColorParam(c.PostForm("gradientStart"), start)
		end = inkColorParam(c.PostForm("gradientEnd"), end)
		style.Gradient = []color.RGBA{start, end}
		style.FinderColor = start
	}

	switch qr.Shape(c.PostForm("qrShape")) {
	case qr.ShapeCircle:
		style.Shape = qr.ShapeCircle
	case qr.ShapeSquare:
		style.Shape = qr.ShapeSquare
	case qr.ShapeRounded:
		style.Shape = qr.ShapeRounded
	}
	return style
}

// flatten composites img onto an opaque background.
func flatten(img image.Image, bg color.RGBA) *image.RGBA {
	bg.A = 255
	b := img.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, &image.Uniform{C: bg}, image.Point{}, draw.Src)
	draw.Draw(out, b, img, b.Min, draw.Over)
	return out
}

// inkColorParam parses a module colour. Transparent ink would leave an
// invisible symbol, so it falls back to def.
func inkColorParam(param string, def color.RGBA) color.RGBA {
	if c := parseColorParam(param, def); c.A != 0 {
		return c
	}
	return def
}

// Helper function to parse hex color parameters
func parseColorParam(param string, defaultColor color.RGBA) color.RGBA {
	if param == "" {
		return defaultColor
	}

	// Handle transparent background
	if strings.ToLower(param) == "transparent" {
		return color.RGBA{0, 0, 0, 0}
	}

	param = strings.TrimPrefix(param, "#")
	if len(param) != 6 {
		return defaultColor
	}

	r, err1 := strconv.ParseUint(param[0:2], 16, 8)
	g, err2 := strconv.ParseUint(param[2:4], 16, 8)
	b, err3 := strconv.ParseUint(param[4:6], 16, 8)
	if err1 != nil || err2 != nil || err3 != nil {
		return defaultColor
	}

	return color.RGBA{uint8(r), uint8(g), uint8(b), 255}
}

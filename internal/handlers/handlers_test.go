package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianadrielbraun/cardqr/internal/config"
	"github.com/cristianadrielbraun/cardqr/internal/pipeline"
	"github.com/cristianadrielbraun/cardqr/internal/qr"
	"github.com/cristianadrielbraun/cardqr/internal/vcard"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		Port:                 "8080",
		QRSizePx:             256,
		PhotoWidth:           400,
		PhotoHeight:          350,
		PhotoJPEGQuality:     90,
		MaxPhotoPayloadBytes: 2000,
		MaxUploadBytes:       1 << 20,
		LogLevel:             "info",
	}
}

func newRouter(cfg *config.Config, opts pipeline.Options) (*gin.Engine, *Handler) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts.Logger = logger
	h := New(pipeline.New(opts), cfg, logger)
	r := gin.New()
	h.Register(r)
	return r, h
}

type upload struct {
	field string
	name  string
	data  []byte
}

func multipartRequest(t *testing.T, path string, fields map[string]string, files ...upload) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		w, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = w.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+3] = 0xc0, 0xff
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

var avaFields = map[string]string{"firstName": "Ava", "lastName": "Lee", "email": "ava@x.com"}

type failing struct{}

func (failing) Render(vcard.Payload, qr.Style) (*qr.Symbol, error) {
	return nil, &qr.RenderFailure{Tier: qr.TierBasic, Err: errors.New("no encoder")}
}

func TestVCardQRPNG(t *testing.T) {
	r, _ := newRouter(testConfig(), pipeline.Options{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "/api/vcard/qr", avaFields))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "styled", w.Header().Get("X-QR-Tier"))
	assert.Equal(t, "false", w.Header().Get("X-QR-Photo"))
	assert.Equal(t, "watermark", w.Header().Get("X-QR-Mark"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="Ava_Lee_qr.png"`)

	img, err := png.Decode(w.Body)
	require.NoError(t, err)
	assert.LessOrEqual(t, img.Bounds().Dx(), 256)
	assert.Equal(t, img.Bounds().Dx(), img.Bounds().Dy())
}

func TestVCardQRJPEG(t *testing.T) {
	r, _ := newRouter(testConfig(), pipeline.Options{})
	fields := map[string]string{"firstName": "Ava", "format": "jpeg"}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "/api/vcard/qr", fields))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "Ava_qr.jpg")
}

func TestVCardQRLogoEntitlement(t *testing.T) {
	logo := upload{field: "logo", name: "logo.png", data: pngBytes(t, 40, 40)}

	r, _ := newRouter(testConfig(), pipeline.Options{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "/api/vcard/qr", avaFields, logo))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "watermark", w.Header().Get("X-QR-Mark"))

	r, h := newRouter(testConfig(), pipeline.Options{})
	h.WithEntitlements(StaticEntitlements(true))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "/api/vcard/qr", avaFields, logo))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user_logo", w.Header().Get("X-QR-Mark"))
}

func TestVCardQRRejectsBadUploads(t *testing.T) {
	cfg := testConfig()
	cfg.MaxUploadBytes = 64
	r, _ := newRouter(cfg, pipeline.Options{})

	cases := map[string]upload{
		"not an image": {field: "photo", name: "notes.txt", data: []byte("hello there, not an image")},
		"too large":    {field: "photo", name: "big.png", data: pngBytes(t, 64, 64)},
		"bad logo":     {field: "logo", name: "logo.txt", data: []byte("plain text")},
	}
	for name, f := range cases {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, multipartRequest(t, "/api/vcard/qr", avaFields, f))
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestVCardQRFailure(t *testing.T) {
	r, _ := newRouter(testConfig(), pipeline.Options{Renderer: failing{}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "/api/vcard/qr", avaFields))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "Could not generate")

	req := multipartRequest(t, "/api/vcard/qr", avaFields)
	req.Header.Set("HX-Request", "true")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "QR generation failed")
	assert.Contains(t, w.Body.String(), `data-variant="error"`)
}

func TestVCardQRAcceptsURLEncodedForm(t *testing.T) {
	r, _ := newRouter(testConfig(), pipeline.Options{})
	form := url.Values{"firstName": {"Ava"}, "colorMode": {"flat"}, "fg": {"#112233"}}
	req := httptest.NewRequest(http.MethodPost, "/api/vcard/qr", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCardPreviewHTML(t *testing.T) {
	r, _ := newRouter(testConfig(), pipeline.Options{})
	fields := map[string]string{"firstName": "Ava", "lastName": "Lee", "jobTitle": "Engineer", "mobile": "+1 555"}
	photo := upload{field: "photo", name: "me.png", data: pngBytes(t, 50, 50)}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "/api/vcard/preview", fields, photo))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "AVA LEE")
	assert.Contains(t, body, "Mobile: +1 555")
	assert.Contains(t, body, `src="data:image/jpeg;base64,`)
}

func TestCardPreviewPNG(t *testing.T) {
	r, _ := newRouter(testConfig(), pipeline.Options{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "/api/vcard/preview.png", avaFields))

	require.Equal(t, http.StatusOK, w.Code)
	img, err := png.Decode(w.Body)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 300, 400), img.Bounds())
}

func TestVCardFile(t *testing.T) {
	r, _ := newRouter(testConfig(), pipeline.Options{})
	photo := upload{field: "photo", name: "me.png", data: pngBytes(t, 50, 50)}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "/api/vcard/file", avaFields, photo))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/vcard")
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="Ava_Lee_vcard.vcf"`)

	card, err := vcard.Parse(w.Body.String())
	require.NoError(t, err)
	assert.Equal(t, "Ava Lee", card.FullName)
	assert.Equal(t, "ava@x.com", card.Email)
	assert.Equal(t, "JPEG", card.PhotoMediaType)
	assert.NotEmpty(t, card.Photo)
}

func TestGenericToast(t *testing.T) {
	r, _ := newRouter(testConfig(), pipeline.Options{})
	form := url.Values{"title": {"Saved"}, "variant": {"destructive"}, "dismissible": {"on"}}
	req := httptest.NewRequest(http.MethodPost, "/api/htmx/toast", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Saved")
	assert.Contains(t, w.Body.String(), `data-variant="error"`)
	assert.Contains(t, w.Body.String(), "data-toast-dismiss")
}

func TestParseColorParam(t *testing.T) {
	def := color.RGBA{1, 2, 3, 255}
	cases := map[string]color.RGBA{
		"":            def,
		"#ff8000":     {0xff, 0x80, 0x00, 0xff},
		"00ff00":      {0x00, 0xff, 0x00, 0xff},
		"transparent": {0, 0, 0, 0},
		"#fff":        def,
		"zzzzzz":      def,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseColorParam(in, def), in)
	}
}

func TestStyleFromFormFlat(t *testing.T) {
	_, h := newRouter(testConfig(), pipeline.Options{})
	form := url.Values{"colorMode": {"flat"}, "fg": {"#112233"}, "bg": {"transparent"}, "qrShape": {"circle"}}
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	style := h.styleFromForm(c)
	assert.Equal(t, 256, style.SizePx)
	assert.Equal(t, color.RGBA{0x11, 0x22, 0x33, 0xff}, style.Foreground)
	assert.Empty(t, style.Gradient)
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, style.Background)
	assert.Equal(t, qr.ShapeCircle, style.Shape)
}

func TestStyleFromFormRejectsTransparentInk(t *testing.T) {
	_, h := newRouter(testConfig(), pipeline.Options{})
	def := h.pipeline.Style()

	for name, form := range map[string]url.Values{
		"flat":     {"colorMode": {"flat"}, "fg": {"transparent"}},
		"gradient": {"colorMode": {"gradient"}, "gradientStart": {"TRANSPARENT"}, "gradientEnd": {"transparent"}},
	} {
		t.Run(name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
			c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

			style := h.styleFromForm(c)
			assert.Equal(t, uint8(255), style.Foreground.A)
			assert.Equal(t, uint8(255), style.FinderColor.A)
			for _, stop := range style.Gradient {
				assert.Equal(t, uint8(255), stop.A)
			}
			if name == "flat" {
				assert.Equal(t, def.Foreground, style.Foreground)
			} else {
				assert.Equal(t, def.Gradient, style.Gradient)
			}
		})
	}
}

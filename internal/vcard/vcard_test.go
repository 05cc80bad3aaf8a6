package vcard

import (
	"bytes"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianadrielbraun/cardqr/internal/asset"
)

func tinyPhoto(t *testing.T) *asset.Asset {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))))
	return asset.FromBytes(buf.Bytes())
}

func TestEncodeMinimalRecord(t *testing.T) {
	p := Encode(Record{FirstName: "Ava", LastName: "Lee", Email: "ava@x.com"}, false)

	want := "BEGIN:VCARD\r\n" +
		"VERSION:3.0\r\n" +
		"FN:Ava Lee\r\n" +
		"N:Lee;Ava;;;\r\n" +
		"EMAIL:ava@x.com\r\n" +
		"END:VCARD\r\n"
	assert.Equal(t, want, p.Text)
	assert.Equal(t, len(want), p.ByteLength)
	assert.False(t, p.IncludesPhoto)
	assert.Zero(t, p.PhotoBytes)
}

func TestEncodeAllFields(t *testing.T) {
	r := Record{
		FirstName:   "Ava",
		LastName:    "Lee",
		JobTitle:    "CTO",
		Company:     "Acme",
		Department:  "R&D",
		MobilePhone: "+1 555 0100",
		WorkPhone:   "+1 555 0199",
		Email:       "ava@x.com",
		Website:     "https://ava.dev",
		Address:     "1 Main St",
		Social: Social{
			LinkedIn: "https://linkedin.com/in/ava",
			X:        "https://x.com/ava",
		},
	}
	lines := strings.Split(strings.TrimSuffix(Encode(r, false).Text, "\r\n"), "\r\n")
	assert.Equal(t, []string{
		"BEGIN:VCARD",
		"VERSION:3.0",
		"FN:Ava Lee",
		"N:Lee;Ava;;;",
		"TITLE:CTO",
		"ORG:Acme;R&D",
		"TEL;TYPE=CELL:+1 555 0100",
		"TEL;TYPE=WORK:+1 555 0199",
		"EMAIL:ava@x.com",
		"URL:https://ava.dev",
		"URL:https://linkedin.com/in/ava",
		"URL:https://x.com/ava",
		"ADR:;;1 Main St;;;;",
		"END:VCARD",
	}, lines)
}

func TestEncodeSkipsBlankFields(t *testing.T) {
	p := Encode(Record{FirstName: "Ava", JobTitle: "   ", Company: "\t", Email: " "}, false)
	assert.NotContains(t, p.Text, "TITLE")
	assert.NotContains(t, p.Text, "ORG")
	assert.NotContains(t, p.Text, "EMAIL")
	assert.Contains(t, p.Text, "FN:Ava\r\n")
}

func TestEncodeEmptyRecordStillValid(t *testing.T) {
	p := Encode(Record{}, true)
	assert.Equal(t, "BEGIN:VCARD\r\nVERSION:3.0\r\nFN:\r\nN:;;;;\r\nEND:VCARD\r\n", p.Text)

	c, err := Parse(p.Text)
	require.NoError(t, err)
	assert.Equal(t, "3.0", c.Version)
	assert.Empty(t, c.FullName)
}

func TestEscape(t *testing.T) {
	assert.Equal(t, `a\,b\;c\\d\ne\nf`, Escape("a,b;c\\d\ne\r\nf"))
	assert.Equal(t, "plain", Escape("plain"))
}

func TestEncodeEscapesValues(t *testing.T) {
	r := Record{FirstName: "Ava;", LastName: "Lee, Jr", Company: `Back\slash`, Address: "1 Main St\nSpringfield"}
	text := Encode(r, false).Text
	assert.Contains(t, text, `FN:Ava\; Lee\, Jr`+"\r\n")
	assert.Contains(t, text, `N:Lee\, Jr;Ava\;;;;`+"\r\n")
	assert.Contains(t, text, `ORG:Back\\slash`+"\r\n")
	assert.Contains(t, text, `ADR:;;1 Main St\nSpringfield;;;;`+"\r\n")
}

func TestEncodeLeavesURLsUnescaped(t *testing.T) {
	r := Record{Website: "https://ava.dev/?a=1,2;b=3", Social: Social{X: "https://x.com/a\r\nva"}}
	text := Encode(r, false).Text
	assert.Contains(t, text, "URL:https://ava.dev/?a=1,2;b=3\r\n")
	assert.Contains(t, text, "URL:https://x.com/ava\r\n")
	assert.NotContains(t, text, `\,`)
}

func TestEncodeDeduplicatesURLs(t *testing.T) {
	r := Record{
		Website: "https://ava.dev",
		Social: Social{
			LinkedIn:  "https://ava.dev",
			X:         "https://x.com/ava",
			Facebook:  "https://x.com/ava",
			Instagram: " https://instagram.com/ava ",
			YouTube:   "https://instagram.com/ava",
		},
	}
	c, err := Parse(Encode(r, false).Text)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://ava.dev", "https://x.com/ava", "https://instagram.com/ava"}, c.URLs)
}

func TestEncodePhoto(t *testing.T) {
	photo := tinyPhoto(t)
	r := Record{FirstName: "Ava", Photo: photo}

	without := Encode(r, false)
	with := Encode(r, true)

	assert.False(t, without.IncludesPhoto)
	assert.NotContains(t, without.Text, "PHOTO")
	assert.True(t, with.IncludesPhoto)
	assert.Equal(t, len(photo.Base64()), with.PhotoBytes)
	assert.Contains(t, with.Text, "PHOTO;ENCODING=BASE64;TYPE=PNG:"+photo.Base64()+"\r\nEND:VCARD\r\n")
	assert.Greater(t, with.ByteLength, without.ByteLength)

	// the record itself is untouched by either encoding
	assert.Same(t, photo, r.Photo)
}

func TestEncodeByteLengthCountsBytes(t *testing.T) {
	p := Encode(Record{FirstName: "Zoë", LastName: "Šimić"}, false)
	assert.Equal(t, len([]byte(p.Text)), p.ByteLength)
	assert.Greater(t, p.ByteLength, len([]rune(p.Text)))
}

func TestRoundTrip(t *testing.T) {
	r := Record{
		FirstName:   "Ava",
		LastName:    "Lee, Jr",
		JobTitle:    "Head; of things",
		Company:     "Acme",
		Department:  "Ops",
		MobilePhone: "555-0100",
		WorkPhone:   "555-0199",
		Email:       "ava@x.com",
		Website:     "https://ava.dev/?a=1,2",
		Address:     "1 Main St\nSpringfield",
		Social:      Social{YouTube: "https://youtube.com/@ava"},
		Photo:       tinyPhoto(t),
	}
	c, err := Parse(Encode(r, true).Text)
	require.NoError(t, err)

	assert.Equal(t, "Ava Lee, Jr", c.FullName)
	assert.Equal(t, "Ava", c.FirstName)
	assert.Equal(t, "Lee, Jr", c.LastName)
	assert.Equal(t, "Head; of things", c.Title)
	assert.Equal(t, "Acme", c.Company)
	assert.Equal(t, "Ops", c.Department)
	assert.Equal(t, "555-0100", c.Mobile)
	assert.Equal(t, "555-0199", c.WorkPhone)
	assert.Equal(t, "ava@x.com", c.Email)
	assert.Equal(t, []string{"https://ava.dev/?a=1,2", "https://youtube.com/@ava"}, c.URLs)
	assert.Equal(t, "1 Main St\nSpringfield", c.Address)
	assert.Equal(t, r.Photo.Bytes(), c.Photo)
	assert.Equal(t, "PNG", c.PhotoMediaType)
}

func TestParseUnfoldsLines(t *testing.T) {
	c, err := Parse("BEGIN:VCARD\r\nVERSION:3.0\r\nFN:Ava\r\n  Lee\r\nEND:VCARD")
	require.NoError(t, err)
	assert.Equal(t, "Ava Lee", c.FullName)
}

func TestParseRejectsOtherText(t *testing.T) {
	_, err := Parse("https://example.com")
	assert.ErrorIs(t, err, ErrNotVCard)
}

func TestEncodeFileAlwaysEmbedsPhoto(t *testing.T) {
	r := Record{FirstName: "Ava", Photo: tinyPhoto(t)}
	assert.Contains(t, string(EncodeFile(r)), "PHOTO;ENCODING=BASE64;TYPE=PNG:")
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "Ava_Lee_qr.png", Filename(Record{FirstName: "Ava", LastName: "Lee"}, "qr", "png"))
	assert.Equal(t, "Ava_vcard.vcf", Filename(Record{FirstName: " Ava "}, "vcard", ".vcf"))
	assert.Equal(t, "contact_qr.jpg", Filename(Record{FirstName: "../"}, "qr", "jpg"))
	assert.Equal(t, "ObrienMary_DigitalCard.png", Filename(Record{FirstName: "O'brien/Mary"}, "DigitalCard", "png"))
}

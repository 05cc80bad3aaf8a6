package vcard

import (
	"strings"
	"unicode"
)

const (
	header  = "BEGIN:VCARD"
	version = "VERSION:3.0"
	footer  = "END:VCARD"
	crlf    = "\r\n"

	photoPrefix = "PHOTO;ENCODING=BASE64;TYPE="
)

// Payload is the text placed in a QR symbol.
type Payload struct {
	Text string
	// ByteLength is len(Text) in bytes; QR capacity is counted in bytes.
	ByteLength int
	// IncludesPhoto is true when a PHOTO line was emitted.
	IncludesPhoto bool
	// PhotoBytes is the length of the base64 photo data, 0 without a photo.
	PhotoBytes int
}

// Encode renders r as a vCard. When includePhoto is set and r has a photo, the
// photo is appended as a base64 PHOTO line. An empty record still produces a
// valid card with empty FN and N.
func Encode(r Record, includePhoto bool) Payload {
	var b strings.Builder
	line := func(name, value string) {
		b.WriteString(name)
		b.WriteByte(':')
		b.WriteString(value)
		b.WriteString(crlf)
	}

	b.WriteString(header + crlf)
	b.WriteString(version + crlf)
	line("FN", Escape(r.FullName()))
	line("N", structured(r.LastName, r.FirstName, "", "", ""))

	if v := clean(r.JobTitle); v != "" {
		line("TITLE", Escape(v))
	}
	if company, dept := clean(r.Company), clean(r.Department); company != "" || dept != "" {
		if dept == "" {
			line("ORG", Escape(company))
		} else {
			line("ORG", structured(company, dept))
		}
	}
	if v := clean(r.MobilePhone); v != "" {
		line("TEL;TYPE=CELL", Escape(v))
	}
	if v := clean(r.WorkPhone); v != "" {
		line("TEL;TYPE=WORK", Escape(v))
	}
	if v := clean(r.Email); v != "" {
		line("EMAIL", Escape(v))
	}
	for _, u := range urls(r) {
		line("URL", escapeURI(u))
	}
	if v := clean(r.Address); v != "" {
		line("ADR", structured("", "", v, "", "", "", ""))
	}

	p := Payload{}
	if includePhoto && r.HasPhoto() {
		data := r.Photo.Base64()
		mediaType := r.Photo.MediaType()
		if mediaType == "" {
			mediaType = "JPEG"
		}
		line(photoPrefix+mediaType, data)
		p.IncludesPhoto = true
		p.PhotoBytes = len(data)
	}
	b.WriteString(footer + crlf)

	p.Text = b.String()
	p.ByteLength = len(p.Text)
	return p
}

// EncodeFile renders the downloadable .vcf form of r. Unlike QR payloads the
// photo is always embedded, whatever its size.
func EncodeFile(r Record) []byte {
	return []byte(Encode(r, true).Text)
}

// urls returns the website followed by the social links, each distinct URL once.
func urls(r Record) []string {
	seen := make(map[string]bool)
	var out []string
	for _, u := range append([]string{clean(r.Website)}, r.Social.URLs()...) {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

// Escape backslash-escapes the characters reserved by the vCard grammar and
// folds any line break into the two-character sequence \n.
func Escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\', ',', ';':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\r':
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
			b.WriteString(`\n`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// escapeURI keeps a URI value verbatim apart from line breaks, which cannot
// appear inside a content line. URI values are not TEXT and take no escapes.
func escapeURI(s string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(s)
}

func structured(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = Escape(clean(p))
	}
	return strings.Join(escaped, ";")
}

func clean(s string) string {
	return strings.TrimFunc(s, unicode.IsSpace)
}

package vcard

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrNotVCard is returned by Parse when the text is not a vCard.
var ErrNotVCard = errors.New("vcard: missing BEGIN:VCARD/END:VCARD")

// Card is a vCard read back from text. Social links cannot be attributed to a
// platform once encoded, so all URL lines are returned in order.
type Card struct {
	Version    string
	FullName   string
	FirstName  string
	LastName   string
	Title      string
	Company    string
	Department string
	Mobile     string
	WorkPhone  string
	Email      string
	URLs       []string
	Address    string

	Photo          []byte
	PhotoMediaType string
}

// Parse reads a single vCard, undoing line folding and value escaping.
func Parse(text string) (*Card, error) {
	lines := unfold(text)
	if len(lines) == 0 || !strings.EqualFold(lines[0], header) || !strings.EqualFold(lines[len(lines)-1], footer) {
		return nil, ErrNotVCard
	}

	c := &Card{}
	for _, l := range lines[1 : len(lines)-1] {
		name, params, value, ok := splitLine(l)
		if !ok {
			continue
		}
		switch name {
		case "VERSION":
			c.Version = value
		case "FN":
			c.FullName = Unescape(value)
		case "N":
			parts := splitStructured(value)
			c.LastName, c.FirstName = part(parts, 0), part(parts, 1)
		case "TITLE":
			c.Title = Unescape(value)
		case "ORG":
			parts := splitStructured(value)
			c.Company, c.Department = part(parts, 0), part(parts, 1)
		case "TEL":
			if hasType(params, "WORK") {
				c.WorkPhone = Unescape(value)
			} else {
				c.Mobile = Unescape(value)
			}
		case "EMAIL":
			c.Email = Unescape(value)
		case "URL":
			c.URLs = append(c.URLs, value)
		case "ADR":
			c.Address = part(splitStructured(value), 2)
		case "PHOTO":
			data, err := base64.StdEncoding.DecodeString(value)
			if err != nil {
				return nil, fmt.Errorf("vcard: photo: %w", err)
			}
			c.Photo = data
			c.PhotoMediaType = paramValue(params, "TYPE")
		}
	}
	return c, nil
}

// Unescape reverses Escape.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n', 'N':
			b.WriteByte('\n')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func unfold(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	var out []string
	for _, l := range raw {
		if (strings.HasPrefix(l, " ") || strings.HasPrefix(l, "\t")) && len(out) > 0 {
			out[len(out)-1] += l[1:]
			continue
		}
		if l == "" {
			continue
		}
		out = append(out, l)
	}
	return out
}

func splitLine(l string) (name string, params []string, value string, ok bool) {
	i := strings.IndexByte(l, ':')
	if i < 0 {
		return "", nil, "", false
	}
	head := strings.Split(l[:i], ";")
	name = strings.ToUpper(head[0])
	if j := strings.LastIndexByte(name, '.'); j >= 0 {
		name = name[j+1:]
	}
	return name, head[1:], l[i+1:], true
}

// splitStructured splits on unescaped semicolons and unescapes each component.
func splitStructured(v string) []string {
	var parts []string
	var cur strings.Builder
	for i := 0; i < len(v); i++ {
		switch {
		case v[i] == '\\' && i+1 < len(v):
			cur.WriteByte(v[i])
			cur.WriteByte(v[i+1])
			i++
		case v[i] == ';':
			parts = append(parts, Unescape(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(v[i])
		}
	}
	return append(parts, Unescape(cur.String()))
}

func part(parts []string, i int) string {
	if i < len(parts) {
		return parts[i]
	}
	return ""
}

func paramValue(params []string, key string) string {
	for _, p := range params {
		k, v, found := strings.Cut(p, "=")
		if found && strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

func hasType(params []string, want string) bool {
	for _, t := range strings.Split(paramValue(params, "TYPE"), ",") {
		if strings.EqualFold(t, want) {
			return true
		}
	}
	return false
}

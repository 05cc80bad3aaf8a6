package vcard

import (
	"regexp"
	"strings"
)

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Filename derives a download name from the contact, e.g. Ava_Lee_qr.png.
// Characters outside [A-Za-z0-9_-] are dropped; "contact" stands in for an
// empty name.
func Filename(r Record, suffix, ext string) string {
	var parts []string
	for _, n := range []string{r.FirstName, r.LastName} {
		if s := unsafeFilename.ReplaceAllString(strings.TrimSpace(n), ""); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		parts = []string{"contact"}
	}
	if suffix != "" {
		parts = append(parts, suffix)
	}
	return strings.Join(parts, "_") + "." + strings.TrimPrefix(ext, ".")
}

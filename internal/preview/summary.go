// Package preview draws the on-screen business card shown while a contact is
// being edited. It shares the contact model with the QR encoder but never
// touches payload budgets.
package preview

import (
	"strings"
	"unicode/utf8"

	"github.com/cristianadrielbraun/cardqr/internal/icons"
	"github.com/cristianadrielbraun/cardqr/internal/vcard"
)

const (
	placeholderFirst = "YOUR"
	placeholderLast  = "NAME"
	placeholderRole  = "PROFESSIONAL"

	maxAddressRunes = 20
)

// Line is one contact detail under the name band.
type Line struct {
	Icon  icons.Name
	Label string
	Text  string
}

// Summary is the text content of a card, independent of how it is drawn.
type Summary struct {
	// Name is the trimmed full name, empty when none was typed.
	Name string
	// BandName and BandRole are the upper-cased band captions, with placeholders.
	BandName string
	BandRole string
	// JobCompany is "Title at Company" with whichever parts exist.
	JobCompany string
	Department string
	Lines      []Line
	Social     []string
	HasPhoto   bool
}

// Placeholder reports whether no name has been entered yet.
func (s Summary) Placeholder() bool { return s.Name == "" }

// Summarize extracts the card text from a record.
func Summarize(r vcard.Record) Summary {
	first := strings.TrimSpace(r.FirstName)
	last := strings.TrimSpace(r.LastName)
	if first == "" {
		first = placeholderFirst
	}
	if last == "" {
		last = placeholderLast
	}
	role := strings.TrimSpace(r.JobTitle)
	if role == "" {
		role = placeholderRole
	}

	s := Summary{
		Name:       r.FullName(),
		BandName:   strings.ToUpper(first + " " + last),
		BandRole:   strings.ToUpper(role),
		JobCompany: joinNonEmpty(" at ", r.JobTitle, r.Company),
		Department: strings.TrimSpace(r.Department),
		Social:     r.Social.URLs(),
		HasPhoto:   r.HasPhoto(),
	}

	add := func(icon icons.Name, label, text string) {
		if text = strings.TrimSpace(text); text != "" {
			s.Lines = append(s.Lines, Line{Icon: icon, Label: label, Text: text})
		}
	}
	add(icons.Phone, "Mobile", r.MobilePhone)
	add(icons.Phone, "Office", r.WorkPhone)
	add(icons.Mail, "", r.Email)
	add(icons.Globe, "", r.Website)
	add(icons.Pin, "", Truncate(strings.TrimSpace(r.Address), maxAddressRunes))
	return s
}

// Truncate cuts s to n runes and appends "..." when anything was removed.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}

// String renders a line as shown on the card.
func (l Line) String() string {
	if l.Label == "" {
		return l.Text
	}
	return l.Label + ": " + l.Text
}

func joinNonEmpty(sep string, parts ...string) string {
	var keep []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keep = append(keep, p)
		}
	}
	return strings.Join(keep, sep)
}

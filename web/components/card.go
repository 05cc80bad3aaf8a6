package components

//go:generate templ generate

import (
	"github.com/cristianadrielbraun/cardqr/internal/icons"
)

// CardProps configures the HTML card preview.
type CardProps struct {
	// PhotoSrc is a data URI for the avatar; empty draws the placeholder block.
	PhotoSrc string
	// QRSrc is an optional data URI of the rendered code.
	QRSrc string
	Class string
}

var iconClasses = map[icons.Name]string{
	icons.Phone: "fa-phone",
	icons.Mail:  "fa-envelope",
	icons.Globe: "fa-globe",
	icons.Pin:   "fa-map-marker-alt",
}

func iconClass(name icons.Name) string {
	return "fas " + iconClasses[name]
}

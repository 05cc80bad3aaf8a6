// Package toast renders the notification fragment swapped in by HTMX.
package toast

import (
	"strings"

	twmerge "github.com/Oudwins/tailwind-merge-go"
)

type Variant string

const (
	VariantDefault Variant = "default"
	VariantSuccess Variant = "success"
	VariantError   Variant = "error"
	VariantWarning Variant = "warning"
	VariantInfo    Variant = "info"
)

type Position string

const (
	PositionTopRight     Position = "top-right"
	PositionTopLeft      Position = "top-left"
	PositionBottomRight  Position = "bottom-right"
	PositionBottomLeft   Position = "bottom-left"
	PositionBottomCenter Position = "bottom-center"
)

type Props struct {
	ID            string
	Title         string
	Description   string
	Variant       Variant
	Position      Position
	Duration      int
	Dismissible   bool
	ShowIndicator bool
	Icon          bool
	Class         string
}

// ParseVariant maps form values, including the "destructive" alias, to a variant.
func ParseVariant(s string) Variant {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error", "destructive":
		return VariantError
	case "warning":
		return VariantWarning
	case "info":
		return VariantInfo
	case "default":
		return VariantDefault
	default:
		return VariantSuccess
	}
}

var variantClasses = map[Variant]string{
	VariantDefault: "border-border bg-background text-foreground",
	VariantSuccess: "border-green-500 bg-green-50 text-green-900",
	VariantError:   "border-red-500 bg-red-50 text-red-900",
	VariantWarning: "border-yellow-500 bg-yellow-50 text-yellow-900",
	VariantInfo:    "border-blue-500 bg-blue-50 text-blue-900",
}

var positionClasses = map[Position]string{
	PositionTopRight:     "top-4 right-4",
	PositionTopLeft:      "top-4 left-4",
	PositionBottomRight:  "bottom-4 right-4",
	PositionBottomLeft:   "bottom-4 left-4",
	PositionBottomCenter: "bottom-4 left-1/2 -translate-x-1/2",
}

var icons = map[Variant]string{
	VariantSuccess: "✓",
	VariantError:   "!",
	VariantWarning: "!",
	VariantInfo:    "i",
}

// Classes returns the merged class list for the toast container.
func Classes(p Props) string {
	return twmerge.Merge(
		"fixed z-50 flex w-80 items-start gap-3 rounded-lg border p-4 shadow-lg",
		positionClasses[position(p)],
		variantClasses[variant(p)],
		p.Class,
	)
}

func variant(p Props) Variant {
	if _, ok := variantClasses[p.Variant]; ok {
		return p.Variant
	}
	return VariantDefault
}

func position(p Props) Position {
	if _, ok := positionClasses[p.Position]; ok {
		return p.Position
	}
	return PositionBottomRight
}

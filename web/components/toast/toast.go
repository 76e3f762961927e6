// Package toast renders transient notifications swapped in by HTMX.
package toast

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
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
	PositionBottomRight  Position = "bottom-right"
	PositionBottomCenter Position = "bottom-center"
)

type Props struct {
	ID            string
	Class         string
	Title         string
	Description   string
	Variant       Variant
	Position      Position
	Duration      int // milliseconds, 0 keeps the toast until dismissed
	Dismissible   bool
	ShowIndicator bool
	Icon          bool
}

// ParseVariant maps loose variant names, including "destructive", onto a
// Variant. Unknown names are VariantSuccess.
func ParseVariant(s string) Variant {
	switch strings.ToLower(s) {
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
	VariantDefault: "bg-white text-gray-900 border-gray-200",
	VariantSuccess: "bg-green-50 text-green-900 border-green-200",
	VariantError:   "bg-red-50 text-red-900 border-red-200",
	VariantWarning: "bg-amber-50 text-amber-900 border-amber-200",
	VariantInfo:    "bg-blue-50 text-blue-900 border-blue-200",
}

var positionClasses = map[Position]string{
	PositionTopRight:     "top-4 right-4",
	PositionBottomRight:  "bottom-4 right-4",
	PositionBottomCenter: "bottom-4 left-1/2 -translate-x-1/2",
}

var icons = map[Variant]string{
	VariantSuccess: "check-circle",
	VariantError:   "x-circle",
	VariantWarning: "alert-triangle",
	VariantInfo:    "info",
}

// Classes is the merged class list of the toast container.
func Classes(p Props) string {
	v := p.Variant
	if _, ok := variantClasses[v]; !ok {
		v = VariantDefault
	}
	pos, ok := positionClasses[p.Position]
	if !ok {
		pos = positionClasses[PositionBottomRight]
	}
	return twmerge.Merge(
		"fixed z-50 flex w-80 items-start gap-3 rounded-lg border p-4 shadow-lg",
		pos,
		variantClasses[v],
		p.Class,
	)
}

func Toast(p Props) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<div role="status" aria-live="polite"`)
		if p.ID != "" {
			fmt.Fprintf(&b, ` id="%s"`, templ.EscapeString(p.ID))
		}
		fmt.Fprintf(&b, ` class="%s" data-toast data-variant="%s"`, templ.EscapeString(Classes(p)), templ.EscapeString(string(p.Variant)))
		if p.Duration > 0 {
			fmt.Fprintf(&b, ` data-duration="%d"`, p.Duration)
		}
		b.WriteString(`>`)

		if icon, ok := icons[p.Variant]; ok && p.Icon {
			fmt.Fprintf(&b, `<i data-lucide="%s" class="mt-0.5 h-5 w-5 shrink-0"></i>`, icon)
		}
		b.WriteString(`<div class="flex-1">`)
		if p.Title != "" {
			fmt.Fprintf(&b, `<p class="text-sm font-semibold">%s</p>`, templ.EscapeString(p.Title))
		}
		if p.Description != "" {
			fmt.Fprintf(&b, `<p class="mt-1 text-sm opacity-90">%s</p>`, templ.EscapeString(p.Description))
		}
		b.WriteString(`</div>`)
		if p.Dismissible {
			b.WriteString(`<button type="button" class="opacity-60 hover:opacity-100" aria-label="Dismiss" data-toast-dismiss>&times;</button>`)
		}
		if p.ShowIndicator && p.Duration > 0 {
			fmt.Fprintf(&b, `<div class="absolute bottom-0 left-0 h-1 bg-current opacity-30" style="animation: toast-progress %dms linear forwards"></div>`, p.Duration)
		}
		b.WriteString(`</div>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

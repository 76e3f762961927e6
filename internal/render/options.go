package render

import (
	"github.com/cristianadrielbraun/qrstudio/internal/customization"
)

// Base rendering parameters shared by every QR code.
const (
	DefaultSize   = 300
	DefaultMargin = 10
	// ErrorCorrectionLevel is kept at Q so a centred logo can cover part of
	// the symbol and the code still scans.
	ErrorCorrectionLevel = "Q"
	DefaultImageSize     = 0.4
)

// DotOptions is the shape and colour of a group of modules.
type DotOptions struct {
	Type  string `json:"type"`
	Color string `json:"color"`
}

// BackgroundOptions is the canvas fill.
type BackgroundOptions struct {
	Color string `json:"color"`
}

// ImageOptions controls the centred logo.
type ImageOptions struct {
	HideBackgroundDots bool    `json:"hideBackgroundDots"`
	ImageSize          float64 `json:"imageSize"`
	Margin             int     `json:"margin"`
}

// Options is the complete input of the Renderer.
type Options struct {
	Width                int               `json:"width"`
	Height               int               `json:"height"`
	Margin               int               `json:"margin"`
	Data                 string            `json:"data"`
	ErrorCorrectionLevel string            `json:"errorCorrectionLevel"`
	Dots                 DotOptions        `json:"dotsOptions"`
	CornersSquare        DotOptions        `json:"cornersSquareOptions"`
	CornersDot           DotOptions        `json:"cornersDotOptions"`
	Background           BackgroundOptions `json:"backgroundOptions"`
	Image                string            `json:"image,omitempty"`
	ImageOptions         ImageOptions      `json:"imageOptions"`
}

// MapOptions translates a customization into renderer options. defaultData is
// encoded as-is; it is the content used until the QR code has a destination.
// Unknown style ids fall back to the first entry of their catalog. The logo is
// not resolved here; see LogoResolver.
func MapOptions(data customization.Data, defaultData string) Options {
	fg := normalizeColor(data.Style.ForegroundColor, black)
	if fg == Transparent {
		fg = HexColor(black)
	}
	bg := normalizeColor(data.Style.BackgroundColor, white)

	return Options{
		Width:                DefaultSize,
		Height:               DefaultSize,
		Margin:               DefaultMargin,
		Data:                 defaultData,
		ErrorCorrectionLevel: ErrorCorrectionLevel,
		Dots: DotOptions{
			Type:  styleType(customization.LookupDotsStyle, data.Style.DotsStyle, customization.DotsStyles),
			Color: fg,
		},
		CornersSquare: DotOptions{
			Type:  styleType(customization.LookupCornerSquareStyle, data.Shape.CornerSquareStyle, customization.CornerSquareStyles),
			Color: fg,
		},
		CornersDot: DotOptions{
			Type:  styleType(customization.LookupCornerDotStyle, data.Shape.CornerDotStyle, customization.CornerDotStyles),
			Color: fg,
		},
		Background: BackgroundOptions{Color: bg},
		ImageOptions: ImageOptions{
			HideBackgroundDots: true,
			ImageSize:          DefaultImageSize,
			Margin:             0,
		},
	}
}

func styleType(lookup func(string) (customization.StyleOption, bool), id string, catalog []customization.StyleOption) string {
	if opt, ok := lookup(id); ok {
		return opt.Type
	}
	return catalog[0].Type
}

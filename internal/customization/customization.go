// Package customization describes the visual appearance of a QR code: frame,
// dot style, corner shapes, colours and logo. Values are plain data; the
// render package turns them into artwork.
package customization

import "unicode/utf8"

// MaxFrameTextLength is the number of characters kept from frame text.
const MaxFrameTextLength = 10

// DefaultFrameText is the label a frame shows until the user types one.
const DefaultFrameText = "Scan Me!"

const (
	DefaultForegroundColor = "#000000"
	DefaultBackgroundColor = "#FFFFFF"
	DefaultFrameColor      = "#000000"
)

// Frame selects a decorative frame. Color, TextColor and Text only apply to
// frames other than FrameNone.
type Frame struct {
	ID        string `json:"id" yaml:"id"`
	Color     string `json:"color,omitempty" yaml:"color,omitempty"`
	TextColor string `json:"textColor,omitempty" yaml:"textColor,omitempty"`
	Text      string `json:"text,omitempty" yaml:"text,omitempty"`
	PresetID  string `json:"presetId,omitempty" yaml:"presetId,omitempty"`
}

// Style is the dot pattern and the two colours of the code.
type Style struct {
	DotsStyle       string `json:"dotsStyle" yaml:"dotsStyle"`
	ForegroundColor string `json:"foregroundColor" yaml:"foregroundColor"`
	BackgroundColor string `json:"backgroundColor,omitempty" yaml:"backgroundColor,omitempty"`
}

// Shape is the rendering of the three finder patterns.
type Shape struct {
	CornerSquareStyle string `json:"cornerSquareStyle" yaml:"cornerSquareStyle"`
	CornerDotStyle    string `json:"cornerDotStyle" yaml:"cornerDotStyle"`
}

// LogoType tags the active Logo variant.
type LogoType string

const (
	LogoNone      LogoType = "none"
	LogoSuggested LogoType = "suggested"
	LogoUploaded  LogoType = "uploaded"
)

// LocalFile is an uploaded image that has not been persisted yet.
type LocalFile struct {
	Name        string `json:"-" yaml:"-"`
	ContentType string `json:"-" yaml:"-"`
	Data        []byte `json:"-" yaml:"-"`
}

// Logo is a tagged variant. ID and IconSrc belong to LogoSuggested; File and
// FileID belong to LogoUploaded.
type Logo struct {
	Type    LogoType   `json:"type" yaml:"type"`
	ID      string     `json:"id,omitempty" yaml:"id,omitempty"`
	IconSrc string     `json:"iconSrc,omitempty" yaml:"iconSrc,omitempty"`
	File    *LocalFile `json:"-" yaml:"-"`
	FileID  string     `json:"fileId,omitempty" yaml:"fileId,omitempty"`
}

// Pending reports an uploaded logo without a durable file id: the upload is
// in flight or failed, and the QR code cannot be saved yet.
func (l Logo) Pending() bool {
	return l.Type == LogoUploaded && l.FileID == ""
}

// Data is the complete description of a QR code's appearance.
type Data struct {
	Frame Frame `json:"frame" yaml:"frame"`
	Style Style `json:"style" yaml:"style"`
	Shape Shape `json:"shape" yaml:"shape"`
	Logo  Logo  `json:"logo" yaml:"logo"`
}

// DefaultData returns the customization a new QR code starts with.
func DefaultData() Data {
	return Data{
		Frame: Frame{ID: FrameNone},
		Style: Style{
			DotsStyle:       DotsSquare,
			ForegroundColor: DefaultForegroundColor,
			BackgroundColor: DefaultBackgroundColor,
		},
		Shape: Shape{
			CornerSquareStyle: CornerSquareSquare,
			CornerDotStyle:    CornerDotSquare,
		},
		Logo: Logo{Type: LogoNone},
	}
}

// Normalize returns d with the invariants applied: frame text truncated, frame
// fields cleared for FrameNone, fields of inactive logo variants dropped and
// missing colours defaulted.
func (d Data) Normalize() Data {
	if d.Frame.ID == "" {
		d.Frame.ID = FrameNone
	}
	if d.Frame.ID == FrameNone {
		d.Frame = Frame{ID: FrameNone}
	} else {
		d.Frame.Text = TruncateFrameText(d.Frame.Text)
	}

	if d.Style.ForegroundColor == "" {
		d.Style.ForegroundColor = DefaultForegroundColor
	}
	if d.Style.DotsStyle == "" {
		d.Style.DotsStyle = DotsSquare
	}
	if d.Shape.CornerSquareStyle == "" {
		d.Shape.CornerSquareStyle = CornerSquareSquare
	}
	if d.Shape.CornerDotStyle == "" {
		d.Shape.CornerDotStyle = CornerDotSquare
	}

	switch d.Logo.Type {
	case LogoSuggested:
		// the icon always comes from the catalog entry
		if opt, ok := LookupLogo(d.Logo.ID); ok {
			d.Logo = Logo{Type: LogoSuggested, ID: opt.ID, IconSrc: opt.IconSrc}
		} else {
			d.Logo = Logo{Type: LogoNone}
		}
	case LogoUploaded:
		d.Logo = Logo{Type: LogoUploaded, File: d.Logo.File, FileID: d.Logo.FileID}
	default:
		d.Logo = Logo{Type: LogoNone}
	}

	return d
}

// SelectFrame switches to the frame with the given id, applying the catalog
// defaults for colour, text colour and text. Text the user already typed is
// kept. Unknown ids select FrameNone.
func (d Data) SelectFrame(id string) Data {
	opt, ok := LookupFrame(id)
	if !ok || opt.ID == FrameNone {
		d.Frame = Frame{ID: FrameNone}
		return d
	}

	text := d.Frame.Text
	if d.Frame.ID == FrameNone || text == "" {
		text = DefaultFrameText
	}
	d.Frame = Frame{
		ID:        opt.ID,
		Color:     DefaultFrameColor,
		TextColor: opt.DefaultTextColor,
		Text:      TruncateFrameText(text),
	}

	return d
}

// TruncateFrameText keeps the first MaxFrameTextLength characters of s.
func TruncateFrameText(s string) string {
	if utf8.RuneCountInString(s) <= MaxFrameTextLength {
		return s
	}
	return string([]rune(s)[:MaxFrameTextLength])
}

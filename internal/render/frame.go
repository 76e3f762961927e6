package render

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/srwiley/oksvg"

	"github.com/cristianadrielbraun/qrstudio/internal/customization"
)

// FrameColorPlaceholder is the fill frame artwork uses for the parts that take
// the user's frame colour.
const FrameColorPlaceholder = "#000001"

// FrameEmbedder composes frame artwork around a rendered QR code.
type FrameEmbedder struct {
	Assets AssetSource
}

// frameArt is a loaded, recoloured frame asset.
type frameArt struct {
	opt    customization.FrameOption
	icon   *oksvg.SvgIcon
	inner  string
	width  float64
	height float64
}

// load fetches, recolours and parses the artwork of opt.
func (e *FrameEmbedder) load(ctx context.Context, opt customization.FrameOption, frameColor string) (*frameArt, error) {
	raw, err := e.Assets.Open(ctx, opt.Asset)
	if err != nil {
		return nil, fmt.Errorf("load frame %s: %w", opt.ID, err)
	}
	raw = bytes.ReplaceAll(raw, []byte(FrameColorPlaceholder), []byte(frameColor))

	icon, err := oksvg.ReadIconStream(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse frame %s: %w", opt.ID, err)
	}

	inner, err := svgInner(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parse frame %s: %w", opt.ID, err)
	}

	w, h := icon.ViewBox.W, icon.ViewBox.H
	if w <= 0 || h <= 0 {
		w, h = opt.Width, opt.Height
	}

	return &frameArt{opt: opt, icon: icon, inner: inner, width: w, height: h}, nil
}

// Embed places qr inside the artwork of frame and adds its text. FrameNone
// and unknown frames return qr unchanged. When the artwork cannot be loaded
// qr is returned unchanged together with the error, so callers can log it and
// keep the bare code.
func (e *FrameEmbedder) Embed(ctx context.Context, qr *Image, frame customization.Frame) (*Image, error) {
	if frame.ID == customization.FrameNone {
		return qr, nil
	}
	opt, ok := customization.LookupFrame(frame.ID)
	if !ok || opt.Asset == "" {
		return qr, nil
	}

	art, err := e.load(ctx, opt, normalizeColor(frame.Color, black))
	if err != nil {
		return qr, err
	}

	// the artwork viewBox may differ from the calibration size
	k := art.width / opt.Width
	size := opt.Scale * art.width
	x, y := opt.OffsetX*k, opt.OffsetY*k

	var sb strings.Builder
	sb.WriteString(`<g class="qr-frame">`)
	sb.WriteString(art.inner)
	sb.WriteString(`</g>`)
	sb.WriteString(fmt.Sprintf(`<svg class="qr-code" x="%s" y="%s" width="%s" height="%s" viewBox="0 0 %s %s">`,
		num(x), num(y), num(size), num(size), num(qr.Width), num(qr.Height)))
	sb.WriteString(qr.Body)
	sb.WriteString(`</svg>`)

	if text := customization.TruncateFrameText(frame.Text); text != "" {
		textColor := normalizeColor(frame.TextColor, ParseColor(opt.DefaultTextColor, black))
		sb.WriteString(fmt.Sprintf(`<text class="qr-frame-text" x="%s" y="%s" font-family="Arial, Helvetica, sans-serif" font-size="%s" font-weight="bold" fill="%s" text-anchor="middle" dominant-baseline="middle">%s</text>`,
			num(opt.TextX*k), num(opt.TextY*k), num(opt.TextSize*k), textColor, html.EscapeString(text)))
	}

	return &Image{Width: art.width, Height: art.height, Body: sb.String(), Framed: true}, nil
}

// svgInner returns the markup between the root <svg ...> and </svg> tags.
func svgInner(doc string) (string, error) {
	start := strings.Index(doc, "<svg")
	if start < 0 {
		return "", fmt.Errorf("no <svg> root")
	}
	open := strings.Index(doc[start:], ">")
	if open < 0 {
		return "", fmt.Errorf("unterminated <svg> tag")
	}
	end := strings.LastIndex(doc, "</svg>")
	if end < start+open {
		return "", fmt.Errorf("no closing </svg>")
	}
	return strings.TrimSpace(doc[start+open+1 : end]), nil
}

package render

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/yeqown/go-qrcode/v2"
)

// Image is a rendered SVG document split into its size and inner markup so it
// can be nested inside a frame.
type Image struct {
	Width  float64
	Height float64
	Body   string
	// Framed is set once a frame has been composed around the code.
	Framed bool
}

// String returns the standalone SVG document.
func (img *Image) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="%s" height="%s" viewBox="0 0 %s %s">`,
		num(img.Width), num(img.Height), num(img.Width), num(img.Height)))
	sb.WriteString(img.Body)
	sb.WriteString(`</svg>`)
	return sb.String()
}

// matrixWriter captures the module bitmap of an encoded QR code.
type matrixWriter struct {
	bitmap [][]bool
}

func (w *matrixWriter) Write(mat qrcode.Matrix) error {
	w.bitmap = make([][]bool, mat.Height())
	for i := range w.bitmap {
		w.bitmap[i] = make([]bool, mat.Width())
	}
	mat.Iterate(qrcode.IterDirection_ROW, func(x, y int, v qrcode.QRValue) {
		w.bitmap[y][x] = v.IsSet()
	})
	return nil
}

func (w *matrixWriter) Close() error { return nil }

// Encode returns the module bitmap for data at the given error correction
// level ("L", "M", "Q" or "H").
func Encode(data, level string) ([][]bool, error) {
	if data == "" {
		return nil, errors.New("QR data is empty")
	}
	qrc, err := qrcode.NewWith(data, ecLevel(level))
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR: %w", err)
	}

	w := &matrixWriter{}
	if err := qrc.Save(w); err != nil {
		return nil, fmt.Errorf("failed to read QR matrix: %w", err)
	}
	if len(w.bitmap) == 0 {
		return nil, errors.New("empty QR matrix")
	}
	return w.bitmap, nil
}

func ecLevel(level string) qrcode.EncodeOption {
	switch strings.ToUpper(level) {
	case "L":
		return qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionLow)
	case "M":
		return qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionMedium)
	case "H":
		return qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionHighest)
	default:
		return qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionQuart)
	}
}

// coverage is the share of the symbol each error correction level can lose.
func coverage(level string) float64 {
	switch strings.ToUpper(level) {
	case "L":
		return 0.07
	case "M":
		return 0.15
	case "H":
		return 0.30
	default:
		return 0.25
	}
}

// RenderSVG draws the QR code described by opts.
func RenderSVG(opts Options) (*Image, error) {
	bitmap, err := Encode(opts.Data, opts.ErrorCorrectionLevel)
	if err != nil {
		return nil, err
	}
	n := len(bitmap)

	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = DefaultSize
	}
	if height <= 0 {
		height = width
	}
	area := min(width, height) - 2*opts.Margin
	if area < n {
		area = n
	}
	dot := math.Floor(float64(area) / float64(n))
	x0 := math.Floor((float64(width) - dot*float64(n)) / 2)
	y0 := math.Floor((float64(height) - dot*float64(n)) / 2)

	hidden := logoArea{}
	if opts.Image != "" {
		hidden = hiddenArea(n, opts.ImageOptions.ImageSize, opts.ErrorCorrectionLevel)
	}

	var sb strings.Builder
	if opts.Background.Color != "" && opts.Background.Color != Transparent {
		sb.WriteString(fmt.Sprintf(`<rect class="qr-background" x="0" y="0" width="%d" height="%d" fill="%s"/>`,
			width, height, opts.Background.Color))
	}

	isDark := func(x, y int) bool {
		if x < 0 || y < 0 || x >= n || y >= n {
			return false
		}
		if inFinder(n, x, y) {
			return false
		}
		if opts.ImageOptions.HideBackgroundDots && hidden.contains(x, y) {
			return false
		}
		return bitmap[y][x]
	}

	sb.WriteString(fmt.Sprintf(`<g class="qr-dots" fill="%s">`, opts.Dots.Color))
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if !isDark(x, y) {
				continue
			}
			px := x0 + float64(x)*dot
			py := y0 + float64(y)*dot
			sb.WriteString(drawDot(opts.Dots.Type, px, py, dot, neighbours{
				top:    isDark(x, y-1),
				right:  isDark(x+1, y),
				bottom: isDark(x, y+1),
				left:   isDark(x-1, y),
			}))
		}
	}
	sb.WriteString(`</g>`)

	sb.WriteString(`<g class="qr-corners">`)
	for _, c := range [][2]int{{0, 0}, {n - 7, 0}, {0, n - 7}} {
		px := x0 + float64(c[0])*dot
		py := y0 + float64(c[1])*dot
		sb.WriteString(drawCornerSquare(opts.CornersSquare, px, py, dot))
		sb.WriteString(drawCornerDot(opts.CornersDot, px+2*dot, py+2*dot, dot))
	}
	sb.WriteString(`</g>`)

	if opts.Image != "" && hidden.size > 0 {
		margin := float64(opts.ImageOptions.Margin)
		size := float64(hidden.size)*dot - 2*margin
		ix := x0 + float64(hidden.start)*dot + margin
		iy := y0 + float64(hidden.start)*dot + margin
		sb.WriteString(fmt.Sprintf(`<image class="qr-logo" href="%s" x="%s" y="%s" width="%s" height="%s" preserveAspectRatio="xMidYMid meet"/>`,
			attr(opts.Image), num(ix), num(iy), num(size), num(size)))
	}

	return &Image{Width: float64(width), Height: float64(height), Body: sb.String()}, nil
}

// inFinder reports whether (x, y) belongs to one of the three 7x7 finder
// patterns, which are drawn separately.
func inFinder(n, x, y int) bool {
	return (x < 7 && y < 7) || (x >= n-7 && y < 7) || (x < 7 && y >= n-7)
}

// logoArea is the centred square of modules covered by the logo.
type logoArea struct {
	start, size int
}

func (a logoArea) contains(x, y int) bool {
	return a.size > 0 && x >= a.start && x < a.start+a.size && y >= a.start && y < a.start+a.size
}

// hiddenArea sizes the logo square so that the modules it hides stay within
// what the error correction level can recover.
func hiddenArea(n int, imageSize float64, level string) logoArea {
	if imageSize <= 0 || imageSize > 1 {
		imageSize = DefaultImageSize
	}
	maxHidden := math.Floor(imageSize * coverage(level) * float64(n*n))
	size := int(math.Floor(math.Sqrt(maxHidden)))
	// keep the square centred on the odd-sized symbol
	if size%2 == 0 {
		size--
	}
	if size <= 0 {
		return logoArea{}
	}
	// never reach the finder patterns
	if limit := n - 2*8; size > limit {
		size = limit
		if size%2 == 0 {
			size--
		}
	}
	return logoArea{start: (n - size) / 2, size: size}
}

type neighbours struct {
	top, right, bottom, left bool
}

func (nb neighbours) count() int {
	c := 0
	for _, b := range []bool{nb.top, nb.right, nb.bottom, nb.left} {
		if b {
			c++
		}
	}
	return c
}

func drawDot(typ string, x, y, s float64, nb neighbours) string {
	switch typ {
	case "dots":
		return fmt.Sprintf(`<circle cx="%s" cy="%s" r="%s"/>`, num(x+s/2), num(y+s/2), num(s/2))
	case "rounded", "extra-rounded":
		r := s * 0.3
		if typ == "extra-rounded" {
			r = s / 2
			if nb.count() == 0 {
				return fmt.Sprintf(`<circle cx="%s" cy="%s" r="%s"/>`, num(x+s/2), num(y+s/2), num(s/2))
			}
		}
		return roundedRect(x, y, s, s, corners{
			tl: freeCorner(!nb.top, !nb.left, r),
			tr: freeCorner(!nb.top, !nb.right, r),
			br: freeCorner(!nb.bottom, !nb.right, r),
			bl: freeCorner(!nb.bottom, !nb.left, r),
		})
	case "classy":
		return roundedRect(x, y, s, s, corners{
			tl: freeCorner(!nb.top, !nb.left, s/2),
			br: freeCorner(!nb.bottom, !nb.right, s/2),
		})
	case "classy-rounded":
		return roundedRect(x, y, s, s, corners{
			tl: freeCorner(!nb.top, !nb.left, s/2),
			tr: freeCorner(!nb.top, !nb.right, s*0.2),
			br: freeCorner(!nb.bottom, !nb.right, s/2),
			bl: freeCorner(!nb.bottom, !nb.left, s*0.2),
		})
	default:
		return fmt.Sprintf(`<rect x="%s" y="%s" width="%s" height="%s"/>`, num(x), num(y), num(s), num(s))
	}
}

func freeCorner(a, b bool, r float64) float64 {
	if a && b {
		return r
	}
	return 0
}

type corners struct {
	tl, tr, br, bl float64
}

// roundedRect returns a path for a w*h rectangle with independent corner radii.
func roundedRect(x, y, w, h float64, c corners) string {
	if c == (corners{}) {
		return fmt.Sprintf(`<rect x="%s" y="%s" width="%s" height="%s"/>`, num(x), num(y), num(w), num(h))
	}
	var p strings.Builder
	p.WriteString(fmt.Sprintf("M%s %s", num(x+c.tl), num(y)))
	p.WriteString(fmt.Sprintf("H%s", num(x+w-c.tr)))
	if c.tr > 0 {
		p.WriteString(fmt.Sprintf("A%s %s 0 0 1 %s %s", num(c.tr), num(c.tr), num(x+w), num(y+c.tr)))
	}
	p.WriteString(fmt.Sprintf("V%s", num(y+h-c.br)))
	if c.br > 0 {
		p.WriteString(fmt.Sprintf("A%s %s 0 0 1 %s %s", num(c.br), num(c.br), num(x+w-c.br), num(y+h)))
	}
	p.WriteString(fmt.Sprintf("H%s", num(x+c.bl)))
	if c.bl > 0 {
		p.WriteString(fmt.Sprintf("A%s %s 0 0 1 %s %s", num(c.bl), num(c.bl), num(x), num(y+h-c.bl)))
	}
	p.WriteString(fmt.Sprintf("V%s", num(y+c.tl)))
	if c.tl > 0 {
		p.WriteString(fmt.Sprintf("A%s %s 0 0 1 %s %s", num(c.tl), num(c.tl), num(x+c.tl), num(y)))
	}
	p.WriteString("Z")
	return fmt.Sprintf(`<path d="%s"/>`, p.String())
}

// drawCornerSquare draws the 7x7 outer ring of a finder pattern as a stroke
// centred on the ring.
func drawCornerSquare(o DotOptions, x, y, s float64) string {
	switch o.Type {
	case "dot":
		return fmt.Sprintf(`<circle cx="%s" cy="%s" r="%s" fill="none" stroke="%s" stroke-width="%s"/>`,
			num(x+3.5*s), num(y+3.5*s), num(3*s), o.Color, num(s))
	default:
		rx := 0.0
		switch o.Type {
		case "rounded":
			rx = 1.5 * s
		case "extra-rounded":
			rx = 2.5 * s
		}
		return fmt.Sprintf(`<rect x="%s" y="%s" width="%s" height="%s" rx="%s" fill="none" stroke="%s" stroke-width="%s"/>`,
			num(x+s/2), num(y+s/2), num(6*s), num(6*s), num(rx), o.Color, num(s))
	}
}

// drawCornerDot draws the 3x3 centre of a finder pattern.
func drawCornerDot(o DotOptions, x, y, s float64) string {
	switch o.Type {
	case "dot":
		return fmt.Sprintf(`<circle cx="%s" cy="%s" r="%s" fill="%s"/>`, num(x+1.5*s), num(y+1.5*s), num(1.5*s), o.Color)
	case "rounded":
		return fmt.Sprintf(`<rect x="%s" y="%s" width="%s" height="%s" rx="%s" fill="%s"/>`,
			num(x), num(y), num(3*s), num(3*s), num(0.75*s), o.Color)
	default:
		return fmt.Sprintf(`<rect x="%s" y="%s" width="%s" height="%s" fill="%s"/>`, num(x), num(y), num(3*s), num(3*s), o.Color)
	}
}

// num formats v with at most two decimals.
func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

var attrReplacer = strings.NewReplacer(`&`, "&amp;", `"`, "&quot;", `<`, "&lt;", `>`, "&gt;")

// attr escapes s for use inside a double-quoted attribute.
func attr(s string) string {
	return attrReplacer.Replace(s)
}

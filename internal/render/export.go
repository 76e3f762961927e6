package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"
	"github.com/yeqown/go-qrcode/writer/standard/shapes"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"

	"github.com/cristianadrielbraun/qrstudio/internal/customization"

	// decoders for uploaded logos
	_ "image/gif"

	_ "golang.org/x/image/webp"
)

// Raster output formats.
const (
	FormatPNG = "png"
	FormatJPG = "jpg"
	FormatSVG = "svg"
)

// Export sizes in pixels of the QR code itself.
const (
	PreviewSize  = 400
	DownloadSize = 2000
)

// Raster is an exported image.
type Raster struct {
	Data []byte
	// Degraded lists the asset failures that were skipped.
	Degraded []error
}

// Export renders data as a PNG or JPEG roughly size pixels wide. The dot
// style is approximated with the standard writer's shapes; the logo and the
// frame are composited on top. Asset failures degrade the image like Compose.
func (c *Composer) Export(ctx context.Context, data customization.Data, content, format string, size int) (*Raster, error) {
	data = data.Normalize()
	opts := MapOptions(data, content)
	if size <= 0 {
		size = PreviewSize
	}
	res := &Raster{}

	qrImg, err := c.rasterQR(opts, size)
	if err != nil {
		return nil, err
	}

	logoBytes, ct, ok, err := c.Logos.Load(ctx, data.Logo)
	if err == nil && ok {
		err = drawLogo(qrImg, logoBytes, ct, opts)
	}
	if err != nil {
		c.Lggr.Warnw("Exporting without logo", "logo", data.Logo.ID, "error", err)
		res.Degraded = append(res.Degraded, err)
	}

	out := image.Image(qrImg)
	if data.Frame.ID != customization.FrameNone {
		framed, err := c.rasterFrame(ctx, qrImg, data.Frame)
		if err != nil {
			c.Lggr.Warnw("Exporting without frame", "frame", data.Frame.ID, "error", err)
			res.Degraded = append(res.Degraded, err)
		} else {
			out = framed
		}
	}

	var buf bytes.Buffer
	if format == FormatJPG {
		bg := ParseColor(opts.Background.Color, white)
		bg.A = 255
		flat := image.NewRGBA(out.Bounds())
		xdraw.Draw(flat, flat.Bounds(), &image.Uniform{C: bg}, image.Point{}, xdraw.Src)
		xdraw.Draw(flat, flat.Bounds(), out, out.Bounds().Min, xdraw.Over)
		if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: 92}); err != nil {
			return nil, fmt.Errorf("failed to encode JPEG: %w", err)
		}
	} else if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	res.Data = buf.Bytes()
	return res, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// customShape implements standard.IShape with one drawing function for
// modules and finders.
type customShape struct {
	drawFunc func(ctx *standard.DrawContext)
}

func (cs *customShape) Draw(ctx *standard.DrawContext) {
	cs.drawFunc(ctx)
}

func (cs *customShape) DrawFinder(ctx *standard.DrawContext) {
	cs.drawFunc(ctx)
}

// rasterQR draws the bare code with the standard writer.
func (c *Composer) rasterQR(opts Options, size int) (*image.RGBA, error) {
	qrc, err := qrcode.NewWith(opts.Data, ecLevel(opts.ErrorCorrectionLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR: %w", err)
	}

	dim := qrc.Dimension()
	if dim <= 0 {
		return nil, fmt.Errorf("invalid QR matrix dimension")
	}
	moduleSize := size / (dim + 2)
	moduleSize = max(1, min(moduleSize, 255))

	bg := ParseColor(opts.Background.Color, white)
	fg := ParseColor(opts.Dots.Color, black)

	writerOpts := []standard.ImageOption{
		standard.WithQRWidth(uint8(moduleSize)),
		standard.WithBorderWidth(moduleSize),
		standard.WithFgColor(fg),
		standard.WithBuiltinImageEncoder(standard.PNG_FORMAT),
	}
	if bg.A == 0 {
		writerOpts = append(writerOpts, standard.WithBgTransparent())
	} else {
		writerOpts = append(writerOpts, standard.WithBgColor(bg))
	}

	switch opts.Dots.Type {
	case "dots":
		writerOpts = append(writerOpts, standard.WithCircleShape())
	case "rounded", "extra-rounded":
		writerOpts = append(writerOpts, standard.WithCustomShape(&customShape{drawFunc: shapes.LiquidBlock()}))
	case "classy", "classy-rounded":
		writerOpts = append(writerOpts, standard.WithCustomShape(&customShape{drawFunc: shapes.ChainBlock()}))
	}

	var buf bytes.Buffer
	w := standard.NewWithWriter(nopCloser{&buf}, writerOpts...)
	if err := qrc.Save(w); err != nil {
		return nil, fmt.Errorf("failed to generate QR code image: %w", err)
	}

	decoded, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("failed to decode QR image: %w", err)
	}
	rgba := image.NewRGBA(decoded.Bounds())
	xdraw.Draw(rgba, rgba.Bounds(), decoded, decoded.Bounds().Min, xdraw.Src)
	return rgba, nil
}

// drawLogo paints the logo over the centre of qr on a background-coloured
// plate, covering the share of modules the error correction tolerates.
func drawLogo(qr *image.RGBA, data []byte, contentType string, opts Options) error {
	logo, err := decodeLogo(data, contentType)
	if err != nil {
		return err
	}

	b := qr.Bounds()
	side := float64(min(b.Dx(), b.Dy()))
	plate := int(side * math.Sqrt(opts.ImageOptions.ImageSize*coverage(opts.ErrorCorrectionLevel)))
	if plate <= 0 {
		return nil
	}
	cx, cy := b.Min.X+b.Dx()/2, b.Min.Y+b.Dy()/2
	plateRect := image.Rect(cx-plate/2, cy-plate/2, cx+plate/2, cy+plate/2)

	if opts.ImageOptions.HideBackgroundDots {
		bg := ParseColor(opts.Background.Color, white)
		if bg.A == 0 {
			bg = white
		}
		xdraw.Draw(qr, plateRect, &image.Uniform{C: bg}, image.Point{}, xdraw.Src)
	}

	lb := logo.Bounds()
	scale := math.Min(float64(plate)/float64(lb.Dx()), float64(plate)/float64(lb.Dy()))
	lw, lh := int(float64(lb.Dx())*scale), int(float64(lb.Dy())*scale)
	dst := image.Rect(cx-lw/2, cy-lh/2, cx-lw/2+lw, cy-lh/2+lh)
	xdraw.CatmullRom.Scale(qr, dst, logo, lb, xdraw.Over, nil)
	return nil
}

func decodeLogo(data []byte, contentType string) (image.Image, error) {
	if strings.Contains(contentType, "svg") {
		return RasterizeSVG(data, 512)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode logo: %w", err)
	}
	return img, nil
}

// RasterizeSVG draws an SVG document into a size x size canvas, keeping its
// aspect ratio.
func RasterizeSVG(data []byte, size int) (*image.RGBA, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse SVG logo: %w", err)
	}
	w, h := icon.ViewBox.W, icon.ViewBox.H
	if w <= 0 || h <= 0 {
		w, h = float64(size), float64(size)
	}
	scale := float64(size) / math.Max(w, h)
	outW, outH := int(w*scale), int(h*scale)
	icon.SetTarget(float64(size-outW)/2, float64(size-outH)/2, float64(outW), float64(outH))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)
	return img, nil
}

// rasterFrame draws the frame artwork at the scale that fits qr into its
// calibrated slot, pastes qr and draws the frame text.
func (c *Composer) rasterFrame(ctx context.Context, qr *image.RGBA, frame customization.Frame) (*image.RGBA, error) {
	opt, ok := customization.LookupFrame(frame.ID)
	if !ok || opt.Asset == "" {
		return nil, fmt.Errorf("unknown frame %s", frame.ID)
	}
	art, err := c.Frames.load(ctx, opt, normalizeColor(frame.Color, black))
	if err != nil {
		return nil, err
	}

	qrSide := float64(qr.Bounds().Dx())
	k := qrSide / (opt.Scale * art.width)
	w, h := int(math.Round(art.width*k)), int(math.Round(art.height*k))

	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	art.icon.SetTarget(0, 0, float64(w), float64(h))
	scanner := rasterx.NewScannerGV(w, h, canvas, canvas.Bounds())
	art.icon.Draw(rasterx.NewDasher(w, h, scanner), 1.0)

	ck := art.width / opt.Width * k
	x, y := int(math.Round(opt.OffsetX*ck)), int(math.Round(opt.OffsetY*ck))
	xdraw.Draw(canvas, image.Rect(x, y, x+qr.Bounds().Dx(), y+qr.Bounds().Dy()), qr, qr.Bounds().Min, xdraw.Over)

	if text := customization.TruncateFrameText(frame.Text); text != "" {
		face, err := frameFont(opt.TextSize * ck)
		if err != nil {
			return nil, err
		}
		dc := gg.NewContextForRGBA(canvas)
		dc.SetFontFace(face)
		dc.SetColor(ParseColor(frame.TextColor, ParseColor(opt.DefaultTextColor, black)))
		dc.DrawStringAnchored(text, opt.TextX*ck, opt.TextY*ck, 0.5, 0.35)
	}

	return canvas, nil
}

var (
	fontOnce sync.Once
	boldFont *opentype.Font
	fontErr  error
)

func frameFont(size float64) (font.Face, error) {
	fontOnce.Do(func() {
		boldFont, fontErr = opentype.Parse(gobold.TTF)
	})
	if fontErr != nil {
		return nil, fmt.Errorf("failed to parse frame font: %w", fontErr)
	}
	return opentype.NewFace(boldFont, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

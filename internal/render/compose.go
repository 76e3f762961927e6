package render

import (
	"context"

	"github.com/cristianadrielbraun/qrstudio/internal/customization"
	"github.com/cristianadrielbraun/qrstudio/internal/logger"
)

// Composer runs the whole pipeline: option mapping, logo resolution, QR
// rendering and frame embedding. Asset failures are logged and degrade the
// result; only an unencodable payload is an error.
type Composer struct {
	Logos  *LogoResolver
	Frames *FrameEmbedder
	Lggr   logger.Logger
}

// Result is one composed QR code.
type Result struct {
	SVG     string
	Options Options
	// Degraded lists the asset failures that were skipped.
	Degraded []error
}

// Compose renders data encoding content.
func (c *Composer) Compose(ctx context.Context, data customization.Data, content string) (*Result, error) {
	data = data.Normalize()
	opts := MapOptions(data, content)
	res := &Result{}

	href, err := c.Logos.Resolve(ctx, data.Logo)
	if err != nil {
		c.Lggr.Warnw("Rendering without logo", "logo", data.Logo.ID, "error", err)
		res.Degraded = append(res.Degraded, err)
		href = ""
	}
	opts.Image = href
	res.Options = opts

	img, err := RenderSVG(opts)
	if err != nil {
		return nil, err
	}

	framed, err := c.Frames.Embed(ctx, img, data.Frame)
	if err != nil {
		c.Lggr.Warnw("Rendering without frame", "frame", data.Frame.ID, "error", err)
		res.Degraded = append(res.Degraded, err)
	}
	res.SVG = framed.String()

	return res, nil
}

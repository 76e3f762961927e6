package customization

// Dot styles.
const (
	DotsSquare        = "dots-square"
	DotsDots          = "dots-dots"
	DotsRounded       = "dots-rounded"
	DotsExtraRounded  = "dots-extra-rounded"
	DotsClassy        = "dots-classy"
	DotsClassyRounded = "dots-classy-rounded"
)

// Corner square (finder outer ring) styles.
const (
	CornerSquareSquare       = "corner-square-square"
	CornerSquareDot          = "corner-square-dot"
	CornerSquareRounded      = "corner-square-rounded"
	CornerSquareExtraRounded = "corner-square-extra-rounded"
)

// Corner dot (finder centre) styles.
const (
	CornerDotSquare  = "corner-dot-square"
	CornerDotDot     = "corner-dot-dot"
	CornerDotRounded = "corner-dot-rounded"
)

// Frames.
const (
	FrameNone   = "frame-none"
	FrameCard   = "frame-card"
	FrameCard1  = "frame-card-1"
	FrameCard2  = "frame-card-2"
	FrameCard3  = "frame-card-3"
	FrameRibbon = "frame-ribbon"
	FramePhone  = "frame-phone"
)

// StyleOption is an entry of the dot and corner catalogs. Type is the shape
// the renderer draws for it.
type StyleOption struct {
	ID   string
	Icon string
	Type string
}

// FrameOption is an entry of the frame catalog. The geometry was calibrated by
// hand against each artwork and is in artwork pixels: the QR code is drawn
// Scale*Width wide at (OffsetX, OffsetY) and the text is centred on
// (TextX, TextY).
type FrameOption struct {
	ID               string
	Icon             string
	Asset            string
	Width, Height    float64
	Scale            float64
	OffsetX, OffsetY float64
	TextX, TextY     float64
	TextSize         float64
	DefaultTextColor string
}

// LogoOption is an entry of the suggested logo catalog.
type LogoOption struct {
	ID      string
	Label   string
	IconSrc string
}

var DotsStyles = []StyleOption{
	{ID: DotsSquare, Icon: "icons/dots-square.svg", Type: "square"},
	{ID: DotsDots, Icon: "icons/dots-dots.svg", Type: "dots"},
	{ID: DotsRounded, Icon: "icons/dots-rounded.svg", Type: "rounded"},
	{ID: DotsExtraRounded, Icon: "icons/dots-extra-rounded.svg", Type: "extra-rounded"},
	{ID: DotsClassy, Icon: "icons/dots-classy.svg", Type: "classy"},
	{ID: DotsClassyRounded, Icon: "icons/dots-classy-rounded.svg", Type: "classy-rounded"},
}

var CornerSquareStyles = []StyleOption{
	{ID: CornerSquareSquare, Icon: "icons/corner-square-square.svg", Type: "square"},
	{ID: CornerSquareDot, Icon: "icons/corner-square-dot.svg", Type: "dot"},
	{ID: CornerSquareRounded, Icon: "icons/corner-square-rounded.svg", Type: "rounded"},
	{ID: CornerSquareExtraRounded, Icon: "icons/corner-square-extra-rounded.svg", Type: "extra-rounded"},
}

var CornerDotStyles = []StyleOption{
	{ID: CornerDotSquare, Icon: "icons/corner-dot-square.svg", Type: "square"},
	{ID: CornerDotDot, Icon: "icons/corner-dot-dot.svg", Type: "dot"},
	{ID: CornerDotRounded, Icon: "icons/corner-dot-rounded.svg", Type: "rounded"},
}

var Frames = []FrameOption{
	{ID: FrameNone, Icon: "icons/frame-none.svg"},
	{
		ID: FrameCard, Icon: "icons/frame-card.svg", Asset: "frames/frame-card.svg",
		Width: 300, Height: 380, Scale: 0.8, OffsetX: 30, OffsetY: 30,
		TextX: 150, TextY: 338, TextSize: 30, DefaultTextColor: "#FFFFFF",
	},
	{
		ID: FrameCard1, Icon: "icons/frame-card-1.svg", Asset: "frames/frame-card-1.svg",
		Width: 300, Height: 380, Scale: 0.8, OffsetX: 30, OffsetY: 110,
		TextX: 150, TextY: 52, TextSize: 30, DefaultTextColor: "#FFFFFF",
	},
	{
		ID: FrameCard2, Icon: "icons/frame-card-2.svg", Asset: "frames/frame-card-2.svg",
		Width: 300, Height: 370, Scale: 0.76, OffsetX: 36, OffsetY: 36,
		TextX: 150, TextY: 333, TextSize: 28, DefaultTextColor: "#000000",
	},
	{
		ID: FrameCard3, Icon: "icons/frame-card-3.svg", Asset: "frames/frame-card-3.svg",
		Width: 300, Height: 400, Scale: 0.74, OffsetX: 39, OffsetY: 120,
		TextX: 150, TextY: 56, TextSize: 28, DefaultTextColor: "#FFFFFF",
	},
	{
		ID: FrameRibbon, Icon: "icons/frame-ribbon.svg", Asset: "frames/frame-ribbon.svg",
		Width: 340, Height: 360, Scale: 0.7, OffsetX: 51, OffsetY: 24,
		TextX: 170, TextY: 318, TextSize: 28, DefaultTextColor: "#FFFFFF",
	},
	{
		ID: FramePhone, Icon: "icons/frame-phone.svg", Asset: "frames/frame-phone.svg",
		Width: 260, Height: 420, Scale: 0.77, OffsetX: 30, OffsetY: 90,
		TextX: 130, TextY: 350, TextSize: 24, DefaultTextColor: "#000000",
	},
}

var SuggestedLogos = []LogoOption{
	{ID: "logo-website", Label: "Website", IconSrc: "logos/website.svg"},
	{ID: "logo-wifi", Label: "Wi-Fi", IconSrc: "logos/wifi.svg"},
	{ID: "logo-whatsapp", Label: "WhatsApp", IconSrc: "logos/whatsapp.svg"},
	{ID: "logo-email", Label: "Email", IconSrc: "logos/email.svg"},
	{ID: "logo-phone", Label: "Phone", IconSrc: "logos/phone.svg"},
	{ID: "logo-pdf", Label: "PDF", IconSrc: "logos/pdf.svg"},
	{ID: "logo-location", Label: "Location", IconSrc: "logos/location.svg"},
	{ID: "logo-scan", Label: "Scan me", IconSrc: "logos/scan.svg"},
}

func lookup[T any](opts []T, id string, key func(T) string) (T, bool) {
	for _, o := range opts {
		if key(o) == id {
			return o, true
		}
	}
	var zero T
	return zero, false
}

func styleID(o StyleOption) string { return o.ID }

// LookupDotsStyle finds a dot style by id.
func LookupDotsStyle(id string) (StyleOption, bool) {
	return lookup(DotsStyles, id, styleID)
}

// LookupCornerSquareStyle finds a corner square style by id.
func LookupCornerSquareStyle(id string) (StyleOption, bool) {
	return lookup(CornerSquareStyles, id, styleID)
}

// LookupCornerDotStyle finds a corner dot style by id.
func LookupCornerDotStyle(id string) (StyleOption, bool) {
	return lookup(CornerDotStyles, id, styleID)
}

// LookupFrame finds a frame by id.
func LookupFrame(id string) (FrameOption, bool) {
	return lookup(Frames, id, func(o FrameOption) string { return o.ID })
}

// LookupLogo finds a suggested logo by id.
func LookupLogo(id string) (LogoOption, bool) {
	return lookup(SuggestedLogos, id, func(o LogoOption) string { return o.ID })
}

package render

import (
	"fmt"
	"strings"
)

// Grid geometry, in pixels.
const (
	CardWidth     = 200
	ImageHeight   = 200
	LineHeight    = 20
	NameLines     = 2
	PriceLines    = 1
	TextPadding   = 10
	Columns       = 5
	Gap           = 20
	Padding       = 40
	TitleHeight   = 80
	CornerRadius  = 15
	ShadowBlur    = 12
	ShadowOffsetY = 6
	ShadowAlpha   = 0.15
)

// NameMode picks which localized name is printed under each card.
type NameMode int

const (
	NamesNone NameMode = iota
	NamesPrimary
	NamesSecondary
)

func (m NameMode) String() string {
	switch m {
	case NamesPrimary:
		return "primary"
	case NamesSecondary:
		return "secondary"
	default:
		return "none"
	}
}

func (m NameMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText accepts none/primary/secondary and the ko/jp aliases.
func (m *NameMode) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "", "none":
		*m = NamesNone
	case "primary", "ko":
		*m = NamesPrimary
	case "secondary", "jp":
		*m = NamesSecondary
	default:
		return fmt.Errorf("unknown name mode %q", string(b))
	}
	return nil
}

// Options are the display toggles for the collage.
type Options struct {
	ShowTitle bool     `json:"show_title"`
	Title     string   `json:"title"`
	Names     NameMode `json:"names"`
	ShowPrice bool     `json:"show_price"`
}

// HasText reports whether cards get a text region.
func (o Options) HasText() bool {
	return o.Names != NamesNone || o.ShowPrice
}

// Layout is the grid geometry for a number of items. It depends only on the
// item count and the option flags, never on image content.
type Layout struct {
	Items       int
	Columns     int
	Rows        int
	CardWidth   int
	ImageHeight int
	TextHeight  int
	CardHeight  int
	TitleHeight int
	Width       int
	Height      int
}

// TextRegionHeight is the height reserved under the image for names and price.
func TextRegionHeight(o Options) int {
	h := 0
	if o.Names != NamesNone {
		h += NameLines * LineHeight
	}
	if o.ShowPrice {
		h += PriceLines * LineHeight
	}
	if h > 0 {
		h += 2 * TextPadding
	}
	return h
}

func NewLayout(n int, o Options) Layout {
	if n < 0 {
		n = 0
	}
	l := Layout{
		Items:       n,
		Columns:     Columns,
		Rows:        (n + Columns - 1) / Columns,
		CardWidth:   CardWidth,
		ImageHeight: ImageHeight,
		TextHeight:  TextRegionHeight(o),
	}
	l.CardHeight = l.ImageHeight + l.TextHeight
	if o.ShowTitle {
		l.TitleHeight = TitleHeight
	}

	l.Width = 2*Padding + l.Columns*l.CardWidth + (l.Columns-1)*Gap
	l.Height = 2*Padding + l.TitleHeight + l.Rows*l.CardHeight
	if l.Rows > 1 {
		l.Height += (l.Rows - 1) * Gap
	}
	return l
}

// CardOrigin is the top-left corner of the i-th card, placed row-major.
func (l Layout) CardOrigin(i int) (x, y int) {
	row, col := i/l.Columns, i%l.Columns
	x = Padding + col*(l.CardWidth+Gap)
	y = Padding + l.TitleHeight + row*(l.CardHeight+Gap)
	return x, y
}

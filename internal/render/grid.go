package render

import (
	"context"
	"errors"
	"image"
	"image/color"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/zjoart/kenshicollection/internal/catalog"
	"github.com/zjoart/kenshicollection/pkg/logger"
)

var ErrNoItems = errors.New("no items to render")

// Collage colours and type sizes.
const (
	canvasColor   = "#ffffff"
	cardColor     = "#f0f2f5"
	nameColor     = "#333333"
	priceColor    = "#e0457b"
	titleColor    = "#182558"
	nameFontSize  = 14
	priceFontSize = 14
	titleFontSize = 36
	missingPrice  = "-"

	swatchSize   = 16
	swatchRadius = 4
	swatchGap    = 4
	swatchInset  = 8
	swatchStroke = 1.5
)

// VariantSource reports which variants of a variant-class item are owned.
type VariantSource interface {
	Variants() catalog.VariantClass
	OwnedVariants(itemID string) []string
}

// Renderer draws the collage and the stats card.
type Renderer struct {
	loader ImageLoader
	fonts  *Fonts
}

// NewRenderer builds a renderer. A nil loader resolves every reference to ErrNoImage.
func NewRenderer(loader ImageLoader, fonts *Fonts) *Renderer {
	if loader == nil {
		loader = noImages{}
	}
	if fonts == nil {
		fonts = DefaultFonts()
	}
	return &Renderer{loader: loader, fonts: fonts}
}

type noImages struct{}

func (noImages) Load(context.Context, string) (image.Image, error) { return nil, ErrNoImage }

// GridResult is a rendered collage with its geometry and the items whose image could not be loaded.
type GridResult struct {
	Image   image.Image
	Layout  Layout
	Missing []string
}

// Grid draws items row-major onto a new canvas. Images are loaded one at a
// time in item order; a failed load leaves that card's image region blank and
// the rest of the card is still drawn.
func (r *Renderer) Grid(ctx context.Context, items []catalog.Item, opts Options, vs VariantSource) (*GridResult, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	layout := NewLayout(len(items), opts)
	logger.Info("render: Grid start", logger.Fields{"items": len(items), "width": layout.Width, "height": layout.Height})

	dc := gg.NewContext(layout.Width, layout.Height)
	dc.SetColor(hexColor(canvasColor))
	dc.Clear()

	if opts.ShowTitle {
		r.drawTitle(dc, layout, opts.Title)
	}

	nameFace := r.fonts.Face(nameFontSize, false)
	priceFace := r.fonts.Face(priceFontSize, true)
	shadow := newShadowSprite(layout.CardWidth, layout.CardHeight, CornerRadius)

	res := &GridResult{Layout: layout}
	for i, it := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		x, y := layout.CardOrigin(i)
		fx, fy := float64(x), float64(y)
		w, cardH := float64(layout.CardWidth), float64(layout.CardHeight)

		shadow.drawAt(dc, x, y)
		roundedRectPath(dc, fx, fy, w, cardH, uniform(CornerRadius))
		dc.SetColor(hexColor(cardColor))
		dc.Fill()

		img, err := r.loader.Load(ctx, it.ImageRef())
		if err != nil {
			logger.Warn("render: image unavailable, leaving card blank", logger.Fields{"id": it.ID}, logger.WithError(err))
			res.Missing = append(res.Missing, it.ID)
		} else {
			r.drawImage(dc, img, fx, fy, layout, opts.HasText())
		}

		if vs != nil && vs.Variants().Matches(it) {
			drawSwatches(dc, vs, it.ID, fx+w, fy)
		}

		if opts.HasText() {
			drawText(dc, it, opts, fx, fy+float64(layout.ImageHeight), w, nameFace, priceFace)
		}
	}

	res.Image = dc.Image()
	logger.Info("render: Grid complete", logger.Fields{"items": len(items), "missing": len(res.Missing)})
	return res, nil
}

func (r *Renderer) drawTitle(dc *gg.Context, l Layout, title string) {
	title = strings.TrimSpace(title)
	if title == "" {
		// The band stays reserved so the canvas size depends only on the flags.
		return
	}
	dc.SetFontFace(r.fonts.Face(titleFontSize, true))
	dc.SetColor(hexColor(titleColor))
	dc.DrawStringAnchored(title, float64(l.Width)/2, Padding+float64(l.TitleHeight)/2, 0.5, 0.5)
}

// drawImage clips to the image region (bottom corners square when text follows) and cover-fits img.
func (r *Renderer) drawImage(dc *gg.Context, img image.Image, x, y float64, l Layout, hasText bool) {
	clip := uniform(CornerRadius)
	if hasText {
		clip.br, clip.bl = 0, 0
	}

	dc.Push()
	roundedRectPath(dc, x, y, float64(l.CardWidth), float64(l.ImageHeight), clip)
	dc.Clip()
	dc.DrawImage(coverFit(img, l.CardWidth, l.ImageHeight), int(x), int(y))
	dc.ResetClip()
	dc.Pop()
}

// drawSwatches draws one square per owned variant, right to left from the card's top-right inset.
func drawSwatches(dc *gg.Context, vs VariantSource, itemID string, right, top float64) {
	class := vs.Variants()
	for i, code := range vs.OwnedVariants(itemID) {
		fill, ok := class.Color(code)
		if !ok {
			fill = "#9e9e9e"
		}
		sx := right - swatchInset - swatchSize - float64(i)*(swatchSize+swatchGap)
		sy := top + swatchInset

		roundedRectPath(dc, sx, sy, swatchSize, swatchSize, uniform(swatchRadius))
		dc.SetColor(hexColor(fill))
		dc.FillPreserve()
		dc.SetColor(color.NRGBA{R: 255, G: 255, B: 255, A: 230})
		dc.SetLineWidth(swatchStroke)
		dc.Stroke()
	}
}

// drawText writes the name block and price line centred under the image.
func drawText(dc *gg.Context, it catalog.Item, opts Options, x, top, w float64, nameFace, priceFace font.Face) {
	cx := x + w/2
	y := top + TextPadding

	if opts.Names != NamesNone {
		dc.SetFontFace(nameFace)
		dc.SetColor(hexColor(nameColor))
		name := displayName(opts.Names, it.NameKo, it.NameJp)
		for i, line := range wrapText(name, w-2*TextPadding, NameLines, measurer(nameFace)) {
			dc.DrawStringAnchored(line, cx, y+float64(i*LineHeight)+LineHeight/2, 0.5, 0.5)
		}
		y += NameLines * LineHeight
	}

	if opts.ShowPrice {
		price := missingPrice
		if it.Price != nil && strings.TrimSpace(*it.Price) != "" {
			price = *it.Price
		}
		dc.SetFontFace(priceFace)
		dc.SetColor(hexColor(priceColor))
		dc.DrawStringAnchored(price, cx, y+LineHeight/2, 0.5, 0.5)
	}
}

package render

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
)

// corners holds per-corner radii: top-left, top-right, bottom-right, bottom-left.
type corners struct {
	tl, tr, br, bl float64
}

func uniform(r float64) corners { return corners{r, r, r, r} }

// roundedRectPath adds a closed rectangle path with independently rounded corners.
func roundedRectPath(dc *gg.Context, x, y, w, h float64, c corners) {
	dc.NewSubPath()
	dc.MoveTo(x+c.tl, y)
	dc.LineTo(x+w-c.tr, y)
	if c.tr > 0 {
		dc.DrawArc(x+w-c.tr, y+c.tr, c.tr, gg.Radians(270), gg.Radians(360))
	}
	dc.LineTo(x+w, y+h-c.br)
	if c.br > 0 {
		dc.DrawArc(x+w-c.br, y+h-c.br, c.br, gg.Radians(0), gg.Radians(90))
	}
	dc.LineTo(x+c.bl, y+h)
	if c.bl > 0 {
		dc.DrawArc(x+c.bl, y+h-c.bl, c.bl, gg.Radians(90), gg.Radians(180))
	}
	dc.LineTo(x, y+c.tl)
	if c.tl > 0 {
		dc.DrawArc(x+c.tl, y+c.tl, c.tl, gg.Radians(180), gg.Radians(270))
	}
	dc.ClosePath()
}

// shadowSprite is a blurred, translucent rounded rectangle the size of a card,
// drawn under every card. margin is the transparent border around the shape.
type shadowSprite struct {
	img    image.Image
	margin int
}

func newShadowSprite(w, h int, radius float64) shadowSprite {
	margin := 2 * ShadowBlur
	dc := gg.NewContext(w+2*margin, h+2*margin)
	roundedRectPath(dc, float64(margin), float64(margin), float64(w), float64(h), uniform(radius))
	dc.SetColor(color.NRGBA{A: uint8(math.Round(ShadowAlpha * 255))})
	dc.Fill()
	// A canvas shadowBlur of b is a gaussian with sigma b/2.
	return shadowSprite{img: imaging.Blur(dc.Image(), ShadowBlur/2.0), margin: margin}
}

func (s shadowSprite) drawAt(dc *gg.Context, x, y int) {
	dc.DrawImage(s.img, x-s.margin, y-s.margin+ShadowOffsetY)
}

// coverFit scales img uniformly so it covers w×h and centre-crops the overflow.
func coverFit(img image.Image, w, h int) image.Image {
	return imaging.Fill(img, w, h, imaging.Center, imaging.Lanczos)
}

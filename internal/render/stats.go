package render

import (
	"context"
	"image"

	"github.com/fogleman/gg"

	"github.com/zjoart/kenshicollection/internal/progress"
	"github.com/zjoart/kenshicollection/pkg/logger"
)

// Stats card geometry, in pixels.
const (
	StatsWidth     = 600
	StatsPadding   = 40
	StatsRowHeight = 80
	StatsFooter    = 100

	statsFirstRow  = StatsPadding + 30
	statsBarOffset = 15
	statsBarHeight = 12
	statsBarRadius = 6
	statsDivider   = 2

	labelFontSize  = 24
	statFontSize   = 20
	footerFontSize = 32
)

// StatsRow is one category line of the stats card.
type StatsRow struct {
	Label      string
	Text       string
	Percent    int
	Y          float64
	TrackWidth float64
	FillWidth  float64
}

// StatsLayout is the stats card geometry for a set of category summaries.
type StatsLayout struct {
	Width    int
	Height   int
	Rows     []StatsRow
	DividerY float64
	FooterY  float64
	Footer   string
}

// NewStatsLayout places one row per category. Bar fill and the printed
// percentage both come from the row's Percent.
func NewStatsLayout(cats []progress.Category, total progress.Summary) StatsLayout {
	track := float64(StatsWidth - 2*StatsPadding)
	l := StatsLayout{
		Width:  StatsWidth,
		Height: 2*StatsPadding + len(cats)*StatsRowHeight + StatsFooter,
		Rows:   make([]StatsRow, 0, len(cats)),
	}
	for i, c := range cats {
		row := StatsRow{
			Label:      c.Category,
			Text:       c.Text(),
			Percent:    c.Percent,
			Y:          float64(statsFirstRow + i*StatsRowHeight),
			TrackWidth: track,
		}
		if c.Percent > 0 {
			row.FillWidth = track * float64(c.Percent) / 100
		}
		l.Rows = append(l.Rows, row)
	}
	l.DividerY = float64(statsFirstRow + len(cats)*StatsRowHeight)
	l.FooterY = l.DividerY + StatsFooter/2
	l.Footer = "TOTAL: " + total.Text()
	return l
}

// StatsResult is a rendered stats card.
type StatsResult struct {
	Image  image.Image
	Layout StatsLayout
}

// Stats draws the progress card in the given theme.
func (r *Renderer) Stats(ctx context.Context, cats []progress.Category, total progress.Summary, theme Theme) (*StatsResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l := NewStatsLayout(cats, total)
	logger.Info("render: Stats start", logger.Fields{"rows": len(l.Rows), "theme": theme.Name})

	dc := gg.NewContext(l.Width, l.Height)
	r.drawStatsBackground(ctx, dc, l, theme)

	accent := hexColor(theme.Accent)
	track := hexColor(theme.Track)
	labelFace := r.fonts.Face(labelFontSize, true)
	statFace := r.fonts.Face(statFontSize, true)

	for _, row := range l.Rows {
		dc.SetColor(accent)
		dc.SetFontFace(labelFace)
		dc.DrawStringAnchored(row.Label, StatsPadding, row.Y, 0, 0.5)
		dc.SetFontFace(statFace)
		dc.DrawStringAnchored(row.Text, float64(l.Width-StatsPadding), row.Y, 1, 0.5)

		barY := row.Y + statsBarOffset
		roundedRectPath(dc, StatsPadding, barY, row.TrackWidth, statsBarHeight, uniform(statsBarRadius))
		dc.SetColor(track)
		dc.Fill()
		if row.FillWidth > 0 {
			radius := float64(statsBarRadius)
			if row.FillWidth < 2*radius {
				radius = row.FillWidth / 2
			}
			roundedRectPath(dc, StatsPadding, barY, row.FillWidth, statsBarHeight, uniform(radius))
			dc.SetColor(accent)
			dc.Fill()
		}
	}

	dc.SetColor(track)
	dc.DrawRectangle(StatsPadding, l.DividerY, float64(l.Width-2*StatsPadding), statsDivider)
	dc.Fill()

	dc.SetColor(accent)
	dc.SetFontFace(r.fonts.Face(footerFontSize, true))
	dc.DrawStringAnchored(l.Footer, float64(l.Width)/2, l.FooterY, 0.5, 0.5)

	return &StatsResult{Image: dc.Image(), Layout: l}, nil
}

func (r *Renderer) drawStatsBackground(ctx context.Context, dc *gg.Context, l StatsLayout, theme Theme) {
	if theme.Background != "" {
		bg, err := r.loader.Load(ctx, theme.Background)
		if err == nil {
			dc.DrawImage(coverFit(bg, l.Width, l.Height), 0, 0)
			return
		}
		logger.Warn("render: theme background unavailable, using flat colour", logger.Fields{"theme": theme.Name}, logger.WithError(err))
	}
	dc.SetColor(hexColor(theme.Fallback))
	dc.Clear()
}

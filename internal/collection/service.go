// Package collection ties the catalog, the ownership ledger and the renderers
// together behind the HTTP API.
package collection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/zjoart/kenshicollection/internal/catalog"
	"github.com/zjoart/kenshicollection/internal/charts"
	"github.com/zjoart/kenshicollection/internal/export"
	"github.com/zjoart/kenshicollection/internal/ownership"
	"github.com/zjoart/kenshicollection/internal/progress"
	"github.com/zjoart/kenshicollection/internal/render"
	"github.com/zjoart/kenshicollection/pkg/logger"
)

var (
	ErrCatalogUnavailable = catalog.ErrUnavailable
	ErrUnknownKey         = errors.New("unknown ownership key")
	ErrNotConfirmed       = errors.New("reset not confirmed")
	ErrNoRender           = errors.New("nothing rendered yet")
)

// ItemView is a catalog item with its ownership state.
type ItemView struct {
	catalog.Item
	Owned         bool     `json:"owned"`
	VariantClass  bool     `json:"variant_class"`
	OwnedVariants []string `json:"owned_variants,omitempty"`
}

// GroupView is one display section with its owned/total count.
type GroupView struct {
	Key   string           `json:"key"`
	Count progress.Summary `json:"count"`
	Items []ItemView       `json:"items"`
}

// ProgressView is the overall and per-category progress.
type ProgressView struct {
	Overall    progress.Summary    `json:"overall"`
	Categories []progress.Category `json:"categories"`
}

// RenderRequest selects the display options and the stats theme.
type RenderRequest struct {
	Options render.Options `json:"options"`
	Theme   int            `json:"theme"`
}

// RenderResult describes one finished render. Published is false when a newer
// render finished first; its images are then not served by Latest.
type RenderResult struct {
	Generation uint64        `json:"generation"`
	Published  bool          `json:"published"`
	Missing    []string      `json:"missing_images"`
	Collection *export.Image `json:"collection"`
	Stats      *export.Image `json:"stats"`
	Progress   ProgressView  `json:"progress"`
	Layout     render.Layout `json:"layout"`
}

// Service is the application state shared by all handlers.
type Service struct {
	store    *catalog.Store
	ledger   *ownership.Ledger
	renderer *render.Renderer
	themes   []render.Theme

	gen atomic.Uint64

	mu        sync.RWMutex
	published uint64
	latest    map[export.Kind]*export.Image
}

func NewService(store *catalog.Store, ledger *ownership.Ledger, renderer *render.Renderer, themes []render.Theme) *Service {
	if len(themes) == 0 {
		themes = render.DefaultThemes()
	}
	return &Service{
		store:    store,
		ledger:   ledger,
		renderer: renderer,
		themes:   themes,
		latest:   map[export.Kind]*export.Image{},
	}
}

func (s *Service) Themes() []render.Theme {
	out := make([]render.Theme, len(s.themes))
	copy(out, s.themes)
	return out
}

func (s *Service) Categories() ([]catalog.CategoryNode, error) {
	if err := s.store.Err(); err != nil {
		return nil, err
	}
	return s.store.Categories(), nil
}

// Items returns the selected items grouped for display.
func (s *Service) Items(sel catalog.Selection) ([]GroupView, error) {
	if err := s.store.Err(); err != nil {
		return nil, err
	}
	class := s.ledger.Variants()
	groups := catalog.GroupItems(s.store.Select(sel))
	counts := progress.PerGroup(groups, s.ledger)

	out := make([]GroupView, 0, len(groups))
	for gi, g := range groups {
		gv := GroupView{Key: g.Key, Count: counts[gi].Summary, Items: make([]ItemView, 0, len(g.Items))}
		for _, it := range g.Items {
			iv := ItemView{Item: it, Owned: s.ledger.IsOwned(it), VariantClass: class.Matches(it)}
			if iv.VariantClass {
				iv.OwnedVariants = s.ledger.OwnedVariants(it.ID)
			}
			gv.Items = append(gv.Items, iv)
		}
		out = append(out, gv)
	}
	return out, nil
}

// Toggle flips one ownership key. The key must name a catalog item, or a
// variant of a variant-class item.
func (s *Service) Toggle(ctx context.Context, key string) (bool, error) {
	if err := s.store.Err(); err != nil {
		return false, err
	}
	key = strings.TrimSpace(key)
	if !s.knownKey(key) {
		return false, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	owned, err := s.ledger.Toggle(ctx, key)
	if err != nil {
		return owned, err
	}
	logger.Info("service: ownership toggled", logger.Fields{"key": key, "owned": owned})
	return owned, nil
}

func (s *Service) knownKey(key string) bool {
	class := s.ledger.Variants()
	for _, it := range s.store.All() {
		if class.Matches(it) {
			for _, v := range class.Variants {
				if class.Key(it.ID, v.Code) == key {
					return true
				}
			}
			continue
		}
		if it.ID == key {
			return true
		}
	}
	return false
}

// Clear empties the ledger. confirm must be true.
func (s *Service) Clear(ctx context.Context, confirm bool) error {
	if !confirm {
		return ErrNotConfirmed
	}
	return s.ledger.Clear(ctx)
}

func (s *Service) OwnedKeys() []string {
	return s.ledger.Keys()
}

// Progress counts over the whole catalog, ignoring any selection.
func (s *Service) Progress() (ProgressView, error) {
	if err := s.store.Err(); err != nil {
		return ProgressView{}, err
	}
	items := s.store.All()
	return ProgressView{
		Overall:    progress.Overall(items, s.ledger),
		Categories: progress.PerCategory(items, s.ledger),
	}, nil
}

// Chart writes the per-category progress chart as HTML.
func (s *Service) Chart(w io.Writer) error {
	p, err := s.Progress()
	if err != nil {
		return err
	}
	return charts.RenderProgressChart(w, p.Categories, p.Overall, charts.DefaultChartConfig())
}

// Generate renders the owned items and the stats card, encodes both and
// publishes them unless a newer render already finished.
func (s *Service) Generate(ctx context.Context, req RenderRequest) (*RenderResult, error) {
	if err := s.store.Err(); err != nil {
		return nil, err
	}
	theme, err := render.ThemeAt(s.themes, req.Theme)
	if err != nil {
		return nil, err
	}
	items := s.store.All()
	owned := s.ledger.OwnedItems(items)
	if len(owned) == 0 {
		return nil, render.ErrNoItems
	}

	gen := s.gen.Add(1)
	logger.Info("service: Generate started", logger.Fields{"generation": gen, "owned": len(owned), "theme": theme.Name})

	grid, err := s.renderer.Grid(ctx, owned, req.Options, s.ledger)
	if err != nil {
		return nil, fmt.Errorf("render collection: %w", err)
	}
	prog := ProgressView{
		Overall:    progress.Overall(items, s.ledger),
		Categories: progress.PerCategory(items, s.ledger),
	}
	stats, err := s.renderer.Stats(ctx, prog.Categories, prog.Overall, theme)
	if err != nil {
		return nil, fmt.Errorf("render stats: %w", err)
	}

	collectionImg, err := export.EncodeCollection(grid.Image)
	if err != nil {
		return nil, err
	}
	statsImg, err := export.EncodeStats(stats.Image)
	if err != nil {
		return nil, err
	}

	res := &RenderResult{
		Generation: gen,
		Missing:    grid.Missing,
		Collection: collectionImg,
		Stats:      statsImg,
		Progress:   prog,
		Layout:     grid.Layout,
	}

	s.mu.Lock()
	if gen > s.published {
		s.published = gen
		s.latest[export.KindCollection] = collectionImg
		s.latest[export.KindStats] = statsImg
		res.Published = true
	}
	s.mu.Unlock()

	if !res.Published {
		logger.Info("service: render superseded, not publishing", logger.Fields{"generation": gen})
	}
	return res, nil
}

// Latest returns the most recently published image of a kind.
func (s *Service) Latest(kind export.Kind) (*export.Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	img, ok := s.latest[kind]
	if !ok {
		return nil, ErrNoRender
	}
	return img, nil
}

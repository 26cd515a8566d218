package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zjoart/kenshicollection/cmd/routes"
	"github.com/zjoart/kenshicollection/internal/catalog"
	"github.com/zjoart/kenshicollection/internal/collection"
	"github.com/zjoart/kenshicollection/internal/config"
	"github.com/zjoart/kenshicollection/internal/export"
	"github.com/zjoart/kenshicollection/internal/ownership"
	"github.com/zjoart/kenshicollection/internal/render"
	"github.com/zjoart/kenshicollection/internal/storage"
	"github.com/zjoart/kenshicollection/pkg/logger"
)

const catalogFetchTimeout = 20 * time.Second

func main() {
	exportOnly := flag.Bool("export", false, "Render the owned collection once, save both images to OUTPUT_DIR and exit")
	title := flag.String("title", "", "Collage title (export mode)")
	names := flag.String("names", "primary", "Names under cards: none, primary or secondary (export mode)")
	price := flag.Bool("price", true, "Print prices under cards (export mode)")
	theme := flag.Int("theme", 0, "Stats card theme index (export mode)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		// The logger is configured from cfg, so this one goes to stderr.
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.AppEnv); err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, err := storage.Open(cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		logger.Error("storage: open failed", logger.Fields{"driver": cfg.Store.Driver}, logger.WithError(err))
		os.Exit(1)
	}
	defer kv.Close()

	variants := catalog.VariantClass{
		Prefix:    cfg.Variant.Prefix,
		Separator: cfg.Variant.Separator,
		Variants:  catalog.DefaultVariants(),
	}
	ledger := ownership.New(kv, variants)
	if err := ledger.Load(ctx); err != nil {
		logger.Error("ledger: load failed", logger.WithError(err))
		os.Exit(1)
	}

	store := loadCatalog(ctx, cfg)

	fonts, err := render.LoadFonts(cfg.Render.FontPath, cfg.Render.BoldFontPath)
	if err != nil {
		logger.Error("render: fonts failed", logger.WithError(err))
		os.Exit(1)
	}
	themes, err := render.LoadThemes(cfg.ThemesFile)
	if err != nil {
		logger.Error("render: themes failed", logger.Fields{"path": cfg.ThemesFile}, logger.WithError(err))
		os.Exit(1)
	}
	loader := render.NewHTTPLoader(cfg.Render.ImageTimeout, cfg.Render.ImageRPS)
	svc := collection.NewService(store, ledger, render.NewRenderer(loader, fonts), themes)

	if *exportOnly {
		req := collection.RenderRequest{
			Options: render.Options{ShowTitle: *title != "", Title: *title, ShowPrice: *price},
			Theme:   *theme,
		}
		if err := req.Options.Names.UnmarshalText([]byte(*names)); err != nil {
			logger.Error("export: bad -names flag", logger.WithError(err))
			os.Exit(2)
		}
		if err := runExport(ctx, svc, req, cfg.Render.OutputDir); err != nil {
			logger.Error("export: failed", logger.WithError(err))
			os.Exit(1)
		}
		return
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.SetUpRoutes(svc, cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("server: starting", logger.Fields{"port": cfg.Port, "env": cfg.AppEnv, "items": store.Len()})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server: failed", logger.WithError(err))
		os.Exit(1)
	}
	logger.Info("server: stopped")
}

// loadCatalog reads the catalog once. A local file is also watched for edits;
// a failed load leaves the store empty and marked unavailable.
func loadCatalog(ctx context.Context, cfg *config.Config) *catalog.Store {
	store := catalog.NewStore(nil)

	if cfg.Catalog.Path != "" {
		items, err := catalog.LoadFile(cfg.Catalog.Path)
		if err != nil {
			logger.Error("catalog: load failed", logger.Fields{"path": cfg.Catalog.Path}, logger.WithError(err))
			store.Fail(err)
			return store
		}
		store.Replace(items)
		go func() {
			if err := catalog.Watch(ctx, cfg.Catalog.Path, store); err != nil {
				logger.Warn("catalog: watch stopped", logger.WithError(err))
			}
		}()
		return store
	}

	fetchCtx, cancel := context.WithTimeout(ctx, catalogFetchTimeout)
	defer cancel()
	items, err := catalog.Fetch(fetchCtx, &http.Client{Timeout: catalogFetchTimeout}, cfg.Catalog.URL)
	if err != nil {
		logger.Error("catalog: fetch failed", logger.WithError(err))
		store.Fail(err)
		return store
	}
	store.Replace(items)
	return store
}

func runExport(ctx context.Context, svc *collection.Service, req collection.RenderRequest, dir string) error {
	res, err := svc.Generate(ctx, req)
	if err != nil {
		return err
	}
	for _, img := range []*export.Image{res.Collection, res.Stats} {
		if _, err := img.Save(dir); err != nil {
			return err
		}
	}
	logger.Info("export: done", logger.Fields{"dir": dir, "missing_images": len(res.Missing)})
	return nil
}

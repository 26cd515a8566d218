package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort         = "8080"
	defaultAppEnv       = "development"
	defaultCatalogURL   = "https://docs.google.com/spreadsheets/d/1-3ux609KgZ7vwEYHPsfTeopwyAcex-q1uiXiIYO57a8/export?format=csv"
	defaultStoreDriver  = "sqlite3"
	defaultStoreDSN     = "./kenshi.db"
	defaultImageTimeout = 15 * time.Second
	defaultImageRPS     = 8.0
	defaultOutputDir    = "cache"
	defaultVariantPref  = "MF"
	defaultVariantSep   = "_"
)

// Config holds runtime settings read from the environment (.env is loaded first when present).
type Config struct {
	AppEnv     string
	Port       string
	Catalog    CatalogConfig
	Store      StoreConfig
	Render     RenderConfig
	Variant    VariantConfig
	ThemesFile string
	Swagger    SwaggerConfig
}

// CatalogConfig selects where the catalog CSV comes from. Path wins over URL.
type CatalogConfig struct {
	URL  string
	Path string
}

// StoreConfig configures the key-value slot that holds ownership state.
type StoreConfig struct {
	Driver string // sqlite3 or mysql
	DSN    string
}

type RenderConfig struct {
	FontPath     string
	BoldFontPath string
	ImageTimeout time.Duration
	ImageRPS     float64
	OutputDir    string
}

// VariantConfig identifies the items that carry per-colour ownership.
type VariantConfig struct {
	Prefix    string
	Separator string
}

type SwaggerConfig struct {
	Host    string
	Schemes []string
}

// Load reads .env (if any) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	timeout, err := durationEnv("IMAGE_TIMEOUT", defaultImageTimeout)
	if err != nil {
		return nil, err
	}
	rps, err := floatEnv("IMAGE_RPS", defaultImageRPS)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		AppEnv: getEnv("APP_ENV", defaultAppEnv),
		Port:   getEnv("PORT", defaultPort),
		Catalog: CatalogConfig{
			URL:  getEnv("CATALOG_URL", defaultCatalogURL),
			Path: os.Getenv("CATALOG_PATH"),
		},
		Store: StoreConfig{
			Driver: getEnv("STORE_DRIVER", defaultStoreDriver),
			DSN:    getEnv("STORE_DSN", defaultStoreDSN),
		},
		Render: RenderConfig{
			FontPath:     os.Getenv("FONT_PATH"),
			BoldFontPath: os.Getenv("BOLD_FONT_PATH"),
			ImageTimeout: timeout,
			ImageRPS:     rps,
			OutputDir:    getEnv("OUTPUT_DIR", defaultOutputDir),
		},
		Variant: VariantConfig{
			Prefix:    getEnv("VARIANT_PREFIX", defaultVariantPref),
			Separator: getEnv("VARIANT_SEPARATOR", defaultVariantSep),
		},
		ThemesFile: os.Getenv("THEMES_FILE"),
		Swagger: SwaggerConfig{
			Host:    os.Getenv("SWAGGER_HOST"),
			Schemes: splitList(os.Getenv("SWAGGER_SCHEMES")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	var problems []string
	switch c.Store.Driver {
	case "sqlite3", "mysql":
	default:
		problems = append(problems, fmt.Sprintf("STORE_DRIVER %q is not one of sqlite3, mysql", c.Store.Driver))
	}
	if c.Store.DSN == "" {
		problems = append(problems, "STORE_DSN is empty")
	}
	if c.Catalog.URL == "" && c.Catalog.Path == "" {
		problems = append(problems, "one of CATALOG_URL or CATALOG_PATH is required")
	}
	if c.Variant.Prefix == "" || c.Variant.Separator == "" {
		problems = append(problems, "VARIANT_PREFIX and VARIANT_SEPARATOR must be set")
	}
	if c.Render.ImageRPS <= 0 {
		problems = append(problems, "IMAGE_RPS must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func floatEnv(key string, fallback float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return f, nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

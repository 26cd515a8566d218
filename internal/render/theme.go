package render

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

var ErrUnknownTheme = errors.New("unknown theme")

// defaultTrackAlpha is the bar track opacity when a theme names only an accent.
const defaultTrackAlpha = 0x26

// Theme styles the stats card: a background asset and the accent colours.
type Theme struct {
	Name       string `toml:"name" json:"name"`
	Background string `toml:"background" json:"background"`
	Accent     string `toml:"accent" json:"accent"`
	Track      string `toml:"track" json:"track"`
	Fallback   string `toml:"fallback" json:"fallback"`
}

// DefaultThemes is the built-in palette. It ships no background images; a
// themes file can point Background at a local path or URL.
func DefaultThemes() []Theme {
	return []Theme{
		{Name: "navy", Accent: "#182558", Track: "#18255826", Fallback: "#ffffff"},
		{Name: "sakura", Accent: "#c2185b", Track: "#c2185b26", Fallback: "#fff5f8"},
		{Name: "forest", Accent: "#2e7d32", Track: "#2e7d3226", Fallback: "#f3f8f3"},
	}
}

type themeFile struct {
	Themes []Theme `toml:"theme"`
}

// LoadThemes reads a TOML palette ([[theme]] tables). An empty path returns DefaultThemes.
func LoadThemes(path string) ([]Theme, error) {
	if path == "" {
		return DefaultThemes(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read themes file: %w", err)
	}
	return ParseThemes(data)
}

// ParseThemes decodes and validates a TOML palette.
func ParseThemes(data []byte) ([]Theme, error) {
	var f themeFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse themes file: %w", err)
	}
	if len(f.Themes) == 0 {
		return nil, errors.New("themes file defines no [[theme]]")
	}
	for i := range f.Themes {
		t := &f.Themes[i]
		if t.Fallback == "" {
			t.Fallback = "#ffffff"
		}
		accent, err := ParseHex(t.Accent)
		if err != nil {
			return nil, fmt.Errorf("theme %q: %w", t.Name, err)
		}
		if t.Track == "" {
			t.Track = fmt.Sprintf("#%02x%02x%02x%02x", accent.R, accent.G, accent.B, defaultTrackAlpha)
		}
		for _, c := range []string{t.Track, t.Fallback} {
			if _, err := ParseHex(c); err != nil {
				return nil, fmt.Errorf("theme %q: %w", t.Name, err)
			}
		}
	}
	return f.Themes, nil
}

// ThemeAt selects a theme by index.
func ThemeAt(themes []Theme, i int) (Theme, error) {
	if i < 0 || i >= len(themes) {
		return Theme{}, fmt.Errorf("%w: index %d (have %d)", ErrUnknownTheme, i, len(themes))
	}
	return themes[i], nil
}

// ParseHex parses #rgb, #rrggbb or #rrggbbaa.
func ParseHex(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// hexColor parses s, falling back to opaque black.
func hexColor(s string) color.NRGBA {
	c, err := ParseHex(s)
	if err != nil {
		return color.NRGBA{A: 255}
	}
	return c
}

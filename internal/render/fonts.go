package render

import (
	"fmt"
	"os"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/zjoart/kenshicollection/pkg/logger"
)

// Fonts holds parsed regular and bold typefaces. Faces are created per render
// because a font.Face is not safe for concurrent use.
type Fonts struct {
	regular *truetype.Font
	bold    *truetype.Font
}

// LoadFonts parses the given TTF files once, before any text is drawn. An
// empty or unreadable path falls back to the embedded Go fonts.
func LoadFonts(regularPath, boldPath string) (*Fonts, error) {
	regular, err := loadFont(regularPath, goregular.TTF)
	if err != nil {
		return nil, err
	}
	bold, err := loadFont(boldPath, gobold.TTF)
	if err != nil {
		return nil, err
	}
	return &Fonts{regular: regular, bold: bold}, nil
}

// DefaultFonts returns the embedded Go fonts.
func DefaultFonts() *Fonts {
	f, err := LoadFonts("", "")
	if err != nil {
		// The embedded fonts are known-good.
		panic(err)
	}
	return f
}

func loadFont(path string, fallback []byte) (*truetype.Font, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			f, perr := truetype.Parse(data)
			if perr == nil {
				logger.Info("render: font loaded", logger.Fields{"path": path})
				return f, nil
			}
			err = perr
		}
		logger.Warn("render: font unavailable, using embedded font", logger.Fields{"path": path}, logger.WithError(err))
	}

	f, err := truetype.Parse(fallback)
	if err != nil {
		return nil, fmt.Errorf("parse embedded font: %w", err)
	}
	return f, nil
}

// Face returns a new face at size pixels.
func (f *Fonts) Face(size float64, bold bool) font.Face {
	tt := f.regular
	if bold {
		tt = f.bold
	}
	return truetype.NewFace(tt, &truetype.Options{Size: size, Hinting: font.HintingFull})
}

// measurer returns the advance width of s in face, in pixels.
func measurer(face font.Face) func(string) float64 {
	return func(s string) float64 {
		return float64(font.MeasureString(face, s)) / 64
	}
}

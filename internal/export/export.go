// Package export encodes rendered canvases into downloadable files.
package export

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/zjoart/kenshicollection/pkg/logger"
)

// Kind names the two exportable images.
type Kind string

const (
	KindCollection Kind = "collection"
	KindStats      Kind = "stats"
)

const (
	CollectionFileName = "kenshi_collection_list.jpg"
	StatsFileName      = "kenshi_collection_stats.png"
	JPEGQuality        = 90
)

var ErrUnknownKind = errors.New("unknown export kind")

// ParseKind validates a kind taken from a request path.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindCollection, KindStats:
		return Kind(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Image is one encoded export.
type Image struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"kind"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Data        []byte    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// EncodeCollection encodes the collage as lossy JPEG.
func EncodeCollection(img image.Image) (*Image, error) {
	return encode(img, KindCollection, CollectionFileName, "image/jpeg", imaging.JPEG, imaging.JPEGQuality(JPEGQuality))
}

// EncodeStats encodes the stats card as lossless PNG.
func EncodeStats(img image.Image) (*Image, error) {
	return encode(img, KindStats, StatsFileName, "image/png", imaging.PNG)
}

func encode(img image.Image, kind Kind, name, contentType string, format imaging.Format, opts ...imaging.EncodeOption) (*Image, error) {
	if img == nil {
		return nil, fmt.Errorf("encode %s: nil image", kind)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, opts...); err != nil {
		return nil, fmt.Errorf("encode %s: %w", kind, err)
	}
	out := &Image{
		ID:          uuid.New().String(),
		Kind:        kind,
		FileName:    name,
		ContentType: contentType,
		Data:        buf.Bytes(),
		CreatedAt:   time.Now().UTC(),
	}
	logger.Debug("export: encoded", logger.Fields{"id": out.ID, "kind": kind, "bytes": len(out.Data)})
	return out, nil
}

// DataURL is the inline form used for previews.
func (i *Image) DataURL() string {
	return "data:" + i.ContentType + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// Save writes the image under dir with its fixed file name and returns the path.
func (i *Image) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, i.FileName)
	if err := os.WriteFile(path, i.Data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	logger.Info("export: saved", logger.Fields{"path": path, "kind": i.Kind})
	return path, nil
}

package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
	"golang.org/x/time/rate"
)

var ErrNoImage = errors.New("no image reference")

// ImageLoader resolves an image reference (URL or path) to a decoded image.
type ImageLoader interface {
	Load(ctx context.Context, ref string) (image.Image, error)
}

// HTTPLoader fetches http(s) references with a rate-limited client and opens
// anything else from disk.
type HTTPLoader struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewHTTPLoader builds a loader. The timeout bounds each request so a hung
// download still resolves to "no image".
func NewHTTPLoader(timeout time.Duration, rps float64) *HTTPLoader {
	return &HTTPLoader{
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

func (l *HTTPLoader) Load(ctx context.Context, ref string) (image.Image, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrNoImage
	}
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		img, err := imaging.Open(strings.TrimPrefix(ref, "file://"), imaging.AutoOrientation(true))
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", ref, err)
		}
		return img, nil
	}

	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ref, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", ref, resp.StatusCode)
	}

	img, err := imaging.Decode(resp.Body, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", ref, err)
	}
	return img, nil
}

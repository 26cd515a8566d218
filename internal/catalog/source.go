package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/zjoart/kenshicollection/pkg/logger"
)

// ExternalError marks a catalog source that could not be read.
type ExternalError struct {
	Source string
	Err    error
}

func (e ExternalError) Error() string {
	return fmt.Sprintf("could not load catalog from %s: %v", e.Source, e.Err)
}

func (e ExternalError) Unwrap() error { return e.Err }

// Fetch downloads and parses the catalog CSV. Any failure is reported as ExternalError.
func Fetch(ctx context.Context, client *http.Client, url string) ([]Item, error) {
	logger.Info("source: Fetch started", logger.Fields{"url": url})
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, ExternalError{Source: url, Err: err}
	}
	resp, err := client.Do(req)
	if err != nil {
		logger.Warn("source: fetch failed", logger.WithError(err))
		return nil, ExternalError{Source: url, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		logger.Warn("source: non-200 response", logger.Fields{"status": resp.StatusCode})
		return nil, ExternalError{Source: url, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	items, err := Parse(resp.Body)
	if err != nil {
		return nil, ExternalError{Source: url, Err: err}
	}
	logger.Info("source: Fetch completed", logger.Fields{"items": len(items)})
	return items, nil
}

// LoadFile parses a catalog CSV from disk.
func LoadFile(path string) ([]Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ExternalError{Source: path, Err: err}
	}
	defer f.Close()

	items, err := Parse(f)
	if err != nil {
		return nil, ExternalError{Source: path, Err: err}
	}
	return items, nil
}

// Parse reads a header-keyed CSV. Rows shorter than the header, rows failing
// validation and repeated ids are skipped; the first occurrence of an id wins.
func Parse(r io.Reader) ([]Item, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("catalog is empty")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := map[string]int{}
	for i, h := range header {
		h = strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")
		cols[h] = i
	}
	if _, ok := cols["id"]; !ok {
		return nil, errors.New("catalog header has no id column")
	}

	seen := map[string]bool{}
	var out []Item
	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			logger.Warn("source: unreadable row skipped", logger.Fields{"line": line}, logger.WithError(err))
			continue
		}
		if len(row) < len(header) {
			continue
		}

		get := func(name string) string {
			i, ok := cols[name]
			if !ok {
				return ""
			}
			return norm.NFC.String(strings.TrimSpace(row[i]))
		}

		it := Item{
			ID:          get("id"),
			Category:    get("category"),
			SubCategory: optional(get("sub_category")),
			NameKo:      get("nameKo"),
			NameJp:      optional(get("nameJp")),
			Price:       optional(get("price")),
			Image:       optional(get("image")),
		}
		if it.ID == "" {
			continue
		}
		if err := it.Validate(); err != nil {
			logger.Warn("source: item validation failed", logger.Fields{
				"id":     it.ID,
				"errors": err.(*ValidationError).Errors,
			})
			continue
		}
		if seen[it.ID] {
			logger.Warn("source: duplicate id skipped", logger.Fields{"id": it.ID, "line": line})
			continue
		}
		seen[it.ID] = true
		out = append(out, it)
	}
	return out, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

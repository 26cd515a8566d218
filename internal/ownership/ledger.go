// Package ownership tracks which catalog items (and which variants of them) the user owns.
package ownership

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/zjoart/kenshicollection/internal/catalog"
	"github.com/zjoart/kenshicollection/internal/storage"
	"github.com/zjoart/kenshicollection/pkg/logger"
)

// SlotKey is the key-value slot holding the owned keys.
const SlotKey = "kenshi_owned"

// Ledger is the set of owned keys. A key is a bare item id or, for the
// variant class, itemID+separator+variantCode.
type Ledger struct {
	mu       sync.RWMutex
	keys     map[string]struct{}
	variants catalog.VariantClass
	kv       storage.KV
}

func New(kv storage.KV, variants catalog.VariantClass) *Ledger {
	return &Ledger{
		keys:     map[string]struct{}{},
		variants: variants,
		kv:       kv,
	}
}

// Load replaces the in-memory set with the persisted one. A missing or
// unparseable slot yields an empty set; only storage failures are returned.
func (l *Ledger) Load(ctx context.Context) error {
	raw, err := l.kv.Get(ctx, SlotKey)
	if errors.Is(err, storage.ErrNotFound) {
		l.reset()
		return nil
	}
	if err != nil {
		return fmt.Errorf("load ownership: %w", err)
	}

	var keys []string
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		logger.Warn("ledger: stored value unparseable, starting empty", logger.WithError(err))
		l.reset()
		return nil
	}

	l.mu.Lock()
	l.keys = make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			l.keys[k] = struct{}{}
		}
	}
	l.mu.Unlock()
	logger.Info("ledger: loaded", logger.Fields{"keys": len(keys)})
	return nil
}

func (l *Ledger) reset() {
	l.mu.Lock()
	l.keys = map[string]struct{}{}
	l.mu.Unlock()
}

// Has reports whether the exact key is present.
func (l *Ledger) Has(key string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.keys[key]
	return ok
}

// IsOwned applies the variant rule: a variant-class item is owned when any of
// its variant keys is present, any other item when its bare id is present.
func (l *Ledger) IsOwned(it catalog.Item) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.variants.Matches(it) {
		for _, v := range l.variants.Variants {
			if _, ok := l.keys[l.variants.Key(it.ID, v.Code)]; ok {
				return true
			}
		}
		return false
	}
	_, ok := l.keys[it.ID]
	return ok
}

// OwnedVariants returns the owned variant codes of an item in palette order.
func (l *Ledger) OwnedVariants(itemID string) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []string
	for _, v := range l.variants.Variants {
		if _, ok := l.keys[l.variants.Key(itemID, v.Code)]; ok {
			out = append(out, v.Code)
		}
	}
	return out
}

// Variants exposes the variant class the ledger was built with.
func (l *Ledger) Variants() catalog.VariantClass {
	return l.variants
}

// Toggle adds the key if absent and removes it if present, then persists the
// full set. It returns whether the key is present afterwards. On a storage
// failure the in-memory change is rolled back.
func (l *Ledger) Toggle(ctx context.Context, key string) (bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return false, errors.New("empty ownership key")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	_, had := l.keys[key]
	if had {
		delete(l.keys, key)
	} else {
		l.keys[key] = struct{}{}
	}

	if err := l.saveLocked(ctx); err != nil {
		if had {
			l.keys[key] = struct{}{}
		} else {
			delete(l.keys, key)
		}
		return had, err
	}
	return !had, nil
}

// Clear empties the set and removes the persisted slot.
func (l *Ledger) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.kv.Delete(ctx, SlotKey); err != nil {
		return fmt.Errorf("clear ownership: %w", err)
	}
	l.keys = map[string]struct{}{}
	logger.Info("ledger: cleared")
	return nil
}

// Keys returns the owned keys sorted.
func (l *Ledger) Keys() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sortedLocked()
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.keys)
}

// OwnedItems filters items down to the owned ones, keeping order.
func (l *Ledger) OwnedItems(items []catalog.Item) []catalog.Item {
	out := make([]catalog.Item, 0, len(items))
	for _, it := range items {
		if l.IsOwned(it) {
			out = append(out, it)
		}
	}
	return out
}

func (l *Ledger) sortedLocked() []string {
	out := make([]string, 0, len(l.keys))
	for k := range l.keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (l *Ledger) saveLocked(ctx context.Context) error {
	raw, err := json.Marshal(l.sortedLocked())
	if err != nil {
		return err
	}
	if err := l.kv.Set(ctx, SlotKey, string(raw)); err != nil {
		return fmt.Errorf("save ownership: %w", err)
	}
	return nil
}

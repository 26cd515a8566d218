package catalog

import (
	"errors"
	"sync"
)

// ErrUnavailable is returned while no catalog could be loaded for the session.
var ErrUnavailable = errors.New("catalog unavailable")

// Selection narrows the catalog. An empty Category means no filter.
type Selection struct {
	Category    string `json:"category,omitempty"`
	SubCategory string `json:"sub_category,omitempty"`
}

// Group is one display section: items sharing a subcategory, or a category when they have none.
type Group struct {
	Key   string `json:"key"`
	Items []Item `json:"items"`
}

// CategoryNode is one entry of the navigation tree.
type CategoryNode struct {
	Name          string   `json:"name"`
	SubCategories []string `json:"sub_categories"`
}

// Store holds the items of the current session in source order.
type Store struct {
	mu      sync.RWMutex
	items   []Item
	loadErr error
}

func NewStore(items []Item) *Store {
	return &Store{items: items}
}

// Replace swaps the catalog contents, e.g. after the source file changed.
func (s *Store) Replace(items []Item) {
	s.mu.Lock()
	s.items = items
	s.loadErr = nil
	s.mu.Unlock()
}

// Fail records a terminal load failure; the store stays empty.
func (s *Store) Fail(err error) {
	s.mu.Lock()
	s.items = nil
	s.loadErr = err
	s.mu.Unlock()
}

// Err returns ErrUnavailable (wrapping the cause) when the load failed.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.loadErr != nil {
		return errors.Join(ErrUnavailable, s.loadErr)
	}
	return nil
}

// All returns a copy of the catalog.
func (s *Store) All() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Select returns the items matching sel in source order.
func (s *Store) Select(sel Selection) []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Item, 0, len(s.items))
	for _, it := range s.items {
		if sel.Category != "" && it.Category != sel.Category {
			continue
		}
		if sel.Category != "" && sel.SubCategory != "" && it.Sub() != sel.SubCategory {
			continue
		}
		out = append(out, it)
	}
	return out
}

// Categories lists categories in first-seen order with their distinct subcategories.
func (s *Store) Categories() []CategoryNode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var nodes []CategoryNode
	index := map[string]int{}
	seenSub := map[string]map[string]bool{}
	for _, it := range s.items {
		i, ok := index[it.Category]
		if !ok {
			i = len(nodes)
			index[it.Category] = i
			nodes = append(nodes, CategoryNode{Name: it.Category, SubCategories: []string{}})
			seenSub[it.Category] = map[string]bool{}
		}
		if sub := it.Sub(); sub != "" && !seenSub[it.Category][sub] {
			seenSub[it.Category][sub] = true
			nodes[i].SubCategories = append(nodes[i].SubCategories, sub)
		}
	}
	return nodes
}

// GroupKey is the section an item is listed under.
func GroupKey(it Item) string {
	if sub := it.Sub(); sub != "" {
		return sub
	}
	return it.Category
}

// GroupItems groups items by GroupKey, keeping first-seen key order and item order.
func GroupItems(items []Item) []Group {
	var groups []Group
	index := map[string]int{}
	for _, it := range items {
		k := GroupKey(it)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group{Key: k})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	return groups
}

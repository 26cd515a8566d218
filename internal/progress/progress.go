// Package progress derives owned/total counts and percentages from the catalog and ledger.
package progress

import (
	"fmt"

	"github.com/zjoart/kenshicollection/internal/catalog"
)

// Owner answers whether an item counts as owned.
type Owner interface {
	IsOwned(it catalog.Item) bool
}

// Summary is an owned/total pair with its display percentage.
type Summary struct {
	Owned   int `json:"owned"`
	Total   int `json:"total"`
	Percent int `json:"percent"`
}

// Text renders "owned/total (percent%)".
func (s Summary) Text() string {
	return fmt.Sprintf("%d/%d (%d%%)", s.Owned, s.Total, s.Percent)
}

// Category is the progress of one catalog category.
type Category struct {
	Category string `json:"category"`
	Summary
}

// Percent rounds owned/total*100 half up using integer arithmetic. Zero when
// total is zero. Every percentage shown as text or used for a bar comes from here.
func Percent(owned, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*owned + total) / (2 * total)
}

func summarize(owned, total int) Summary {
	return Summary{Owned: owned, Total: total, Percent: Percent(owned, total)}
}

// Overall counts owned items across the whole list.
func Overall(items []catalog.Item, owner Owner) Summary {
	owned := 0
	for _, it := range items {
		if owner.IsOwned(it) {
			owned++
		}
	}
	return summarize(owned, len(items))
}

// PerCategory walks items once and returns one entry per category in first-seen order.
func PerCategory(items []catalog.Item, owner Owner) []Category {
	var out []Category
	index := map[string]int{}
	for _, it := range items {
		i, ok := index[it.Category]
		if !ok {
			i = len(out)
			index[it.Category] = i
			out = append(out, Category{Category: it.Category})
		}
		out[i].Total++
		if owner.IsOwned(it) {
			out[i].Owned++
		}
	}
	for i := range out {
		out[i].Percent = Percent(out[i].Owned, out[i].Total)
	}
	return out
}

// GroupCount is the owned/total count shown next to a display section title.
type GroupCount struct {
	Key string `json:"key"`
	Summary
}

// PerGroup counts owned items per display group.
func PerGroup(groups []catalog.Group, owner Owner) []GroupCount {
	out := make([]GroupCount, 0, len(groups))
	for _, g := range groups {
		out = append(out, GroupCount{Key: g.Key, Summary: Overall(g.Items, owner)})
	}
	return out
}

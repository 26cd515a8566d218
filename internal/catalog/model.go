package catalog

import (
	"fmt"
	"strings"
)

// Item is one catalog record. Optional columns are nil when the sheet cell is blank.
type Item struct {
	ID          string  `json:"id"`
	Category    string  `json:"category"`
	SubCategory *string `json:"sub_category,omitempty"`
	NameKo      string  `json:"name_ko"`
	NameJp      *string `json:"name_jp,omitempty"`
	Price       *string `json:"price,omitempty"`
	Image       *string `json:"image,omitempty"`
}

// Sub returns the subcategory or "".
func (i Item) Sub() string {
	if i.SubCategory == nil {
		return ""
	}
	return *i.SubCategory
}

// ImageRef returns the image reference or "".
func (i Item) ImageRef() string {
	if i.Image == nil {
		return ""
	}
	return *i.Image
}

// ValidationError collects per-field problems found in a record.
type ValidationError struct {
	Errors map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for k, v := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", k, v))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Validate checks the fields every record must carry. Only the id is
// required; a blank category groups under the empty key.
func (i *Item) Validate() error {
	errs := map[string]string{}
	if strings.TrimSpace(i.ID) == "" {
		errs["id"] = "is required"
	}
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// Variant is one ownable colour of a variant-class item.
type Variant struct {
	Code  string `json:"code" toml:"code"`
	Color string `json:"color" toml:"color"`
}

// VariantClass identifies items (by id prefix) whose ownership is tracked per variant.
type VariantClass struct {
	Prefix    string
	Separator string
	Variants  []Variant
}

// DefaultVariants is the colour set of the metal figure line.
func DefaultVariants() []Variant {
	return []Variant{
		{Code: "gold", Color: "#d4af37"},
		{Code: "silver", Color: "#c0c0c0"},
		{Code: "bronze", Color: "#cd7f32"},
		{Code: "red", Color: "#e53935"},
		{Code: "blue", Color: "#1e88e5"},
		{Code: "black", Color: "#212121"},
	}
}

// Matches reports whether the item belongs to the variant class.
func (v VariantClass) Matches(it Item) bool {
	return v.Prefix != "" && strings.HasPrefix(it.ID, v.Prefix)
}

// Key builds the composite ownership key for one variant of an item.
func (v VariantClass) Key(itemID, code string) string {
	return itemID + v.Separator + code
}

// Color returns the swatch colour for a variant code.
func (v VariantClass) Color(code string) (string, bool) {
	for _, vr := range v.Variants {
		if vr.Code == code {
			return vr.Color, true
		}
	}
	return "", false
}

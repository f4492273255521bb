package flatten

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// UnknownCategory is the fallback label for codes with no table entry.
const UnknownCategory = "Unknown"

// CategoryTable is a fixed code-to-label mapping. It is built once at
// startup and shared read-only by every transform invocation.
type CategoryTable struct {
	labels map[int64]string
}

// DefaultCategories returns the built-in category table.
func DefaultCategories() *CategoryTable {
	return &CategoryTable{labels: map[int64]string{
		1: "Electronics",
		2: "Apparel",
		3: "Books",
		4: "Home Goods",
	}}
}

// LoadCategories reads a YAML code-to-label mapping and merges it over the
// defaults. Entries in the file win on conflict.
//
// File format:
//
//	1: Electronics
//	5: Outdoor
func LoadCategories(r io.Reader) (*CategoryTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading category file: %w", err)
	}

	var overrides map[int64]string
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parsing category file: %w", err)
	}

	t := DefaultCategories()
	for code, label := range overrides {
		label = strings.TrimSpace(label)
		if label == "" {
			return nil, fmt.Errorf("category %d: empty label", code)
		}
		t.labels[code] = label
	}
	return t, nil
}

// Label maps a raw category code (JSON number or string) to its descriptive
// label. Unmapped, non-integral, or malformed codes map to UnknownCategory.
// Label is total; it never fails.
func (t *CategoryTable) Label(raw json.RawMessage) string {
	s, ok := rawScalar(raw)
	if !ok {
		return UnknownCategory
	}

	code, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return UnknownCategory
	}

	if label, ok := t.labels[code]; ok {
		return label
	}
	return UnknownCategory
}

// Size returns the number of entries in the table.
func (t *CategoryTable) Size() int { return len(t.labels) }

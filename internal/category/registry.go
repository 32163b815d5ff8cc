// Package category provides the closed registry of known transaction
// categories. The registry is loaded once at process start and is read-only
// afterwards; looking up a key it does not contain is a configuration
// defect, reported as core.ConfigurationError.
package category

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"fiscus/internal/core"
)

// Entry describes how a category is presented: display label, icon name and
// hex color for charts.
type Entry struct {
	Label string `toml:"label"`
	Icon  string `toml:"icon"`
	Color string `toml:"color"`
}

// Registry maps expense category keys to their entries, plus the single
// fixed income category.
type Registry struct {
	expense map[string]Entry
	income  Entry
}

// IncomeKey is the fixed category key all income transactions resolve to.
const IncomeKey = "Income"

type registryFile struct {
	Income  Entry            `toml:"income"`
	Expense map[string]Entry `toml:"expense"`
}

// Default returns the compiled-in registry used when no registry file is
// configured.
func Default() *Registry {
	return &Registry{
		income: Entry{Label: "Income", Icon: "money-bill", Color: "#16a34a"},
		expense: map[string]Entry{
			"Food":           {Label: "Food", Icon: "utensils", Color: "#fb923c"},
			"Transportation": {Label: "Transportation", Icon: "bus", Color: "#3b82f6"},
			"Entertainment":  {Label: "Entertainment", Icon: "film", Color: "#a855f7"},
			"Education":      {Label: "Education", Icon: "graduation-cap", Color: "#facc15"},
			"Clothing":       {Label: "Clothing", Icon: "shirt", Color: "#ec4899"},
			"Savings":        {Label: "Savings", Icon: "piggy-bank", Color: "#14b8a6"},
			"Health":         {Label: "Health", Icon: "heart-pulse", Color: "#ef4444"},
			"Utilities":      {Label: "Utilities", Icon: "plug", Color: "#64748b"},
			"Rent":           {Label: "Rent", Icon: "house", Color: "#8b5cf6"},
			"Other":          {Label: "Other", Icon: "ellipsis", Color: "#737373"},
		},
	}
}

// LoadFile reads a registry from a TOML file. Entries must carry a label;
// icon and color are optional presentation hints.
func LoadFile(path string) (*Registry, error) {
	var file registryFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("decode category registry %s: %w", path, err)
	}
	if len(file.Expense) == 0 {
		return nil, fmt.Errorf("category registry %s defines no expense categories", path)
	}
	if file.Income.Label == "" {
		file.Income = Default().income
	}
	expense := make(map[string]Entry, len(file.Expense))
	for key, entry := range file.Expense {
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("category registry %s contains an empty key", path)
		}
		if entry.Label == "" {
			entry.Label = key
		}
		expense[key] = entry
	}
	return &Registry{income: file.Income, expense: expense}, nil
}

// Resolve looks up an expense category key. A miss is a ConfigurationError,
// never a silent drop.
func (r *Registry) Resolve(key string) (Entry, error) {
	entry, ok := r.expense[key]
	if !ok {
		return Entry{}, &core.ConfigurationError{Key: key}
	}
	return entry, nil
}

// Has reports whether key is a known expense category.
func (r *Registry) Has(key string) bool {
	_, ok := r.expense[key]
	return ok
}

// Income returns the fixed income category entry.
func (r *Registry) Income() Entry {
	return r.income
}

// Keys returns the known expense category keys in sorted order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.expense))
	for key := range r.expense {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

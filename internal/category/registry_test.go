package category

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"fiscus/internal/core"
)

func TestDefaultResolve(t *testing.T) {
	reg := Default()

	entry, err := reg.Resolve("Food")
	if err != nil {
		t.Fatalf("Resolve(Food): %v", err)
	}
	if entry.Label != "Food" || entry.Color == "" {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	_, err = reg.Resolve("Yachts")
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	var cerr *core.ConfigurationError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *core.ConfigurationError, got %T", err)
	}
	if cerr.Key != "Yachts" {
		t.Fatalf("error key = %q", cerr.Key)
	}
}

func TestDefaultKeysSorted(t *testing.T) {
	keys := Default().Keys()
	if len(keys) == 0 {
		t.Fatal("no keys")
	}
	for i := 1; i < len(keys); i++ {
		if keys[i-1] >= keys[i] {
			t.Fatalf("keys not sorted: %v", keys)
		}
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.toml")
	content := `
income = { label = "Earnings", icon = "coins", color = "#00ff00" }

[expense.Groceries]
label = "Groceries"
icon = "cart-shopping"
color = "#ffaa00"

[expense.Fuel]
icon = "gas-pump"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	reg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got := reg.Income().Label; got != "Earnings" {
		t.Fatalf("income label = %q", got)
	}
	if !reg.Has("Groceries") || !reg.Has("Fuel") {
		t.Fatalf("missing keys: %v", reg.Keys())
	}
	// Label defaults to the key when omitted.
	entry, err := reg.Resolve("Fuel")
	if err != nil {
		t.Fatal(err)
	}
	if entry.Label != "Fuel" {
		t.Fatalf("defaulted label = %q", entry.Label)
	}
}

func TestLoadFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.toml")
	if err := os.WriteFile(path, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for registry without expense categories")
	}
}

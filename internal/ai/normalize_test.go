package ai

import (
	"testing"
)

func TestCanonicalKey(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Style ID", "styleid"},
		{"styleid", "styleid"},
		{"STYLE-ID", "styleid"},
		{"  Retail Value  ", "retailvalue"},
		{"release_date", "releasedate"},
		{"", ""},
		{"___", ""},
	}

	for _, test := range tests {
		if got := CanonicalKey(test.input); got != test.expected {
			t.Errorf("CanonicalKey(%q) = %q, expected %q", test.input, got, test.expected)
		}
	}
}

func TestNormalizeKeysUnifiesVariants(t *testing.T) {
	variants := []map[string]any{
		{"Style ID": "X"},
		{"styleid": "X"},
		{"STYLE-ID": "X"},
	}

	for _, metadata := range variants {
		normalized := NormalizeKeys(metadata)
		if v, ok := normalized["styleid"]; !ok || v != "X" {
			t.Errorf("NormalizeKeys(%v) = %v, expected styleid=X", metadata, normalized)
		}
	}
}

func TestNormalizeKeysIdempotent(t *testing.T) {
	metadata := map[string]any{"styleid": "X", "brand": "Nike", "retailvalue": 150.0}

	once := NormalizeKeys(metadata)
	twice := NormalizeKeys(once)

	if len(twice) != len(metadata) {
		t.Fatalf("expected %d keys after renormalization, got %d", len(metadata), len(twice))
	}
	for k, v := range metadata {
		if twice[k] != v {
			t.Errorf("renormalized[%q] = %v, expected %v", k, twice[k], v)
		}
	}
}

func TestNormalizeKeysCollisionDeterministic(t *testing.T) {
	// Both keys normalize to "styleid"; the lexicographically later input
	// key wins regardless of map iteration order.
	metadata := map[string]any{"Style ID": "first", "style-id": "second"}

	for i := 0; i < 20; i++ {
		normalized := NormalizeKeys(metadata)
		if normalized["styleid"] != "second" {
			t.Fatalf("collision resolution not deterministic, got %v", normalized["styleid"])
		}
	}
}

func TestLookup(t *testing.T) {
	normalized := NormalizeKeys(map[string]any{
		"Colorway": "Bred",
		"qty":      nil,
		"count":    2.0,
	})

	if v, ok := Lookup(normalized, "color", "colorway"); !ok || v != "Bred" {
		t.Errorf("Lookup(color, colorway) = %v, %v", v, ok)
	}

	// nil values are skipped in favor of later candidates
	if v, ok := Lookup(normalized, "qty", "count"); !ok || v != 2.0 {
		t.Errorf("Lookup(qty, count) = %v, %v, expected 2", v, ok)
	}

	if _, ok := Lookup(normalized, "condition"); ok {
		t.Error("Lookup(condition) should miss")
	}
}

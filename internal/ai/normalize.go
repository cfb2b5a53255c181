package ai

import (
	"sort"
	"strings"
)

// CanonicalKey reduces a field label to lowercase alphanumeric characters
// only, so that "Style ID", "styleid" and "STYLE-ID" all unify.
func CanonicalKey(key string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(key)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeKeys re-keys a metadata object by canonical key. Colliding keys
// resolve last-write-wins over lexicographically sorted input keys, which
// keeps the result deterministic.
func NormalizeKeys(metadata map[string]any) map[string]any {
	normalized := make(map[string]any, len(metadata))

	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		normalized[CanonicalKey(k)] = metadata[k]
	}
	return normalized
}

// Lookup returns the first present, non-nil value among the given candidate
// labels. Candidates are canonicalized before the lookup, so callers may
// pass any spelling variant.
func Lookup(normalized map[string]any, variants ...string) (any, bool) {
	for _, variant := range variants {
		if v, ok := normalized[CanonicalKey(variant)]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// fieldVariants maps each canonical record field to the source labels the
// AI has been observed emitting for it, in precedence order.
var fieldVariants = map[string][]string{
	"name":        {"name", "model", "shoe name", "product name", "title"},
	"brand":       {"brand", "manufacturer", "make"},
	"silhouette":  {"silhouette", "shoe model", "line"},
	"styleid":     {"style id", "styleid", "style code", "style", "sku", "product code", "mpn"},
	"size":        {"size", "shoe size", "us size"},
	"color":       {"color", "colorway", "colour"},
	"quantity":    {"quantity", "qty", "count"},
	"retailvalue": {"retail value", "retailvalue", "retail price", "value", "price", "estimated value", "msrp"},
	"releasedate": {"release date", "releasedate", "released", "release year", "year"},
	"condition":   {"condition", "state"},
	"notes":       {"notes", "note", "description", "comments"},
}

// lookupField resolves one canonical record field through its variants table.
func lookupField(normalized map[string]any, field string) (any, bool) {
	variants, ok := fieldVariants[field]
	if !ok {
		return nil, false
	}
	return Lookup(normalized, variants...)
}

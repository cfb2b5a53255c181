package ai

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"vaulted/pkg/models"

	"github.com/google/uuid"
)

var nonNumericChars = regexp.MustCompile(`[^0-9.\-]`)

var isoDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// dateLayouts are tried in order when a release date is not already ISO.
var dateLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2006/01/02",
	"01/02/2006",
	"2006-01-02T15:04:05Z07:00",
	"2006",
}

// MapMetadata converts one raw metadata object into a persistable inventory
// item. The index is the image's position within the batch and is used only
// for the fallback name. shoeSize, when non-empty, is the batch-wide size
// override from the caller's profile. Returns nil when mandatory derivation
// fails.
func MapMetadata(metadata map[string]any, imageURL string, userID uuid.UUID, index int, shoeSize string) *models.Item {
	normalized := NormalizeKeys(metadata)

	name := stringField(normalized, "name")
	if name == "" {
		name = rawString(metadata, "name", "model")
	}
	if name == "" {
		name = fmt.Sprintf("AI Item %d", index+1)
	}

	brand := stringField(normalized, "brand")
	if brand == "" {
		brand = rawString(metadata, "brand")
	}
	if brand == "" {
		brand = "Unknown Brand"
	}

	// Unreachable given the fallbacks above, kept as a defensive contract.
	if name == "" || brand == "" {
		return nil
	}

	retailValue := 0.0
	if v, ok := lookupField(normalized, "retailvalue"); ok {
		if n, ok := coerceNumber(v); ok && n >= 0 {
			retailValue = n
		}
	}

	// Quantities truncate toward zero; anything below 1 after truncation
	// keeps the default so a record is never stored with zero copies.
	quantity := 1
	if v, ok := lookupField(normalized, "quantity"); ok {
		if n, ok := coerceNumber(v); ok {
			if q := int(n); q >= 1 {
				quantity = q
			}
		}
	}

	size := stringField(normalized, "size")
	if size == "" {
		size = "N/A"
	}
	if shoeSize != "" {
		size = shoeSize
	}

	color := stringField(normalized, "color")
	if color == "" {
		color = "Unknown"
	}

	item := &models.Item{
		UserID:      userID,
		Name:        name,
		Brand:       brand,
		Size:        size,
		Color:       color,
		Quantity:    quantity,
		Value:       retailValue,
		RetailValue: retailValue,
		ImageURL:    imageURL,
		Source:      models.SourceAI,
	}

	if v, ok := lookupField(normalized, "releasedate"); ok {
		if date, ok := normalizeReleaseDate(stringify(v)); ok {
			item.ReleaseDate = date
		}
	}

	item.Silhouette = stringField(normalized, "silhouette")
	item.StyleID = stringField(normalized, "styleid")
	item.Condition = stringField(normalized, "condition")
	item.Notes = stringField(normalized, "notes")

	return item
}

// stringField resolves a canonical field through the variants table and
// stringifies it.
func stringField(normalized map[string]any, field string) string {
	v, ok := lookupField(normalized, field)
	if !ok {
		return ""
	}
	return strings.TrimSpace(stringify(v))
}

// rawString reads keys from the un-normalized metadata object, mirroring
// the raw-access fallback of the original pipeline.
func rawString(metadata map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := metadata[k]; ok && v != nil {
			if s := strings.TrimSpace(stringify(v)); s != "" {
				return s
			}
		}
	}
	return ""
}

// stringify renders a metadata value as a display string. Numbers drop
// their trailing zeros so a JSON 10.5 renders as "10.5" and 11 as "11".
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// coerceNumber turns a metadata value into a finite float. Strings are
// stripped of every character that is not a digit, '.' or '-' before
// parsing, so "$1,234.56 USD" coerces to 1234.56.
func coerceNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return t, true
	case int:
		return float64(t), true
	case string:
		cleaned := nonNumericChars.ReplaceAllString(t, "")
		if cleaned == "" {
			return 0, false
		}
		n, err := strconv.ParseFloat(cleaned, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// normalizeReleaseDate accepts a literal YYYY-MM-DD unchanged, otherwise
// attempts generic date parsing and reformats. Unparseable dates are
// dropped rather than stored invalid.
func normalizeReleaseDate(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if isoDate.MatchString(raw) {
		return raw, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

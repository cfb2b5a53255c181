package ai

import (
	"encoding/json"
	"errors"
	"strings"
)

var (
	// ErrUnparseableMetadata indicates no JSON array could be recovered
	// from the model response.
	ErrUnparseableMetadata = errors.New("unable to parse metadata from AI response")

	// ErrMetadataNotArray indicates the response parsed as JSON but the
	// top-level value is not an array.
	ErrMetadataNotArray = errors.New("metadata is not an array")
)

// ParseMetadataArray extracts a JSON array of metadata objects from the raw
// text of a model response. Models routinely wrap JSON in code fences or
// prose, so parsing is staged: strip fences, try a direct parse, then try
// the substring between the first '[' and the last ']'. The contract is
// resilience to formatting noise, not recovery of malformed JSON.
func ParseMetadataArray(content string) ([]map[string]any, error) {
	cleaned := strings.TrimSpace(content)

	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		if idx := strings.LastIndex(cleaned, "```"); idx >= 0 {
			cleaned = cleaned[:idx]
		}
		cleaned = strings.TrimSpace(cleaned)
	}

	var direct any
	if err := json.Unmarshal([]byte(cleaned), &direct); err == nil {
		return toMetadataArray(direct)
	}

	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start >= 0 && end > start {
		var extracted any
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), &extracted); err == nil {
			return toMetadataArray(extracted)
		}
	}

	return nil, ErrUnparseableMetadata
}

// toMetadataArray checks the parsed value is an array and coerces each
// element into a metadata object. Non-object elements become empty objects
// so positional indexing against the submitted images is preserved.
func toMetadataArray(parsed any) ([]map[string]any, error) {
	arr, ok := parsed.([]any)
	if !ok {
		return nil, ErrMetadataNotArray
	}

	result := make([]map[string]any, len(arr))
	for i, elem := range arr {
		if obj, ok := elem.(map[string]any); ok {
			result[i] = obj
		} else {
			result[i] = map[string]any{}
		}
	}
	return result, nil
}

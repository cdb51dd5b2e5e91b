package birdie

import (
	"encoding/json"
	"fmt"
)

// Into maps a decoded payload into T using a JSON round-trip.
// For precise mapping, struct fields should be tagged with the API's field
// names, for example: `json:"created_at"`.
func Into[T any](payload any) (T, error) {
	var out T
	if payload == nil {
		return out, nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return out, fmt.Errorf("payload encoding failed: %w", err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("payload decoding failed: %w", err)
	}
	return out, nil
}

// resources converts a list payload into Resources, skipping non-object items.
func resources(payload any) []Resource {
	items, _ := payload.([]any)
	out := make([]Resource, 0, len(items))
	for _, it := range items {
		if r, ok := it.(map[string]any); ok {
			out = append(out, r)
		}
	}
	return out
}

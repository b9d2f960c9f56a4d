package modules

import (
	"encoding/json"
	"fmt"
)

// ToJSON marshals any value to a JSON string.
// Used by module handlers to serialize API responses.
func ToJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal response: %w", err)
	}
	return string(b), nil
}

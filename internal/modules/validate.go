package modules

import (
	"fmt"
	"strings"
)

// ValidateParams checks tool call arguments against the tool's InputSchema
// before the handler runs, so handlers can assume required fields exist and
// declared fields carry the right JSON type (a workboard user_id is a number,
// a check-in value is a string, objective_ids is an array).
//
// Required fields must be present, non-nil, and, for strings, non-empty.
// Declared fields are type checked; undeclared fields pass through untouched
// since handlers accept extra hints like format. Messages are user-safe and
// name the offending parameter, never internals.
func ValidateParams(schema InputSchema, params map[string]any) (map[string]any, error) {
	if params == nil {
		params = make(map[string]any)
	}

	var missing []string
	for _, key := range schema.Required {
		val, exists := params[key]
		if !exists || val == nil {
			missing = append(missing, key)
			continue
		}
		if s, ok := val.(string); ok && s == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("Missing required parameter(s): %s.", strings.Join(missing, ", "))
	}

	for key, val := range params {
		prop, declared := schema.Properties[key]
		if !declared || val == nil {
			continue
		}
		if err := checkParamType(key, val, prop.Type); err != nil {
			return nil, err
		}
	}

	return params, nil
}

// checkParamType verifies that val carries the declared JSON Schema type.
// JSON numbers always arrive as float64, so "integer" and "number" share a
// check; handlers that need whole numbers validate further (inputs.go).
func checkParamType(key string, val any, declaredType string) error {
	ok := true
	want := declaredType
	switch declaredType {
	case "string":
		_, ok = val.(string)
	case "number", "integer":
		_, ok = val.(float64)
		want = "number"
	case "boolean":
		_, ok = val.(bool)
	case "array":
		_, ok = val.([]any)
	case "object":
		_, ok = val.(map[string]any)
	default:
		// Undeclared or unknown type: leave it to the handler.
		return nil
	}
	if !ok {
		return fmt.Errorf("Invalid parameter %q: expected %s, got %T.", key, want, val)
	}
	return nil
}

// findTool looks up a tool by name from a tool list.
func findTool(tools []Tool, name string) (Tool, bool) {
	for _, t := range tools {
		if t.Name == name {
			return t, true
		}
	}
	return Tool{}, false
}

package workboard

import "sort"

// normalizeGoals flattens an objective-list envelope into a uniform slice of
// goal records plus the backend's reported total.
//
// The nested goal collection arrives in one of several shapes:
//   - a mapping with base-10 digit string keys (a sparse array)
//   - a plain list, nested or as the data field itself
//   - a single record (detail endpoint)
//   - absent or a scalar
//
// Digit-keyed entries are ordered by ascending numeric key so output is
// deterministic regardless of map iteration order. The reported total comes
// from the sibling goal_count field and defaults to 0; it is independent of
// how many items were actually returned. Malformed input never errors, the
// worst case is ([], 0).
func normalizeGoals(envelope any) ([]map[string]any, int) {
	env := asMap(envelope)
	if env == nil {
		return []map[string]any{}, 0
	}

	// The data field itself may be the list, with goal_count alongside it.
	if list := asList(env["data"]); list != nil {
		return flattenGoalNode(list), asInt(env["goal_count"])
	}

	data := env
	if d := asMap(env["data"]); d != nil {
		data = d
	}

	node := locateGoalNode(data)
	total := asInt(data["goal_count"])
	if total == 0 {
		if n := asMap(node); n != nil {
			total = asInt(n["goal_count"])
		}
	}

	return flattenGoalNode(node), total
}

// locateGoalNode finds the collection-of-goals node inside the data level.
func locateGoalNode(data map[string]any) any {
	if user := asMap(data["user"]); user != nil {
		if _, ok := user["goal"]; ok {
			return user["goal"]
		}
	}
	if _, ok := data["goal"]; ok {
		return data["goal"]
	}
	// Some responses put the sparse array at the top level.
	if hasDigitKeys(data) {
		return data
	}
	return nil
}

func hasDigitKeys(m map[string]any) bool {
	for k := range m {
		if isDigits(k) {
			return true
		}
	}
	return false
}

func flattenGoalNode(node any) []map[string]any {
	items := []map[string]any{}

	switch n := node.(type) {
	case []any:
		for _, v := range n {
			if rec := asMap(v); rec != nil {
				items = append(items, rec)
			}
		}
	case map[string]any:
		if hasDigitKeys(n) {
			type entry struct {
				num int
				key string
			}
			keys := make([]entry, 0, len(n))
			for k, v := range n {
				if isDigits(k) && asMap(v) != nil {
					keys = append(keys, entry{asInt(k), k})
				}
			}
			sort.Slice(keys, func(i, j int) bool { return keys[i].num < keys[j].num })
			for _, e := range keys {
				items = append(items, asMap(n[e.key]))
			}
		} else if len(n) > 0 {
			// Detail endpoint: a single record
			items = append(items, n)
		}
	}

	return items
}

package inspector

// IsEmptyValue reports whether a value counts as empty for the ignore
// policies and the object editor's ignore-if-property-empty check: nil,
// empty string, empty slice, empty map.
func IsEmptyValue(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	default:
		return false
	}
}

// CloneValues deep-copies a JSON-shaped values map. Surfaces clone incoming
// values so edits never alias caller state, and editors clone row snapshots
// before handing them to transient child surfaces.
func CloneValues(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = cloneValue(v)
	}

	return out
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return CloneValues(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}

		return out
	default:
		return v
	}
}

package editors

import (
	"fmt"
	"reflect"

	"github.com/propsheet/propsheet/pkg/schema"
)

// toSlice normalizes the array shapes a property value can arrive in.
func toSlice(value any) []any {
	switch v := value.(type) {
	case []any:
		return v
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}

		return out
	default:
		return nil
	}
}

func containsValue(list []any, value any) bool {
	for _, item := range list {
		if reflect.DeepEqual(item, value) {
			return true
		}
	}

	return false
}

func hasOptionValue(opts []schema.Option, value any) bool {
	for _, opt := range opts {
		if reflect.DeepEqual(opt.Value, value) {
			return true
		}
	}

	return false
}

func stringify(value any) string {
	if value == nil {
		return ""
	}

	if s, ok := value.(string); ok {
		return s
	}

	return fmt.Sprintf("%v", value)
}

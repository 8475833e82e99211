// Package reference implements the external parameter reference convention:
// a property whose value is the string "{{ token }}" is bound to a named
// parameter instead of carrying a literal. The inspector engine emits and
// detects the wrapped form; hosts resolve the tokens against a parameter map
// after extraction.
package reference

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var pattern = regexp.MustCompile(`^\{\{\s*(\S(?:.*?\S)?)\s*\}\}$`)

// Wrap renders a token in the wire form the values map carries.
func Wrap(token string) string {
	return "{{ " + token + " }}"
}

// Token extracts the token from a wrapped reference value. The second return
// is false when the value is not a reference.
func Token(value any) (string, bool) {
	s, ok := value.(string)
	if !ok {
		return "", false
	}

	m := pattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}

	return m[1], true
}

// IsReference reports whether a value carries a reference token.
func IsReference(value any) bool {
	_, ok := Token(value)

	return ok
}

// UnresolvedError reports the property paths whose reference tokens had no
// matching parameter.
type UnresolvedError struct {
	Paths []string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("unresolved parameter references at %s", strings.Join(e.Paths, ", "))
}

// Resolve walks an extracted values map depth-first and substitutes every
// reference token with the parameter it names, looked up by dotted path.
// Tokens without a matching parameter make the whole call fail with an
// *UnresolvedError listing their property paths. The input map is not
// mutated.
func Resolve(values, params map[string]any) (map[string]any, error) {
	resolved, missing := resolveMap(values, params, "", true)
	if len(missing) > 0 {
		sort.Strings(missing)

		return nil, &UnresolvedError{Paths: missing}
	}

	return resolved, nil
}

// ResolveLenient is Resolve for hosts that tolerate partial parameter sets:
// unmatched tokens are left in their wrapped form instead of failing.
func ResolveLenient(values, params map[string]any) map[string]any {
	resolved, _ := resolveMap(values, params, "", false)

	return resolved
}

func resolveMap(values, params map[string]any, prefix string, strict bool) (map[string]any, []string) {
	out := make(map[string]any, len(values))

	var missing []string

	for key, value := range values {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		resolved, m := resolveValue(value, params, path, strict)
		missing = append(missing, m...)
		out[key] = resolved
	}

	return out, missing
}

func resolveValue(value any, params map[string]any, path string, strict bool) (any, []string) {
	if token, ok := Token(value); ok {
		if param, found := LookupPath(params, token); found {
			return param, nil
		}

		if strict {
			return value, []string{path}
		}

		return value, nil
	}

	switch v := value.(type) {
	case map[string]any:
		return resolveMapAny(v, params, path, strict)
	case []any:
		out := make([]any, len(v))

		var missing []string

		for i, item := range v {
			resolved, m := resolveValue(item, params, fmt.Sprintf("%s[%d]", path, i), strict)
			missing = append(missing, m...)
			out[i] = resolved
		}

		return out, missing
	default:
		return value, nil
	}
}

func resolveMapAny(values, params map[string]any, path string, strict bool) (any, []string) {
	out, missing := resolveMap(values, params, path, strict)

	return out, missing
}

// LookupPath resolves a dotted path against nested string-keyed maps. It
// reports false when any segment is missing or a non-map is traversed into.
func LookupPath(values map[string]any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}

	segments := strings.Split(path, ".")
	current := any(values)

	for _, segment := range segments {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		current, ok = m[segment]
		if !ok {
			return nil, false
		}
	}

	return current, true
}

package validation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// RuleError is a user-facing validation failure. The message is shown to the
// user as-is; the rule name identifies which check rejected the value.
type RuleError struct {
	Rule    string
	Message string
}

func (e *RuleError) Error() string {
	return e.Message
}

func failf(rule, format string, args ...any) error {
	return &RuleError{Rule: rule, Message: fmt.Sprintf(format, args...)}
}

// required

type requiredRule struct {
	label string
}

func newRequiredRule(_ any, label string) (Rule, error) {
	return &requiredRule{label: label}, nil
}

func (r *requiredRule) Name() string { return "required" }

// Validate rejects absent values. Boolean false is a deliberate choice, not
// an absence, and passes.
func (r *requiredRule) Validate(value any) error {
	if !isEmptyValue(value) {
		return nil
	}

	if r.label != "" {
		return failf("required", "%s is required", r.label)
	}

	return failf("required", "A value is required")
}

// regex

type regexRule struct {
	pattern *regexp.Regexp
}

func newRegexRule(config any, _ string) (Rule, error) {
	pattern := ""
	modifiers := ""

	switch c := config.(type) {
	case string:
		pattern = c
	case map[string]any:
		pattern, _ = c["pattern"].(string)
		modifiers, _ = c["modifiers"].(string)
	default:
		return nil, fmt.Errorf("%w: regex config must be a pattern string or object", ErrBadConfig)
	}

	if pattern == "" {
		return nil, fmt.Errorf("%w: regex rule without a pattern", ErrBadConfig)
	}

	flags := ""

	for _, m := range modifiers {
		switch m {
		case 'i', 'm', 's':
			flags += string(m)
		}
	}

	if flags != "" {
		pattern = "(?" + flags + ")" + pattern
	}

	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadConfig, err)
	}

	return &regexRule{pattern: compiled}, nil
}

func (r *regexRule) Name() string { return "regex" }

// Validate applies the pattern to scalar values only. Empty strings and
// composite values pass; presence is the required rule's concern.
func (r *regexRule) Validate(value any) error {
	s, ok := scalarString(value)
	if !ok || s == "" {
		return nil
	}

	if !r.pattern.MatchString(s) {
		return failf("regex", "The value does not match the required pattern")
	}

	return nil
}

// integer / float

type bound struct {
	value   float64
	message string
}

type numericRule struct {
	name          string
	integral      bool
	allowNegative bool
	min           *bound
	max           *bound
}

func newIntegerRule(config any, _ string) (Rule, error) {
	return newNumericRule("integer", true, config)
}

func newFloatRule(config any, _ string) (Rule, error) {
	return newNumericRule("float", false, config)
}

func newNumericRule(name string, integral bool, config any) (Rule, error) {
	rule := &numericRule{name: name, integral: integral, allowNegative: true}

	settings, ok := config.(map[string]any)
	if !ok {
		return rule, nil
	}

	if v, ok := settings["allowNegative"].(bool); ok {
		rule.allowNegative = v
	}

	var err error

	if rule.min, err = parseBound(settings["min"]); err != nil {
		return nil, fmt.Errorf("min: %w", err)
	}

	if rule.max, err = parseBound(settings["max"]); err != nil {
		return nil, fmt.Errorf("max: %w", err)
	}

	return rule, nil
}

func (r *numericRule) Name() string { return r.name }

func (r *numericRule) Validate(value any) error {
	if value == nil || value == "" {
		return nil
	}

	number, ok := toFloat(value)
	if !ok {
		return r.shapeError()
	}

	if r.integral && number != math.Trunc(number) {
		return r.shapeError()
	}

	if !r.allowNegative && number < 0 {
		return failf(r.name, "The value should not be negative")
	}

	if r.min != nil && number < r.min.value {
		if r.min.message != "" {
			return failf(r.name, "%s", r.min.message)
		}

		return failf(r.name, "The value should not be less than %s", formatNumber(r.min.value))
	}

	if r.max != nil && number > r.max.value {
		if r.max.message != "" {
			return failf(r.name, "%s", r.max.message)
		}

		return failf(r.name, "The value should not be greater than %s", formatNumber(r.max.value))
	}

	return nil
}

func (r *numericRule) shapeError() error {
	if r.integral {
		return failf(r.name, "The value should be an integer")
	}

	return failf(r.name, "The value should be a number")
}

// length

type lengthRule struct {
	min *bound
	max *bound
}

func newLengthRule(config any, _ string) (Rule, error) {
	rule := &lengthRule{}

	settings, ok := config.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: length config must be an object", ErrBadConfig)
	}

	var err error

	if rule.min, err = parseBound(settings["min"]); err != nil {
		return nil, fmt.Errorf("min: %w", err)
	}

	if rule.max, err = parseBound(settings["max"]); err != nil {
		return nil, fmt.Errorf("max: %w", err)
	}

	if rule.min == nil && rule.max == nil {
		return nil, fmt.Errorf("%w: length rule without min or max", ErrBadConfig)
	}

	return rule, nil
}

func (r *lengthRule) Name() string { return "length" }

func (r *lengthRule) Validate(value any) error {
	if value == nil {
		return nil
	}

	length, ok := measure(value)
	if !ok {
		return nil
	}

	if r.min != nil && float64(length) < r.min.value {
		if r.min.message != "" {
			return failf("length", "%s", r.min.message)
		}

		return failf("length", "The value should not be shorter than %s", formatNumber(r.min.value))
	}

	if r.max != nil && float64(length) > r.max.value {
		if r.max.message != "" {
			return failf("length", "%s", r.max.message)
		}

		return failf("length", "The value should not be longer than %s", formatNumber(r.max.value))
	}

	return nil
}

// parseBound accepts the {value, message} object form or a bare number. An
// object without a numeric value is a schema defect and fails construction.
func parseBound(config any) (*bound, error) {
	if config == nil {
		return nil, nil
	}

	if number, ok := toFloat(config); ok {
		return &bound{value: number}, nil
	}

	settings, ok := config.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: bound must be a number or a {value, message} object", ErrBadConfig)
	}

	raw, ok := settings["value"]
	if !ok {
		return nil, fmt.Errorf("%w: bound object without a value", ErrBadConfig)
	}

	number, ok := toFloat(raw)
	if !ok {
		return nil, fmt.Errorf("%w: bound value is not a number", ErrBadConfig)
	}

	message, _ := settings["message"].(string)

	return &bound{value: number, message: message}, nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func isEmptyValue(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case map[string]any:
		return len(v) == 0
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	default:
		return false
	}
}

// scalarString renders scalar values for pattern matching. Composite values
// report false.
func scalarString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case bool, int, int32, int64, float32, float64:
		return fmt.Sprintf("%v", v), true
	default:
		return "", false
	}
}

// toFloat widens every numeric type the values map can carry, including
// numeric strings typed by the user.
func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		number, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}

		return number, true
	default:
		return 0, false
	}
}

func measure(value any) (int, bool) {
	switch v := value.(type) {
	case string:
		return len([]rune(v)), true
	case []any:
		return len(v), true
	case []string:
		return len(v), true
	case map[string]any:
		return len(v), true
	default:
		return 0, false
	}
}

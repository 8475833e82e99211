// Package validation implements the composable rule chain editors run their
// values through. A Set is built once per editor from the property schema and
// reused for every validate call.
package validation

import (
	"errors"
	"fmt"

	"github.com/propsheet/propsheet/pkg/schema"
)

// Construction-time failures. A schema carrying one of these must abort
// surface construction.
var (
	ErrUnknownRule = errors.New("unknown validation rule")
	ErrMixedSyntax = errors.New("legacy and modern validation syntax are mutually exclusive")
	ErrBadConfig   = errors.New("malformed validation rule configuration")
)

// Rule is a single named check. Validate returns nil when the value passes
// and a user-facing error when it does not.
type Rule interface {
	Name() string
	Validate(value any) error
}

// RuleFactory builds a rule from its schema configuration. The label names
// the property in user-facing messages.
type RuleFactory func(config any, label string) (Rule, error)

// Rule names are fixed precedence, not registration order: presence is
// checked before shape, shape before bounds. JSON objects carry no order, so
// the chain must not depend on one.
var ruleOrder = []string{"required", "integer", "float", "regex", "length"}

var ruleFactories = map[string]RuleFactory{
	"required": newRequiredRule,
	"integer":  newIntegerRule,
	"float":    newFloatRule,
	"regex":    newRegexRule,
	"length":   newLengthRule,
}

// Set is an ordered rule chain for one property.
type Set struct {
	label string
	rules []Rule
}

// New builds a set from a modern validation config map (rule name to rule
// config). Unknown rule names fail fast.
func New(config map[string]any, label string) (*Set, error) {
	for name := range config {
		if _, ok := ruleFactories[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRule, name)
		}
	}

	set := &Set{label: label}

	for _, name := range ruleOrder {
		ruleConfig, ok := config[name]
		if !ok {
			continue
		}

		rule, err := ruleFactories[name](ruleConfig, label)
		if err != nil {
			return nil, fmt.Errorf("rule %q for %q: %w", name, label, err)
		}

		set.rules = append(set.rules, rule)
	}

	return set, nil
}

// FromProperty builds the set a property definition configures, translating
// the legacy required/validationPattern syntax into the equivalent rules.
// Mixing legacy and modern syntax on one property is rejected.
func FromProperty(def *schema.PropertyDefinition) (*Set, error) {
	legacy := def.Required || def.ValidationPattern != ""

	if legacy && len(def.Validation) > 0 {
		return nil, fmt.Errorf("%w: property %q", ErrMixedSyntax, def.Property)
	}

	if !legacy {
		return New(def.Validation, def.Label())
	}

	config := make(map[string]any, 2)

	if def.Required {
		config["required"] = true
	}

	if def.ValidationPattern != "" {
		config["regex"] = def.ValidationPattern
	}

	return New(config, def.Label())
}

// BuiltIn constructs a single built-in rule outside of a set. The numeric
// editors use it for their implicit shape checks when the schema does not
// configure one explicitly.
func BuiltIn(name string, config any, label string) (Rule, error) {
	factory, ok := ruleFactories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRule, name)
	}

	return factory(config, label)
}

// Validate runs the chain and returns the first failure, or nil when every
// rule passes.
func (s *Set) Validate(value any) error {
	for _, rule := range s.rules {
		if err := rule.Validate(value); err != nil {
			return err
		}
	}

	return nil
}

// Empty reports whether the chain has no rules at all.
func (s *Set) Empty() bool {
	return len(s.rules) == 0
}

// Requires reports whether the chain contains a required rule. Editors use
// this to decide whether a "no value" state blocks extraction.
func (s *Set) Requires() bool {
	return s.Has("required")
}

// Has reports whether the chain contains a rule by name.
func (s *Set) Has(name string) bool {
	for _, rule := range s.rules {
		if rule.Name() == name {
			return true
		}
	}

	return false
}

// Names lists the configured rules in evaluation order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.rules))
	for _, rule := range s.rules {
		names = append(names, rule.Name())
	}

	return names
}

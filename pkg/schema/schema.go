// Package schema defines the property schema model driving inspector surfaces.
package schema

import (
	"encoding/json"
	"fmt"
)

// Built-in editor type tags. The registry may carry additional tags contributed
// by plugins; these are the ones every deployment understands.
const (
	TypeString                 = "string"
	TypeInteger                = "integer"
	TypeFloat                  = "float"
	TypeCheckbox               = "checkbox"
	TypeDropdown               = "dropdown"
	TypeAutocomplete           = "autocomplete"
	TypeText                   = "text"
	TypeSet                    = "set"
	TypeObject                 = "object"
	TypeObjectList             = "objectList"
	TypeStringList             = "stringList"
	TypeStringListAutocomplete = "stringListAutocomplete"
	TypeDictionary             = "dictionary"
)

// Option is one enumerated choice offered by dropdown, set and autocomplete
// editors, either declared statically in the schema or resolved dynamically
// through an options provider.
type Option struct {
	Value any    `json:"value"`
	Title string `json:"title,omitempty"`
}

// UnmarshalJSON accepts either the {value, title} object form or a bare
// string shorthand that serves as both value and title.
func (o *Option) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}

		o.Value = s
		o.Title = s

		return nil
	}

	type plain Option

	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	*o = Option(p)

	return nil
}

// Label returns the human-readable form of the option, falling back to the
// value when no title is declared.
func (o Option) Label() string {
	if o.Title != "" {
		return o.Title
	}

	return fmt.Sprintf("%v", o.Value)
}

// PropertyDefinition is one schema node. Definitions are immutable after load;
// surfaces and editors hold references into the loaded document and never
// mutate them.
type PropertyDefinition struct {
	Property    string `json:"property" validate:"required"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"     validate:"required"`

	Default     any    `json:"default,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`

	// Group files the property under a named collapsible section. Properties
	// sharing a group name are bucketed together at layout time.
	Group string `json:"group,omitempty"`

	// SortOrder overrides the declaration-order position. Nil means "use the
	// declaration index".
	SortOrder *int `json:"sortOrder,omitempty"`

	// Depends lists sibling property names whose value changes require this
	// editor to refresh its dynamic options.
	Depends []string `json:"depends,omitempty"`

	// Validation configures the modern rule chain: rule name to rule config.
	Validation map[string]any `json:"validation,omitempty"`

	// Legacy validation syntax. Mixing these with Validation is rejected at
	// editor construction.
	Required          bool   `json:"required,omitempty"`
	ValidationPattern string `json:"validationPattern,omitempty"`

	IgnoreIfEmpty   bool `json:"ignoreIfEmpty,omitempty"`
	IgnoreIfDefault bool `json:"ignoreIfDefault,omitempty"`

	// IgnoreIfPropertyEmpty names a child property; when that child extracts
	// empty, the whole object collapses out of the result (object type only).
	IgnoreIfPropertyEmpty string `json:"ignoreIfPropertyEmpty,omitempty"`

	// Items enumerates static options for dropdown, set and autocomplete
	// editors. Empty items with a non-empty Depends list means the options
	// are provider-resolved.
	Items []Option `json:"items,omitempty"`

	// Properties declares the nested schema of an object property.
	Properties []*PropertyDefinition `json:"properties,omitempty"`

	// ItemProperties, TitleProperty and KeyProperty configure objectList
	// properties. KeyProperty switches the value shape from array to keyed
	// map and must name one of ItemProperties.
	ItemProperties []*PropertyDefinition `json:"itemProperties,omitempty"`
	TitleProperty  string                `json:"titleProperty,omitempty"`
	KeyProperty    string                `json:"keyProperty,omitempty"`

	declarationIndex int
}

// Label returns the display name of the property, falling back to its name.
func (d *PropertyDefinition) Label() string {
	if d.Title != "" {
		return d.Title
	}

	return d.Property
}

// EffectiveSortOrder resolves the sort position, defaulting to the
// declaration index when the schema does not set one.
func (d *PropertyDefinition) EffectiveSortOrder() int {
	if d.SortOrder != nil {
		return *d.SortOrder
	}

	return d.declarationIndex
}

// DeclarationIndex reports the zero-based position of the definition within
// its declaring document or nested property list.
func (d *PropertyDefinition) DeclarationIndex() int {
	return d.declarationIndex
}

// HasStaticItems reports whether the property carries a schema-declared
// option list rather than a provider-resolved one.
func (d *PropertyDefinition) HasStaticItems() bool {
	return len(d.Items) > 0
}

// Document is an ordered, validated property schema.
type Document struct {
	properties []*PropertyDefinition
	byName     map[string]*PropertyDefinition
}

// Properties returns the schema nodes in declaration order.
func (doc *Document) Properties() []*PropertyDefinition {
	return doc.properties
}

// Property looks a definition up by name.
func (doc *Document) Property(name string) *PropertyDefinition {
	return doc.byName[name]
}

// Len reports the number of top-level properties.
func (doc *Document) Len() int {
	return len(doc.properties)
}

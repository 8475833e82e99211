// Package testutil provides test data builders and test doubles for the
// inspector engine.
package testutil

import (
	"fmt"

	"github.com/propsheet/propsheet/pkg/schema"
)

// CreateTestProperty creates a string property definition with default
// values that can be overridden.
func CreateTestProperty(name string, overrides ...func(*schema.PropertyDefinition)) *schema.PropertyDefinition {
	def := &schema.PropertyDefinition{
		Property: name,
		Title:    "Test " + name,
		Type:     schema.TypeString,
	}

	for _, override := range overrides {
		override(def)
	}

	return def
}

// WithType sets the editor type tag.
func WithType(editorType string) func(*schema.PropertyDefinition) {
	return func(d *schema.PropertyDefinition) {
		d.Type = editorType
	}
}

// WithDefault sets the schema default value.
func WithDefault(value any) func(*schema.PropertyDefinition) {
	return func(d *schema.PropertyDefinition) {
		d.Default = value
	}
}

// WithGroup files the property under a named group.
func WithGroup(group string) func(*schema.PropertyDefinition) {
	return func(d *schema.PropertyDefinition) {
		d.Group = group
	}
}

// WithValidation sets the modern validation configuration.
func WithValidation(config map[string]any) func(*schema.PropertyDefinition) {
	return func(d *schema.PropertyDefinition) {
		d.Validation = config
	}
}

// WithDepends declares the property's option dependencies.
func WithDepends(deps ...string) func(*schema.PropertyDefinition) {
	return func(d *schema.PropertyDefinition) {
		d.Depends = deps
	}
}

// WithItems sets static option items from bare values.
func WithItems(values ...any) func(*schema.PropertyDefinition) {
	return func(d *schema.PropertyDefinition) {
		d.Items = make([]schema.Option, 0, len(values))
		for _, v := range values {
			d.Items = append(d.Items, schema.Option{Value: v})
		}
	}
}

// WithPlaceholder sets the placeholder text.
func WithPlaceholder(text string) func(*schema.PropertyDefinition) {
	return func(d *schema.PropertyDefinition) {
		d.Placeholder = text
	}
}

// WithIgnoreIfEmpty marks the property as dropped from extraction when
// empty.
func WithIgnoreIfEmpty() func(*schema.PropertyDefinition) {
	return func(d *schema.PropertyDefinition) {
		d.IgnoreIfEmpty = true
	}
}

// WithChildren sets an object property's child definitions.
func WithChildren(children ...*schema.PropertyDefinition) func(*schema.PropertyDefinition) {
	return func(d *schema.PropertyDefinition) {
		d.Properties = children
	}
}

// WithItemProperties configures an objectList property's item schema.
func WithItemProperties(titleProperty string, items ...*schema.PropertyDefinition) func(*schema.PropertyDefinition) {
	return func(d *schema.PropertyDefinition) {
		d.ItemProperties = items
		d.TitleProperty = titleProperty
	}
}

// WithKeyProperty switches an objectList property to keyed-map mode.
func WithKeyProperty(name string) func(*schema.PropertyDefinition) {
	return func(d *schema.PropertyDefinition) {
		d.KeyProperty = name
	}
}

// CreateTestDocument builds a document from definitions, panicking on
// structural defects so tests fail loudly at setup.
func CreateTestDocument(props ...*schema.PropertyDefinition) *schema.Document {
	doc, err := schema.FromProperties(props)
	if err != nil {
		panic(fmt.Sprintf("testutil: invalid test document: %v", err))
	}

	return doc
}

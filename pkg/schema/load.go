package schema

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed metaschema.json
var metaSchema []byte

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load parses and validates a property schema document. Structural defects
// are fatal: a schema that fails to load must never reach a surface.
func Load(data []byte) (*Document, error) {
	if err := validateDocumentJSON(data); err != nil {
		return nil, err
	}

	var props []*PropertyDefinition
	if err := json.Unmarshal(data, &props); err != nil {
		return nil, fmt.Errorf("failed to parse schema document: %w", err)
	}

	return FromProperties(props)
}

// FromProperties builds a document from already-parsed definitions, applying
// the same structural checks Load applies. Nested editors use it to treat a
// property's child definitions as a schema of their own.
func FromProperties(props []*PropertyDefinition) (*Document, error) {
	if err := normalize(props, ""); err != nil {
		return nil, err
	}

	byName := make(map[string]*PropertyDefinition, len(props))
	for _, p := range props {
		byName[p.Property] = p
	}

	return &Document{properties: props, byName: byName}, nil
}

func validateDocumentJSON(data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("schema document is not valid JSON: %w", err)
	}

	schemaLoader := gojsonschema.NewBytesLoader(metaSchema)
	documentLoader := gojsonschema.NewGoLoader(doc)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema document validation failed: %w", err)
	}

	if !result.Valid() {
		var errorMessages []string
		for _, desc := range result.Errors() {
			errorMessages = append(errorMessages, desc.String())
		}

		return errors.New("invalid schema document: " + strings.Join(errorMessages, "; "))
	}

	return nil
}

// normalize assigns declaration indexes and enforces the structural rules
// that the meta-schema cannot express. The path prefix locates offending
// definitions in error messages.
func normalize(props []*PropertyDefinition, path string) error {
	seen := make(map[string]struct{}, len(props))

	for i, p := range props {
		if p == nil {
			return fmt.Errorf("null property definition at %s[%d]", orRoot(path), i)
		}

		p.declarationIndex = i

		if err := validate.Struct(p); err != nil {
			return fmt.Errorf("invalid property definition at %s[%d]: %w", orRoot(path), i, err)
		}

		name := p.Property
		if _, dup := seen[name]; dup {
			return fmt.Errorf("duplicate property %q at %s", join(path, name), orRoot(path))
		}

		seen[name] = struct{}{}

		if err := checkStructure(p, join(path, name)); err != nil {
			return err
		}
	}

	return nil
}

func checkStructure(p *PropertyDefinition, path string) error {
	switch p.Type {
	case TypeObject:
		if len(p.Properties) == 0 {
			return fmt.Errorf("object property %q declares no child properties", path)
		}

	case TypeObjectList:
		if len(p.ItemProperties) == 0 {
			return fmt.Errorf("objectList property %q declares no item properties", path)
		}

		if p.TitleProperty == "" {
			return fmt.Errorf("objectList property %q declares no title property", path)
		}

		if !hasProperty(p.ItemProperties, p.TitleProperty) {
			return fmt.Errorf("objectList property %q: title property %q is not one of its item properties", path, p.TitleProperty)
		}

		if p.KeyProperty != "" && !hasProperty(p.ItemProperties, p.KeyProperty) {
			return fmt.Errorf("objectList property %q: key property %q is not one of its item properties", path, p.KeyProperty)
		}
	}

	if len(p.Properties) > 0 {
		if err := normalize(p.Properties, path); err != nil {
			return err
		}
	}

	if len(p.ItemProperties) > 0 {
		if err := normalize(p.ItemProperties, path); err != nil {
			return err
		}
	}

	return nil
}

func hasProperty(props []*PropertyDefinition, name string) bool {
	for _, p := range props {
		if p.Property == name {
			return true
		}
	}

	return false
}

func join(path, name string) string {
	if path == "" {
		return name
	}

	return path + "." + name
}

func orRoot(path string) string {
	if path == "" {
		return "schema root"
	}

	return path
}

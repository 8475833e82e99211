package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValidDocument(t *testing.T) {
	doc, err := Load([]byte(`[
		{"property": "name", "title": "Name", "type": "string", "default": "untitled"},
		{"property": "port", "title": "Port", "type": "integer", "validation": {"integer": {"min": 1, "max": 65535}}},
		{"property": "mode", "title": "Mode", "type": "dropdown", "items": ["fast", "safe"]}
	]`))
	require.NoError(t, err)
	require.Equal(t, 3, doc.Len())

	name := doc.Property("name")
	require.NotNil(t, name)
	assert.Equal(t, "Name", name.Title)
	assert.Equal(t, TypeString, name.Type)
	assert.Equal(t, "untitled", name.Default)
	assert.Equal(t, 0, name.DeclarationIndex())

	port := doc.Property("port")
	require.NotNil(t, port)
	assert.Equal(t, 1, port.DeclarationIndex())
	assert.Contains(t, port.Validation, "integer")

	mode := doc.Property("mode")
	require.NotNil(t, mode)
	assert.True(t, mode.HasStaticItems())
}

func TestLoad_OptionShorthand(t *testing.T) {
	doc, err := Load([]byte(`[
		{"property": "color", "type": "dropdown", "items": [
			"red",
			{"value": "#00ff00", "title": "Green"}
		]}
	]`))
	require.NoError(t, err)

	items := doc.Property("color").Items
	require.Len(t, items, 2)

	assert.Equal(t, "red", items[0].Value)
	assert.Equal(t, "red", items[0].Label())
	assert.Equal(t, "#00ff00", items[1].Value)
	assert.Equal(t, "Green", items[1].Label())
}

func TestLoad_InvalidDocuments(t *testing.T) {
	testCases := []struct {
		name    string
		data    string
		wantErr string
	}{
		{
			name:    "not json",
			data:    `{`,
			wantErr: "not valid JSON",
		},
		{
			name:    "not an array",
			data:    `{"property": "x", "type": "string"}`,
			wantErr: "invalid schema document",
		},
		{
			name:    "missing property name",
			data:    `[{"type": "string"}]`,
			wantErr: "invalid schema document",
		},
		{
			name:    "missing type",
			data:    `[{"property": "x"}]`,
			wantErr: "invalid schema document",
		},
		{
			name:    "empty property name",
			data:    `[{"property": "", "type": "string"}]`,
			wantErr: "invalid schema document",
		},
		{
			name: "duplicate property",
			data: `[
				{"property": "x", "type": "string"},
				{"property": "x", "type": "integer"}
			]`,
			wantErr: `duplicate property "x"`,
		},
		{
			name: "duplicate nested property",
			data: `[{
				"property": "server", "type": "object", "properties": [
					{"property": "host", "type": "string"},
					{"property": "host", "type": "string"}
				]
			}]`,
			wantErr: `duplicate property "server.host"`,
		},
		{
			name:    "object without children",
			data:    `[{"property": "server", "type": "object"}]`,
			wantErr: "declares no child properties",
		},
		{
			name: "objectList without title property",
			data: `[{
				"property": "headers", "type": "objectList", "itemProperties": [
					{"property": "name", "type": "string"}
				]
			}]`,
			wantErr: "declares no title property",
		},
		{
			name: "objectList title property not an item property",
			data: `[{
				"property": "headers", "type": "objectList", "titleProperty": "label",
				"itemProperties": [{"property": "name", "type": "string"}]
			}]`,
			wantErr: `title property "label" is not one of its item properties`,
		},
		{
			name: "objectList key property not an item property",
			data: `[{
				"property": "env", "type": "objectList", "titleProperty": "name", "keyProperty": "key",
				"itemProperties": [{"property": "name", "type": "string"}]
			}]`,
			wantErr: `key property "key" is not one of its item properties`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load([]byte(tc.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoad_NestedDocuments(t *testing.T) {
	doc, err := Load([]byte(`[{
		"property": "proxy", "type": "object", "properties": [
			{"property": "host", "type": "string"},
			{"property": "auth", "type": "object", "properties": [
				{"property": "user", "type": "string"},
				{"property": "password", "type": "string"}
			]}
		]
	}]`))
	require.NoError(t, err)

	proxy := doc.Property("proxy")
	require.NotNil(t, proxy)
	require.Len(t, proxy.Properties, 2)

	nested, err := FromProperties(proxy.Properties)
	require.NoError(t, err)

	auth := nested.Property("auth")
	require.NotNil(t, auth)
	assert.Equal(t, 1, auth.DeclarationIndex())
	assert.Len(t, auth.Properties, 2)
}

func TestPropertyDefinition_Label(t *testing.T) {
	withTitle := &PropertyDefinition{Property: "maxRetries", Title: "Max retries"}
	assert.Equal(t, "Max retries", withTitle.Label())

	withoutTitle := &PropertyDefinition{Property: "maxRetries"}
	assert.Equal(t, "maxRetries", withoutTitle.Label())
}

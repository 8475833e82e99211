package inspector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEmptyValue(t *testing.T) {
	testCases := []struct {
		name  string
		value any
		empty bool
	}{
		{name: "nil", value: nil, empty: true},
		{name: "empty string", value: "", empty: true},
		{name: "blank string", value: " ", empty: false},
		{name: "empty slice", value: []any{}, empty: true},
		{name: "empty string slice", value: []string{}, empty: true},
		{name: "empty map", value: map[string]any{}, empty: true},
		{name: "zero number", value: float64(0), empty: false},
		{name: "false", value: false, empty: false},
		{name: "populated slice", value: []any{"x"}, empty: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.empty, IsEmptyValue(tc.value))
		})
	}
}

func TestCloneValues_DeepCopies(t *testing.T) {
	original := map[string]any{
		"name": "web",
		"style": map[string]any{
			"color": "red",
		},
		"tags": []any{"a", "b"},
	}

	clone := CloneValues(original)

	clone["name"] = "api"
	clone["style"].(map[string]any)["color"] = "blue"
	clone["tags"].([]any)[0] = "z"

	assert.Equal(t, "web", original["name"])
	assert.Equal(t, "red", original["style"].(map[string]any)["color"])
	assert.Equal(t, "a", original["tags"].([]any)[0])
}

func TestSentinels(t *testing.T) {
	assert.True(t, IsRemoved(Removed))
	assert.False(t, IsRemoved(Invalid))
	assert.True(t, IsInvalid(Invalid))
	assert.False(t, IsInvalid("invalid"))

	assert.Equal(t, "<removed>", Removed.String())
	assert.Equal(t, "<invalid>", Invalid.String())
}

package reference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		value     any
		wantToken string
		wantOK    bool
	}{
		{name: "plain reference", value: "{{ params.url }}", wantToken: "params.url", wantOK: true},
		{name: "no padding", value: "{{params.url}}", wantToken: "params.url", wantOK: true},
		{name: "generous padding", value: "{{   api_key   }}", wantToken: "api_key", wantOK: true},
		{name: "inner spaces survive", value: "{{ a b }}", wantToken: "a b", wantOK: true},
		{name: "literal string", value: "params.url", wantOK: false},
		{name: "embedded braces are not a reference", value: "x {{ a }} y", wantOK: false},
		{name: "empty braces", value: "{{ }}", wantOK: false},
		{name: "non-string", value: 42, wantOK: false},
		{name: "nil", value: nil, wantOK: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			token, ok := Token(tc.value)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.wantToken, token)
		})
	}
}

func TestWrapRoundTrips(t *testing.T) {
	t.Parallel()

	wrapped := Wrap("settings.timeout")
	assert.Equal(t, "{{ settings.timeout }}", wrapped)
	assert.True(t, IsReference(wrapped))

	token, ok := Token(wrapped)
	require.True(t, ok)
	assert.Equal(t, "settings.timeout", token)
}

func TestResolve(t *testing.T) {
	t.Parallel()

	values := map[string]any{
		"url":     "{{ params.url }}",
		"timeout": 30,
		"proxy": map[string]any{
			"host": "{{ proxy_host }}",
			"port": 8080,
		},
		"hosts": []any{"static.test", "{{ params.url }}"},
	}
	params := map[string]any{
		"params":     map[string]any{"url": "https://api.test"},
		"proxy_host": "proxy.internal",
	}

	resolved, err := Resolve(values, params)
	require.NoError(t, err)

	assert.Equal(t, "https://api.test", resolved["url"])
	assert.Equal(t, 30, resolved["timeout"])

	proxy, ok := resolved["proxy"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "proxy.internal", proxy["host"])
	assert.Equal(t, 8080, proxy["port"])

	hosts, ok := resolved["hosts"].([]any)
	require.True(t, ok)
	assert.Equal(t, []any{"static.test", "https://api.test"}, hosts)

	// The input map still carries the wrapped forms.
	assert.Equal(t, "{{ params.url }}", values["url"])
	assert.Equal(t, "{{ proxy_host }}", values["proxy"].(map[string]any)["host"])
}

func TestResolveReportsEveryMissingPath(t *testing.T) {
	t.Parallel()

	values := map[string]any{
		"url": "{{ gone }}",
		"proxy": map[string]any{
			"host": "{{ also.gone }}",
		},
		"hosts": []any{"{{ vanished }}"},
	}

	resolved, err := Resolve(values, map[string]any{})
	require.Error(t, err)
	assert.Nil(t, resolved)

	var unresolved *UnresolvedError

	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, []string{"hosts[0]", "proxy.host", "url"}, unresolved.Paths)
	assert.Contains(t, unresolved.Error(), "proxy.host")
}

func TestResolveLenientLeavesUnmatchedTokens(t *testing.T) {
	t.Parallel()

	values := map[string]any{
		"url":  "{{ params.url }}",
		"gone": "{{ missing }}",
	}
	params := map[string]any{
		"params": map[string]any{"url": "https://api.test"},
	}

	resolved := ResolveLenient(values, params)

	assert.Equal(t, "https://api.test", resolved["url"])
	assert.Equal(t, "{{ missing }}", resolved["gone"])
}

func TestLookupPath(t *testing.T) {
	t.Parallel()

	values := map[string]any{
		"a": map[string]any{
			"b": map[string]any{"c": 1},
			"s": "leaf",
		},
	}

	v, ok := LookupPath(values, "a.b.c")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = LookupPath(values, "a.s")
	require.True(t, ok)
	assert.Equal(t, "leaf", v)

	_, ok = LookupPath(values, "a.missing")
	assert.False(t, ok)

	// Traversing into a leaf fails rather than panicking.
	_, ok = LookupPath(values, "a.s.deeper")
	assert.False(t, ok)

	_, ok = LookupPath(values, "")
	assert.False(t, ok)
}

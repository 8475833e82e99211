package web_test

import (
	"net/http"
	"testing"

	"github.com/gavv/httpexpect/v2"
)

// newSessionExpect binds an httpexpect client directly to the fiber app, so
// the whole API surface is exercised without a listening socket.
func newSessionExpect(t *testing.T) *httpexpect.Expect {
	t.Helper()

	app, _ := setupTestApp(t)

	return httpexpect.WithConfig(httpexpect.Config{
		TestName: t.Name(),
		BaseURL:  "http://propsheet.test",
		Reporter: httpexpect.NewAssertReporter(t),
		Client: &http.Client{
			Transport: httpexpect.NewFastBinder(app.Handler()),
		},
	})
}

func TestSessionAPI_Lifecycle(t *testing.T) {
	t.Parallel()

	e := newSessionExpect(t)

	// Nothing open yet.
	e.GET("/sessions").
		Expect().
		Status(http.StatusOK).JSON().Object().
		Value("total_count").IsEqual(0)

	// Open a session.
	created := e.POST("/sessions").
		WithJSON(map[string]any{
			"title":       "HTTP Request",
			"instance_id": "instance-1",
			"class_tag":   "http",
			"schema":      testSchema,
			"values":      map[string]any{"url": "https://example.com"},
		}).
		Expect().
		Status(http.StatusCreated).JSON().Object()

	id := created.Value("id").String().NotEmpty().Raw()
	created.Value("changed").IsEqual(false)
	created.Value("groups").Array().Length().IsEqual(2)

	// Write a top-level and a nested value.
	e.PUT("/sessions/" + id + "/values/timeout").
		WithJSON(map[string]any{"value": 30}).
		Expect().
		Status(http.StatusNoContent)

	e.PUT("/sessions/" + id + "/values/proxy.host").
		WithJSON(map[string]any{"value": "proxy.internal"}).
		Expect().
		Status(http.StatusNoContent)

	values := e.GET("/sessions/" + id + "/values").
		Expect().
		Status(http.StatusOK).JSON().Object().
		Value("values").Object()

	values.Value("url").IsEqual("https://example.com")
	values.Value("timeout").IsEqual(30)
	values.Value("proxy").Object().Value("host").IsEqual("proxy.internal")

	// The session is now dirty.
	e.GET("/sessions/" + id).
		Expect().
		Status(http.StatusOK).JSON().Object().
		Value("changed").IsEqual(true)

	// Everything passes validation.
	e.POST("/sessions/" + id + "/validate").
		Expect().
		Status(http.StatusOK).JSON().Object().
		Value("valid").IsEqual(true)

	// Clearing the required URL makes the walk fail on it.
	e.PUT("/sessions/" + id + "/values/url").
		WithJSON(map[string]any{"value": nil}).
		Expect().
		Status(http.StatusNoContent)

	failed := e.POST("/sessions/" + id + "/validate").
		Expect().
		Status(http.StatusOK).JSON().Object()

	failed.Value("valid").IsEqual(false)
	failed.Value("path").IsEqual("url")
	failed.Value("error").String().NotEmpty()

	// A failing session refuses to commit.
	e.POST("/sessions/" + id + "/commit").
		Expect().
		Status(http.StatusUnprocessableEntity).JSON().Object().
		Value("type").IsEqual("validation_failed")

	// Restore the URL and commit.
	e.PUT("/sessions/" + id + "/values/url").
		WithJSON(map[string]any{"value": "https://example.com"}).
		Expect().
		Status(http.StatusNoContent)

	e.POST("/sessions/" + id + "/commit").
		Expect().
		Status(http.StatusOK).JSON().Object().
		Value("values").Object().Value("timeout").IsEqual(30)

	// Close the session.
	e.DELETE("/sessions/" + id).
		Expect().
		Status(http.StatusNoContent)

	e.GET("/sessions/" + id).
		Expect().
		Status(http.StatusNotFound).JSON().Object().
		Value("type").IsEqual("session_not_found")
}

func TestSessionAPI_ValidValuesFilter(t *testing.T) {
	t.Parallel()

	e := newSessionExpect(t)

	id := e.POST("/sessions").
		WithJSON(map[string]any{
			"instance_id": "instance-1",
			"schema":      testSchema,
			"values":      map[string]any{"url": "https://example.com"},
		}).
		Expect().
		Status(http.StatusCreated).JSON().Object().
		Value("id").String().NotEmpty().Raw()

	// A timeout that fails the integer shape check.
	e.PUT("/sessions/" + id + "/values/timeout").
		WithJSON(map[string]any{"value": "soon"}).
		Expect().
		Status(http.StatusNoContent)

	body := e.GET("/sessions/"+id+"/values").
		WithQuery("valid", "true").
		Expect().
		Status(http.StatusOK).JSON().Object()

	body.Value("invalid").Array().ContainsOnly("timeout")
	body.Value("values").Object().
		ContainsKey("url").
		NotContainsKey("timeout")
}

func TestSessionAPI_OverrideFlow(t *testing.T) {
	t.Parallel()

	e := newSessionExpect(t)

	id := e.POST("/sessions").
		WithJSON(map[string]any{
			"instance_id": "instance-1",
			"schema":      testSchema,
			"values":      map[string]any{"url": "https://example.com"},
		}).
		Expect().
		Status(http.StatusCreated).JSON().Object().
		Value("id").String().NotEmpty().Raw()

	// Bind url to an external parameter.
	e.PUT("/sessions/" + id + "/overrides/url").
		WithJSON(map[string]any{"token": "params.url"}).
		Expect().
		Status(http.StatusNoContent)

	e.GET("/sessions/" + id + "/values").
		Expect().
		Status(http.StatusOK).JSON().Object().
		Value("values").Object().
		Value("url").IsEqual("{{ params.url }}")

	// Dropping the override restores the superseded literal.
	e.DELETE("/sessions/" + id + "/overrides/url").
		Expect().
		Status(http.StatusNoContent)

	e.GET("/sessions/" + id + "/values").
		Expect().
		Status(http.StatusOK).JSON().Object().
		Value("values").Object().
		Value("url").IsEqual("https://example.com")

	// Composite kinds cannot be overridden.
	e.PUT("/sessions/" + id + "/overrides/proxy").
		WithJSON(map[string]any{"token": "params.proxy"}).
		Expect().
		Status(http.StatusNotFound).JSON().Object().
		Value("type").IsEqual("override_not_supported")
}

func TestSessionAPI_GroupExpandState(t *testing.T) {
	t.Parallel()

	e := newSessionExpect(t)

	created := e.POST("/sessions").
		WithJSON(map[string]any{
			"instance_id": "instance-1",
			"schema":      testSchema,
		}).
		Expect().
		Status(http.StatusCreated).JSON().Object()

	id := created.Value("id").String().NotEmpty().Raw()
	index := created.Value("groups").Array().Value(0).Object().
		Value("index").String().NotEmpty().Raw()

	e.PUT("/sessions/" + id + "/groups/" + index).
		WithJSON(map[string]any{"expanded": true}).
		Expect().
		Status(http.StatusNoContent)

	groups := e.GET("/sessions/" + id).
		Expect().
		Status(http.StatusOK).JSON().Object().
		Value("groups").Array()

	found := false

	for _, raw := range groups.Iter() {
		group := raw.Object()
		if group.Value("index").String().Raw() == index {
			group.Value("expanded").IsEqual(true)

			found = true
		}
	}

	if !found {
		t.Fatalf("group %s missing from session representation", index)
	}
}

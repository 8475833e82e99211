package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propsheet/propsheet/pkg/channels/gochannel"
	"github.com/propsheet/propsheet/pkg/editors"
	"github.com/propsheet/propsheet/pkg/eventbus"
	"github.com/propsheet/propsheet/pkg/events"
	"github.com/propsheet/propsheet/pkg/groupstate/memory"
	"github.com/propsheet/propsheet/pkg/inspector"
)

var testSchema = []byte(`[
	{"property": "url", "title": "URL", "type": "string", "validation": {"required": true}},
	{"property": "timeout", "title": "Timeout", "type": "integer", "validation": {"integer": {"min": 1}}},
	{"property": "verbose", "title": "Verbose", "type": "checkbox", "group": "Advanced"},
	{"property": "proxy", "title": "Proxy", "type": "object", "properties": [
		{"property": "host", "title": "Host", "type": "string"},
		{"property": "port", "title": "Port", "type": "integer"}
	]}
]`)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSessions(t *testing.T) *Sessions {
	t.Helper()

	registry := inspector.NewRegistry(testLogger())
	editors.Register(registry)

	return NewSessions(registry, memory.NewStore(), testLogger())
}

func createTestSession(t *testing.T, service *Sessions, values map[string]any) *Session {
	t.Helper()

	session, err := service.Create(t.Context(), CreateSessionRequest{
		Title:      "HTTP Request",
		InstanceID: "instance-1",
		ClassTag:   "http",
		Schema:     testSchema,
		Values:     values,
	})
	require.NoError(t, err)
	require.NotNil(t, session)

	return session
}

func TestNewSessions(t *testing.T) {
	service := newTestSessions(t)

	assert.NotNil(t, service)

	msg, healthy := service.HealthCheck(t.Context())
	assert.True(t, healthy)
	assert.Contains(t, msg, "healthy")
}

func TestSessions_Create(t *testing.T) {
	service := newTestSessions(t)

	session := createTestSession(t, service, map[string]any{"url": "https://example.com"})

	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "HTTP Request", session.Title)
	assert.Equal(t, "instance-1", session.InstanceID)
	assert.Equal(t, "http", session.ClassTag)
	assert.False(t, session.CreatedAt.IsZero())
	assert.NotNil(t, session.Surface())

	fetched, err := service.Get(t.Context(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, session, fetched)
}

func TestSessions_Create_MissingInstanceID(t *testing.T) {
	service := newTestSessions(t)

	session, err := service.Create(t.Context(), CreateSessionRequest{
		Schema: testSchema,
	})
	assert.Nil(t, session)
	require.ErrorIs(t, err, ErrInstanceIDRequired)
	assert.True(t, IsValidationError(err))
}

func TestSessions_Create_MissingSchema(t *testing.T) {
	service := newTestSessions(t)

	session, err := service.Create(t.Context(), CreateSessionRequest{
		InstanceID: "instance-1",
	})
	assert.Nil(t, session)
	require.ErrorIs(t, err, ErrSchemaRequired)
}

func TestSessions_Create_InvalidSchema(t *testing.T) {
	service := newTestSessions(t)

	session, err := service.Create(t.Context(), CreateSessionRequest{
		InstanceID: "instance-1",
		Schema:     []byte(`[{"title": "no property name"}]`),
	})
	assert.Nil(t, session)
	require.ErrorIs(t, err, ErrSchemaInvalid)
	assert.True(t, IsValidationError(err))
}

func TestSessions_Get_NotFound(t *testing.T) {
	service := newTestSessions(t)

	session, err := service.Get(t.Context(), "non-existent")
	assert.Nil(t, session)
	require.ErrorIs(t, err, ErrSessionNotFound)
	assert.True(t, IsNotFoundError(err))
}

func TestSessions_List(t *testing.T) {
	service := newTestSessions(t)

	assert.Empty(t, service.List(t.Context()))

	first := createTestSession(t, service, nil)
	second := createTestSession(t, service, nil)

	listed := service.List(t.Context())
	require.Len(t, listed, 2)
	assert.Equal(t, first.ID, listed[0].ID)
	assert.Equal(t, second.ID, listed[1].ID)
}

func TestSessions_SetValue(t *testing.T) {
	service := newTestSessions(t)
	session := createTestSession(t, service, nil)

	err := service.SetValue(t.Context(), session.ID, "url", "https://api.example.com")
	require.NoError(t, err)

	values, err := service.Values(t.Context(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", values["url"])
}

func TestSessions_SetValue_NestedPath(t *testing.T) {
	service := newTestSessions(t)
	session := createTestSession(t, service, nil)

	err := service.SetValue(t.Context(), session.ID, "proxy.host", "proxy.internal")
	require.NoError(t, err)

	values, err := service.Values(t.Context(), session.ID)
	require.NoError(t, err)

	proxy, ok := values["proxy"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "proxy.internal", proxy["host"])
}

func TestSessions_SetValue_UnknownProperty(t *testing.T) {
	service := newTestSessions(t)
	session := createTestSession(t, service, nil)

	err := service.SetValue(t.Context(), session.ID, "no-such-property", 1)
	require.ErrorIs(t, err, ErrPropertyUnknown)
	assert.True(t, IsNotFoundError(err))

	err = service.SetValue(t.Context(), session.ID, "url.nested", 1)
	require.ErrorIs(t, err, ErrPropertyUnknown)
}

func TestSessions_ValidValues(t *testing.T) {
	service := newTestSessions(t)
	session := createTestSession(t, service, map[string]any{
		"url":     "https://example.com",
		"timeout": 0,
	})

	values, invalid, err := service.ValidValues(t.Context(), session.ID)
	require.NoError(t, err)

	assert.Equal(t, "https://example.com", values["url"])
	assert.NotContains(t, values, "timeout")
	assert.Equal(t, []string{"timeout"}, invalid)
}

func TestSessions_Validate(t *testing.T) {
	service := newTestSessions(t)
	session := createTestSession(t, service, nil)

	err := service.Validate(t.Context(), session.ID)
	require.Error(t, err)

	var verr *inspector.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "url", verr.Path)

	err = service.SetValue(t.Context(), session.ID, "url", "https://example.com")
	require.NoError(t, err)

	err = service.Validate(t.Context(), session.ID)
	assert.NoError(t, err)
}

func TestSessions_Commit(t *testing.T) {
	service := newTestSessions(t)
	session := createTestSession(t, service, map[string]any{"url": "https://example.com"})

	values, err := service.Commit(t.Context(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", values["url"])
}

func TestSessions_Commit_InvalidSession(t *testing.T) {
	service := newTestSessions(t)
	session := createTestSession(t, service, nil)

	values, err := service.Commit(t.Context(), session.ID)
	assert.Nil(t, values)
	require.Error(t, err)

	var verr *inspector.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestSessions_SetOverride(t *testing.T) {
	service := newTestSessions(t)
	session := createTestSession(t, service, map[string]any{"url": "https://example.com"})

	err := service.SetOverride(t.Context(), session.ID, "url", "env.API_URL")
	require.NoError(t, err)

	values, err := service.Values(t.Context(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, "{{ env.API_URL }}", values["url"])

	err = service.ClearOverride(t.Context(), session.ID, "url")
	require.NoError(t, err)

	values, err = service.Values(t.Context(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", values["url"])
}

func TestSessions_SetOverride_NotOverridable(t *testing.T) {
	service := newTestSessions(t)
	session := createTestSession(t, service, nil)

	err := service.SetOverride(t.Context(), session.ID, "proxy", "env.PROXY")
	require.ErrorIs(t, err, ErrOverrideUnknown)
	assert.True(t, IsNotFoundError(err))
}

func TestSessions_SetGroupExpanded(t *testing.T) {
	service := newTestSessions(t)
	session := createTestSession(t, service, nil)

	manager := session.Surface().Groups()
	group := manager.GroupByIndex("0-1")
	require.NotNil(t, group)
	assert.Equal(t, "Advanced", group.Title())
	assert.False(t, manager.IsExpanded(group))

	err := service.SetGroupExpanded(t.Context(), session.ID, "0-1", true)
	require.NoError(t, err)
	assert.True(t, manager.IsExpanded(group))

	err = service.SetGroupExpanded(t.Context(), session.ID, "0-1", false)
	require.NoError(t, err)
	assert.False(t, manager.IsExpanded(group))
}

func TestSessions_SetGroupExpanded_UnknownIndex(t *testing.T) {
	service := newTestSessions(t)
	session := createTestSession(t, service, nil)

	err := service.SetGroupExpanded(t.Context(), session.ID, "9-9", true)
	require.ErrorIs(t, err, ErrGroupUnknown)
}

func TestSessions_Dispose(t *testing.T) {
	service := newTestSessions(t)
	session := createTestSession(t, service, nil)

	err := service.Dispose(t.Context(), session.ID)
	require.NoError(t, err)

	assert.True(t, session.Surface().Disposed())

	_, err = service.Get(t.Context(), session.ID)
	require.ErrorIs(t, err, ErrSessionNotFound)

	err = service.Dispose(t.Context(), session.ID)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessions_PublishesLifecycleEvents(t *testing.T) {
	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)

	received := make(chan eventbus.Event, 8)
	handler := func(ctx context.Context, event any) error {
		if e, ok := event.(eventbus.Event); ok {
			received <- e
		}

		return nil
	}

	require.NoError(t, bus.Handle(events.SessionCreatedEvent, handler))
	require.NoError(t, bus.Handle(events.SessionPropertyChangedEvent, handler))
	require.NoError(t, bus.Handle(events.SessionDisposedEvent, handler))
	require.NoError(t, bus.Subscribe(t.Context()))

	registry := inspector.NewRegistry(testLogger())
	editors.Register(registry)
	service := NewSessions(registry, memory.NewStore(), testLogger()).WithEventBus(bus)

	session := createTestSession(t, service, nil)

	err = service.SetValue(t.Context(), session.ID, "url", "https://example.com")
	require.NoError(t, err)

	err = service.Dispose(t.Context(), session.ID)
	require.NoError(t, err)

	want := map[events.EventType]bool{
		events.SessionCreatedEvent:         false,
		events.SessionPropertyChangedEvent: false,
		events.SessionDisposedEvent:        false,
	}

	for range len(want) {
		select {
		case event := <-received:
			want[event.GetType()] = true
		case <-time.After(5 * time.Second):
			t.Fatal("Did not receive all session events within timeout")
		}
	}

	for eventType, seen := range want {
		assert.True(t, seen, "missing event %s", eventType)
	}

	assert.NoError(t, bus.Close())
}

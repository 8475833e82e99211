// Package services provides inspector session management on top of the surface engine.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/propsheet/propsheet/pkg/eventbus"
	"github.com/propsheet/propsheet/pkg/events"
	"github.com/propsheet/propsheet/pkg/groupstate"
	"github.com/propsheet/propsheet/pkg/inspector"
	"github.com/propsheet/propsheet/pkg/options"
	"github.com/propsheet/propsheet/pkg/otelhelper"
	"github.com/propsheet/propsheet/pkg/schema"
)

// Session is one live inspector surface held on behalf of a remote client.
// The identifying fields are set at creation and never change; all value
// access goes through the Sessions service, which serializes it.
type Session struct {
	ID         string
	Title      string
	InstanceID string
	ClassTag   string
	CreatedAt  time.Time

	surface *inspector.Surface
	mu      sync.Mutex
}

// Surface returns the session's root surface for in-process embedding.
func (s *Session) Surface() *inspector.Surface { return s.surface }

// Sessions manages the lifecycle of inspector sessions: creating surfaces
// from schemas, routing value and override edits into them, and publishing
// lifecycle events when a bus is configured.
type Sessions struct {
	registry   *inspector.Registry
	groupState groupstate.Store
	provider   options.Provider
	bus        eventbus.EventBus
	tracer     trace.Tracer
	logger     *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessions creates a new session service.
func NewSessions(registry *inspector.Registry, store groupstate.Store, logger *slog.Logger) *Sessions {
	return &Sessions{
		registry:   registry,
		groupState: store,
		tracer:     noop.NewTracerProvider().Tracer("propsheet"),
		logger:     logger,
		sessions:   make(map[string]*Session),
	}
}

// WithProvider wires the options provider handed to every new surface.
func (s *Sessions) WithProvider(provider options.Provider) *Sessions {
	s.provider = provider

	return s
}

// WithEventBus wires the bus session lifecycle events are published to.
func (s *Sessions) WithEventBus(bus eventbus.EventBus) *Sessions {
	s.bus = bus

	return s
}

// WithTracer replaces the default no-op tracer.
func (s *Sessions) WithTracer(tracer trace.Tracer) *Sessions {
	s.tracer = tracer

	return s
}

// HealthCheck checks the health of the group state store.
func (s *Sessions) HealthCheck(ctx context.Context) (string, bool) {
	if s.groupState == nil {
		return "Group state store not initialized", false
	}

	err := s.groupState.HealthCheck(ctx)
	if err != nil {
		return "Group state store is unhealthy: " + err.Error(), false
	}

	return "Group state store is healthy", true
}

// CreateSessionRequest contains everything needed to open a session.
type CreateSessionRequest struct {
	Title      string
	InstanceID string `validate:"required"`
	ClassTag   string
	Schema     []byte `validate:"required"`
	Values     map[string]any
}

// Create loads the schema, builds a root surface over the initial values and
// registers it under a fresh session ID.
func (s *Sessions) Create(ctx context.Context, req CreateSessionRequest) (*Session, error) {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "sessions.create",
		attribute.String(otelhelper.InstanceIDKey, req.InstanceID),
		attribute.String(otelhelper.ClassTagKey, req.ClassTag),
	)
	defer span.End()

	if strings.TrimSpace(req.InstanceID) == "" {
		return nil, ErrInstanceIDRequired
	}

	if len(req.Schema) == 0 {
		return nil, ErrSchemaRequired
	}

	doc, err := schema.Load(req.Schema)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("%w: %w", ErrSchemaInvalid, err)
	}

	surface, err := inspector.New(ctx, inspector.Config{
		InstanceID: req.InstanceID,
		Document:   doc,
		Values:     req.Values,
		Registry:   s.registry,
		GroupState: s.groupState,
		Provider:   s.provider,
		ClassTag:   req.ClassTag,
		Logger:     s.logger,
	})
	if err != nil {
		otelhelper.SetError(span, err)

		if errors.Is(err, inspector.ErrRegistryRequired) {
			return nil, err
		}

		return nil, fmt.Errorf("%w: %w", ErrSchemaInvalid, err)
	}

	session := &Session{
		ID:         uuid.New().String(),
		Title:      req.Title,
		InstanceID: req.InstanceID,
		ClassTag:   req.ClassTag,
		CreatedAt:  time.Now().UTC(),
		surface:    surface,
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	span.SetAttributes(attribute.String(otelhelper.SessionIDKey, session.ID))
	s.logger.InfoContext(ctx, "Created inspector session",
		"session_id", session.ID, "instance_id", session.InstanceID, "properties", doc.Len())

	created := &events.SessionCreated{
		BaseEvent:     events.NewBaseEvent(events.SessionCreatedEvent, session.ID),
		SchemaTitle:   req.Title,
		PropertyCount: doc.Len(),
		ClassTag:      req.ClassTag,
	}
	created.InstanceID = session.InstanceID
	s.publish(ctx, session.ID, created)

	return session, nil
}

// Get retrieves a session by its ID.
func (s *Sessions) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	return session, nil
}

// List returns all live sessions ordered by creation time.
func (s *Sessions) List(ctx context.Context) []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, session)
	}

	slices.SortFunc(out, func(a, b *Session) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	return out
}

// SetValue writes one property value. Dotted paths descend into nested
// object surfaces.
func (s *Sessions) SetValue(ctx context.Context, id, path string, value any) error {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "sessions.set_value",
		attribute.String(otelhelper.SessionIDKey, id),
		attribute.String(otelhelper.PropertyPathKey, path),
	)
	defer span.End()

	session, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	owner, name, err := resolveProperty(session.surface, path)
	if err != nil {
		otelhelper.SetError(span, err)

		return err
	}

	owner.SetPropertyValue(ctx, name, value, false, true)

	overridden := false
	if o := owner.OverrideFor(name); o != nil {
		overridden = o.Active()
	}

	changed := &events.SessionPropertyChanged{
		BaseEvent:    events.NewBaseEvent(events.SessionPropertyChangedEvent, session.ID),
		PropertyPath: path,
		Value:        value,
		Overridden:   overridden,
	}
	changed.InstanceID = session.InstanceID
	s.publish(ctx, session.ID, changed)

	return nil
}

// Values extracts the session's current values, overrides folded in and
// ignore policies applied.
func (s *Sessions) Values(ctx context.Context, id string) (map[string]any, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	return session.surface.Values(), nil
}

// ValidValues extracts the session's values with validation folded in. The
// returned map holds only properties that passed; the slice lists the ones
// that failed, sorted.
func (s *Sessions) ValidValues(ctx context.Context, id string) (map[string]any, []string, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	raw := session.surface.ValidValues(ctx)

	values := make(map[string]any, len(raw))
	invalid := make([]string, 0)

	for name, value := range raw {
		if inspector.IsInvalid(value) {
			invalid = append(invalid, name)

			continue
		}

		values[name] = value
	}

	slices.Sort(invalid)

	return values, invalid, nil
}

// Validate runs the session's validation walk, revealing the first failing
// row through the host and reporting it as a *inspector.ValidationError.
func (s *Sessions) Validate(ctx context.Context, id string) error {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "sessions.validate",
		attribute.String(otelhelper.SessionIDKey, id),
	)
	defer span.End()

	session, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	return s.validateLocked(ctx, span, session)
}

func (s *Sessions) validateLocked(ctx context.Context, span trace.Span, session *Session) error {
	err := session.surface.Validate(ctx, false)
	if err == nil {
		return nil
	}

	otelhelper.SetError(span, err)

	var verr *inspector.ValidationError
	if errors.As(err, &verr) {
		failed := &events.SessionValidationFailed{
			BaseEvent:    events.NewBaseEvent(events.SessionValidationFailedEvent, session.ID),
			PropertyPath: verr.Path,
			Error:        verr.Err.Error(),
		}
		failed.InstanceID = session.InstanceID
		s.publish(ctx, session.ID, failed)
	}

	return err
}

// Commit validates the whole session and, when it passes, extracts and
// returns its values. The dialog OK path: nothing is returned unless every
// property is acceptable.
func (s *Sessions) Commit(ctx context.Context, id string) (map[string]any, error) {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "sessions.commit",
		attribute.String(otelhelper.SessionIDKey, id),
	)
	defer span.End()

	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if err := s.validateLocked(ctx, span, session); err != nil {
		return nil, err
	}

	values := session.surface.Values()

	committed := &events.SessionValuesCommitted{
		BaseEvent: events.NewBaseEvent(events.SessionValuesCommittedEvent, session.ID),
		Values:    values,
	}
	committed.InstanceID = session.InstanceID
	s.publish(ctx, session.ID, committed)

	return values, nil
}

// SetOverride binds a property to an external parameter reference. The
// editor's literal value is superseded, not lost.
func (s *Sessions) SetOverride(ctx context.Context, id, path, token string) error {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "sessions.set_override",
		attribute.String(otelhelper.SessionIDKey, id),
		attribute.String(otelhelper.PropertyPathKey, path),
	)
	defer span.End()

	session, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	override, err := resolveOverride(session.surface, path)
	if err != nil {
		otelhelper.SetError(span, err)

		return err
	}

	override.SetToken(token)
	override.Activate()

	set := &events.SessionOverrideSet{
		BaseEvent:    events.NewBaseEvent(events.SessionOverrideSetEvent, session.ID),
		PropertyPath: path,
		Token:        token,
	}
	set.InstanceID = session.InstanceID
	s.publish(ctx, session.ID, set)

	return nil
}

// ClearOverride deactivates a property's override, returning control to the
// editor's literal value.
func (s *Sessions) ClearOverride(ctx context.Context, id, path string) error {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "sessions.clear_override",
		attribute.String(otelhelper.SessionIDKey, id),
		attribute.String(otelhelper.PropertyPathKey, path),
	)
	defer span.End()

	session, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	override, err := resolveOverride(session.surface, path)
	if err != nil {
		otelhelper.SetError(span, err)

		return err
	}

	override.Deactivate(ctx)

	owner, name, err := resolveProperty(session.surface, path)
	if err != nil {
		return err
	}

	cleared := &events.SessionOverrideCleared{
		BaseEvent:     events.NewBaseEvent(events.SessionOverrideClearedEvent, session.ID),
		PropertyPath:  path,
		RestoredValue: owner.EditorByName(name).CurrentValue(),
	}
	cleared.InstanceID = session.InstanceID
	s.publish(ctx, session.ID, cleared)

	return nil
}

// SetGroupExpanded toggles a group's persisted expand state by its index.
func (s *Sessions) SetGroupExpanded(ctx context.Context, id, index string, expanded bool) error {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "sessions.set_group_expanded",
		attribute.String(otelhelper.SessionIDKey, id),
		attribute.String(otelhelper.GroupIndexKey, index),
	)
	defer span.End()

	session, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	manager := session.surface.Groups()
	if manager.GroupByIndex(index) == nil {
		err := fmt.Errorf("%w: %s", ErrGroupUnknown, index)
		otelhelper.SetError(span, err)

		return err
	}

	if err := manager.SetExpandedByIndex(ctx, index, expanded); err != nil {
		otelhelper.SetError(span, err)

		return fmt.Errorf("failed to persist group state: %w", err)
	}

	toggled := &events.SessionGroupToggled{
		BaseEvent:  events.NewBaseEvent(events.SessionGroupToggledEvent, session.ID),
		GroupIndex: index,
		Expanded:   expanded,
	}
	toggled.InstanceID = session.InstanceID
	s.publish(ctx, session.ID, toggled)

	return nil
}

// Dispose tears the session down and removes it from the service.
func (s *Sessions) Dispose(ctx context.Context, id string) error {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "sessions.dispose",
		attribute.String(otelhelper.SessionIDKey, id),
	)
	defer span.End()

	s.mu.Lock()
	session, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	changed := session.surface.Changed()
	session.surface.Dispose(ctx)

	s.logger.InfoContext(ctx, "Disposed inspector session", "session_id", id)

	disposed := &events.SessionDisposed{
		BaseEvent: events.NewBaseEvent(events.SessionDisposedEvent, session.ID),
		Changed:   changed,
	}
	disposed.InstanceID = session.InstanceID
	s.publish(ctx, session.ID, disposed)

	return nil
}

func (s *Sessions) publish(ctx context.Context, key string, event eventbus.Event) {
	if s.bus == nil {
		return
	}

	if err := s.bus.Publish(ctx, key, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish session event",
			"event_type", event.GetType(), "session_id", key, "error", err)
	}
}

// resolveProperty walks a dotted property path into nested object surfaces
// and returns the owning surface plus the local property name.
func resolveProperty(surface *inspector.Surface, path string) (*inspector.Surface, string, error) {
	current := surface
	segments := strings.Split(path, ".")

	for i, segment := range segments {
		editor := current.EditorByName(segment)
		if editor == nil {
			return nil, "", fmt.Errorf("%w: %s", ErrPropertyUnknown, path)
		}

		if i == len(segments)-1 {
			return current, segment, nil
		}

		child := editor.ChildSurface()
		if child == nil {
			return nil, "", fmt.Errorf("%w: %s", ErrPropertyUnknown, path)
		}

		current = child
	}

	return nil, "", fmt.Errorf("%w: %s", ErrPropertyUnknown, path)
}

func resolveOverride(surface *inspector.Surface, path string) (*inspector.Override, error) {
	owner, name, err := resolveProperty(surface, path)
	if err != nil {
		return nil, err
	}

	override := owner.OverrideFor(name)
	if override == nil {
		return nil, fmt.Errorf("%w: %s", ErrOverrideUnknown, path)
	}

	return override, nil
}

// Package events defines event types and structures for inspector session lifecycle notifications.
package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

// Kafka topics.
const Topic = "propsheet.sessions" // Topic for inspector session events

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Session lifecycle events.
	SessionCreatedEvent  EventType = "session.created"
	SessionDisposedEvent EventType = "session.disposed"

	// Value events.
	SessionPropertyChangedEvent  EventType = "session.property.changed"
	SessionValuesCommittedEvent  EventType = "session.values.committed"
	SessionValidationFailedEvent EventType = "session.validation.failed"

	// UI state events.
	SessionGroupToggledEvent    EventType = "session.group.toggled"
	SessionOverrideSetEvent     EventType = "session.override.set"
	SessionOverrideClearedEvent EventType = "session.override.cleared"
)

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	SessionID  string         `json:"session_id"`
	InstanceID string         `json:"instance_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Session lifecycle events

type SessionCreated struct {
	BaseEvent

	SchemaTitle   string `json:"schema_title,omitempty"`
	PropertyCount int    `json:"property_count"`
	ClassTag      string `json:"class_tag,omitempty"`
}

func (s SessionCreated) GetType() EventType {
	return SessionCreatedEvent
}

type SessionDisposed struct {
	BaseEvent

	Changed bool `json:"changed"`
}

func (s SessionDisposed) GetType() EventType {
	return SessionDisposedEvent
}

// Value events

type SessionPropertyChanged struct {
	BaseEvent

	PropertyPath string `json:"property_path"`
	Value        any    `json:"value,omitempty"`
	Overridden   bool   `json:"overridden,omitempty"`
}

func (s SessionPropertyChanged) GetType() EventType {
	return SessionPropertyChangedEvent
}

type SessionValuesCommitted struct {
	BaseEvent

	Values map[string]any `json:"values,omitempty"`
}

func (s SessionValuesCommitted) GetType() EventType {
	return SessionValuesCommittedEvent
}

type SessionValidationFailed struct {
	BaseEvent

	PropertyPath string `json:"property_path"`
	Error        string `json:"error"`
}

func (s SessionValidationFailed) GetType() EventType {
	return SessionValidationFailedEvent
}

// UI state events

type SessionGroupToggled struct {
	BaseEvent

	GroupIndex string `json:"group_index"`
	Expanded   bool   `json:"expanded"`
}

func (s SessionGroupToggled) GetType() EventType {
	return SessionGroupToggledEvent
}

type SessionOverrideSet struct {
	BaseEvent

	PropertyPath string `json:"property_path"`
	Token        string `json:"token"`
}

func (s SessionOverrideSet) GetType() EventType {
	return SessionOverrideSetEvent
}

type SessionOverrideCleared struct {
	BaseEvent

	PropertyPath  string `json:"property_path"`
	RestoredValue any    `json:"restored_value,omitempty"`
}

func (s SessionOverrideCleared) GetType() EventType {
	return SessionOverrideClearedEvent
}

func NewBaseEvent(eventType EventType, sessionID string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		SessionID: sessionID,
		Metadata:  make(map[string]any),
	}
}

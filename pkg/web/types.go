// Package web provides HTTP request and response types for the inspector session API.
package web

import (
	"encoding/json"
	"time"

	"github.com/propsheet/propsheet/pkg/services"
)

// CreateSessionRequest represents the request body for opening a new inspector session.
type CreateSessionRequest struct {
	Title      string          `json:"title,omitempty"`
	InstanceID string          `json:"instance_id"     validate:"required"`
	ClassTag   string          `json:"class_tag,omitempty"`
	Schema     json.RawMessage `json:"schema"          validate:"required"`
	Values     map[string]any  `json:"values,omitempty"`
}

// SetValueRequest represents the request body for writing one property value.
type SetValueRequest struct {
	Value any `json:"value"`
}

// SetOverrideRequest represents the request body for binding a property to an
// external parameter reference. An empty token is accepted; the override then
// fails validation until one is provided, mirroring the toggle-then-type flow.
type SetOverrideRequest struct {
	Token string `json:"token"`
}

// SetGroupExpandedRequest represents the request body for toggling a group's
// persisted expand state.
type SetGroupExpandedRequest struct {
	Expanded bool `json:"expanded"`
}

// GroupResponse represents one collapsible group of a session.
type GroupResponse struct {
	Index    string `json:"index"`
	Title    string `json:"title"`
	Level    int    `json:"level"`
	Expanded bool   `json:"expanded"`
}

// SessionResponse represents session metadata returned by the API.
type SessionResponse struct {
	ID         string          `json:"id"`
	Title      string          `json:"title,omitempty"`
	InstanceID string          `json:"instance_id"`
	ClassTag   string          `json:"class_tag,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	Changed    bool            `json:"changed"`
	Groups     []GroupResponse `json:"groups,omitempty"`
}

// ValuesResponse represents an extraction result. Invalid lists the property
// names excluded from Values because they failed validation; it is only
// populated when validation was requested.
type ValuesResponse struct {
	Values  map[string]any `json:"values"`
	Invalid []string       `json:"invalid,omitempty"`
}

// ValidateResponse represents the outcome of a validation walk. On failure
// Path carries the fully qualified name of the first failing property.
type ValidateResponse struct {
	Valid bool   `json:"valid"`
	Path  string `json:"path,omitempty"`
	Error string `json:"error,omitempty"`
}

// TransformSessionResponse transforms a session into its API representation.
func TransformSessionResponse(session *services.Session) SessionResponse {
	surface := session.Surface()

	response := SessionResponse{
		ID:         session.ID,
		Title:      session.Title,
		InstanceID: session.InstanceID,
		ClassTag:   session.ClassTag,
		CreatedAt:  session.CreatedAt,
		Changed:    surface.Changed(),
	}

	manager := surface.Groups()
	for _, group := range manager.Groups() {
		if group.IsRoot() {
			continue
		}

		response.Groups = append(response.Groups, GroupResponse{
			Index:    group.Index(),
			Title:    group.Title(),
			Level:    group.Level(),
			Expanded: manager.IsExpanded(group),
		})
	}

	return response
}

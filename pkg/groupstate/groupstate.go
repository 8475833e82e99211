// Package groupstate provides the keyed store that keeps group expand state
// alive across rebuilds of the same logical inspector. Stores are shared
// process-wide: two surfaces constructed with the same instance ID observe
// each other's expand state, so distinct logical targets must never share an
// instance ID.
package groupstate

import "context"

// State maps group index keys (dash-joined ordinal chains) to the expanded
// flag. Absent keys mean collapsed.
type State map[string]bool

// Clone returns an independent copy of the state.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}

	return out
}

// Store persists expand state per inspector instance.
type Store interface {
	Read(ctx context.Context, instanceID string) (State, error)
	Write(ctx context.Context, instanceID string, state State) error
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

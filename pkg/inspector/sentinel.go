package inspector

// Sentinel is a typed marker that can never collide with JSON-decoded data.
// Removed and Invalid flow through extraction results; they are never written
// into a surface's values map.
type Sentinel uint8

const (
	// Removed marks a property that must be omitted entirely from the
	// extracted output, produced by the ignore-if-empty, ignore-if-default
	// and ignore-if-property-empty policies.
	Removed Sentinel = iota + 1

	// Invalid marks a property whose editor or override failed validation
	// during ValidValues. The caller decides how to react per property.
	Invalid
)

func (s Sentinel) String() string {
	switch s {
	case Removed:
		return "<removed>"
	case Invalid:
		return "<invalid>"
	default:
		return "<unknown sentinel>"
	}
}

// IsRemoved reports whether a value is the Removed sentinel.
func IsRemoved(value any) bool {
	s, ok := value.(Sentinel)

	return ok && s == Removed
}

// IsInvalid reports whether a value is the Invalid sentinel.
func IsInvalid(value any) bool {
	s, ok := value.(Sentinel)

	return ok && s == Invalid
}

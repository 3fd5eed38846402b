package gobind

// Presence is the bit flag collected by DecodeWithMeta.
type Presence uint8

const (
	PresenceSeen           Presence = 1 << iota // Field appeared in the input.
	PresenceWasNull                             // Field value was null.
	PresenceDefaultApplied                      // Parameter default was applied.
)

// PresenceMap maps JSON names of bound fields to Presence flags.
type PresenceMap map[string]Presence

// Has reports whether every bit of want is set for name.
func (pm PresenceMap) Has(name string, want Presence) bool {
	return pm[name]&want == want
}

// Decoded carries the decoded value along with presence metadata.
type Decoded[T any] struct {
	Value    T
	Presence PresenceMap
}

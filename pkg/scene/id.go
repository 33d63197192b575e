package scene

import "github.com/google/uuid"

// namespace scopes landform IDs so equal paths never collide with other
// SHA-1 name-based UUIDs.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/chazu/landform"))

// ID is a deterministic identifier for a scene element, derived from its
// declaration path (for example "vegetation/hedge").
type ID string

// NewID returns the ID for the given declaration path. The same path always
// yields the same ID.
func NewID(path string) ID {
	return ID(uuid.NewSHA1(namespace, []byte(path)).String())
}

// IsZero reports whether the ID is unset.
func (id ID) IsZero() bool { return id == "" }

// Short returns the first 8 characters, for logs and messages.
func (id ID) Short() string {
	if len(id) <= 8 {
		return string(id)
	}
	return string(id[:8])
}

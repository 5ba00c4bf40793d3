// Package values contains domain value objects that encapsulate
// primitive types with validation.
package values

import (
	"fmt"

	"github.com/google/uuid"
)

// SessionID uniquely identifies one deployment-config generation run.
type SessionID struct {
	value uuid.UUID
}

// NewSessionID creates a new random session ID
func NewSessionID() SessionID {
	return SessionID{value: uuid.New()}
}

// ParseSessionID parses a string into a SessionID
func ParseSessionID(s string) (SessionID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return SessionID{}, fmt.Errorf("invalid session ID: %w", err)
	}
	return SessionID{value: id}, nil
}

// String returns the string representation
func (s SessionID) String() string {
	return s.value.String()
}

// UUID returns the underlying uuid.UUID
func (s SessionID) UUID() uuid.UUID {
	return s.value
}

// IsZero returns true if this is the zero value
func (s SessionID) IsZero() bool {
	return s.value == uuid.Nil
}

// MarshalText implements encoding.TextMarshaler so the ID renders as a
// plain string in both JSON and YAML output.
func (s SessionID) MarshalText() ([]byte, error) {
	return []byte(s.value.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *SessionID) UnmarshalText(data []byte) error {
	id, err := ParseSessionID(string(data))
	if err != nil {
		return err
	}
	*s = id
	return nil
}

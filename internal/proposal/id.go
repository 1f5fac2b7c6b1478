package proposal

import (
	"github.com/google/uuid"
)

// IDGenerator produces a fresh proposal id.
type IDGenerator func() (string, error)

// NewID returns a random (version 4) UUID in canonical form.
func NewID() (string, error) {
	return newIDWith(uuid.NewRandom)
}

func newIDWith(gen func() (uuid.UUID, error)) (string, error) {
	id, err := gen()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// ValidID reports whether s is a canonical hyphenated UUID.
func ValidID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

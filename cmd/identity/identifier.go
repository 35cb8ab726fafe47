package identity

import (
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"arc/cmd/identity/ids"
)

// Identifier wraps a ULID for a specific entity kind E. The type parameter
// never appears at runtime; it exists so that, say, a Session's id cannot
// be passed where a User's id is expected without an explicit conversion.
type Identifier[E any] struct {
	value string
}

// NewIdentifier mints a fresh, time-sortable identifier.
func NewIdentifier[E any](now time.Time) (Identifier[E], error) {
	s, err := ids.NewULID(now)
	if err != nil {
		return Identifier[E]{}, fmt.Errorf("identity.NewIdentifier: %w", err)
	}
	return Identifier[E]{value: s}, nil
}

// ParseIdentifier decodes a canonical 26-character Crockford-base32 ULID
// string into a typed identifier.
func ParseIdentifier[E any](s string) (Identifier[E], error) {
	if _, err := ulid.ParseStrict(s); err != nil {
		return Identifier[E]{}, OpError{Op: "identity.ParseIdentifier", Kind: ErrInvalidInput, Msg: "not a valid ulid"}
	}
	return Identifier[E]{value: s}, nil
}

// String returns the canonical encoding.
func (id Identifier[E]) String() string { return id.value }

// IsZero reports whether this identifier was never assigned.
func (id Identifier[E]) IsZero() bool { return id.value == "" }

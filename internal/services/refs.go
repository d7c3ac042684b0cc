package services

import (
	"strings"

	"github.com/google/uuid"
)

// RefGenerator produces booking references. Uniqueness is checked by the caller.
type RefGenerator func() string

const refLength = 7

// NewBookingRef returns PNR- followed by seven uppercase characters.
func NewBookingRef() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "PNR-" + raw[:refLength]
}

// NewSessionID returns a random session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// Package ids generates and validates the public ULID identifiers exposed
// by the API. Database primary keys stay internal.
package ids

import (
	"crypto/rand"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	ulidRegex = regexp.MustCompile(`(?i)^[0-9A-HJKMNP-TV-Z]{26}$`)

	ErrInvalidULID = errors.New("invalid ULID")
)

func NewULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func IsULID(value string) bool {
	return ulidRegex.MatchString(strings.TrimSpace(value))
}

func ValidateULID(value string) error {
	if !IsULID(value) {
		return ErrInvalidULID
	}
	return nil
}

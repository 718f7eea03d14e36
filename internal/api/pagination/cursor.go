package pagination

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidCursor = errors.New("invalid cursor")

// CandidateCursor encodes a match score + ULID for stable candidate
// ordering (score desc, ULID asc).
type CandidateCursor struct {
	Score int
	ULID  string
}

// EncodeCandidateCursor encodes the cursor as base64(score:ULID).
func EncodeCandidateCursor(score int, ulid string) string {
	value := fmt.Sprintf("%d:%s", score, strings.ToUpper(strings.TrimSpace(ulid)))
	return base64.RawURLEncoding.EncodeToString([]byte(value))
}

// DecodeCandidateCursor decodes base64(score:ULID) into a CandidateCursor.
func DecodeCandidateCursor(cursor string) (CandidateCursor, error) {
	cursor = strings.TrimSpace(cursor)
	if cursor == "" {
		return CandidateCursor{}, ErrInvalidCursor
	}
	decoded, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return CandidateCursor{}, ErrInvalidCursor
	}
	parts := strings.SplitN(string(decoded), ":", 2)
	if len(parts) != 2 {
		return CandidateCursor{}, ErrInvalidCursor
	}
	score, err := strconv.Atoi(parts[0])
	if err != nil || score < 0 || score > 100 {
		return CandidateCursor{}, ErrInvalidCursor
	}
	if strings.TrimSpace(parts[1]) == "" {
		return CandidateCursor{}, ErrInvalidCursor
	}
	return CandidateCursor{Score: score, ULID: strings.ToUpper(strings.TrimSpace(parts[1]))}, nil
}

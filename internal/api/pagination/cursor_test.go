package pagination

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCandidateCursorRoundTrip(t *testing.T) {
	encoded := EncodeCandidateCursor(85, "01jmxw5s8gqzj4b2n6p8r0t2v4")

	decoded, err := DecodeCandidateCursor(encoded)
	require.NoError(t, err)
	require.Equal(t, 85, decoded.Score)
	require.Equal(t, "01JMXW5S8GQZJ4B2N6P8R0T2V4", decoded.ULID)
}

func TestDecodeCandidateCursorRejectsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		cursor string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"not base64", "!!!not-base64!!!"},
		{"no separator", base64.RawURLEncoding.EncodeToString([]byte("85"))},
		{"score not a number", base64.RawURLEncoding.EncodeToString([]byte("abc:01JMXW5S8GQZJ4B2N6P8R0T2V4"))},
		{"score negative", base64.RawURLEncoding.EncodeToString([]byte("-1:01JMXW5S8GQZJ4B2N6P8R0T2V4"))},
		{"score over 100", base64.RawURLEncoding.EncodeToString([]byte("101:01JMXW5S8GQZJ4B2N6P8R0T2V4"))},
		{"empty ulid", base64.RawURLEncoding.EncodeToString([]byte("85:"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCandidateCursor(tt.cursor)
			require.ErrorIs(t, err, ErrInvalidCursor)
		})
	}
}

func TestDecodeCandidateCursorBoundaryScores(t *testing.T) {
	for _, score := range []int{0, 100} {
		decoded, err := DecodeCandidateCursor(EncodeCandidateCursor(score, "01JMXW5S8GQZJ4B2N6P8R0T2V4"))
		require.NoError(t, err)
		require.Equal(t, score, decoded.Score)
	}
}

package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCursor_RoundTrip(t *testing.T) {
	cur := Cursor{CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), ID: 42}

	s, err := EncodeCursor(cur)
	require.NoError(t, err)
	require.NotEmpty(t, s)

	got, err := DecodeCursor(s)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.True(t, got.CreatedAt.Equal(cur.CreatedAt))
	require.Equal(t, int64(42), got.ID)
}

func TestDecodeCursor_Empty(t *testing.T) {
	got, err := DecodeCursor("")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestDecodeCursor_Garbage(t *testing.T) {
	for _, s := range []string{"%%%", "bm90LWpzb24"} {
		_, err := DecodeCursor(s)
		require.ErrorIs(t, err, ErrInvalidCursor, "cursor %q", s)
	}
}

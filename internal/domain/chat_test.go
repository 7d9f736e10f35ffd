package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoomID_RoundTrip(t *testing.T) {
	roomID := RoomID(42)
	require.Equal(t, "chat_42", roomID)

	chatID, ok := ChatID(roomID)
	require.True(t, ok)
	require.Equal(t, int64(42), chatID)
}

func TestChatID_AcceptsBareNumber(t *testing.T) {
	chatID, ok := ChatID("7")
	require.True(t, ok)
	require.Equal(t, int64(7), chatID)
}

func TestChatID_Invalid(t *testing.T) {
	for _, s := range []string{"", "chat_", "chat_x", "chat_-1", "chat_0", "abc"} {
		_, ok := ChatID(s)
		require.False(t, ok, "roomID %q", s)
	}
}

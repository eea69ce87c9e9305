package common

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/palemoky/spymaster/internal/game/board"
)

func TestTruncateName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		maxWidth int
		expected string
	}{
		{"short name within limit", "Alice", 10, "Alice"},
		{"exact width", "HelloWorld", 10, "HelloWorld"},
		{"long name truncated", "Sneaky Penguin 42", 10, "Sneaky Pe…"},
		{"wide chars count double", "神秘的特工", 7, "神秘的…"},
		{"wide chars fit exactly", "神秘的特工", 10, "神秘的特工"},
		{"empty name", "", 10, ""},
		{"single column", "Hello", 1, "…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, TruncateName(tt.input, tt.maxWidth))
		})
	}
}

func TestTeamName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "红队", TeamName(board.TeamRed))
	assert.Equal(t, "蓝队", TeamName(board.TeamBlue))
	assert.Equal(t, "观战", TeamName(board.TeamSpectator))
}

package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/spymaster/internal/game/board"
	"github.com/palemoky/spymaster/internal/game/room"
	"github.com/palemoky/spymaster/internal/ui/model"
)

func TestParseClue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		word    string
		number  int
		wantErr error
	}{
		{"simple", "ocean 2", "ocean", 2, nil},
		{"extra spaces", "  ocean   0 ", "ocean", 0, nil},
		{"multi word", "ice cream 3", "ice cream", 3, nil},
		{"missing number", "ocean", "", 0, errClueFormat},
		{"not a number", "ocean two", "", 0, errClueFormat},
		{"too large", "ocean 10", "", 0, errClueNumber},
		{"negative", "ocean -1", "", 0, errClueNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			word, n, err := ParseClue(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.word, word)
			assert.Equal(t, tt.number, n)
		})
	}
}

func TestMoveCursor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		cursor int
		key    string
		want   int
	}{
		{"right", 0, "right", 1},
		{"right wraps in row", 4, "right", 0},
		{"left wraps in row", 5, "left", 9},
		{"down", 2, "down", 7},
		{"down wraps", 22, "down", 2},
		{"up wraps", 1, "up", 21},
		{"unknown key", 12, "x", 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, MoveCursor(tt.cursor, tt.key, board.Size))
		})
	}

	assert.Equal(t, 0, MoveCursor(3, "right", 0))
}

func TestToggleRole(t *testing.T) {
	t.Parallel()

	assert.Equal(t, room.RoleSpymaster, ToggleRole(room.RoleOperative))
	assert.Equal(t, room.RoleOperative, ToggleRole(room.RoleSpymaster))
}

func TestCanGiveClue(t *testing.T) {
	t.Parallel()

	r := room.Initial()
	r.Status = room.StatusPlaying
	r.CurrentTurn = board.TeamBlue
	r.Players = map[string]room.Player{
		"blue-spy": {ID: "blue-spy", Team: board.TeamBlue, Role: room.RoleSpymaster},
		"red-spy":  {ID: "red-spy", Team: board.TeamRed, Role: room.RoleSpymaster},
		"blue-op":  {ID: "blue-op", Team: board.TeamBlue, Role: room.RoleOperative},
	}

	assert.True(t, CanGiveClue(r, "blue-spy"))
	assert.False(t, CanGiveClue(r, "red-spy"))
	assert.False(t, CanGiveClue(r, "blue-op"))
	assert.False(t, CanGiveClue(r, "nobody"))

	remaining := 1
	r.GuessesRemaining = &remaining
	assert.False(t, CanGiveClue(r, "blue-spy"))
}

// helpModel implements only the parts of model.Model the help toggle reads.
type helpModel struct {
	model.Model
	focused model.Field
	help    bool
}

func (h *helpModel) Screen() model.Screen  { return model.ScreenRoom }
func (h *helpModel) Focused() model.Field  { return h.focused }
func (h *helpModel) ShowingHelp() bool     { return h.help }
func (h *helpModel) SetShowingHelp(b bool) { h.help = b }

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestHandleKeyPress_HelpToggle(t *testing.T) {
	t.Parallel()

	for _, key := range []rune{'?', 'h', 'H'} {
		m := &helpModel{focused: model.FieldNone}

		handled, cmd := HandleKeyPress(m, runeKey(key))
		assert.True(t, handled)
		assert.Nil(t, cmd)
		assert.True(t, m.ShowingHelp(), "key %q opens the rules", key)

		handled, _ = HandleKeyPress(m, runeKey('e'))
		assert.True(t, handled)
		assert.False(t, m.ShowingHelp(), "any key closes the rules")
	}
}

func TestHandleKeyPress_HelpKeyTypedIntoClue(t *testing.T) {
	t.Parallel()

	m := &helpModel{focused: model.FieldClue}

	handled, _ := HandleKeyPress(m, runeKey('?'))
	assert.False(t, handled, "the key goes to the clue input")
	assert.False(t, m.ShowingHelp())
}

func TestIsHelpKey(t *testing.T) {
	t.Parallel()

	assert.True(t, IsHelpKey(runeKey('?')))
	assert.True(t, IsHelpKey(runeKey('H')))
	assert.False(t, IsHelpKey(runeKey('c')))
	assert.False(t, IsHelpKey(tea.KeyMsg{Type: tea.KeyEnter}))
}

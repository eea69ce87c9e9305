package sound

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/palemoky/spymaster/internal/game/board"
	"github.com/palemoky/spymaster/internal/game/room"
)

func playing(turn board.Team, cards ...board.Card) room.Room {
	r := room.Initial()
	r.Status = room.StatusPlaying
	r.CurrentTurn = turn
	r.Board = cards
	return r
}

func TestCuesFor(t *testing.T) {
	t.Parallel()

	red := board.Card{ID: 0, Word: "APPLE", Type: board.CardRed}
	blue := board.Card{ID: 1, Word: "BANK", Type: board.CardBlue}
	assassin := board.Card{ID: 2, Word: "NIGHT", Type: board.CardAssassin}
	revealed := func(c board.Card) board.Card {
		c.Revealed = true
		return c
	}

	withClue := playing(board.TeamRed, red, blue, assassin)
	withClue.Clues = []room.Clue{{Word: "fruit", Number: 1, Team: board.TeamRed}}

	redWins := playing(board.TeamBlue, revealed(red), blue, assassin)
	redWins.Winner = board.TeamRed

	blueWins := playing(board.TeamBlue, red, blue, revealed(assassin))
	blueWins.Winner = board.TeamBlue

	tests := []struct {
		name string
		prev room.Room
		next room.Room
		want []Cue
	}{
		{"game starts", room.Initial(), playing(board.TeamRed, red, blue, assassin), []Cue{CueStart}},
		{"clue given", playing(board.TeamRed, red, blue, assassin), withClue, []Cue{CueClue}},
		{"correct guess", playing(board.TeamRed, red, blue, assassin), playing(board.TeamRed, revealed(red), blue, assassin), []Cue{CueCorrect}},
		{"wrong guess", playing(board.TeamRed, red, blue, assassin), playing(board.TeamBlue, red, revealed(blue), assassin), []Cue{CueWrong}},
		{"winning guess", playing(board.TeamRed, red, blue, assassin), redWins, []Cue{CueCorrect, CueWin}},
		{"assassin", playing(board.TeamRed, red, blue, assassin), blueWins, []Cue{CueAssassin, CueWin}},
		{"back to lobby", redWins, room.Initial(), nil},
		{"nothing changed", withClue, withClue, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CuesFor(tt.prev, tt.next))
		})
	}
}

// Package sound plays short cues for what just happened in the room.
package sound

import (
	"github.com/palemoky/spymaster/internal/game/board"
	"github.com/palemoky/spymaster/internal/game/room"
)

// DefaultDir 默认音效目录
const DefaultDir = "assets/sounds"

// Cue 音效名，对应音效目录下的文件名（不含扩展名）
type Cue string

const (
	CueStart    Cue = "start"
	CueClue     Cue = "clue"
	CueCorrect  Cue = "correct"
	CueWrong    Cue = "wrong"
	CueAssassin Cue = "assassin"
	CueWin      Cue = "win"
)

// CuesFor 比较前后两个快照，返回应播放的音效
func CuesFor(prev, next room.Room) []Cue {
	var cues []Cue
	if prev.Status == room.StatusLobby && next.Status == room.StatusPlaying {
		return append(cues, CueStart)
	}
	if next.Status != room.StatusPlaying || len(prev.Board) != len(next.Board) {
		return nil
	}

	if len(next.Clues) > len(prev.Clues) {
		cues = append(cues, CueClue)
	}
	for i, c := range next.Board {
		if !c.Revealed || prev.Board[i].Revealed {
			continue
		}
		switch {
		case c.Type == board.CardAssassin:
			cues = append(cues, CueAssassin)
		case c.Type.Team() == prev.CurrentTurn:
			cues = append(cues, CueCorrect)
		default:
			cues = append(cues, CueWrong)
		}
	}
	if !prev.HasWinner() && next.HasWinner() {
		cues = append(cues, CueWin)
	}
	return cues
}

package room

import (
	"fmt"

	"github.com/palemoky/spymaster/internal/docstore"
	"github.com/palemoky/spymaster/internal/game/board"
)

// wireScores 允许区分缺失的分数字段
type wireScores struct {
	Red  *int `json:"red"`
	Blue *int `json:"blue"`
}

// wireRoom 存储中的原始形态，任何字段都可能缺失
type wireRoom struct {
	Board            board.Board       `json:"board"`
	CurrentTurn      board.Team        `json:"currentTurn"`
	Scores           *wireScores       `json:"scores"`
	Winner           board.Team        `json:"winner"`
	Status           Status            `json:"status"`
	Players          map[string]Player `json:"players"`
	HostID           string            `json:"hostId"`
	Clues            []Clue            `json:"clues"`
	GuessesRemaining *int              `json:"guessesRemaining"`
	LastUpdated      int64             `json:"lastUpdated"`
}

// Decode 将存储文档规范化为完整的房间快照。
// nil 文档表示房间不存在，返回初始状态。
func Decode(doc docstore.Document) (Room, error) {
	r := Initial()
	if len(doc) == 0 {
		return r, nil
	}

	var w wireRoom
	if err := docstore.Unmarshal(doc, &w); err != nil {
		return r, fmt.Errorf("解析房间文档失败: %w", err)
	}

	r.exists = true
	r.LastUpdated = w.LastUpdated
	r.HostID = w.HostID
	r.GuessesRemaining = w.GuessesRemaining

	if w.Board != nil {
		r.Board = w.Board
	}
	if w.Clues != nil {
		r.Clues = w.Clues
	}
	if w.CurrentTurn.IsPlaying() {
		r.CurrentTurn = w.CurrentTurn
	}
	if w.Winner.IsPlaying() {
		r.Winner = w.Winner
	}
	if w.Status == StatusPlaying {
		r.Status = StatusPlaying
	}
	if w.Scores != nil {
		if w.Scores.Red != nil {
			r.Scores.Red = *w.Scores.Red
		}
		if w.Scores.Blue != nil {
			r.Scores.Blue = *w.Scores.Blue
		}
	}

	for id, p := range w.Players {
		p.ID = id
		if !p.Team.Valid() {
			p.Team = board.TeamSpectator
		}
		if !p.Role.Valid() {
			p.Role = RoleOperative
		}
		p.IsHost = r.IsHost(id)
		r.Players[id] = p
	}

	return r, nil
}

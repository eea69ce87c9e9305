// Package room is the shared room document: its typed view, the phase it is
// in, and the transitions players may apply to it.
package room

import (
	"github.com/palemoky/spymaster/internal/docstore"
	"github.com/palemoky/spymaster/internal/game/board"
)

// Status 房间状态
type Status string

const (
	StatusLobby   Status = "lobby"
	StatusPlaying Status = "playing"
	// StatusFinished 仅用于展示，存储中的状态保持 playing，由 winner 推导
	StatusFinished Status = "finished"
)

// Role 玩家角色
type Role string

const (
	RoleSpymaster Role = "spymaster"
	RoleOperative Role = "operative"
)

// Valid 是否为合法角色
func (r Role) Valid() bool {
	return r == RoleSpymaster || r == RoleOperative
}

// 文档字段路径
const (
	FieldBoard            = "board"
	FieldCurrentTurn      = "currentTurn"
	FieldScores           = "scores"
	FieldWinner           = "winner"
	FieldStatus           = "status"
	FieldPlayers          = "players"
	FieldHostID           = "hostId"
	FieldClues            = "clues"
	FieldGuessesRemaining = "guessesRemaining"
	FieldLastUpdated      = "lastUpdated"

	fieldTeam = "team"
	fieldRole = "role"
)

// PlayerPath 玩家记录路径
func PlayerPath(id string) string {
	return docstore.JoinPath(FieldPlayers, id)
}

// ScorePath 阵营剩余卡牌数路径
func ScorePath(t board.Team) string {
	return docstore.JoinPath(FieldScores, t.String())
}

// Player 房间中的玩家
type Player struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Team     board.Team `json:"team"`
	Role     Role       `json:"role"`
	IsHost   bool       `json:"isHost"`
	JoinedAt int64      `json:"joinedAt"` // 毫秒时间戳
}

// Scores 各阵营尚未翻开的卡牌数
type Scores struct {
	Red  int `json:"red"`
	Blue int `json:"blue"`
}

// Of 返回阵营的分数
func (s Scores) Of(t board.Team) int {
	switch t {
	case board.TeamRed:
		return s.Red
	case board.TeamBlue:
		return s.Blue
	default:
		return 0
	}
}

// InitialScores 开局分数：先手 9，后手 8
func InitialScores(startingTeam board.Team) Scores {
	if startingTeam == board.TeamBlue {
		return Scores{Red: board.OtherTeamCards, Blue: board.StartingTeamCards}
	}
	return Scores{Red: board.StartingTeamCards, Blue: board.OtherTeamCards}
}

// Clue 线索，只追加不修改
type Clue struct {
	Word      string     `json:"word"`
	Number    int        `json:"number"`
	Team      board.Team `json:"team"`
	Timestamp int64      `json:"timestamp"`
}

// Room 规范化后的房间快照，所有字段都已填充默认值
type Room struct {
	Board            board.Board       `json:"board"`
	CurrentTurn      board.Team        `json:"currentTurn"`
	Scores           Scores            `json:"scores"`
	Winner           board.Team        `json:"winner,omitempty"` // 空表示尚无胜者
	Status           Status            `json:"status"`
	Players          map[string]Player `json:"players"`
	HostID           string            `json:"hostId,omitempty"`
	Clues            []Clue            `json:"clues"`
	GuessesRemaining *int              `json:"guessesRemaining,omitempty"`
	LastUpdated      int64             `json:"lastUpdated"`

	exists bool
}

// Initial 空房间的初始状态
func Initial() Room {
	return Room{
		Board:       board.Board{},
		CurrentTurn: board.TeamRed,
		Scores:      InitialScores(board.TeamRed),
		Status:      StatusLobby,
		Players:     map[string]Player{},
		Clues:       []Clue{},
	}
}

// Exists 存储中是否有该房间
func (r Room) Exists() bool { return r.exists }

// Player 查找玩家
func (r Room) Player(id string) (Player, bool) {
	p, ok := r.Players[id]
	return p, ok
}

// IsHost 是否为房主
func (r Room) IsHost(id string) bool {
	return id != "" && r.HostID == id
}

// HasWinner 是否已分出胜负
func (r Room) HasWinner() bool {
	return r.Winner.IsPlaying()
}

// DisplayStatus 展示用状态，有胜者时为 finished
func (r Room) DisplayStatus() Status {
	if r.Status == StatusPlaying && r.HasWinner() {
		return StatusFinished
	}
	return r.Status
}

// Document 编码为扁平文档
func (r Room) Document() (docstore.Document, error) {
	return docstore.Flatten("", r)
}

package room

import (
	"slices"
	"strings"
	"time"

	"github.com/palemoky/spymaster/internal/docstore"
	"github.com/palemoky/spymaster/internal/game/board"
)

// MaxClueNumber 线索数字上限
const MaxClueNumber = 9

// PlayerChanges 玩家可修改的字段，nil 表示不修改
type PlayerChanges struct {
	Team *board.Team
	Role *Role
}

// Machine 房间状态机。
// 每个迁移读取当前快照，返回需要写入的局部更新；前置条件不满足时返回 false，调用方应静默忽略。
type Machine struct {
	gen *board.Generator
	now func() time.Time
}

// NewMachine 创建状态机
func NewMachine(gen *board.Generator) *Machine {
	return &Machine{gen: gen, now: time.Now}
}

func (m *Machine) stamp() int64 {
	return m.now().UnixMilli()
}

// Join 加入房间。房间不存在时一并写入初始字段；首个加入者成为房主。
// 重复加入会覆盖自己的玩家记录，总是以观战者身份加入。
func (m *Machine) Join(r Room, selfID, name string) (Update, bool) {
	if selfID == "" {
		return Update{}, false
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = RandomName()
	}

	now := m.stamp()
	u := newUpdate()
	if !r.Exists() {
		fresh := Initial()
		u.set(FieldBoard, fresh.Board)
		u.set(FieldCurrentTurn, fresh.CurrentTurn)
		u.set(FieldScores, fresh.Scores)
		u.set(FieldStatus, fresh.Status)
		u.set(FieldClues, fresh.Clues)
		u.set(FieldLastUpdated, now)
	}

	hostID := r.HostID
	if hostID == "" {
		hostID = selfID
		u.set(FieldHostID, hostID)
	}

	u.set(PlayerPath(selfID), Player{
		ID:       selfID,
		Name:     name,
		Team:     board.TeamSpectator,
		Role:     RoleOperative,
		IsHost:   hostID == selfID,
		JoinedAt: now,
	})
	return u, true
}

// UpdatePlayer 修改自己的阵营或角色，只写自己的字段
func (m *Machine) UpdatePlayer(r Room, selfID string, changes PlayerChanges) (Update, bool) {
	if _, ok := r.Player(selfID); !ok {
		return Update{}, false
	}
	if changes.Team == nil && changes.Role == nil {
		return Update{}, false
	}

	u := newUpdate()
	if changes.Team != nil {
		if !changes.Team.Valid() {
			return Update{}, false
		}
		u.set(docstore.JoinPath(PlayerPath(selfID), fieldTeam), *changes.Team)
	}
	if changes.Role != nil {
		if !changes.Role.Valid() {
			return Update{}, false
		}
		u.set(docstore.JoinPath(PlayerPath(selfID), fieldRole), *changes.Role)
	}
	return u, true
}

// StartGame 房主在大厅中开局：随机先手，生成新棋盘并重置本局字段，不影响玩家
func (m *Machine) StartGame(r Room, selfID string) (Update, bool) {
	if !r.IsHost(selfID) || r.Status != StatusLobby {
		return Update{}, false
	}

	starting := m.gen.StartingTeam()
	u := newUpdate()
	u.set(FieldBoard, m.gen.Generate(starting))
	u.set(FieldCurrentTurn, starting)
	u.set(FieldScores, InitialScores(starting))
	u.set(FieldStatus, StatusPlaying)
	u.clear(FieldWinner)
	u.clear(FieldClues)
	u.clear(FieldGuessesRemaining)
	u.set(FieldLastUpdated, m.stamp())
	return u, true
}

// GiveClue 当前回合阵营的间谍首领给出线索，获得 number+1 次猜测
func (m *Machine) GiveClue(r Room, selfID, word string, number int) (Update, bool) {
	phase, ok := r.Phase().(AwaitingClue)
	if !ok {
		return Update{}, false
	}
	p, ok := r.Player(selfID)
	if !ok || p.Team != phase.Team || p.Role != RoleSpymaster {
		return Update{}, false
	}
	word = strings.TrimSpace(word)
	if word == "" || number < 0 || number > MaxClueNumber {
		return Update{}, false
	}

	now := m.stamp()
	clues := append(slices.Clone(r.Clues), Clue{
		Word:      word,
		Number:    number,
		Team:      phase.Team,
		Timestamp: now,
	})

	u := newUpdate()
	u.set(FieldClues, clues)
	u.set(FieldGuessesRemaining, number+1)
	u.set(FieldLastUpdated, now)
	return u, true
}

// RevealCard 当前回合阵营的特工翻开一张牌。
// 翻错立即换边；翻对消耗一次猜测，用完换边。分出胜负时仍执行换边记录。
func (m *Machine) RevealCard(r Room, selfID string, cardID int) (Update, bool) {
	phase, ok := r.Phase().(Guessing)
	if !ok {
		return Update{}, false
	}
	p, ok := r.Player(selfID)
	if !ok || p.Role == RoleSpymaster || p.Team != phase.Team {
		return Update{}, false
	}
	next, card, ok := r.Board.Reveal(cardID)
	if !ok {
		return Update{}, false
	}

	u := newUpdate()
	u.set(FieldBoard, next)

	if owner := card.Type.Team(); owner.IsPlaying() {
		u.set(ScorePath(owner), r.Scores.Of(owner)-1)
	}
	if winner, ok := board.CheckWinner(next, r.CurrentTurn); ok {
		u.set(FieldWinner, winner)
	}

	remaining := phase.Remaining - 1
	if card.Type != board.CardTypeOf(r.CurrentTurn) || remaining <= 0 {
		u.set(FieldCurrentTurn, r.CurrentTurn.Other())
		u.clear(FieldGuessesRemaining)
	} else {
		u.set(FieldGuessesRemaining, remaining)
	}

	u.set(FieldLastUpdated, m.stamp())
	return u, true
}

// EndTurn 当前回合阵营主动结束回合，放弃剩余猜测
func (m *Machine) EndTurn(r Room, selfID string) (Update, bool) {
	if r.Status != StatusPlaying || r.HasWinner() {
		return Update{}, false
	}
	p, ok := r.Player(selfID)
	if !ok || p.Team != r.CurrentTurn {
		return Update{}, false
	}

	u := newUpdate()
	u.set(FieldCurrentTurn, r.CurrentTurn.Other())
	u.clear(FieldGuessesRemaining)
	u.set(FieldLastUpdated, m.stamp())
	return u, true
}

// ResetToLobby 房主回到大厅。棋盘、分数和线索保留到下次开局覆盖。
func (m *Machine) ResetToLobby(r Room, selfID string) (Update, bool) {
	if !r.IsHost(selfID) {
		return Update{}, false
	}

	u := newUpdate()
	u.set(FieldStatus, StatusLobby)
	u.clear(FieldWinner)
	u.set(FieldLastUpdated, m.stamp())
	return u, true
}

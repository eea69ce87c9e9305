// Package board holds the 25-card grid: its generation and the win rule.
package board

// Size 棋盘卡牌数量（5x5）
const Size = 25

// 各类卡牌数量
const (
	StartingTeamCards = 9
	OtherTeamCards    = 8
	NeutralCards      = 7
	AssassinCards     = 1
)

// Team 阵营
type Team string

const (
	TeamRed       Team = "red"
	TeamBlue      Team = "blue"
	TeamSpectator Team = "spectator"
)

// Other 返回对方阵营，观战者没有对方
func (t Team) Other() Team {
	switch t {
	case TeamRed:
		return TeamBlue
	case TeamBlue:
		return TeamRed
	default:
		return t
	}
}

// IsPlaying 是否为参战阵营（红或蓝）
func (t Team) IsPlaying() bool {
	return t == TeamRed || t == TeamBlue
}

// Valid 是否为合法阵营值
func (t Team) Valid() bool {
	return t.IsPlaying() || t == TeamSpectator
}

func (t Team) String() string { return string(t) }

// CardType 卡牌身份
type CardType string

const (
	CardRed      CardType = "red"
	CardBlue     CardType = "blue"
	CardNeutral  CardType = "neutral"
	CardAssassin CardType = "assassin"
)

// Team 返回卡牌所属阵营，中立和刺客返回空
func (c CardType) Team() Team {
	switch c {
	case CardRed:
		return TeamRed
	case CardBlue:
		return TeamBlue
	default:
		return ""
	}
}

// CardTypeOf 阵营对应的卡牌身份
func CardTypeOf(t Team) CardType {
	switch t {
	case TeamRed:
		return CardRed
	case TeamBlue:
		return CardBlue
	default:
		return ""
	}
}

// Card 一张卡牌，除 Revealed 外创建后不可变
type Card struct {
	ID       int      `json:"id"`
	Word     string   `json:"word"`
	Type     CardType `json:"type"`
	Revealed bool     `json:"revealed"`
}

// Board 有序的卡牌序列
type Board []Card

// Index 按 ID 查找卡牌下标
func (b Board) Index(id int) (int, bool) {
	for i, c := range b {
		if c.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Count 统计某类卡牌数量
func (b Board) Count(t CardType) int {
	n := 0
	for _, c := range b {
		if c.Type == t {
			n++
		}
	}
	return n
}

// Reveal 返回翻开指定卡牌后的新棋盘，原棋盘不变
func (b Board) Reveal(id int) (Board, Card, bool) {
	i, ok := b.Index(id)
	if !ok || b[i].Revealed {
		return b, Card{}, false
	}
	next := make(Board, len(b))
	copy(next, b)
	next[i].Revealed = true
	return next, next[i], true
}

package board

import (
	"math/rand/v2"
	"sync"
)

// Generator 棋盘生成器，持有词库和随机源
type Generator struct {
	words WordList
	rng   *rand.Rand
	mu    sync.Mutex
}

// NewGenerator 创建生成器，rng 为 nil 时使用随机种子
func NewGenerator(words WordList, rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{words: words, rng: rng}
}

// StartingTeam 等概率选出先手阵营
func (g *Generator) StartingTeam() Team {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.rng.IntN(2) == 0 {
		return TeamRed
	}
	return TeamBlue
}

// Generate 生成新棋盘：先手 9 张，后手 8 张，中立 7 张，刺客 1 张。
// 选词与身份分配使用两次独立的洗牌。
func (g *Generator) Generate(startingTeam Team) Board {
	g.mu.Lock()
	defer g.mu.Unlock()

	words := g.pickWords()
	types := g.shuffledTypes(startingTeam)

	b := make(Board, Size)
	for i := range b {
		b[i] = Card{ID: i, Word: words[i], Type: types[i]}
	}
	return b
}

// pickWords 部分 Fisher–Yates，无放回地抽取 Size 个词
func (g *Generator) pickWords() []string {
	pool := make([]string, len(g.words))
	copy(pool, g.words)
	for i := 0; i < Size; i++ {
		j := i + g.rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:Size]
}

func (g *Generator) shuffledTypes(startingTeam Team) []CardType {
	first := CardTypeOf(startingTeam)
	second := CardTypeOf(startingTeam.Other())

	types := make([]CardType, 0, Size)
	types = appendN(types, first, StartingTeamCards)
	types = appendN(types, second, OtherTeamCards)
	types = appendN(types, CardNeutral, NeutralCards)
	types = appendN(types, CardAssassin, AssassinCards)

	for i := len(types) - 1; i > 0; i-- {
		j := g.rng.IntN(i + 1)
		types[i], types[j] = types[j], types[i]
	}
	return types
}

func appendN(dst []CardType, t CardType, n int) []CardType {
	for range n {
		dst = append(dst, t)
	}
	return dst
}

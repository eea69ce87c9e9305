package board

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenerator(t *testing.T, seed uint64) *Generator {
	t.Helper()
	return NewGenerator(DefaultWords(), rand.New(rand.NewPCG(seed, seed+1)))
}

func TestGenerate_Distribution(t *testing.T) {
	t.Parallel()

	for _, team := range []Team{TeamRed, TeamBlue} {
		for seed := uint64(0); seed < 20; seed++ {
			b := newTestGenerator(t, seed).Generate(team)

			require.Len(t, b, Size)
			assert.Equal(t, StartingTeamCards, b.Count(CardTypeOf(team)))
			assert.Equal(t, OtherTeamCards, b.Count(CardTypeOf(team.Other())))
			assert.Equal(t, NeutralCards, b.Count(CardNeutral))
			assert.Equal(t, AssassinCards, b.Count(CardAssassin))

			ids := make(map[int]bool)
			words := make(map[string]bool)
			for _, c := range b {
				assert.False(t, c.Revealed)
				ids[c.ID] = true
				words[c.Word] = true
			}
			assert.Len(t, ids, Size, "ids must be unique")
			assert.Len(t, words, Size, "words must be unique")
		}
	}
}

func TestGenerate_IDsAreIndexes(t *testing.T) {
	t.Parallel()

	b := newTestGenerator(t, 7).Generate(TeamBlue)
	for i, c := range b {
		assert.Equal(t, i, c.ID)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	t.Parallel()

	a := newTestGenerator(t, 42).Generate(TeamRed)
	b := newTestGenerator(t, 42).Generate(TeamRed)
	assert.Equal(t, a, b)

	c := newTestGenerator(t, 43).Generate(TeamRed)
	assert.NotEqual(t, a, c)
}

func TestStartingTeam_BothSidesOccur(t *testing.T) {
	t.Parallel()

	g := newTestGenerator(t, 1)
	seen := map[Team]int{}
	for range 200 {
		seen[g.StartingTeam()]++
	}
	assert.Positive(t, seen[TeamRed])
	assert.Positive(t, seen[TeamBlue])
	assert.Len(t, seen, 2)
}

func TestNewWordList(t *testing.T) {
	t.Parallel()

	_, err := NewWordList([]string{"a", "b", "A"})
	assert.ErrorIs(t, err, ErrNotEnoughWords)

	words := make([]string, 0, 30)
	for i := range 30 {
		words = append(words, string(rune('a'+i%26))+string(rune('a'+i/26)))
	}
	words = append(words, "  # comment", "", "AA")
	list, err := NewWordList(words)
	require.NoError(t, err)
	assert.Len(t, list, 30)
	assert.Equal(t, "AA", list[0])
}

func TestDefaultWords(t *testing.T) {
	t.Parallel()

	list := DefaultWords()
	assert.Greater(t, len(list), 10*Size)
	assert.Contains(t, list, "NEW YORK")
}

func TestBoard_Reveal(t *testing.T) {
	t.Parallel()

	b := Board{{ID: 3, Word: "X", Type: CardRed}}
	next, card, ok := b.Reveal(3)
	require.True(t, ok)
	assert.True(t, card.Revealed)
	assert.True(t, next[0].Revealed)
	assert.False(t, b[0].Revealed, "original board must not change")

	_, _, ok = next.Reveal(3)
	assert.False(t, ok, "already revealed")
	_, _, ok = b.Reveal(99)
	assert.False(t, ok, "unknown id")
}

func TestTeam_Other(t *testing.T) {
	t.Parallel()

	assert.Equal(t, TeamBlue, TeamRed.Other())
	assert.Equal(t, TeamRed, TeamBlue.Other())
	assert.Equal(t, TeamSpectator, TeamSpectator.Other())
}

package docstore

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/spymaster/internal/apperrors"
)

type testPlayer struct {
	Name string `json:"name"`
	Team string `json:"team"`
}

type testDoc struct {
	Status  string                `json:"status"`
	Scores  map[string]int        `json:"scores"`
	Players map[string]testPlayer `json:"players"`
	Board   []int                 `json:"board"`
	Guesses *int                  `json:"guesses"`
}

func TestFlatten(t *testing.T) {
	t.Parallel()

	doc, err := Flatten("", testDoc{
		Status:  "lobby",
		Scores:  map[string]int{"red": 9, "blue": 8},
		Players: map[string]testPlayer{"p1": {Name: "Ann", Team: "red"}},
		Board:   []int{1, 2},
	})
	require.NoError(t, err)

	assert.Equal(t, json.RawMessage(`"lobby"`), doc["status"])
	assert.Equal(t, json.RawMessage(`9`), doc["scores/red"])
	assert.Equal(t, json.RawMessage(`"Ann"`), doc["players/p1/name"])
	assert.Equal(t, json.RawMessage(`[1,2]`), doc["board"])
	assert.NotContains(t, doc, "guesses", "null is never stored")
}

func TestMerge_FieldLevel(t *testing.T) {
	t.Parallel()

	doc, err := Flatten("", testDoc{
		Status:  "lobby",
		Scores:  map[string]int{"red": 9, "blue": 8},
		Players: map[string]testPlayer{"p1": {Name: "Ann", Team: "red"}, "p2": {Name: "Bob", Team: "blue"}},
	})
	require.NoError(t, err)

	next, err := Merge(doc, Patch{
		"players/p1/team": "blue",
		"scores/red":      8,
	})
	require.NoError(t, err)

	var got testDoc
	require.NoError(t, Unmarshal(next, &got))
	assert.Equal(t, "blue", got.Players["p1"].Team)
	assert.Equal(t, "Ann", got.Players["p1"].Name, "sibling fields untouched")
	assert.Equal(t, "Bob", got.Players["p2"].Name)
	assert.Equal(t, 8, got.Scores["red"])
	assert.Equal(t, 8, got.Scores["blue"])
	assert.Equal(t, "lobby", got.Status)

	// 原文档不被修改
	assert.Equal(t, json.RawMessage(`9`), doc["scores/red"])
}

func TestMerge_ReplaceAndDeleteSubtree(t *testing.T) {
	t.Parallel()

	doc := Document{
		"players/p1/name": json.RawMessage(`"Ann"`),
		"players/p1/team": json.RawMessage(`"red"`),
		"players/p2/name": json.RawMessage(`"Bob"`),
		"winner":          json.RawMessage(`"red"`),
	}

	next, err := Merge(doc, Patch{
		"players/p1": testPlayer{Name: "Ann2"},
		"winner":     nil,
	})
	require.NoError(t, err)

	assert.Equal(t, json.RawMessage(`"Ann2"`), next["players/p1/name"])
	assert.Equal(t, json.RawMessage(`""`), next["players/p1/team"])
	assert.Contains(t, next, "players/p2/name")
	assert.NotContains(t, next, "winner")

	next, err = Merge(next, Patch{"players": nil})
	require.NoError(t, err)
	assert.Empty(t, next)
}

func TestMerge_WriteBelowLeafReplacesLeaf(t *testing.T) {
	t.Parallel()

	next, err := Merge(Document{"a": json.RawMessage(`1`)}, Patch{"a/b": 2})
	require.NoError(t, err)
	assert.Equal(t, Document{"a/b": json.RawMessage(`2`)}, next)
}

func TestCompile_InvalidPath(t *testing.T) {
	t.Parallel()

	for _, path := range []string{"", "/a", "a/", "a//b", "a b"} {
		_, err := Compile(Patch{path: 1})
		assert.ErrorIs(t, err, apperrors.ErrInvalidPath, path)
	}
}

func TestValidateRoom(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateRoom("ABCD"))
	assert.ErrorIs(t, ValidateRoom(""), apperrors.ErrInvalidRoom)
	assert.ErrorIs(t, ValidateRoom("A/B"), apperrors.ErrInvalidRoom)
	assert.ErrorIs(t, ValidateRoom("A:B"), apperrors.ErrInvalidRoom)
}

func TestUnmarshal_Empty(t *testing.T) {
	t.Parallel()

	var got testDoc
	require.NoError(t, Unmarshal(nil, &got))
	assert.Empty(t, got.Status)
	assert.Nil(t, got.Players)
}

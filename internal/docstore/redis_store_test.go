package docstore

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/spymaster/internal/testutil"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	client, mr := testutil.NewRedis(t)
	return NewRedisStore(client), mr
}

func nextEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "subscription closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestRedisStore_UpdateGetRemove(t *testing.T) {
	t.Parallel()

	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	doc, err := store.Get(ctx, "ABCD")
	require.NoError(t, err)
	assert.Nil(t, doc, "absent room")

	err = store.Update(ctx, "ABCD", Patch{
		"status":     "lobby",
		"players/p1": testPlayer{Name: "Ann", Team: "spectator"},
	})
	require.NoError(t, err)

	assert.Equal(t, `"lobby"`, mr.HGet("room:ABCD", "status"))
	assert.Equal(t, `"Ann"`, mr.HGet("room:ABCD", "players/p1/name"))

	doc, err = store.Get(ctx, "ABCD")
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage(`"spectator"`), doc["players/p1/team"])

	require.NoError(t, store.Remove(ctx, "ABCD", "players/p1"))
	doc, err = store.Get(ctx, "ABCD")
	require.NoError(t, err)
	assert.NotContains(t, doc, "players/p1/name")
	assert.Contains(t, doc, "status")

	require.NoError(t, store.Remove(ctx, "ABCD", ""))
	assert.False(t, mr.Exists("room:ABCD"))
}

func TestRedisStore_EmptyPatchIsNoop(t *testing.T) {
	t.Parallel()

	store, mr := newTestRedisStore(t)
	require.NoError(t, store.Update(context.Background(), "ABCD", Patch{}))
	assert.False(t, mr.Exists("room:ABCD"))
}

func TestRedisStore_Subscribe(t *testing.T) {
	t.Parallel()

	store, _ := newTestRedisStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := store.Subscribe(ctx, "ROOM")
	require.NoError(t, err)

	first := nextEvent(t, events)
	assert.NoError(t, first.Err)
	assert.Nil(t, first.Doc, "first event reflects the absent room")

	require.NoError(t, store.Update(ctx, "ROOM", Patch{"status": "playing"}))
	ev := nextEvent(t, events)
	assert.Equal(t, json.RawMessage(`"playing"`), ev.Doc["status"])

	require.NoError(t, store.Remove(ctx, "ROOM", ""))
	ev = nextEvent(t, events)
	assert.Nil(t, ev.Doc)

	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-events:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

// 不相交字段的并发写入互不覆盖
func TestRedisStore_DisjointConcurrentWritesMerge(t *testing.T) {
	t.Parallel()

	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, id := range []string{"a", "b", "c", "d"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			assert.NoError(t, store.Update(ctx, "ROOM", Patch{"players/" + id + "/team": "red"}))
		}(id)
	}
	wg.Wait()

	doc, err := store.Get(ctx, "ROOM")
	require.NoError(t, err)
	for _, id := range []string{"a", "b", "c", "d"} {
		assert.Contains(t, doc, "players/"+id+"/team")
	}
}

// 同一字段的并发写入后写者胜
func TestRedisStore_OverlappingWritesLastWriterWins(t *testing.T) {
	t.Parallel()

	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Update(ctx, "ROOM", Patch{"scores/red": 9, "board": []int{0, 0}}))
	// 两个客户端基于同一快照计算：各自扣减一次
	require.NoError(t, store.Update(ctx, "ROOM", Patch{"scores/red": 8, "board": []int{1, 0}}))
	require.NoError(t, store.Update(ctx, "ROOM", Patch{"scores/red": 8, "board": []int{0, 1}}))

	doc, err := store.Get(ctx, "ROOM")
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage(`8`), doc["scores/red"], "one decrement lost")
	assert.Equal(t, json.RawMessage(`[0,1]`), doc["board"], "later board wins")
}

func TestRedisStore_InvalidInput(t *testing.T) {
	t.Parallel()

	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	assert.Error(t, store.Update(ctx, "", Patch{"a": 1}))
	assert.Error(t, store.Update(ctx, "ROOM", Patch{"a//b": 1}))
	_, err := store.Subscribe(ctx, "A/B")
	assert.Error(t, err)
}

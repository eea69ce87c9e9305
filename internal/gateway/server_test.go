package gateway_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/spymaster/internal/apperrors"
	"github.com/palemoky/spymaster/internal/config"
	"github.com/palemoky/spymaster/internal/docstore"
	"github.com/palemoky/spymaster/internal/gateway"
	"github.com/palemoky/spymaster/internal/testutil"
)

type testGateway struct {
	srv   *gateway.Server
	http  *httptest.Server
	store *docstore.RedisStore
	wsURL string
}

func newTestGateway(t *testing.T, maxConns int) *testGateway {
	t.Helper()
	return newTestGatewayWith(t, func(cfg *config.Config) {
		cfg.Server.MaxConnections = maxConns
	})
}

func newTestGatewayWith(t *testing.T, configure func(*config.Config)) *testGateway {
	t.Helper()

	rdb, _ := testutil.NewRedis(t)
	cfg := config.Default()
	configure(cfg)

	srv := gateway.New(cfg, rdb)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(func() {
		srv.Shutdown()
		ts.Close()
	})

	return &testGateway{
		srv:   srv,
		http:  ts,
		store: docstore.NewRedisStore(rdb),
		wsURL: "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws",
	}
}

func (g *testGateway) dial(t *testing.T) *docstore.RemoteStore {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rs, err := docstore.Dial(ctx, g.wsURL)
	require.NoError(t, err)
	t.Cleanup(rs.Close)
	return rs
}

func nextEvent(t *testing.T, ch <-chan docstore.Event) docstore.Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "subscription closed")
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return docstore.Event{}
	}
}

func TestGateway_UpdateAndGet(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t, 10)
	rs := g.dial(t)
	ctx := context.Background()
	assert.NotEmpty(t, rs.ConnectionID())

	doc, err := rs.Get(ctx, "ABCD")
	require.NoError(t, err)
	assert.Nil(t, doc)

	require.NoError(t, rs.Update(ctx, "ABCD", docstore.Patch{
		"status":          "lobby",
		"scores":          map[string]int{"red": 9, "blue": 8},
		"players/p1/name": "Ann",
	}))

	doc, err = rs.Get(ctx, "ABCD")
	require.NoError(t, err)
	assert.JSONEq(t, `"lobby"`, string(doc["status"]))
	assert.JSONEq(t, `9`, string(doc["scores/red"]))
	assert.JSONEq(t, `"Ann"`, string(doc["players/p1/name"]))

	// 直接读 Redis 得到相同结果
	direct, err := g.store.Get(ctx, "ABCD")
	require.NoError(t, err)
	assert.Len(t, direct, len(doc))
}

func TestGateway_SubscribeSeesOtherClientsWrites(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t, 10)
	watcher := g.dial(t)
	writer := g.dial(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := watcher.Subscribe(ctx, "ROOM")
	require.NoError(t, err)

	first := nextEvent(t, events)
	assert.NoError(t, first.Err)
	assert.Nil(t, first.Doc)

	require.NoError(t, writer.Update(ctx, "ROOM", docstore.Patch{"currentTurn": "blue"}))

	ev := nextEvent(t, events)
	require.NoError(t, ev.Err)
	assert.JSONEq(t, `"blue"`, string(ev.Doc["currentTurn"]))

	_, err = watcher.Subscribe(ctx, "ROOM")
	assert.ErrorIs(t, err, apperrors.ErrAlreadySubscribed)
}

func TestGateway_OnDisconnectFiresWhenSocketCloses(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t, 10)
	ctx := context.Background()

	require.NoError(t, g.store.Update(ctx, "ROOM", docstore.Patch{
		"players/a/name": "A",
		"players/b/name": "B",
	}))

	leaver, err := docstore.Dial(ctx, g.wsURL)
	require.NoError(t, err)
	stayer := g.dial(t)

	require.NoError(t, leaver.OnDisconnect(ctx, "ROOM", "players/a"))
	require.NoError(t, stayer.OnDisconnect(ctx, "ROOM", "players/b"))
	require.NoError(t, stayer.CancelDisconnect(ctx, "ROOM", "players/b"))

	leaver.Close()

	assert.Eventually(t, func() bool {
		doc, err := g.store.Get(ctx, "ROOM")
		return err == nil && doc["players/a/name"] == nil
	}, 3*time.Second, 20*time.Millisecond)

	doc, err := g.store.Get(ctx, "ROOM")
	require.NoError(t, err)
	assert.Contains(t, doc, "players/b/name")

	// 已关闭的连接上的请求立即失败
	_, err = leaver.Get(ctx, "ROOM")
	assert.ErrorIs(t, err, apperrors.ErrConnectionLost)
}

func TestGateway_ServerErrorsMapToSentinels(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t, 10)
	rs := g.dial(t)
	ctx := context.Background()

	err := rs.Remove(ctx, "ROOM", "players//a")
	assert.ErrorIs(t, err, apperrors.ErrInvalidPath)

	err = rs.OnDisconnect(ctx, "A:B", "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidRoom)
}

func TestGateway_ServerFull(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t, 1)
	g.dial(t)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_, err := docstore.Dial(ctx, g.wsURL)
	assert.Error(t, err)
}

func TestGateway_ShutdownClosesSubscriptions(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t, 10)
	rs := g.dial(t)

	events, err := rs.Subscribe(context.Background(), "ROOM")
	require.NoError(t, err)
	nextEvent(t, events)

	g.srv.Shutdown()

	var last docstore.Event
	for ev := range events {
		last = ev
	}
	assert.ErrorIs(t, last.Err, apperrors.ErrConnectionLost)
}

func TestGateway_Health(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t, 10)
	resp, err := http.Get(g.http.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
}

func TestGateway_RoomQR(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t, 10)

	resp, err := http.Get(g.http.URL + "/rooms/ab12/qr.png")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "\x89PNG"))

	bad, err := http.Get(g.http.URL + "/rooms/TOOLONG/qr.png")
	require.NoError(t, err)
	defer bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestGateway_Reap(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t, 10)
	n := g.srv.Reap(context.Background())
	assert.Zero(t, n, "nothing registered")
}

func TestGateway_MessageRateLimit(t *testing.T) {
	t.Parallel()

	g := newTestGatewayWith(t, func(cfg *config.Config) {
		cfg.Server.MessagesPerSecond = 2
	})
	rs := g.dial(t)
	ctx := context.Background()

	limited := 0
	for range 10 {
		if _, err := rs.Get(ctx, "ROOM"); err != nil {
			require.ErrorIs(t, err, apperrors.ErrRateLimited)
			limited++
		}
	}
	assert.Positive(t, limited)
}

func TestGateway_RejectsDisallowedOrigin(t *testing.T) {
	t.Parallel()

	g := newTestGatewayWith(t, func(cfg *config.Config) {
		cfg.Server.AllowedOrigins = []string{"https://spymaster.example"}
	})

	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(g.wsURL, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()

	header.Set("Origin", "https://spymaster.example")
	conn, resp, err := websocket.DefaultDialer.Dial(g.wsURL, header)
	require.NoError(t, err)
	_ = resp.Body.Close()
	_ = conn.Close()
}

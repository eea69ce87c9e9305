package docstore

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/palemoky/spymaster/internal/apperrors"
	"github.com/palemoky/spymaster/internal/logger"
	"github.com/palemoky/spymaster/internal/protocol"
	"github.com/palemoky/spymaster/internal/protocol/codec"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	handshakeTimeout = 10 * time.Second
	sendQueue        = 256
)

// RemoteStore 通过 WebSocket 网关访问文档存储。
// 连接断开后所有请求返回 ErrConnectionLost，订阅收到一次错误事件后关闭；不自动重连。
type RemoteStore struct {
	url    string
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	connID string

	nextID  atomic.Uint64
	latency atomic.Int64

	mu      sync.Mutex
	closed  bool
	pending map[uint64]chan *protocol.Message
	subs    map[string]chan Event
	once    sync.Once
}

var _ Client = (*RemoteStore)(nil)

// Dial 连接网关并等待 connected 消息
func Dial(ctx context.Context, url string) (*RemoteStore, error) {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrConnectionLost, err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	_, data, err := conn.ReadMessage()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: %v", apperrors.ErrConnectionLost, err)
	}
	msg, err := codec.Decode(data)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if msg.Type == protocol.MsgError {
		_ = conn.Close()
		return nil, remoteError(msg)
	}
	if msg.Type != protocol.MsgConnected {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: unexpected %s", apperrors.ErrInvalidMsg, msg.Type)
	}
	connected, err := codec.ParsePayload[protocol.ConnectedPayload](msg)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	rs := &RemoteStore{
		url:     url,
		conn:    conn,
		send:    make(chan []byte, sendQueue),
		done:    make(chan struct{}),
		connID:  connected.ConnectionID,
		pending: make(map[uint64]chan *protocol.Message),
		subs:    make(map[string]chan Event),
	}

	go rs.readPump()
	go rs.writePump()

	return rs, nil
}

// ConnectionID 网关分配的连接 ID
func (rs *RemoteStore) ConnectionID() string { return rs.connID }

// Latency 最近一次 Ping 的往返延迟（毫秒）
func (rs *RemoteStore) Latency() int64 { return rs.latency.Load() }

// Done 连接断开时关闭
func (rs *RemoteStore) Done() <-chan struct{} { return rs.done }

func (rs *RemoteStore) Get(ctx context.Context, room string) (Document, error) {
	if err := ValidateRoom(room); err != nil {
		return nil, err
	}
	res, err := rs.request(ctx, protocol.MsgGet, protocol.RoomPayload{Room: room})
	if err != nil {
		return nil, err
	}
	if !res.Exists {
		return nil, nil
	}
	return Document(res.Document), nil
}

func (rs *RemoteStore) Update(ctx context.Context, room string, patch Patch) error {
	if err := ValidateRoom(room); err != nil {
		return err
	}
	if _, err := Compile(patch); err != nil {
		return err
	}
	_, err := rs.request(ctx, protocol.MsgUpdate, protocol.UpdatePayload{Room: room, Patch: patch})
	return err
}

func (rs *RemoteStore) Remove(ctx context.Context, room, path string) error {
	_, err := rs.request(ctx, protocol.MsgRemove, protocol.PathPayload{Room: room, Path: path})
	return err
}

func (rs *RemoteStore) OnDisconnect(ctx context.Context, room, path string) error {
	_, err := rs.request(ctx, protocol.MsgOnDisconnect, protocol.PathPayload{Room: room, Path: path})
	return err
}

func (rs *RemoteStore) CancelDisconnect(ctx context.Context, room, path string) error {
	_, err := rs.request(ctx, protocol.MsgCancelDisconnect, protocol.PathPayload{Room: room, Path: path})
	return err
}

// Subscribe 订阅房间。每个连接对同一房间只能持有一个订阅。
func (rs *RemoteStore) Subscribe(ctx context.Context, room string) (<-chan Event, error) {
	if err := ValidateRoom(room); err != nil {
		return nil, err
	}

	out := make(chan Event, subscribeQueue)
	rs.mu.Lock()
	if rs.closed {
		rs.mu.Unlock()
		return nil, apperrors.ErrConnectionLost
	}
	if _, ok := rs.subs[room]; ok {
		rs.mu.Unlock()
		return nil, apperrors.ErrAlreadySubscribed
	}
	rs.subs[room] = out
	rs.mu.Unlock()

	if _, err := rs.request(ctx, protocol.MsgSubscribe, protocol.RoomPayload{Room: room}); err != nil {
		rs.dropSub(room, out)
		return nil, err
	}

	go func() {
		select {
		case <-ctx.Done():
			if rs.dropSub(room, out) {
				rs.unsubscribe(room)
			}
		case <-rs.done:
		}
	}()

	return out, nil
}

// Ping 发送心跳，延迟在收到 pong 后更新
func (rs *RemoteStore) Ping() error {
	return rs.enqueue(context.Background(), codec.MustNewMessage(protocol.MsgPing, protocol.PingPayload{
		Timestamp: time.Now().UnixMilli(),
	}))
}

// Close 主动断开连接，网关随即执行本连接登记的断线删除
func (rs *RemoteStore) Close() {
	rs.shutdown()
}

func (rs *RemoteStore) unsubscribe(room string) {
	ctx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()
	if _, err := rs.request(ctx, protocol.MsgUnsubscribe, protocol.RoomPayload{Room: room}); err != nil {
		logger.LogDebug("取消订阅 %s 失败: %v", room, err)
	}
}

// dropSub 移除并关闭订阅通道，返回是否由本次调用移除
func (rs *RemoteStore) dropSub(room string, out chan Event) bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if cur, ok := rs.subs[room]; !ok || cur != out {
		return false
	}
	delete(rs.subs, room)
	close(out)
	return true
}

func (rs *RemoteStore) request(ctx context.Context, typ protocol.MessageType, payload any) (*protocol.ResultPayload, error) {
	id := rs.nextID.Add(1)
	msg, err := codec.NewReply(typ, id, payload)
	if err != nil {
		return nil, err
	}

	reply := make(chan *protocol.Message, 1)
	rs.mu.Lock()
	if rs.closed {
		rs.mu.Unlock()
		return nil, apperrors.ErrConnectionLost
	}
	rs.pending[id] = reply
	rs.mu.Unlock()
	defer func() {
		rs.mu.Lock()
		delete(rs.pending, id)
		rs.mu.Unlock()
	}()

	if err := rs.enqueue(ctx, msg); err != nil {
		return nil, err
	}

	select {
	case resp := <-reply:
		if resp.Type == protocol.MsgError {
			return nil, remoteError(resp)
		}
		res, err := codec.ParsePayload[protocol.ResultPayload](resp)
		if err != nil {
			return nil, err
		}
		if res.Error != nil {
			return nil, apperrors.FromCode(res.Error.Code, res.Error.Message)
		}
		return res, nil
	case <-rs.done:
		return nil, apperrors.ErrConnectionLost
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (rs *RemoteStore) enqueue(ctx context.Context, msg *protocol.Message) error {
	data, err := codec.Encode(msg)
	codec.PutMessage(msg)
	if err != nil {
		return err
	}
	select {
	case rs.send <- data:
		return nil
	case <-rs.done:
		return apperrors.ErrConnectionLost
	case <-ctx.Done():
		return ctx.Err()
	}
}

func remoteError(msg *protocol.Message) error {
	payload, err := codec.ParsePayload[protocol.ErrorPayload](msg)
	if err != nil {
		return err
	}
	return apperrors.FromCode(payload.Code, payload.Message)
}

// readPump 从网关读取消息
func (rs *RemoteStore) readPump() {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		rs.shutdown()
	}()

	_ = rs.conn.SetReadDeadline(time.Now().Add(pongWait))
	rs.conn.SetPongHandler(func(string) error {
		_ = rs.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := rs.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.LogError("网关连接异常断开: %v", err)
			}
			return
		}

		msg, err := codec.Decode(data)
		if err != nil {
			logger.LogError("消息解析错误: %v", err)
			continue
		}
		rs.dispatch(msg)
	}
}

func (rs *RemoteStore) dispatch(msg *protocol.Message) {
	switch msg.Type {
	case protocol.MsgResult, protocol.MsgError:
		rs.mu.Lock()
		reply, ok := rs.pending[msg.ID]
		rs.mu.Unlock()
		if ok {
			reply <- msg
		} else if msg.Type == protocol.MsgError {
			logger.LogError("网关错误: %s", msg.Payload)
		}

	case protocol.MsgSnapshot:
		snap, err := codec.ParsePayload[protocol.SnapshotPayload](msg)
		if err != nil {
			logger.LogError("快照解析错误: %v", err)
			return
		}
		ev := Event{Room: snap.Room}
		if snap.Error != nil {
			ev.Err = apperrors.FromCode(snap.Error.Code, snap.Error.Message)
		} else if snap.Exists {
			ev.Doc = Document(snap.Document)
		}
		rs.mu.Lock()
		if out, ok := rs.subs[snap.Room]; ok {
			deliverLatest(out, ev)
		}
		rs.mu.Unlock()

	case protocol.MsgPong:
		if pong, err := codec.ParsePayload[protocol.PongPayload](msg); err == nil {
			rs.latency.Store(time.Now().UnixMilli() - pong.ClientTimestamp)
		}
	}
}

// deliverLatest 非阻塞投递；队列满时丢弃最旧的快照，每个快照都是完整文档
func deliverLatest(out chan Event, ev Event) {
	for {
		select {
		case out <- ev:
			return
		default:
		}
		select {
		case <-out:
		default:
		}
	}
}

// writePump 向网关写入消息
func (rs *RemoteStore) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = rs.conn.Close()
	}()

	for {
		select {
		case data := <-rs.send:
			_ = rs.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := rs.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				rs.shutdown()
				return
			}

		case <-ticker.C:
			_ = rs.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := rs.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				rs.shutdown()
				return
			}

		case <-rs.done:
			_ = rs.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = rs.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// shutdown 标记连接断开，通知所有订阅者
func (rs *RemoteStore) shutdown() {
	rs.once.Do(func() {
		rs.mu.Lock()
		rs.closed = true
		for room, out := range rs.subs {
			deliverLatest(out, Event{Room: room, Err: apperrors.ErrConnectionLost})
			close(out)
			delete(rs.subs, room)
		}
		rs.mu.Unlock()
		close(rs.done)
	})
}

package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/palemoky/spymaster/internal/docstore"
	"github.com/palemoky/spymaster/internal/logger"
	"github.com/palemoky/spymaster/internal/protocol"
	"github.com/palemoky/spymaster/internal/protocol/codec"
)

const (
	// 写入超时
	writeWait = 10 * time.Second

	// 读取超时（pong 等待时间）
	pongWait = 60 * time.Second

	// ping 发送间隔（必须小于 pongWait）
	pingPeriod = (pongWait * 9) / 10

	// 消息最大大小，整块棋盘写入约 2KB
	maxMessageSize = 64 * 1024

	// 断线删除执行超时
	releaseTimeout = 5 * time.Second
)

// Client 一个 WebSocket 连接，同时是一个断线租约的持有者
type Client struct {
	ID string // 连接唯一 ID，即租约 owner
	IP string // 客户端地址

	server *Server
	conn   *websocket.Conn
	send   chan []byte
	store  *docstore.Conn

	ctx    context.Context // 连接生命周期，断开时取消所有订阅
	cancel context.CancelFunc

	subsMu sync.Mutex
	subs   map[string]context.CancelFunc

	mu     sync.RWMutex
	closed bool
}

// NewClient 创建新客户端
func NewClient(s *Server, conn *websocket.Conn) *Client {
	id := uuid.New().String()
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		ID:     id,
		server: s,
		conn:   conn,
		send:   make(chan []byte, 256),
		store:  docstore.Connect(s.store, s.leases, id, s.config.Presence.HeartbeatIntervalDuration()),
		ctx:    ctx,
		cancel: cancel,
		subs:   make(map[string]context.CancelFunc),
	}
}

// ReadPump 从 WebSocket 读取消息
func (c *Client) ReadPump() {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		c.handleDisconnect()
		_ = c.conn.Close()
		c.server.wg.Done()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.LogError("读取错误: %v", err)
			}
			return
		}

		msg, err := codec.Decode(message)
		if err != nil {
			logger.LogError("消息解析错误: %v", err)
			c.SendMessage(codec.NewErrorMessage(0, protocol.ErrCodeInvalidMsg))
			continue
		}

		if !c.server.msgLimiter.Allow(c.ID) {
			c.SendMessage(codec.NewErrorMessage(msg.ID, protocol.ErrCodeRateLimited))
			codec.PutMessage(msg)
			continue
		}

		c.server.handler.Handle(c, msg)
		codec.PutMessage(msg)
	}
}

// WritePump 向 WebSocket 写入消息
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// 通道已关闭
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}

			if err := c.conn.WriteMessage(websocket.BinaryMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage 发送消息给客户端
func (c *Client) SendMessage(msg *protocol.Message) {
	if msg == nil {
		return
	}
	data, err := codec.Encode(msg)
	codec.PutMessage(msg)
	if err != nil {
		logger.LogError("消息编码错误: %v", err)
		return
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}

	select {
	case c.send <- data:
	default:
		// 发送缓冲区已满，关闭连接
		logger.LogError("连接 %s 发送缓冲区已满", c.ID)
		go c.Close()
	}
}

// trackSubscription 记录订阅，同一房间只允许一个
func (c *Client) trackSubscription(room string, cancel context.CancelFunc) bool {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	if _, ok := c.subs[room]; ok {
		return false
	}
	c.subs[room] = cancel
	return true
}

// untrackSubscription 取消并移除订阅
func (c *Client) untrackSubscription(room string) bool {
	c.subsMu.Lock()
	cancel, ok := c.subs[room]
	delete(c.subs, room)
	c.subsMu.Unlock()

	if ok {
		cancel()
	}
	return ok
}

// handleDisconnect 处理断开连接：停止订阅并立即执行本连接登记的断线删除
func (c *Client) handleDisconnect() {
	c.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()
	if err := c.store.Close(ctx); err != nil {
		logger.LogError("执行连接 %s 的断线删除失败: %v", c.ID, err)
	}

	c.server.unregisterClient(c)
	c.Close()
}

// Close 关闭客户端连接
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

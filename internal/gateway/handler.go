package gateway

import (
	"context"
	"time"

	"github.com/palemoky/spymaster/internal/apperrors"
	"github.com/palemoky/spymaster/internal/docstore"
	"github.com/palemoky/spymaster/internal/logger"
	"github.com/palemoky/spymaster/internal/protocol"
	"github.com/palemoky/spymaster/internal/protocol/codec"
)

const requestTimeout = 10 * time.Second

// handlerFunc 统一的处理器函数签名
type handlerFunc func(c *Client, msg *protocol.Message)

// Handler 消息处理器，把请求转发到连接自己的存储句柄
type Handler struct {
	handlers map[protocol.MessageType]handlerFunc
}

// NewHandler 创建处理器
func NewHandler() *Handler {
	h := &Handler{}
	h.initHandlers()
	return h
}

// initHandlers 初始化消息处理器映射
func (h *Handler) initHandlers() {
	h.handlers = map[protocol.MessageType]handlerFunc{
		protocol.MsgPing: h.handlePing,

		protocol.MsgGet:         h.handleGet,
		protocol.MsgUpdate:      h.handleUpdate,
		protocol.MsgRemove:      h.handleRemove,
		protocol.MsgSubscribe:   h.handleSubscribe,
		protocol.MsgUnsubscribe: h.handleUnsubscribe,

		protocol.MsgOnDisconnect:     h.handleOnDisconnect,
		protocol.MsgCancelDisconnect: h.handleCancelDisconnect,
	}
}

// Handle 分发消息
func (h *Handler) Handle(c *Client, msg *protocol.Message) {
	fn, ok := h.handlers[msg.Type]
	if !ok {
		logger.LogDebug("未知消息类型 %q 来自 %s", msg.Type, c.ID)
		c.SendMessage(codec.NewErrorMessage(msg.ID, protocol.ErrCodeInvalidMsg))
		return
	}
	fn(c, msg)
}

func (h *Handler) handlePing(c *Client, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.PingPayload](msg)
	if err != nil {
		return
	}
	c.SendMessage(codec.MustNewMessage(protocol.MsgPong, protocol.PongPayload{
		ClientTimestamp: payload.Timestamp,
		ServerTimestamp: time.Now().UnixMilli(),
	}))
}

func (h *Handler) handleGet(c *Client, msg *protocol.Message) {
	payload, ok := parse[protocol.RoomPayload](c, msg)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.ctx, requestTimeout)
	defer cancel()

	doc, err := c.store.Get(ctx, payload.Room)
	reply(c, msg.ID, protocol.ResultPayload{Exists: doc != nil, Document: doc}, err)
}

func (h *Handler) handleUpdate(c *Client, msg *protocol.Message) {
	payload, ok := parse[protocol.UpdatePayload](c, msg)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.ctx, requestTimeout)
	defer cancel()

	err := c.store.Update(ctx, payload.Room, docstore.Patch(payload.Patch))
	reply(c, msg.ID, protocol.ResultPayload{}, err)
}

func (h *Handler) handleRemove(c *Client, msg *protocol.Message) {
	payload, ok := parse[protocol.PathPayload](c, msg)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.ctx, requestTimeout)
	defer cancel()

	err := c.store.Remove(ctx, payload.Room, payload.Path)
	reply(c, msg.ID, protocol.ResultPayload{}, err)
}

func (h *Handler) handleOnDisconnect(c *Client, msg *protocol.Message) {
	payload, ok := parse[protocol.PathPayload](c, msg)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.ctx, requestTimeout)
	defer cancel()

	err := c.store.OnDisconnect(ctx, payload.Room, payload.Path)
	reply(c, msg.ID, protocol.ResultPayload{}, err)
}

func (h *Handler) handleCancelDisconnect(c *Client, msg *protocol.Message) {
	payload, ok := parse[protocol.PathPayload](c, msg)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.ctx, requestTimeout)
	defer cancel()

	err := c.store.CancelDisconnect(ctx, payload.Room, payload.Path)
	reply(c, msg.ID, protocol.ResultPayload{}, err)
}

// handleSubscribe 订阅房间，后续快照以 snapshot 消息推送
func (h *Handler) handleSubscribe(c *Client, msg *protocol.Message) {
	payload, ok := parse[protocol.RoomPayload](c, msg)
	if !ok {
		return
	}

	ctx, cancel := context.WithCancel(c.ctx)
	if !c.trackSubscription(payload.Room, cancel) {
		cancel()
		reply(c, msg.ID, protocol.ResultPayload{}, apperrors.ErrAlreadySubscribed)
		return
	}

	events, err := c.store.Subscribe(ctx, payload.Room)
	if err != nil {
		c.untrackSubscription(payload.Room)
		reply(c, msg.ID, protocol.ResultPayload{}, err)
		return
	}

	// 先回复结果，再开始推送
	reply(c, msg.ID, protocol.ResultPayload{}, nil)
	go forwardSnapshots(c, payload.Room, events)
}

func (h *Handler) handleUnsubscribe(c *Client, msg *protocol.Message) {
	payload, ok := parse[protocol.RoomPayload](c, msg)
	if !ok {
		return
	}
	if !c.untrackSubscription(payload.Room) {
		reply(c, msg.ID, protocol.ResultPayload{}, apperrors.ErrNotSubscribed)
		return
	}
	reply(c, msg.ID, protocol.ResultPayload{}, nil)
}

func forwardSnapshots(c *Client, room string, events <-chan docstore.Event) {
	for ev := range events {
		c.SendMessage(codec.MustNewMessage(protocol.MsgSnapshot, protocol.SnapshotPayload{
			Room:     room,
			Exists:   ev.Doc != nil,
			Document: ev.Doc,
			Error:    errorPayload(ev.Err),
		}))
	}
}

// parse 解析请求，失败时回复无效消息错误
func parse[T any](c *Client, msg *protocol.Message) (*T, bool) {
	payload, err := codec.ParsePayload[T](msg)
	if err != nil {
		c.SendMessage(codec.NewErrorMessage(msg.ID, protocol.ErrCodeInvalidMsg))
		return nil, false
	}
	return payload, true
}

// reply 回复请求结果，err 非空时只携带错误
func reply(c *Client, id uint64, res protocol.ResultPayload, err error) {
	if err != nil {
		res = protocol.ResultPayload{Error: errorPayload(err)}
	}
	msg, encErr := codec.NewReply(protocol.MsgResult, id, res)
	if encErr != nil {
		logger.LogError("编码结果失败: %v", encErr)
		return
	}
	c.SendMessage(msg)
}

func errorPayload(err error) *protocol.ErrorPayload {
	if err == nil {
		return nil
	}
	return &protocol.ErrorPayload{Code: apperrors.Code(err), Message: err.Error()}
}

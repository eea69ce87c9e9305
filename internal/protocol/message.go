package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	ID      uint64          `json:"id,omitempty"` // 请求 ID，回复原样带回；推送为 0
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	MsgPing MessageType = "ping" // 心跳 ping

	// 文档操作
	MsgGet         MessageType = "get"         // 读取一次
	MsgUpdate      MessageType = "update"      // 局部更新
	MsgRemove      MessageType = "remove"      // 删除路径
	MsgSubscribe   MessageType = "subscribe"   // 订阅房间
	MsgUnsubscribe MessageType = "unsubscribe" // 取消订阅

	// 断线删除
	MsgOnDisconnect     MessageType = "on_disconnect"     // 登记断线删除
	MsgCancelDisconnect MessageType = "cancel_disconnect" // 撤销断线删除
)

// 服务端 → 客户端 消息类型
const (
	MsgConnected MessageType = "connected" // 连接成功
	MsgPong      MessageType = "pong"      // 心跳 pong
	MsgResult    MessageType = "result"    // 请求结果
	MsgSnapshot  MessageType = "snapshot"  // 订阅推送
	MsgError     MessageType = "error"     // 错误消息
)

// IsRequest 是否是需要回复的客户端请求
func (t MessageType) IsRequest() bool {
	switch t {
	case MsgGet, MsgUpdate, MsgRemove, MsgSubscribe, MsgUnsubscribe, MsgOnDisconnect, MsgCancelDisconnect:
		return true
	}
	return false
}

package protocol

import "encoding/json"

// --- 客户端请求 Payloads ---

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// RoomPayload 针对整个房间的请求（get/subscribe/unsubscribe）
type RoomPayload struct {
	Room string `json:"room"`
}

// UpdatePayload 局部更新请求，值为 null 表示删除
type UpdatePayload struct {
	Room  string         `json:"room"`
	Patch map[string]any `json:"patch"`
}

// PathPayload 针对路径的请求（remove/on_disconnect/cancel_disconnect），Path 为空表示整个房间
type PathPayload struct {
	Room string `json:"room"`
	Path string `json:"path,omitempty"`
}

// --- 服务端响应 Payloads ---

// ConnectedPayload 连接成功响应
type ConnectedPayload struct {
	ConnectionID string `json:"connection_id"`
}

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"client_timestamp"`
	ServerTimestamp int64 `json:"server_timestamp"`
}

// ResultPayload 请求结果，Error 非空表示失败
type ResultPayload struct {
	Exists   bool                       `json:"exists,omitempty"`
	Document map[string]json.RawMessage `json:"document,omitempty"`
	Error    *ErrorPayload              `json:"error,omitempty"`
}

// SnapshotPayload 订阅推送的完整房间文档
type SnapshotPayload struct {
	Room     string                     `json:"room"`
	Exists   bool                       `json:"exists"`
	Document map[string]json.RawMessage `json:"document,omitempty"`
	Error    *ErrorPayload              `json:"error,omitempty"`
}

// ErrorPayload 错误
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

package docstore

import "context"

// Event 订阅推送：房间的完整文档或传输错误
type Event struct {
	Room string
	Doc  Document // nil 表示房间不存在
	Err  error
}

// Client 文档存储的客户端视角。
// 写入只保证字段级合并，不提供跨字段的读-改-写原子性。
type Client interface {
	// Get 读取一次，房间不存在时返回 nil
	Get(ctx context.Context, room string) (Document, error)
	// Update 局部更新
	Update(ctx context.Context, room string, patch Patch) error
	// Remove 删除路径子树，path 为空时删除整个房间
	Remove(ctx context.Context, room, path string) error
	// Subscribe 订阅房间，首个事件为当前状态，ctx 结束时关闭通道
	Subscribe(ctx context.Context, room string) (<-chan Event, error)
	// OnDisconnect 登记断线时删除 path（为空则删除整个房间）
	OnDisconnect(ctx context.Context, room, path string) error
	// CancelDisconnect 撤销对应的断线删除
	CancelDisconnect(ctx context.Context, room, path string) error
}

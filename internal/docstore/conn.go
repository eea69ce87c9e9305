package docstore

import (
	"context"
	"sync"
	"time"

	"github.com/palemoky/spymaster/internal/logger"
)

// Conn 单个连接（owner）对存储的访问句柄，后台心跳维持其断线租约
type Conn struct {
	owner  string
	store  *RedisStore
	leases *LeaseRegistry

	done chan struct{}
	once sync.Once
}

var _ Client = (*Conn)(nil)

// Connect 建立连接句柄并启动心跳
func Connect(store *RedisStore, leases *LeaseRegistry, owner string, heartbeat time.Duration) *Conn {
	c := &Conn{
		owner:  owner,
		store:  store,
		leases: leases,
		done:   make(chan struct{}),
	}
	go c.heartbeatLoop(heartbeat)
	return c
}

func (c *Conn) Get(ctx context.Context, room string) (Document, error) {
	return c.store.Get(ctx, room)
}

func (c *Conn) Update(ctx context.Context, room string, patch Patch) error {
	return c.store.Update(ctx, room, patch)
}

func (c *Conn) Remove(ctx context.Context, room, path string) error {
	return c.store.Remove(ctx, room, path)
}

func (c *Conn) Subscribe(ctx context.Context, room string) (<-chan Event, error) {
	return c.store.Subscribe(ctx, room)
}

func (c *Conn) OnDisconnect(ctx context.Context, room, path string) error {
	return c.leases.Register(ctx, c.owner, Removal{Room: room, Path: path})
}

func (c *Conn) CancelDisconnect(ctx context.Context, room, path string) error {
	return c.leases.Cancel(ctx, c.owner, Removal{Room: room, Path: path})
}

// Close 停止心跳并立即执行断线删除
func (c *Conn) Close(ctx context.Context) error {
	c.once.Do(func() { close(c.done) })
	return c.leases.Release(ctx, c.owner)
}

// Abandon 停止心跳但不执行登记，租约到期后由回收者执行（模拟进程崩溃）
func (c *Conn) Abandon() {
	c.once.Do(func() { close(c.done) })
}

func (c *Conn) heartbeatLoop(interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			if err := c.leases.Renew(ctx, c.owner); err != nil {
				logger.LogError("续期租约 %s 失败: %v", c.owner, err)
			}
			cancel()
		case <-c.done:
			return
		}
	}
}

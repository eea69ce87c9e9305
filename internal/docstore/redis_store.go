package docstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/spymaster/internal/apperrors"
	"github.com/palemoky/spymaster/internal/logger"
)

const (
	// Redis key 前缀
	roomKeyPrefix  = "room:"
	changedSuffix  = ":changed"
	subscribeQueue = 16
)

func roomKey(room string) string        { return roomKeyPrefix + room }
func changedChannel(room string) string { return roomKeyPrefix + room + changedSuffix }

// RedisStore 基于 Redis Hash 的房间文档存储，每个叶子路径一个字段
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get 读取房间文档
func (rs *RedisStore) Get(ctx context.Context, room string) (Document, error) {
	if err := ValidateRoom(room); err != nil {
		return nil, err
	}
	fields, err := rs.client.HGetAll(ctx, roomKey(room)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	if len(fields) == 0 {
		return nil, nil // 房间不存在
	}

	doc := make(Document, len(fields))
	for k, v := range fields {
		doc[k] = json.RawMessage(v)
	}
	return doc, nil
}

// Update 局部更新房间文档并通知订阅者。
// 先读取字段名再在事务中删除/写入，两步之间的并发写入按字段后写者胜。
func (rs *RedisStore) Update(ctx context.Context, room string, patch Patch) error {
	if err := ValidateRoom(room); err != nil {
		return err
	}
	writes, err := Compile(patch)
	if err != nil {
		return err
	}
	if len(writes) == 0 {
		return nil
	}

	key := roomKey(room)
	keys, err := rs.client.HKeys(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	stale := Stale(keys, writes)

	leaves := make(map[string]any)
	for _, w := range writes {
		for k, v := range w.Leaves {
			leaves[k] = string(v)
		}
	}

	_, err = rs.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(stale) > 0 {
			pipe.HDel(ctx, key, stale...)
		}
		if len(leaves) > 0 {
			pipe.HSet(ctx, key, leaves)
		}
		pipe.Publish(ctx, changedChannel(room), room)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	return nil
}

// Remove 删除路径子树，path 为空时删除整个房间
func (rs *RedisStore) Remove(ctx context.Context, room, path string) error {
	if path != "" {
		return rs.Update(ctx, room, Patch{path: nil})
	}
	if err := ValidateRoom(room); err != nil {
		return err
	}

	_, err := rs.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, roomKey(room))
		pipe.Publish(ctx, changedChannel(room), room)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	return nil
}

// Subscribe 订阅房间变更。每次变更后推送完整文档。
func (rs *RedisStore) Subscribe(ctx context.Context, room string) (<-chan Event, error) {
	if err := ValidateRoom(room); err != nil {
		return nil, err
	}

	ps := rs.client.Subscribe(ctx, changedChannel(room))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}

	out := make(chan Event, subscribeQueue)
	go func() {
		defer close(out)
		defer func() { _ = ps.Close() }()

		if !rs.emit(ctx, room, out) {
			return
		}
		changes := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				if !rs.emit(ctx, room, out) {
					return
				}
			}
		}
	}()

	return out, nil
}

// emit 读取最新文档推送给订阅者，ctx 结束时返回 false
func (rs *RedisStore) emit(ctx context.Context, room string, out chan<- Event) bool {
	doc, err := rs.Get(ctx, room)
	if err != nil && ctx.Err() == nil {
		logger.LogError("读取房间 %s 失败: %v", room, err)
	}
	select {
	case out <- Event{Room: room, Doc: doc, Err: err}:
		return true
	case <-ctx.Done():
		return false
	}
}

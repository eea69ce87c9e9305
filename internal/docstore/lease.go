package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/spymaster/internal/apperrors"
	"github.com/palemoky/spymaster/internal/logger"
)

const (
	leaseZSetKey   = "presence:leases"
	ownerKeyPrefix = "presence:owner:"
)

func ownerKey(owner string) string { return ownerKeyPrefix + owner }

// Removal 断线时要执行的删除
type Removal struct {
	Room string `json:"room"`
	Path string `json:"path,omitempty"` // 为空表示整个房间
}

func (r Removal) field() string { return r.Room + "|" + r.Path }

// LeaseRegistry 断线删除登记表。
// 每个 owner 持有一个带截止时间的租约，心跳续期；租约过期或主动释放时执行其全部登记。
// 多个进程同时回收时以 ZREM 的结果决定执行者，不保证恰好一次。
type LeaseRegistry struct {
	client *redis.Client
	store  *RedisStore
	ttl    time.Duration
	now    func() time.Time
}

// NewLeaseRegistry 创建登记表
func NewLeaseRegistry(client *redis.Client, store *RedisStore, ttl time.Duration) *LeaseRegistry {
	return &LeaseRegistry{client: client, store: store, ttl: ttl, now: time.Now}
}

func (lr *LeaseRegistry) deadline() float64 {
	return float64(lr.now().Add(lr.ttl).UnixMilli())
}

// Register 登记断线删除并续期租约
func (lr *LeaseRegistry) Register(ctx context.Context, owner string, r Removal) error {
	if err := ValidateRoom(r.Room); err != nil {
		return err
	}
	if r.Path != "" {
		if err := ValidatePath(r.Path); err != nil {
			return err
		}
	}
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}

	_, err = lr.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, ownerKey(owner), r.field(), data)
		pipe.ZAdd(ctx, leaseZSetKey, redis.Z{Score: lr.deadline(), Member: owner})
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	return nil
}

// Cancel 撤销一条登记
func (lr *LeaseRegistry) Cancel(ctx context.Context, owner string, r Removal) error {
	if err := lr.client.HDel(ctx, ownerKey(owner), r.field()).Err(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	return nil
}

// Pending 返回 owner 当前的全部登记
func (lr *LeaseRegistry) Pending(ctx context.Context, owner string) ([]Removal, error) {
	fields, err := lr.client.HGetAll(ctx, ownerKey(owner)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}

	removals := make([]Removal, 0, len(fields))
	for _, v := range fields {
		var r Removal
		if err := json.Unmarshal([]byte(v), &r); err != nil {
			logger.LogError("忽略损坏的断线登记 %s: %v", owner, err)
			continue
		}
		removals = append(removals, r)
	}
	// 先删玩家记录再删整个房间
	sort.Slice(removals, func(i, j int) bool {
		if removals[i].Room != removals[j].Room {
			return removals[i].Room < removals[j].Room
		}
		return removals[i].Path > removals[j].Path
	})
	return removals, nil
}

// Renew 心跳续期，仅对已持有租约的 owner 生效
func (lr *LeaseRegistry) Renew(ctx context.Context, owner string) error {
	err := lr.client.ZAddXX(ctx, leaseZSetKey, redis.Z{Score: lr.deadline(), Member: owner}).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	return nil
}

// Release owner 断开连接，立即执行其登记
func (lr *LeaseRegistry) Release(ctx context.Context, owner string) error {
	_, err := lr.fire(ctx, owner)
	return err
}

// Reap 执行所有已过期租约的登记，返回执行的 owner 数量
func (lr *LeaseRegistry) Reap(ctx context.Context) (int, error) {
	owners, err := lr.client.ZRangeByScore(ctx, leaseZSetKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(lr.now().UnixMilli(), 10),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}

	fired := 0
	var errs []error
	for _, owner := range owners {
		ok, err := lr.fire(ctx, owner)
		if err != nil {
			errs = append(errs, err)
		}
		if ok {
			fired++
			logger.LogInfo("⏰ 租约过期，已执行 %s 的断线删除", owner)
		}
	}
	return fired, errors.Join(errs...)
}

// fire 抢占 owner 的租约并执行其登记
func (lr *LeaseRegistry) fire(ctx context.Context, owner string) (bool, error) {
	claimed, err := lr.client.ZRem(ctx, leaseZSetKey, owner).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	if claimed == 0 {
		// 已被其他进程执行，或从未登记
		return false, nil
	}

	removals, err := lr.Pending(ctx, owner)
	if err != nil {
		return false, err
	}
	if err := lr.client.Del(ctx, ownerKey(owner)).Err(); err != nil {
		return false, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}

	var errs []error
	for _, r := range removals {
		if err := lr.store.Remove(ctx, r.Room, r.Path); err != nil {
			errs = append(errs, fmt.Errorf("删除 %s/%s 失败: %w", r.Room, r.Path, err))
		}
	}
	return true, errors.Join(errs...)
}

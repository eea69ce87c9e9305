// Package presence keeps each client's disconnect cleanup consistent with the
// room membership it currently sees.
package presence

import (
	"context"
	"errors"
	"sync"

	"github.com/palemoky/spymaster/internal/docstore"
	"github.com/palemoky/spymaster/internal/game/room"
)

// Kind 断线时要执行的清理
type Kind int

const (
	KindNone       Kind = iota // 不在房间中，不登记
	KindRemoveSelf             // 只删除自己的玩家记录
	KindRemoveRoom             // 最后一人，删除整个房间
)

func (k Kind) String() string {
	switch k {
	case KindRemoveSelf:
		return "remove-self"
	case KindRemoveRoom:
		return "remove-room"
	default:
		return "none"
	}
}

// Plan 一次评估的结果
type Plan struct {
	Kind Kind
	Room string
	Path string // 为空表示整个房间
}

// Decide 根据当前成员决定断线清理：
// 自己是唯一成员时删除房间，否则只删除自己；自己不在成员中则不登记。
func Decide(roomCode, selfID string, players map[string]room.Player) Plan {
	if _, ok := players[selfID]; !ok {
		return Plan{Kind: KindNone, Room: roomCode}
	}
	if len(players) <= 1 {
		return Plan{Kind: KindRemoveRoom, Room: roomCode}
	}
	return Plan{Kind: KindRemoveSelf, Room: roomCode, Path: room.PlayerPath(selfID)}
}

// Manager 维护一个客户端在一个房间中的断线登记
type Manager struct {
	store  docstore.Client
	room   string
	selfID string

	mu      sync.Mutex
	current Plan
}

// NewManager 创建管理器
func NewManager(store docstore.Client, roomCode, selfID string) *Manager {
	return &Manager{
		store:   store,
		room:    roomCode,
		selfID:  selfID,
		current: Plan{Kind: KindNone, Room: roomCode},
	}
}

// Current 最近一次登记的清理
func (m *Manager) Current() Plan {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Sync 成员变化时重新评估：先撤销之前的所有登记，再登记新的
func (m *Manager) Sync(ctx context.Context, players map[string]room.Player) (Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	plan := Decide(m.room, m.selfID, players)
	if err := m.retract(ctx); err != nil {
		return m.current, err
	}
	if plan.Kind == KindNone {
		return plan, nil
	}
	if err := m.store.OnDisconnect(ctx, plan.Room, plan.Path); err != nil {
		return m.current, err
	}
	m.current = plan
	return plan, nil
}

// Retract 撤销全部登记，离开房间时调用
func (m *Manager) Retract(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.retract(ctx)
}

func (m *Manager) retract(ctx context.Context) error {
	err := errors.Join(
		m.store.CancelDisconnect(ctx, m.room, ""),
		m.store.CancelDisconnect(ctx, m.room, room.PlayerPath(m.selfID)),
	)
	if err == nil {
		m.current = Plan{Kind: KindNone, Room: m.room}
	}
	return err
}

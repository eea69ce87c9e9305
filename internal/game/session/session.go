// Package session binds one client to one room: it follows the shared
// document, keeps presence registrations current and turns player actions
// into fire-and-forget partial writes.
package session

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/palemoky/spymaster/internal/apperrors"
	"github.com/palemoky/spymaster/internal/docstore"
	"github.com/palemoky/spymaster/internal/game/board"
	"github.com/palemoky/spymaster/internal/game/presence"
	"github.com/palemoky/spymaster/internal/game/room"
	"github.com/palemoky/spymaster/internal/logger"
)

const actionQueue = 64

type action struct {
	name string
	run  func(ctx context.Context) error
}

// Session 一个客户端在一个房间中的同步适配器。
// 本地不做乐观更新，写入后以订阅推送回来的快照为准。
type Session struct {
	store    docstore.Client
	machine  *room.Machine
	presence *presence.Manager
	room     string
	selfID   string

	actions chan action
	changed chan struct{}

	mu         sync.RWMutex
	state      room.Room
	loading    bool
	err        string
	playerKeys string

	cancel context.CancelFunc
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// Open 订阅房间并启动读写循环
func Open(ctx context.Context, store docstore.Client, machine *room.Machine, roomCode, selfID string) (*Session, error) {
	if err := docstore.ValidateRoom(roomCode); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	events, err := store.Subscribe(ctx, roomCode)
	if err != nil {
		cancel()
		return nil, err
	}

	s := &Session{
		store:    store,
		machine:  machine,
		presence: presence.NewManager(store, roomCode, selfID),
		room:     roomCode,
		selfID:   selfID,
		actions:  make(chan action, actionQueue),
		changed:  make(chan struct{}, 1),
		state:    room.Initial(),
		loading:  true,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	s.wg.Add(2)
	go s.readLoop(ctx, events)
	go s.writeLoop(ctx)

	return s, nil
}

// RoomCode 房间号
func (s *Session) RoomCode() string { return s.room }

// SelfID 本客户端的玩家 ID
func (s *Session) SelfID() string { return s.selfID }

// Done 会话关闭后关闭
func (s *Session) Done() <-chan struct{} { return s.done }

// Changes 快照或错误更新时发出通知，多次更新可能合并为一次
func (s *Session) Changes() <-chan struct{} { return s.changed }

// Snapshot 最新的规范化快照
func (s *Session) Snapshot() room.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Me 自己的玩家记录
func (s *Session) Me() (room.Player, bool) {
	return s.Snapshot().Player(s.selfID)
}

// Loading 是否尚未收到首个快照
func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err 最近一次传输错误，空表示无错误
func (s *Session) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// ClearErr 清除错误提示
func (s *Session) ClearErr() {
	s.mu.Lock()
	s.err = ""
	s.mu.Unlock()
	s.notify()
}

// Presence 当前登记的断线清理
func (s *Session) Presence() presence.Plan {
	return s.presence.Current()
}

// --- 玩家操作 ---

// Join 读取一次房间后写入自己的玩家记录
func (s *Session) Join(name string) {
	s.enqueue("join", func(ctx context.Context) error {
		doc, err := s.store.Get(ctx, s.room)
		if err != nil {
			return err
		}
		r, err := room.Decode(doc)
		if err != nil {
			return err
		}
		u, ok := s.machine.Join(r, s.selfID, name)
		if !ok {
			return nil
		}
		return s.store.Update(ctx, s.room, u.Patch())
	})
}

// UpdatePlayer 修改自己的阵营或角色
func (s *Session) UpdatePlayer(changes room.PlayerChanges) {
	s.transition("update_player", func(r room.Room) (room.Update, bool) {
		return s.machine.UpdatePlayer(r, s.selfID, changes)
	})
}

// SetTeam 切换阵营
func (s *Session) SetTeam(team board.Team) {
	s.UpdatePlayer(room.PlayerChanges{Team: &team})
}

// SetRole 切换角色
func (s *Session) SetRole(role room.Role) {
	s.UpdatePlayer(room.PlayerChanges{Role: &role})
}

// StartGame 开局
func (s *Session) StartGame() {
	s.transition("start_game", func(r room.Room) (room.Update, bool) {
		return s.machine.StartGame(r, s.selfID)
	})
}

// GiveClue 给出线索
func (s *Session) GiveClue(word string, number int) {
	s.transition("give_clue", func(r room.Room) (room.Update, bool) {
		return s.machine.GiveClue(r, s.selfID, word, number)
	})
}

// RevealCard 翻牌
func (s *Session) RevealCard(cardID int) {
	s.transition("reveal_card", func(r room.Room) (room.Update, bool) {
		return s.machine.RevealCard(r, s.selfID, cardID)
	})
}

// EndTurn 结束回合
func (s *Session) EndTurn() {
	s.transition("end_turn", func(r room.Room) (room.Update, bool) {
		return s.machine.EndTurn(r, s.selfID)
	})
}

// ResetToLobby 回到大厅
func (s *Session) ResetToLobby() {
	s.transition("reset_to_lobby", func(r room.Room) (room.Update, bool) {
		return s.machine.ResetToLobby(r, s.selfID)
	})
}

// Leave 撤销断线登记并停止同步，玩家记录保留在房间中
func (s *Session) Leave(ctx context.Context) error {
	err := s.presence.Retract(ctx)
	s.Close()
	return err
}

// Exit 主动离开：撤销登记后立即执行当前的断线清理，效果等同于断线
func (s *Session) Exit(ctx context.Context) error {
	plan := s.presence.Current()
	if err := s.Leave(ctx); err != nil {
		return err
	}
	if plan.Kind == presence.KindNone {
		return nil
	}
	return s.store.Remove(ctx, plan.Room, plan.Path)
}

// Close 停止同步。断线登记保持不变，连接关闭时由存储执行。
func (s *Session) Close() {
	s.once.Do(func() {
		s.cancel()
		s.wg.Wait()
		close(s.done)
	})
}

// transition 基于执行时的最新快照计算迁移，不满足前置条件时静默忽略
func (s *Session) transition(name string, fn func(room.Room) (room.Update, bool)) {
	s.enqueue(name, func(ctx context.Context) error {
		u, ok := fn(s.Snapshot())
		if !ok {
			logger.LogDebug("忽略不合法的操作 %s", name)
			return nil
		}
		return s.store.Update(ctx, s.room, u.Patch())
	})
}

func (s *Session) enqueue(name string, run func(ctx context.Context) error) {
	select {
	case s.actions <- action{name: name, run: run}:
	default:
		logger.LogError("操作队列已满，丢弃 %s", name)
	}
}

func (s *Session) writeLoop(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case a := <-s.actions:
			if err := a.run(ctx); err != nil && ctx.Err() == nil {
				logger.LogError("操作 %s 失败: %v", a.name, err)
				s.setErr(err)
			}
		}
	}
}

func (s *Session) readLoop(ctx context.Context, events <-chan docstore.Event) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				if ctx.Err() == nil {
					s.setErr(apperrors.ErrConnectionLost)
				}
				return
			}
			s.apply(ctx, ev)
		}
	}
}

// apply 处理一次推送：规范化快照，成员变化时重新登记断线清理
func (s *Session) apply(ctx context.Context, ev docstore.Event) {
	if ev.Err != nil {
		s.setErr(ev.Err)
		return
	}
	r, err := room.Decode(ev.Doc)
	if err != nil {
		s.setErr(err)
		return
	}

	keys := strings.Join(slices.Sorted(maps.Keys(r.Players)), ",")
	s.mu.Lock()
	s.state = r
	s.loading = false
	membershipChanged := keys != s.playerKeys
	s.playerKeys = keys
	s.mu.Unlock()

	if membershipChanged {
		if _, err := s.presence.Sync(ctx, r.Players); err != nil && ctx.Err() == nil {
			s.setErr(err)
		}
	}
	s.notify()
}

func (s *Session) setErr(err error) {
	s.mu.Lock()
	s.err = err.Error()
	s.mu.Unlock()
	s.notify()
}

func (s *Session) notify() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

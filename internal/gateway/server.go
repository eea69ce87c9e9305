// Package gateway exposes the room document store to remote clients over
// websockets. Each connection owns a disconnect lease; closing the socket
// fires the removals it registered.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/palemoky/spymaster/internal/config"
	"github.com/palemoky/spymaster/internal/docstore"
	"github.com/palemoky/spymaster/internal/logger"
)

const (
	shutdownTimeout = 10 * time.Second

	// 单 IP 建立连接的频率限制
	connectsPerSecond = 5
	connectsPerMinute = 60
	connectBan        = 30 * time.Second
	limiterPrune      = 5 * time.Minute
	limiterIdle       = 10 * time.Minute
)

// Server WebSocket 网关
type Server struct {
	config  *config.Config
	redis   *redis.Client
	store   *docstore.RedisStore
	leases  *docstore.LeaseRegistry
	handler *Handler

	upgrader    websocket.Upgrader
	ipLimiter   *RateLimiter
	msgLimiter  *MessageRateLimiter
	originCheck *OriginChecker

	clients   map[string]*Client
	clientsMu sync.RWMutex
	wg        sync.WaitGroup // 未完成断线处理的连接

	// 连接控制
	maxConnections int
	semaphore      chan struct{}
}

// NewServer 连接 Redis 并创建网关
func NewServer(cfg *config.Config) (*Server, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis 连接失败: %w", err)
	}

	return New(cfg, rdb), nil
}

// New 使用已有的 Redis 客户端创建网关
func New(cfg *config.Config, rdb *redis.Client) *Server {
	store := docstore.NewRedisStore(rdb)
	s := &Server{
		config:         cfg,
		redis:          rdb,
		store:          store,
		leases:         docstore.NewLeaseRegistry(rdb, store, cfg.Presence.LeaseTTLDuration()),
		handler:        NewHandler(),
		ipLimiter:      NewRateLimiter(connectsPerSecond, connectsPerMinute, connectBan),
		msgLimiter:     NewMessageRateLimiter(cfg.Server.MessagesPerSecond),
		originCheck:    NewOriginChecker(cfg.Server.AllowedOrigins),
		clients:        make(map[string]*Client),
		maxConnections: cfg.Server.MaxConnections,
		semaphore:      make(chan struct{}, cfg.Server.MaxConnections),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.originCheck.Check,
	}
	return s
}

// Router HTTP 路由
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/ws", s.handleWebSocket)
	r.Get("/health", s.handleHealth)
	r.Get("/rooms/{code}/qr.png", s.handleRoomQR)
	return r
}

// Run 启动网关，ctx 结束时优雅关闭
func (s *Server) Run(ctx context.Context) error {
	addr := s.config.Server.Addr()
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.LogInfo("🚀 网关启动在 ws://%s/ws (CPU核心数: %d)", addr, runtime.NumCPU())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := httpServer.Shutdown(shutdownCtx)
		s.Shutdown()
		return err
	})

	g.Go(func() error {
		s.reapLoop(ctx)
		return nil
	})

	g.Go(func() error {
		s.monitorStats(ctx)
		return nil
	})

	g.Go(func() error {
		return s.ipLimiter.pruneLoop(ctx, limiterPrune, limiterIdle)
	})

	return g.Wait()
}

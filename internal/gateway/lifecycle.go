package gateway

import (
	"context"
	"runtime"
	"time"

	"github.com/palemoky/spymaster/internal/logger"
)

const monitorInterval = 30 * time.Second

// monitorStats 定期监控网关状态
func (s *Server) monitorStats(ctx context.Context) {
	ticker := time.NewTicker(monitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			logger.LogInfo("📊 [监控] 在线: %d | Goroutines: %d | 活跃连接: %d/%d | 内存: %.2f MB",
				s.GetOnlineCount(),
				runtime.NumGoroutine(),
				len(s.semaphore),
				s.maxConnections,
				float64(m.Alloc)/1024/1024)
		}
	}
}

// reapLoop 定期执行过期租约的断线删除（持有者所在网关已崩溃）
func (s *Server) reapLoop(ctx context.Context) {
	interval := s.config.Presence.ReapIntervalDuration()
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Reap(ctx)
		}
	}
}

// Reap 执行一次过期租约回收
func (s *Server) Reap(ctx context.Context) int {
	n, err := s.leases.Reap(ctx)
	if err != nil && ctx.Err() == nil {
		logger.LogError("回收过期租约失败: %v", err)
	}
	return n
}

// Shutdown 关闭所有客户端连接，并等待它们的断线删除执行完毕
func (s *Server) Shutdown() {
	s.clientsMu.RLock()
	clients := make([]*Client, 0, len(s.clients))
	for _, client := range s.clients {
		clients = append(clients, client)
	}
	s.clientsMu.RUnlock()

	for _, client := range clients {
		client.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		logger.LogError("⚠️ 等待连接断开超时")
	}
	logger.LogInfo("网关已关闭 %d 个连接", len(clients))
}

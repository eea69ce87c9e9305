package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/spymaster/internal/game/board"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 8080
  max_connections: 5000
  messages_per_second: 20
  allowed_origins:
    - "https://spymaster.example"

redis:
  addr: "redis:6379"
  password: "secret"
  db: 1

presence:
  lease_ttl: 60
  heartbeat_interval: 20
  reap_interval: 10
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr())
	assert.Equal(t, 5000, cfg.Server.MaxConnections)
	assert.Equal(t, 20, cfg.Server.MessagesPerSecond)
	assert.Equal(t, []string{"https://spymaster.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "secret", cfg.Redis.Password)
	assert.Equal(t, 1, cfg.Redis.DB)
	assert.Equal(t, time.Minute, cfg.Presence.LeaseTTLDuration())
	assert.Equal(t, 20*time.Second, cfg.Presence.HeartbeatIntervalDuration())
	assert.Equal(t, 10*time.Second, cfg.Presence.ReapIntervalDuration())
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, "server:\n  port: 9000\n"))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 1000, cfg.Server.MaxConnections)
	assert.Equal(t, 50, cfg.Server.MessagesPerSecond)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 30*time.Second, cfg.Presence.LeaseTTLDuration())
	assert.Equal(t, 10*time.Second, cfg.Presence.HeartbeatIntervalDuration())
	assert.Equal(t, 5*time.Second, cfg.Presence.ReapIntervalDuration())
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()

	_, err := Load(writeConfig(t, "server: [unclosed"))
	assert.Error(t, err)
}

func TestLoad_HeartbeatMustBeShorterThanLease(t *testing.T) {
	t.Parallel()

	_, err := Load(writeConfig(t, "presence:\n  lease_ttl: 10\n  heartbeat_interval: 10\n"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.Equal(t, "0.0.0.0:1780", cfg.Server.Addr())
	assert.NoError(t, cfg.Validate())
}

func TestGameConfig_Words(t *testing.T) {
	t.Parallel()

	words, err := (&GameConfig{}).Words()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(words), board.Size)

	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("only\nthree\nwords\n"), 0o600))
	_, err = (&GameConfig{WordsFile: path}).Words()
	assert.ErrorIs(t, err, board.ErrNotEnoughWords)

	lines := make([]string, 0, board.Size)
	for i := range board.Size {
		lines = append(lines, "word"+string(rune('a'+i)))
	}
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o600))
	words, err = (&GameConfig{WordsFile: path}).Words()
	require.NoError(t, err)
	assert.Len(t, words, board.Size)
}

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/palemoky/spymaster/internal/game/board"
)

// Config 服务端配置
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	Presence PresenceConfig `yaml:"presence"`
	Game     GameConfig     `yaml:"game"`
}

// ServerConfig WebSocket 网关配置
type ServerConfig struct {
	Host              string   `yaml:"host"`
	Port              int      `yaml:"port"`
	MaxConnections    int      `yaml:"max_connections"`     // 最大并发连接数
	MessagesPerSecond int      `yaml:"messages_per_second"` // 单连接每秒消息上限
	AllowedOrigins    []string `yaml:"allowed_origins"`     // 允许的 Origin，为空或含 * 表示不限制
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// PresenceConfig 断线租约配置
type PresenceConfig struct {
	LeaseTTL          int `yaml:"lease_ttl"`          // 租约有效期（秒）
	HeartbeatInterval int `yaml:"heartbeat_interval"` // 心跳续期间隔（秒）
	ReapInterval      int `yaml:"reap_interval"`      // 过期租约回收间隔（秒）
}

// GameConfig 游戏配置
type GameConfig struct {
	WordsFile string `yaml:"words_file"` // 自定义词库，为空使用内置词库
}

// Addr 监听地址
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LeaseTTLDuration 返回租约有效期
func (c *PresenceConfig) LeaseTTLDuration() time.Duration {
	return time.Duration(c.LeaseTTL) * time.Second
}

// HeartbeatIntervalDuration 返回心跳间隔
func (c *PresenceConfig) HeartbeatIntervalDuration() time.Duration {
	return time.Duration(c.HeartbeatInterval) * time.Second
}

// ReapIntervalDuration 返回回收间隔
func (c *PresenceConfig) ReapIntervalDuration() time.Duration {
	return time.Duration(c.ReapInterval) * time.Second
}

// Words 加载词库
func (c *GameConfig) Words() (board.WordList, error) {
	if c.WordsFile == "" {
		return board.DefaultWords(), nil
	}
	return board.LoadWords(c.WordsFile)
}

// Load 加载配置文件
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default 返回默认配置
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults 设置默认值
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 1780
	}
	if c.Server.MaxConnections == 0 {
		c.Server.MaxConnections = 1000
	}
	if c.Server.MessagesPerSecond == 0 {
		c.Server.MessagesPerSecond = 50
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Presence.LeaseTTL == 0 {
		c.Presence.LeaseTTL = 30
	}
	if c.Presence.HeartbeatInterval == 0 {
		c.Presence.HeartbeatInterval = 10
	}
	if c.Presence.ReapInterval == 0 {
		c.Presence.ReapInterval = 5
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("无效的端口: %d", c.Server.Port)
	}
	if c.Server.MaxConnections < 0 {
		return fmt.Errorf("无效的最大连接数: %d", c.Server.MaxConnections)
	}
	if c.Server.MessagesPerSecond < 0 {
		return fmt.Errorf("无效的消息速率上限: %d", c.Server.MessagesPerSecond)
	}
	if c.Presence.HeartbeatInterval >= c.Presence.LeaseTTL {
		return fmt.Errorf("心跳间隔 (%ds) 必须小于租约有效期 (%ds)",
			c.Presence.HeartbeatInterval, c.Presence.LeaseTTL)
	}
	return nil
}

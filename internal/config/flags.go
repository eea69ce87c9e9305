package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀
const EnvPrefix = "SPYMASTER"

// LoadDotEnv 加载 .env 文件，文件不存在时忽略
func LoadDotEnv(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// BindEnv 将命令的 flag 绑定到 SPYMASTER_* 环境变量，命令行显式指定的值优先
func BindEnv(cmd *cobra.Command) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	flags := cmd.Flags()
	flags.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	flags.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = flags.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

// Overrides 命令行与环境变量对配置文件的覆盖项
type Overrides struct {
	Host          string
	Port          int
	Redis         string
	RedisPassword string
	RedisDB       int
	WordsFile     string
}

// Register 注册覆盖项对应的 flag
func (o *Overrides) Register(flags *pflag.FlagSet) {
	flags.StringVar(&o.Host, "host", "", "address to bind to (env: SPYMASTER_HOST)")
	flags.IntVarP(&o.Port, "port", "p", 0, "port to listen on (env: SPYMASTER_PORT)")
	flags.StringVar(&o.Redis, "redis", "", "redis address (env: SPYMASTER_REDIS)")
	flags.StringVar(&o.RedisPassword, "redis-password", "", "redis password (env: SPYMASTER_REDIS_PASSWORD)")
	flags.IntVar(&o.RedisDB, "redis-db", 0, "redis database (env: SPYMASTER_REDIS_DB)")
	flags.StringVar(&o.WordsFile, "words-file", "", "custom word list, one word per line (env: SPYMASTER_WORDS_FILE)")
}

// Apply 将已指定的覆盖项写入配置并重新校验
func (o *Overrides) Apply(flags *pflag.FlagSet, cfg *Config) error {
	if flags.Changed("host") {
		cfg.Server.Host = o.Host
	}
	if flags.Changed("port") {
		cfg.Server.Port = o.Port
	}
	if flags.Changed("redis") {
		cfg.Redis.Addr = o.Redis
	}
	if flags.Changed("redis-password") {
		cfg.Redis.Password = o.RedisPassword
	}
	if flags.Changed("redis-db") {
		cfg.Redis.DB = o.RedisDB
	}
	if flags.Changed("words-file") {
		cfg.Game.WordsFile = o.WordsFile
	}
	return cfg.Validate()
}

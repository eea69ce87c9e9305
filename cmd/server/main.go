package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/palemoky/spymaster/internal/config"
	"github.com/palemoky/spymaster/internal/gateway"
	"github.com/palemoky/spymaster/internal/logger"
)

func newCmd() *cobra.Command {
	var (
		configPath string
		verbose    bool
		overrides  config.Overrides
	)

	cmd := &cobra.Command{
		Use:           "spymaster-server",
		Short:         "Room store gateway for spymaster terminal clients.",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger.SetLevel(verbose)

			// 加载配置
			cfg, err := config.Load(configPath)
			if err != nil {
				if !errors.Is(err, os.ErrNotExist) {
					return err
				}
				logger.LogInfo("配置文件 %s 不存在，使用默认配置", configPath)
				cfg = config.Default()
			}
			if err := overrides.Apply(cmd.Flags(), cfg); err != nil {
				return err
			}

			srv, err := gateway.NewServer(cfg)
			if err != nil {
				return err
			}

			logger.LogInfo("🕵 spymaster 网关启动中...")
			return srv.Run(cmd.Context())
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&configPath, "config", "c", "configs/config.yaml", "path to config file (env: SPYMASTER_CONFIG)")
	fs.BoolVarP(&verbose, "verbose", "v", false, "log debug output (env: SPYMASTER_VERBOSE)")
	overrides.Register(fs)
	config.BindEnv(cmd)

	cmd.CompletionOptions.HiddenDefaultCmd = true
	return cmd
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		logger.LogError("%v", err)
	}

	// 优雅关闭
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newCmd().ExecuteContext(ctx); err != nil {
		logger.LogError("服务器退出: %v", err)
		stop()
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"carbonref/internal/config"
	"carbonref/internal/server"
	"carbonref/internal/util"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		port      int
		devMode   bool
		noBrowser bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg
			// 命令行端口仅在配置未显式指定时生效
			if port > 0 && !a.info.PortSpecified {
				cfg.Server.Port = port
			}
			if devMode {
				cfg.Server.DevMode = true
			}

			// 首次启动时写出默认配置，便于用户修改
			if !a.info.FileFound {
				if err := config.SaveConfig(cfg, a.info.Path); err != nil {
					a.log.WithError(err).WithField("path", a.info.Path).Warn("failed to write default config")
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.NewServer(a.store, server.Options{
				DevMode:   cfg.Server.DevMode,
				UploadDir: filepath.Join(config.ResolveDataDir(cfg), "uploads"),
			}, a.log)

			addr := fmt.Sprintf(":%d", cfg.Server.Port)
			url := util.LocalURL(cfg.Server.Port)
			a.log.WithField("addr", addr).Info("server starting")

			if cfg.Server.OpenBrowser && !noBrowser && !cfg.Server.DevMode {
				go func() {
					if err := util.OpenBrowser(url); err != nil {
						a.log.WithError(err).Warnf("无法自动打开浏览器，请手动访问: %s", url)
					}
				}()
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "请访问 %s\n", url)
			}

			return srv.Run(ctx, addr)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "服务端口 (config.toml 优先；仅当未显式配置 port 时生效)")
	cmd.Flags().BoolVar(&devMode, "dev", false, "开发模式")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "不自动打开浏览器")
	return cmd
}


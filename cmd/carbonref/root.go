package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"carbonref/internal/config"
	"carbonref/internal/logging"
	"carbonref/internal/store"
)

// app 命令间共享的运行环境
type app struct {
	configPath string
	dataDir    string
	logLevel   string

	cfg   *config.AppConfig
	info  config.LoadConfigInfo
	log   *logrus.Logger
	store *store.Store
}

// execute 构建命令树并执行，结束时释放数据库
func execute(args []string, out io.Writer) error {
	root, a := newRootCmd()
	defer a.close()

	if args != nil {
		root.SetArgs(args)
	}
	if out != nil {
		root.SetOut(out)
	}
	return root.Execute()
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	root := &cobra.Command{
		Use:           "carbonref",
		Short:         "道路工程造价清单碳排放核算工具",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "配置文件路径 (默认: 可执行文件同目录下的 config.toml)")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "数据目录 (覆盖配置文件)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "日志级别 (覆盖配置文件)")

	root.AddCommand(
		newServeCmd(a),
		newImportCmd(a),
		newResolveCmd(a),
		newExportCmd(a),
	)
	return root, a
}

// init 加载配置、初始化日志并打开数据库
func (a *app) init() error {
	cfg, info, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	if a.dataDir != "" {
		cfg.Data.DataDir = a.dataDir
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	a.cfg, a.info = cfg, info

	log, err := logging.Setup(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	a.log = log

	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return fmt.Errorf("创建数据目录失败: %w", err)
	}
	log.WithField("data_dir", dataDir).Debug("data directory ready")

	st, err := store.New(config.DBPath(cfg))
	if err != nil {
		return err
	}
	a.store = st
	return nil
}

func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

// lookupSheet 按 ID 或名称查找工作表；参数为空时使用当前工作表
// 数字参数既不是已有 ID 也不是表名时原样返回，解算结果为空
func (a *app) lookupSheet(cmd *cobra.Command, arg string) (int64, error) {
	ctx := cmd.Context()
	if arg == "" {
		id, err := a.store.GetCurrentSheetID()
		if err != nil {
			return 0, fmt.Errorf("未指定工作表且尚未选择当前工作表")
		}
		return id, nil
	}
	id, numErr := strconv.ParseInt(arg, 10, 64)
	if numErr == nil {
		if _, err := a.store.GetSheet(ctx, id); err == nil {
			return id, nil
		}
	}
	sh, err := a.store.GetSheetByName(ctx, arg)
	if err == nil {
		return sh.ID, nil
	}
	if numErr == nil && id > 0 && errors.Is(err, store.ErrSheetNotFound) {
		return id, nil
	}
	return 0, fmt.Errorf("工作表 %q: %w", arg, err)
}

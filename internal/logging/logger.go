// Package logging 基于 logrus 的日志初始化
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New 按级别与格式创建 Logger；format 取 text 或 json
func New(level, format string, out io.Writer) (*logrus.Logger, error) {
	l := logrus.New()
	if err := configure(l, level, format, out); err != nil {
		return nil, err
	}
	return l, nil
}

// Setup 配置全局标准 Logger 并返回
func Setup(level, format string) (*logrus.Logger, error) {
	l := logrus.StandardLogger()
	if err := configure(l, level, format, os.Stderr); err != nil {
		return nil, err
	}
	return l, nil
}

func configure(l *logrus.Logger, level, format string, out io.Writer) error {
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	switch strings.ToLower(format) {
	case "", "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("invalid log format %q", format)
	}

	l.SetLevel(lvl)
	if out != nil {
		l.SetOutput(out)
	}
	return nil
}

// LogError 记录带模块上下文的错误
func LogError(logger logrus.FieldLogger, module, funcName string, data any, err error) {
	fields := logrus.Fields{
		"module":   module,
		"funcName": funcName,
	}
	if data != nil {
		fields["data"] = data
	}
	logger.WithFields(fields).Error(err.Error())
}

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options 日志输出配置
type Options struct {
	Level string // trace/debug/info/warn/error，空为 info
	File  string // 非空时写入文件（TUI 模式下终端被占用）
	// Console 为 true 时写入 stderr，文件和终端同时配置时文件优先
	Console bool
	NoColor bool
}

// ParseLevel 解析日志级别，空字符串为 info
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("invalid log level %q", s)
	}
	return lvl, nil
}

// SetWriter configures a log writer for the global logger
func SetWriter(w io.Writer) {
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

// Setup 按配置初始化全局 logger，返回的 io.Closer 用于关闭日志文件
func Setup(opts Options) (io.Closer, error) {
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	zerolog.SetGlobalLevel(lvl)

	switch {
	case opts.File != "":
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		SetWriter(f)
		return f, nil
	case opts.Console:
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: opts.NoColor})
	default:
		log.Logger = zerolog.Nop()
	}
	return io.NopCloser(nil), nil
}

package main

import (
	"context"
	"errors"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"dockexplorer/internal/app"
	"dockexplorer/internal/config"
	"dockexplorer/internal/i18n"
	"dockexplorer/internal/logging"
	"dockexplorer/internal/ui"
)

// cli 命令共享的状态
type cli struct {
	configFile string
	v          *viper.Viper
	cfg        *config.Config
	logCloser  io.Closer
}

func newRootCmd() *cobra.Command {
	c := &cli{v: config.New()}

	root := &cobra.Command{
		Use:           "dockexplorer",
		Short:         "Browse Docker images, containers and registries as a tree",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.init(cmd, true); err != nil {
				return err
			}
			defer c.close()
			return c.runTUI(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configFile, "config", "", "config file (default ~/.dockexplorer/config.yaml)")
	flags.Int("refresh-interval", 1000, "auto refresh debounce in milliseconds, 0 disables")
	flags.String("hub-account", "", "Docker Hub account whose repositories are listed (enables the Hub node)")
	flags.String("log-level", "info", "set log-level: error, warn, info, debug, trace")
	flags.String("lang", "", "interface language: en, zh")

	bindFlags(c.v, flags, map[string]string{
		config.KeyRefreshInterval: "refresh-interval",
		config.KeyHubAccount:      "hub-account",
		config.KeyLogLevel:        "log-level",
		config.KeyLanguage:        "lang",
	})

	root.AddCommand(newTreeCmd(c), newSecretCmd(c))
	return root
}

// bindFlags 把命令行参数绑定到配置键，参数优先于环境变量和配置文件
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if f := flags.Lookup(name); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}
}

// init 读取配置并初始化日志和语言；tui 模式下日志写入文件
func (c *cli) init(cmd *cobra.Command, tui bool) error {
	if err := config.Read(c.v, c.configFile); err != nil {
		return err
	}
	if cmd.Flags().Changed("hub-account") {
		c.v.Set(config.KeyHubEnabled, true)
	}
	cfg, err := config.FromViper(c.v)
	if err != nil {
		return err
	}
	c.cfg = cfg

	opts := logging.Options{Level: cfg.LogLevel, Console: true}
	if tui {
		opts.File = cfg.LogFile
	}
	closer, err := logging.Setup(opts)
	if err != nil {
		return err
	}
	c.logCloser = closer

	i18n.Init(cfg.Language)
	log.Debug().Str("config", c.v.ConfigFileUsed()).Msg("configuration loaded")
	return nil
}

func (c *cli) close() {
	if c.logCloser != nil {
		_ = c.logCloser.Close()
	}
}

func (c *cli) runTUI(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a, err := app.New(c.cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Engine.Ping(ctx); err != nil {
		// 守护进程不可用时仍然启动，树中显示错误行
		log.Warn().Err(err).Msg("docker daemon not reachable")
	}

	a.Watch(ctx)
	c.watchConfig(a)

	p := tea.NewProgram(ui.NewModel(a.Controller, c.cfg.RequestTimeout), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

// watchConfig 配置文件修改后实时更新自动刷新间隔
func (c *cli) watchConfig(a *app.App) {
	path := c.v.ConfigFileUsed()
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	config.Watch(c.v, func(cfg *config.Config) {
		log.Info().Dur("interval", cfg.RefreshInterval).Msg("refresh interval updated")
		a.Controller.SetRefreshInterval(cfg.RefreshInterval)
	})
}

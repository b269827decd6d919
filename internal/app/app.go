// Package app 把配置装配成可运行的资源树：Docker 客户端、配置源、Hub 客户端、凭据存储、Catalog 和 Controller。
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"dockexplorer/internal/config"
	"dockexplorer/internal/docker"
	"dockexplorer/internal/explorer"
	"dockexplorer/internal/hub"
	"dockexplorer/internal/i18n"
	"dockexplorer/internal/registry"
	"dockexplorer/internal/secret"
)

// App 装配完成的资源树
type App struct {
	Config     *config.Config
	Engine     docker.Client
	Registries *registry.ConfigSource
	Hub        hub.Client
	Secrets    secret.Store
	Controller *explorer.Controller
}

// New 按配置创建所有依赖；Docker 客户端不会在这里连接守护进程
func New(cfg *config.Config) (*App, error) {
	engine, err := docker.NewLocalClient(cfg.DockerHost)
	if err != nil {
		return nil, err
	}
	return NewWithEngine(cfg, engine), nil
}

// NewWithEngine 使用给定的 Docker 客户端装配
func NewWithEngine(cfg *config.Config, engine docker.Client) *App {
	a := &App{
		Config:     cfg,
		Engine:     engine,
		Registries: registry.NewConfigSource(cfg.DockerConfigDir),
	}

	if cfg.HubEnabled {
		a.Hub = hub.NewClient(hub.Options{
			BaseURL:  cfg.HubURL,
			Registry: cfg.HubRegistry,
			Account:  cfg.HubAccount,
			PageSize: cfg.HubPageSize,
			Timeout:  cfg.RequestTimeout,
		})
		store, err := OpenSecrets(cfg, a.Registries)
		if err != nil {
			// 没有凭据存储时匿名访问 Hub
			log.Warn().Err(err).Str("backend", cfg.SecretsBackend).Msg("secret store unavailable")
		} else {
			a.Secrets = store
		}
	}

	icons := explorer.NewIcons(cfg.ResourcesDir)
	roots := explorer.NewRootSet(icons, i18n.T("images"), i18n.T("containers"), i18n.T("registries"))
	catalog := explorer.NewCatalog(roots, explorer.Deps{
		Engine:     engine,
		Hub:        a.Hub,
		Registries: a.Registries,
		Secrets:    a.Secrets,
		Icons:      icons,
	}, explorer.CatalogOptions{
		HubEnabled:    cfg.HubEnabled,
		HubLabel:      i18n.T("docker_hub"),
		HubAccount:    cfg.HubAccount,
		SecretService: cfg.SecretsService,
		SecretAccount: cfg.SecretsAccount,
	})
	a.Controller = explorer.NewController(catalog, roots, cfg.RefreshInterval)
	return a
}

// OpenSecrets 打开配置的凭据存储；credhelper 未指定助手时使用 config.json 的 credsStore
func OpenSecrets(cfg *config.Config, src registry.Source) (secret.Store, error) {
	helper := cfg.SecretsHelper
	if helper == "" && cfg.SecretsBackend == "credhelper" {
		store, err := src.CredentialsStore()
		if err != nil {
			return nil, err
		}
		helper = store
	}
	return secret.Open(cfg.SecretsBackend, secret.Options{
		KeyringBackends: cfg.KeyringBackends,
		FileDir:         cfg.SecretsDir,
		FilePassword:    cfg.SecretsPassword,
		Helper:          helper,
	})
}

// Watch 启动 Docker 事件和 config.json 监听，直到 ctx 结束
func (a *App) Watch(ctx context.Context) {
	if !a.Config.WatchEvents {
		return
	}
	go a.Controller.WatchEngine(ctx, a.Engine)
	if err := a.Controller.WatchRegistryConfig(ctx, a.Registries.Path()); err != nil {
		log.Debug().Err(err).Msg("registry config watch disabled")
	}
}

// Close 停止自动刷新并关闭 Docker 客户端
func (a *App) Close() error {
	a.Controller.Close()
	if a.Engine == nil {
		return nil
	}
	if err := a.Engine.Close(); err != nil && !errors.Is(err, docker.ErrClientNotInitialized) {
		return fmt.Errorf("close docker client: %w", err)
	}
	return nil
}

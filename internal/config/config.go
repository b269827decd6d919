package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const (
	appDir    = ".dockexplorer"
	fileName  = "config"
	fileType  = "yaml"
	envPrefix = "DOCKEXPLORER"
)

// 配置键
const (
	KeyDockerHost      = "docker.host"
	KeyRequestTimeout  = "docker.request_timeout"
	KeyDockerConfigDir = "docker.config_dir"
	KeyRefreshInterval = "explorer.refresh_interval"
	KeyWatchEvents     = "explorer.watch_events"
	KeyHubEnabled      = "hub.enabled"
	KeyHubAccount      = "hub.account"
	KeyHubURL          = "hub.url"
	KeyHubRegistry     = "hub.registry"
	KeyHubPageSize     = "hub.page_size"
	KeySecretsBackend  = "secrets.backend"
	KeySecretsService  = "secrets.service"
	KeySecretsAccount  = "secrets.account"
	KeySecretsDir      = "secrets.dir"
	KeySecretsPassword = "secrets.password"
	KeySecretsHelper   = "secrets.helper"
	KeyKeyringBackends = "secrets.keyring_backends"
	KeyLanguage        = "ui.language"
	KeyResourcesDir    = "ui.resources_dir"
	KeyLogFile         = "log.file"
	KeyLogLevel        = "log.level"
)

// Config 描述 dockexplorer 运行所需的配置。
// 来源优先级：命令行参数 > 环境变量（DOCKEXPLORER_ 前缀）> 配置文件 > 默认值
type Config struct {
	DockerHost      string        // Docker 守护进程地址，空表示走 SDK 默认行为
	RequestTimeout  time.Duration // 单次 Docker/Hub 请求超时
	DockerConfigDir string        // Docker CLI 配置目录，空表示 $DOCKER_CONFIG 或 ~/.docker

	RefreshInterval time.Duration // 自动刷新防抖间隔，<= 0 关闭
	WatchEvents     bool          // 监听 Docker 事件和 config.json 变化

	HubEnabled  bool
	HubAccount  string
	HubURL      string
	HubRegistry string
	HubPageSize int

	SecretsBackend  string   // keyring 或 credhelper
	SecretsService  string   // Hub token 的 service
	SecretsAccount  string   // Hub token 的 account
	SecretsDir      string   // keyring file 后端目录
	SecretsPassword string   // keyring file 后端密码
	SecretsHelper   string   // credhelper 后端的助手名称，空时使用 config.json 的 credsStore
	KeyringBackends []string // 允许的 keyring 后端

	Language     string // en / zh，空表示根据 LANG 自动检测
	ResourcesDir string // 图标资源目录

	LogFile  string
	LogLevel string
}

// Dir 返回 ~/.dockexplorer
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return appDir
	}
	return filepath.Join(home, appDir)
}

// FilePath 默认配置文件路径
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// New 创建带默认值和环境变量绑定的 viper 实例
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyDockerHost, os.Getenv("DOCKER_HOST"))
	v.SetDefault(KeyRequestTimeout, 10*time.Second)
	v.SetDefault(KeyDockerConfigDir, "")
	v.SetDefault(KeyRefreshInterval, 1000)
	v.SetDefault(KeyWatchEvents, true)
	v.SetDefault(KeyHubEnabled, false)
	v.SetDefault(KeyHubAccount, "")
	v.SetDefault(KeyHubURL, "https://hub.docker.com")
	v.SetDefault(KeyHubRegistry, "index.docker.io")
	v.SetDefault(KeyHubPageSize, 100)
	v.SetDefault(KeySecretsBackend, "keyring")
	v.SetDefault(KeySecretsService, "dockexplorer")
	v.SetDefault(KeySecretsAccount, "hub")
	v.SetDefault(KeySecretsDir, filepath.Join(Dir(), "keyring"))
	v.SetDefault(KeySecretsPassword, "")
	v.SetDefault(KeySecretsHelper, "")
	v.SetDefault(KeyKeyringBackends, []string{})
	v.SetDefault(KeyLanguage, "")
	v.SetDefault(KeyResourcesDir, "images")
	v.SetDefault(KeyLogFile, filepath.Join(Dir(), "dockexplorer.log"))
	v.SetDefault(KeyLogLevel, "info")
	return v
}

// Read 读取配置文件，path 为空时使用默认路径，默认文件不存在不算错误
func Read(v *viper.Viper, path string) error {
	explicit := path != ""
	if !explicit {
		path = FilePath()
	}
	v.SetConfigFile(path)
	v.SetConfigType(fileType)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !explicit && (errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

// Load 读取配置文件和环境变量
func Load(path string) (*Config, error) {
	v := New()
	if err := Read(v, path); err != nil {
		return nil, err
	}
	return FromViper(v)
}

// FromViper 从 viper 实例构建配置
func FromViper(v *viper.Viper) (*Config, error) {
	refresh, err := millis(v, KeyRefreshInterval)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DockerHost:      v.GetString(KeyDockerHost),
		RequestTimeout:  v.GetDuration(KeyRequestTimeout),
		DockerConfigDir: v.GetString(KeyDockerConfigDir),
		RefreshInterval: refresh,
		WatchEvents:     v.GetBool(KeyWatchEvents),
		HubEnabled:      v.GetBool(KeyHubEnabled),
		HubAccount:      v.GetString(KeyHubAccount),
		HubURL:          v.GetString(KeyHubURL),
		HubRegistry:     v.GetString(KeyHubRegistry),
		HubPageSize:     v.GetInt(KeyHubPageSize),
		SecretsBackend:  v.GetString(KeySecretsBackend),
		SecretsService:  v.GetString(KeySecretsService),
		SecretsAccount:  v.GetString(KeySecretsAccount),
		SecretsDir:      v.GetString(KeySecretsDir),
		SecretsPassword: v.GetString(KeySecretsPassword),
		SecretsHelper:   v.GetString(KeySecretsHelper),
		KeyringBackends: v.GetStringSlice(KeyKeyringBackends),
		Language:        v.GetString(KeyLanguage),
		ResourcesDir:    v.GetString(KeyResourcesDir),
		LogFile:         v.GetString(KeyLogFile),
		LogLevel:        v.GetString(KeyLogLevel),
	}

	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("%s must be positive, got %s", KeyRequestTimeout, cfg.RequestTimeout)
	}
	if cfg.HubEnabled && cfg.HubAccount == "" {
		return nil, fmt.Errorf("%s is required when %s is true", KeyHubAccount, KeyHubEnabled)
	}
	return cfg, nil
}

// millis 读取以毫秒为单位的整数配置，"2s" 之类的非整数值报错而不是当作 0
func millis(v *viper.Viper, key string) (time.Duration, error) {
	var n int64
	switch raw := v.Get(key).(type) {
	case nil:
	case int:
		n = int64(raw)
	case int64:
		n = raw
	case float64:
		if raw != float64(int64(raw)) {
			return 0, fmt.Errorf("%s must be an integer number of milliseconds, got %v", key, raw)
		}
		n = int64(raw)
	default:
		s := strings.TrimSpace(fmt.Sprint(raw))
		parsed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer number of milliseconds, got %q", key, s)
		}
		n = parsed
	}
	return time.Duration(n) * time.Millisecond, nil
}

// Watch 监听已读取的配置文件，变化后回调新的配置；解析失败的修改被忽略
func Watch(v *viper.Viper, onChange func(*Config)) {
	v.OnConfigChange(func(fsnotify.Event) {
		cfg, err := FromViper(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}

// Package registry 读取 Docker CLI 配置（config.json）中登录过的镜像仓库。
package registry

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/docker/cli/cli/config"
)

// ErrMalformedConfig config.json 无法解析
var ErrMalformedConfig = errors.New("malformed docker config")

// Source 提供已配置的仓库列表
type Source interface {
	// Registries 返回 auths 中的仓库地址（已排序）
	Registries() ([]string, error)
	// CredentialsStore 返回 credsStore 字段（如 desktop、osxkeychain），未配置时为空
	CredentialsStore() (string, error)
	// Path 返回 config.json 的完整路径
	Path() string
}

// ConfigSource 基于 Docker CLI 配置目录的实现
type ConfigSource struct {
	dir string
}

// NewConfigSource 创建配置源，dir 为空时使用 Docker CLI 默认目录（$DOCKER_CONFIG 或 ~/.docker）
func NewConfigSource(dir string) *ConfigSource {
	if dir == "" {
		dir = config.Dir()
	}
	return &ConfigSource{dir: dir}
}

// Path 返回 config.json 路径
func (s *ConfigSource) Path() string {
	return filepath.Join(s.dir, config.ConfigFileName)
}

// Dir 返回配置目录
func (s *ConfigSource) Dir() string {
	return s.dir
}

// Registries 每次调用都重新读取文件，文件不存在时返回空列表
func (s *ConfigSource) Registries() ([]string, error) {
	cf, err := config.Load(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedConfig, err)
	}

	keys := make([]string, 0, len(cf.AuthConfigs))
	for k := range cf.AuthConfigs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// CredentialsStore 返回配置的凭据助手名称
func (s *ConfigSource) CredentialsStore() (string, error) {
	cf, err := config.Load(s.dir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedConfig, err)
	}
	return cf.CredentialsStore, nil
}

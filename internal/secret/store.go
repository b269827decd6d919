// Package secret 提供凭据读写能力（Docker Hub token 等）。
//
// 读取是资源树枚举的一部分；写入只在用户显式执行 `dockexplorer secret set` 时发生。
package secret

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound 凭据不存在
var ErrNotFound = errors.New("secret not found")

// Store 凭据存储
type Store interface {
	ReadSecret(service, account string) (string, error)
	WriteSecret(service, account, secret string) error
}

// Options 打开凭据存储的参数
type Options struct {
	// keyring 后端
	KeyringBackends []string // 允许的 keyring 后端，为空表示全部可用后端
	FileDir         string   // file 后端目录
	FilePassword    string   // file 后端密码，为空时 file 后端不可用

	// credhelper 后端
	Helper string // 凭据助手名称，如 desktop、osxkeychain、pass
}

// Opener 根据选项打开一种后端
type Opener func(opts Options) (Store, error)

var backends = map[string]Opener{
	"keyring":    openKeyring,
	"credhelper": openCredHelper,
}

// Backends 返回已注册的后端名称
func Backends() []string {
	names := make([]string, 0, len(backends))
	for n := range backends {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Open 按名称打开凭据存储
func Open(backend string, opts Options) (Store, error) {
	open, ok := backends[backend]
	if !ok {
		return nil, fmt.Errorf("unknown secret backend %q (available: %s)", backend, strings.Join(Backends(), ", "))
	}
	return open(opts)
}

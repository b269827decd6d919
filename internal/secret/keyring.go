package secret

import (
	"errors"
	"fmt"
	"sync"

	"github.com/99designs/keyring"
)

// KeyringStore 基于系统钥匙串（或加密文件）的实现，service 对应一个 keyring，account 对应其中的 key
type KeyringStore struct {
	base keyring.Config

	mu    sync.Mutex
	rings map[string]keyring.Keyring
}

func openKeyring(opts Options) (Store, error) {
	return NewKeyringStore(opts), nil
}

// NewKeyringStore 创建 keyring 存储，keyring 在首次访问时才打开
func NewKeyringStore(opts Options) *KeyringStore {
	cfg := keyring.Config{
		FileDir: opts.FileDir,
	}
	for _, b := range opts.KeyringBackends {
		cfg.AllowedBackends = append(cfg.AllowedBackends, keyring.BackendType(b))
	}
	if opts.FilePassword != "" {
		cfg.FilePasswordFunc = keyring.FixedStringPrompt(opts.FilePassword)
	} else {
		cfg.FilePasswordFunc = noPassword
	}
	return &KeyringStore{
		base:  cfg,
		rings: make(map[string]keyring.Keyring),
	}
}

// errNoPassword file 后端未配置密码；界面运行时不能在终端提示输入
var errNoPassword = errors.New("keyring file password not configured")

func noPassword(string) (string, error) {
	return "", errNoPassword
}

func (s *KeyringStore) ring(service string) (keyring.Keyring, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.rings[service]; ok {
		return r, nil
	}
	cfg := s.base
	cfg.ServiceName = service
	r, err := keyring.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open keyring %s: %w", service, err)
	}
	s.rings[service] = r
	return r, nil
}

// ReadSecret 读取凭据
func (s *KeyringStore) ReadSecret(service, account string) (string, error) {
	r, err := s.ring(service)
	if err != nil {
		return "", err
	}
	item, err := r.Get(account)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("read secret %s/%s: %w", service, account, err)
	}
	return string(item.Data), nil
}

// WriteSecret 写入凭据
func (s *KeyringStore) WriteSecret(service, account, secret string) error {
	r, err := s.ring(service)
	if err != nil {
		return err
	}
	err = r.Set(keyring.Item{
		Key:   account,
		Label: service + " " + account,
		Data:  []byte(secret),
	})
	if err != nil {
		return fmt.Errorf("write secret %s/%s: %w", service, account, err)
	}
	return nil
}

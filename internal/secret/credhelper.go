package secret

import (
	"fmt"

	"github.com/docker/docker-credential-helpers/client"
	"github.com/docker/docker-credential-helpers/credentials"
)

// CredHelperStore 通过 docker-credential-<helper> 程序读写凭据
// service 对应 ServerURL，account 对应 Username
type CredHelperStore struct {
	program client.ProgramFunc
}

func openCredHelper(opts Options) (Store, error) {
	if opts.Helper == "" {
		return nil, fmt.Errorf("credential helper not configured (set secrets.helper or credsStore in docker config)")
	}
	return NewCredHelperStore(client.NewShellProgramFunc("docker-credential-" + opts.Helper)), nil
}

// NewCredHelperStore 使用指定的程序创建存储
func NewCredHelperStore(program client.ProgramFunc) *CredHelperStore {
	return &CredHelperStore{program: program}
}

// ReadSecret 读取凭据，保存的用户名与 account 不一致时视为不存在
func (s *CredHelperStore) ReadSecret(service, account string) (string, error) {
	creds, err := client.Get(s.program, service)
	if err != nil {
		if credentials.IsErrCredentialsNotFound(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("read secret %s/%s: %w", service, account, err)
	}
	if creds.Username != account {
		return "", ErrNotFound
	}
	return creds.Secret, nil
}

// WriteSecret 写入凭据
func (s *CredHelperStore) WriteSecret(service, account, secret string) error {
	err := client.Store(s.program, &credentials.Credentials{
		ServerURL: service,
		Username:  account,
		Secret:    secret,
	})
	if err != nil {
		return fmt.Errorf("write secret %s/%s: %w", service, account, err)
	}
	return nil
}

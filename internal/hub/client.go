// Package hub 访问 Docker Hub：仓库元数据走 Hub REST API，标签列表走 Registry v2 API。
package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/remote"
)

const (
	DefaultURL      = "https://hub.docker.com"
	DefaultRegistry = name.DefaultRegistry
	DefaultPageSize = 100
)

// ErrMalformedResponse Hub 返回的数据无法解析
var ErrMalformedResponse = errors.New("malformed docker hub response")

// Repository Hub 上的仓库
type Repository struct {
	Namespace   string    `json:"namespace"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PullCount   int64     `json:"pull_count"`
	StarCount   int64     `json:"star_count"`
	LastUpdated time.Time `json:"last_updated"`
}

// FullName 返回 namespace/name
func (r Repository) FullName() string {
	return r.Namespace + "/" + r.Name
}

// Tag 仓库中的一个标签
type Tag struct {
	Name string `json:"name"`
}

// Client 抽象资源树需要的 Hub 能力
type Client interface {
	ListRepositories(ctx context.Context, account string) ([]Repository, error)
	GetRepository(ctx context.Context, namespace, name string) (*Repository, error)
	ListTags(ctx context.Context, namespace, name string) ([]Tag, error)
	// SetToken 设置账号的 Hub access token，空字符串表示匿名访问
	SetToken(token string)
}

// Options 客户端选项
type Options struct {
	BaseURL    string        // Hub REST API 地址
	Registry   string        // Registry 地址（标签列表）
	Account    string        // token 所属的 Hub 账号，Registry 认证的用户名
	PageSize   int           // 分页大小
	Timeout    time.Duration // HTTP 超时
	Insecure   bool          // Registry 使用 http（测试用）
	HTTPClient *http.Client
}

type client struct {
	http     *http.Client
	baseURL  string
	origin   *url.URL // 解析后的 baseURL，无法解析时为 nil
	registry string
	account  string
	pageSize int
	insecure bool

	mu    sync.RWMutex
	token string
}

// NewClient 创建 Hub 客户端，未设置的选项使用默认值
func NewClient(opts Options) Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultURL
	}
	if opts.Registry == "" {
		opts.Registry = DefaultRegistry
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	c := &client{
		http:     httpClient,
		baseURL:  strings.TrimSuffix(opts.BaseURL, "/"),
		registry: opts.Registry,
		account:  opts.Account,
		pageSize: opts.PageSize,
		insecure: opts.Insecure,
	}
	if u, err := url.Parse(c.baseURL); err == nil && u.Host != "" {
		c.origin = u
	}
	return c
}

func (c *client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// sameOrigin 请求是否发往 Hub API 本身，token 只发给它
func (c *client) sameOrigin(u *url.URL) bool {
	if c.origin == nil {
		return false
	}
	return strings.EqualFold(u.Scheme, c.origin.Scheme) && strings.EqualFold(u.Host, c.origin.Host)
}

type repositoryPage struct {
	Count   int          `json:"count"`
	Next    *string      `json:"next"`
	Results []Repository `json:"results"`
}

// ListRepositories 列出账号下的全部仓库，沿 next 链接翻页；
// next 指回已访问过的页面时停止翻页
func (c *client) ListRepositories(ctx context.Context, account string) ([]Repository, error) {
	if account == "" {
		return nil, fmt.Errorf("list repositories: empty account")
	}

	next := fmt.Sprintf("%s/v2/repositories/%s/?page_size=%d", c.baseURL, url.PathEscape(account), c.pageSize)
	seen := make(map[string]bool)
	var repos []Repository
	for next != "" {
		u, err := url.Parse(next)
		if err != nil {
			return nil, fmt.Errorf("list repositories of %s: %w: bad next link %q", account, ErrMalformedResponse, next)
		}
		if c.origin != nil {
			u = c.origin.ResolveReference(u)
		}
		if seen[u.String()] {
			break
		}
		seen[u.String()] = true

		var page repositoryPage
		if err := c.getJSON(ctx, u.String(), &page); err != nil {
			return nil, fmt.Errorf("list repositories of %s: %w", account, err)
		}
		repos = append(repos, page.Results...)

		next = ""
		if page.Next != nil {
			next = *page.Next
		}
	}
	return repos, nil
}

// GetRepository 获取单个仓库的详细信息（包含 pull_count）
func (c *client) GetRepository(ctx context.Context, namespace, repoName string) (*Repository, error) {
	u := fmt.Sprintf("%s/v2/repositories/%s/%s/", c.baseURL, url.PathEscape(namespace), url.PathEscape(repoName))

	var repo Repository
	if err := c.getJSON(ctx, u, &repo); err != nil {
		return nil, fmt.Errorf("get repository %s/%s: %w", namespace, repoName, err)
	}
	if repo.Namespace == "" {
		repo.Namespace = namespace
	}
	if repo.Name == "" {
		repo.Name = repoName
	}
	return &repo, nil
}

// ListTags 通过 Registry v2 API 列出仓库标签
func (c *client) ListTags(ctx context.Context, namespace, repoName string) ([]Tag, error) {
	var opts []name.Option
	if c.insecure {
		opts = append(opts, name.Insecure)
	}
	repo, err := name.NewRepository(fmt.Sprintf("%s/%s/%s", c.registry, namespace, repoName), opts...)
	if err != nil {
		return nil, fmt.Errorf("parse repository %s/%s: %w", namespace, repoName, err)
	}

	// Hub access token 不能直接当 Registry token 用，作为密码交给 ggcr 完成 token 交换
	remoteOpts := []remote.Option{remote.WithContext(ctx)}
	if token := c.bearer(); token != "" && c.account != "" {
		remoteOpts = append(remoteOpts, remote.WithAuth(&authn.Basic{Username: c.account, Password: token}))
	} else {
		remoteOpts = append(remoteOpts, remote.WithAuthFromKeychain(authn.DefaultKeychain))
	}

	names, err := remote.List(repo, remoteOpts...)
	if err != nil {
		return nil, fmt.Errorf("list tags of %s/%s: %w", namespace, repoName, err)
	}

	tags := make([]Tag, 0, len(names))
	for _, n := range names {
		tags = append(tags, Tag{Name: n})
	}
	return tags, nil
}

func (c *client) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token := c.bearer(); token != "" && c.sameOrigin(req.URL) {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

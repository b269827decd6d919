package explorer

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"dockexplorer/internal/docker"
	"dockexplorer/internal/hub"
	"dockexplorer/internal/registry"
	"dockexplorer/internal/secret"
)

// ContainerStatuses 容器节点包含的状态集合
var ContainerStatuses = []string{"created", "restarting", "running", "paused", "exited", "dead"}

const untaggedLabel = "<none>:<none>"

// Enumerator 按父节点枚举子节点
type Enumerator interface {
	Enumerate(ctx context.Context, parent *Node) ([]*Node, error)
}

// Deps Catalog 依赖的外部服务，Hub 和 Secrets 可以为空
type Deps struct {
	Engine     docker.Client
	Hub        hub.Client
	Registries registry.Source
	Secrets    secret.Store
	Icons      Icons
}

// CatalogOptions Catalog 行为选项
type CatalogOptions struct {
	HubEnabled     bool   // 在 Registries 下显示 Docker Hub 节点
	HubLabel       string // Docker Hub 节点显示名
	HubAccount     string // 列出仓库的 Hub 账号
	SecretService  string // Hub token 在凭据存储中的 service
	SecretAccount  string // Hub token 在凭据存储中的 account
	HubConcurrency int    // 并发获取仓库详情的数量
}

// Catalog 节点目录：每次调用只查询一个外部服务并把结果映射为节点
// Catalog 没有调度副作用，自动刷新由 Controller 负责
type Catalog struct {
	roots *RootSet
	deps  Deps
	opts  CatalogOptions
}

// NewCatalog 创建节点目录
func NewCatalog(roots *RootSet, deps Deps, opts CatalogOptions) *Catalog {
	if opts.HubConcurrency <= 0 {
		opts.HubConcurrency = 4
	}
	if opts.HubLabel == "" {
		opts.HubLabel = "Docker Hub"
	}
	return &Catalog{roots: roots, deps: deps, opts: opts}
}

// Enumerate 返回 parent 的子节点，parent 为 nil 时返回三个根节点
func (c *Catalog) Enumerate(ctx context.Context, parent *Node) ([]*Node, error) {
	if parent == nil {
		return c.roots.All(), nil
	}

	switch parent.Category {
	case CategoryImagesRoot:
		return c.images(ctx)
	case CategoryContainersRoot:
		return c.containers(ctx)
	case CategoryRegistriesRoot:
		return c.registries(ctx)
	case CategoryHubRegistry:
		return c.hubRepositories(ctx)
	case CategoryHubRepository:
		return c.hubTags(ctx, parent)
	default:
		return []*Node{}, nil
	}
}

func (c *Catalog) images(ctx context.Context) ([]*Node, error) {
	images, err := c.deps.Engine.ListImages(ctx)
	if err != nil {
		return nil, upstream(ServiceEngine, err, nil)
	}

	nodes := make([]*Node, 0, len(images))
	for i := range images {
		img := &images[i]
		if len(img.RepoTags) == 0 {
			nodes = append(nodes, c.imageNode(untaggedLabel, img))
			continue
		}
		for _, tag := range img.RepoTags {
			nodes = append(nodes, c.imageNode(tag, img))
		}
	}
	return nodes, nil
}

func (c *Catalog) imageNode(label string, img *docker.ImageDescriptor) *Node {
	return &Node{
		Label:       label,
		Collapsible: CollapsibleNone,
		Category:    CategoryImage,
		Icon:        c.deps.Icons.Default(),
		Image:       img,
	}
}

func (c *Catalog) containers(ctx context.Context) ([]*Node, error) {
	containers, err := c.deps.Engine.ListContainers(ctx, ContainerStatuses)
	if err != nil {
		return nil, upstream(ServiceEngine, err, nil)
	}

	nodes := make([]*Node, 0, len(containers))
	for i := range containers {
		ct := &containers[i]
		node := &Node{
			Label:       ContainerLabel(ct),
			Collapsible: CollapsibleNone,
			Container:   ct,
		}
		if IsStopped(ct) {
			node.Category = CategoryContainerStopped
			node.Icon = c.deps.Icons.Stopped()
		} else {
			node.Category = CategoryContainerRunning
			node.Icon = c.deps.Icons.Running()
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// IsStopped exited 和 dead 视为已停止，其余状态视为运行中
func IsStopped(ct *docker.ContainerDescriptor) bool {
	return ct.State == "exited" || ct.State == "dead"
}

// ContainerLabel 生成 "<image> (<name>) [<status>]"，name 取第一个名称并去掉前导分隔符
func ContainerLabel(ct *docker.ContainerDescriptor) string {
	name := ""
	if len(ct.Names) > 0 && len(ct.Names[0]) > 0 {
		name = ct.Names[0][1:]
	}
	return fmt.Sprintf("%s (%s) [%s]", ct.Image, name, ct.Status)
}

func (c *Catalog) registries(ctx context.Context) ([]*Node, error) {
	keys, err := c.deps.Registries.Registries()
	if err != nil {
		return nil, upstream(ServiceRegistry, err, registry.ErrMalformedConfig)
	}

	nodes := make([]*Node, 0, len(keys)+1)
	for _, k := range keys {
		nodes = append(nodes, &Node{
			Label:       k,
			Collapsible: CollapsibleCollapsed,
			Category:    CategoryRegistryEntry,
			Icon:        c.deps.Icons.Default(),
		})
	}

	if c.opts.HubEnabled && c.deps.Hub != nil {
		c.loadHubToken()
		nodes = append(nodes, &Node{
			Label:       c.opts.HubLabel,
			Collapsible: CollapsibleCollapsed,
			Category:    CategoryHubRegistry,
			Icon:        c.deps.Icons.Default(),
		})
	}
	return nodes, nil
}

// loadHubToken 只读凭据存储，把 Hub token 交给 Hub 客户端
// 读取失败不影响枚举结果
func (c *Catalog) loadHubToken() {
	if c.deps.Secrets == nil || c.opts.SecretService == "" {
		return
	}
	token, err := c.deps.Secrets.ReadSecret(c.opts.SecretService, c.opts.SecretAccount)
	switch {
	case errors.Is(err, secret.ErrNotFound):
		log.Debug().Str("service", c.opts.SecretService).Msg("no hub token stored, using anonymous access")
		c.deps.Hub.SetToken("")
	case err != nil:
		log.Warn().Err(err).Str("service", c.opts.SecretService).Msg("failed to read hub token")
	default:
		c.deps.Hub.SetToken(token)
	}
}

func (c *Catalog) hubRepositories(ctx context.Context) ([]*Node, error) {
	if c.deps.Hub == nil {
		return []*Node{}, nil
	}
	repos, err := c.deps.Hub.ListRepositories(ctx, c.opts.HubAccount)
	if err != nil {
		return nil, upstream(ServiceHub, err, hub.ErrMalformedResponse)
	}

	// 列表接口不一定带 pull_count，逐个获取详情，保持原有顺序
	details := make([]*hub.Repository, len(repos))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.HubConcurrency)
	for i := range repos {
		g.Go(func() error {
			repo, err := c.deps.Hub.GetRepository(gctx, repos[i].Namespace, repos[i].Name)
			if err != nil {
				return err
			}
			details[i] = repo
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, upstream(ServiceHub, err, hub.ErrMalformedResponse)
	}

	nodes := make([]*Node, 0, len(details))
	for _, repo := range details {
		nodes = append(nodes, &Node{
			Label:       fmt.Sprintf("%s/%s [%d pulls]", repo.Namespace, repo.Name, repo.PullCount),
			Collapsible: CollapsibleCollapsed,
			Category:    CategoryHubRepository,
			Icon:        c.deps.Icons.Default(),
			Repository:  repo,
		})
	}
	return nodes, nil
}

func (c *Catalog) hubTags(ctx context.Context, parent *Node) ([]*Node, error) {
	if c.deps.Hub == nil || parent.Repository == nil {
		return []*Node{}, nil
	}
	repo := parent.Repository
	tags, err := c.deps.Hub.ListTags(ctx, repo.Namespace, repo.Name)
	if err != nil {
		return nil, upstream(ServiceHub, err, hub.ErrMalformedResponse)
	}

	nodes := make([]*Node, 0, len(tags))
	for _, t := range tags {
		nodes = append(nodes, &Node{
			Label:       repo.Name + ":" + t.Name,
			Collapsible: CollapsibleNone,
			Category:    CategoryHubImageTag,
			Icon:        c.deps.Icons.Default(),
			Repository:  repo,
		})
	}
	return nodes, nil
}

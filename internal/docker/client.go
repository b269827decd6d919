package docker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/events"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	sdk "github.com/docker/docker/client"
)

// Docker Endpoint 配置说明：
//
//   - 不设置 docker.host / DOCKER_HOST 时，SDK 使用平台默认地址
//     （Linux/macOS: unix:///var/run/docker.sock，Windows: npipe:////./pipe/docker_engine）
//   - 远程 Docker：DOCKER_HOST=tcp://主机:2375（无 TLS）或 :2376（TLS）
//   - TLS：DOCKER_TLS_VERIFY=1 + DOCKER_CERT_PATH
//
// 运行 `dockexplorer tree` 可以快速验证 endpoint 配置是否可用。

// ErrClientNotInitialized 客户端为空时返回
var ErrClientNotInitialized = errors.New("docker client not initialized")

// ImageDescriptor 镜像描述（来自 Engine API 的镜像列表）
type ImageDescriptor struct {
	ID       string    // 镜像 ID（完整，sha256:...）
	RepoTags []string  // 仓库标签，悬垂镜像为空
	Size     int64     // 大小（字节）
	Created  time.Time // 创建时间
}

// ContainerDescriptor 容器描述（来自 Engine API 的容器列表）
type ContainerDescriptor struct {
	ID      string    // 容器 ID（完整）
	Image   string    // 镜像名称
	Names   []string  // 容器名称列表，Engine 返回的名称带前导 "/"
	Status  string    // 状态描述，如 "Up 2 hours" 或 "Exited (0) 3 minutes ago"
	State   string    // 状态: created, running, exited, dead 等
	Created time.Time // 创建时间
}

// EventType Engine 事件的对象类型
type EventType string

const (
	EventContainer EventType = "container"
	EventImage     EventType = "image"
)

// Event 表示一条 Docker Engine 事件（只保留资源树关心的字段）
type Event struct {
	Type      EventType // 对象类型: container / image
	Action    string    // 事件动作: start, die, pull, delete 等
	ActorID   string    // 对象 ID
	Name      string    // 对象名称（容器名或镜像名）
	Timestamp time.Time // 事件时间
}

// Client 抽象了资源树需要的 Docker 能力
// 这是一个接口，方便远程 Docker 或测试替身实现
type Client interface {
	// Ping 验证 Docker 守护进程是否可用
	Ping(ctx context.Context) error

	// ListImages 获取镜像列表（不含中间层镜像）
	ListImages(ctx context.Context) ([]ImageDescriptor, error)

	// ListContainers 获取容器列表
	// statuses: 按状态过滤，为空表示不过滤（仍然包含已停止的容器）
	ListContainers(ctx context.Context, statuses []string) ([]ContainerDescriptor, error)

	// WatchEvents 监听容器和镜像事件
	// 返回事件通道和错误通道，context 控制监听的生命周期
	WatchEvents(ctx context.Context) (<-chan Event, <-chan error)

	// Close 关闭客户端连接，释放资源
	Close() error
}

// LocalClient 封装 Docker SDK 客户端实现。
type LocalClient struct {
	cli *sdk.Client
}

// NewLocalClient 基于环境变量创建 Docker 客户端，并开启 API 版本协商。
// host 非空时覆盖 DOCKER_HOST。
func NewLocalClient(host string) (*LocalClient, error) {
	opts := []sdk.Opt{
		sdk.FromEnv,
		sdk.WithAPIVersionNegotiation(),
	}
	if host != "" {
		opts = append(opts, sdk.WithHost(host))
	}

	cli, err := sdk.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	return &LocalClient{cli: cli}, nil
}

// Ping 用于验证 Docker 守护进程是否可用。
func (c *LocalClient) Ping(ctx context.Context) error {
	if c == nil || c.cli == nil {
		return ErrClientNotInitialized
	}
	_, err := c.cli.Ping(ctx)
	return err
}

// ListImages 获取镜像列表
func (c *LocalClient) ListImages(ctx context.Context) ([]ImageDescriptor, error) {
	if c == nil || c.cli == nil {
		return nil, ErrClientNotInitialized
	}

	images, err := c.cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}

	result := make([]ImageDescriptor, 0, len(images))
	for _, img := range images {
		result = append(result, ImageDescriptor{
			ID:       img.ID,
			RepoTags: img.RepoTags,
			Size:     img.Size,
			Created:  time.Unix(img.Created, 0),
		})
	}
	return result, nil
}

// ListContainers 获取容器列表
func (c *LocalClient) ListContainers(ctx context.Context, statuses []string) ([]ContainerDescriptor, error) {
	if c == nil || c.cli == nil {
		return nil, ErrClientNotInitialized
	}

	filterArgs := filters.NewArgs()
	for _, s := range statuses {
		filterArgs.Add("status", s)
	}

	containers, err := c.cli.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filterArgs,
	})
	if err != nil {
		return nil, fmt.Errorf("list containers: %w", err)
	}

	result := make([]ContainerDescriptor, 0, len(containers))
	for _, ct := range containers {
		result = append(result, ContainerDescriptor{
			ID:      ct.ID,
			Image:   ct.Image,
			Names:   ct.Names,
			Status:  ct.Status,
			State:   string(ct.State),
			Created: time.Unix(ct.Created, 0),
		})
	}
	return result, nil
}

// watchedActions 会改变资源树内容的事件动作
var watchedActions = map[EventType]map[string]bool{
	EventContainer: {
		"create": true, "start": true, "stop": true, "die": true,
		"destroy": true, "rename": true, "pause": true, "unpause": true,
	},
	EventImage: {
		"pull": true, "tag": true, "untag": true, "delete": true,
		"import": true, "load": true,
	},
}

// WatchEvents 监听 Docker 容器和镜像事件
func (c *LocalClient) WatchEvents(ctx context.Context) (<-chan Event, <-chan error) {
	eventChan := make(chan Event, 10)
	errorChan := make(chan error, 1)

	go func() {
		defer close(eventChan)
		defer close(errorChan)

		if c == nil || c.cli == nil {
			errorChan <- ErrClientNotInitialized
			return
		}

		filterArgs := filters.NewArgs()
		filterArgs.Add("type", string(events.ContainerEventType))
		filterArgs.Add("type", string(events.ImageEventType))

		msgChan, errChan := c.cli.Events(ctx, events.ListOptions{
			Filters: filterArgs,
		})

		for {
			select {
			case <-ctx.Done():
				return
			case err := <-errChan:
				if err != nil && ctx.Err() == nil {
					errorChan <- fmt.Errorf("watch docker events: %w", err)
				}
				return
			case msg := <-msgChan:
				ev, ok := convertEvent(msg)
				if !ok {
					continue
				}
				select {
				case eventChan <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return eventChan, errorChan
}

// convertEvent 过滤并转换 SDK 事件，忽略不影响资源树的动作
func convertEvent(msg events.Message) (Event, bool) {
	typ := EventType(msg.Type)
	actions, ok := watchedActions[typ]
	if !ok {
		return Event{}, false
	}

	// exec_start: /bin/sh 这类动作带参数，只取冒号前的部分
	action, _, _ := strings.Cut(string(msg.Action), ":")
	if !actions[action] {
		return Event{}, false
	}

	ts := time.Unix(msg.Time, 0)
	if msg.TimeNano != 0 {
		ts = time.Unix(0, msg.TimeNano)
	}

	return Event{
		Type:      typ,
		Action:    action,
		ActorID:   msg.Actor.ID,
		Name:      msg.Actor.Attributes["name"],
		Timestamp: ts,
	}, true
}

// Close 关闭 Docker 客户端连接
func (c *LocalClient) Close() error {
	if c == nil || c.cli == nil {
		return nil
	}
	return c.cli.Close()
}

package explorer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"dockexplorer/internal/docker"
)

// WatchEngine 把 Docker Engine 事件转换为对应根节点的变更事件，直到 ctx 结束或事件流出错
func (c *Controller) WatchEngine(ctx context.Context, engine docker.Client) {
	events, errs := engine.WatchEvents(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errs:
			if ok && err != nil {
				log.Warn().Err(err).Msg("docker event stream stopped")
			}
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			log.Debug().Str("type", string(ev.Type)).Str("action", ev.Action).Str("name", ev.Name).Msg("docker event")
			switch ev.Type {
			case docker.EventContainer:
				c.NotifyChanged(c.roots.Containers)
			case docker.EventImage:
				c.NotifyChanged(c.roots.Images)
			}
		}
	}
}

// WatchRegistryConfig 监听 Docker CLI 配置文件，变化时刷新 Registries 根节点
// 监听的是所在目录，docker login 会以替换文件的方式写入
func (c *Controller) WatchRegistryConfig(ctx context.Context, configPath string) error {
	dir := filepath.Dir(configPath)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	go func() {
		defer watcher.Close()
		target := filepath.Clean(configPath)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
					log.Debug().Str("file", ev.Name).Str("op", ev.Op.String()).Msg("registry config changed")
					c.NotifyChanged(c.roots.Registries)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Msg("registry config watcher error")
			}
		}
	}()
	return nil
}

package explorer

import "path/filepath"

const (
	iconMono    = "mono_moby_small.png"
	iconRunning = "moby_small.png"
)

// Icons 图标资源，目录结构为 <dir>/light/*.png 和 <dir>/dark/*.png
type Icons struct {
	dir string
}

// NewIcons 创建图标资源
func NewIcons(dir string) Icons {
	return Icons{dir: dir}
}

func (i Icons) pair(file string) IconRef {
	return IconRef{
		Light: filepath.Join(i.dir, "light", file),
		Dark:  filepath.Join(i.dir, "dark", file),
	}
}

// Default 默认图标（单色鲸鱼），没有专门图标的节点都使用它
func (i Icons) Default() IconRef { return i.pair(iconMono) }

// Stopped 已停止容器
func (i Icons) Stopped() IconRef { return i.pair(iconMono) }

// Running 运行中容器
func (i Icons) Running() IconRef { return i.pair(iconRunning) }

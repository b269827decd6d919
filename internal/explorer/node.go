// Package explorer 实现 Docker 资源树：节点目录（Catalog）负责按父节点枚举子节点，
// 视图控制器（Controller）负责根节点、变更通知和自动刷新防抖。
package explorer

import (
	"dockexplorer/internal/docker"
	"dockexplorer/internal/hub"
)

// Category 节点类别，决定展开时查询哪个外部服务
type Category int

const (
	CategoryImagesRoot Category = iota
	CategoryContainersRoot
	CategoryRegistriesRoot
	CategoryImage
	CategoryContainerRunning
	CategoryContainerStopped
	CategoryRegistryEntry
	CategoryHubRegistry
	CategoryHubRepository
	CategoryHubImageTag
	// CategoryError 枚举失败时由界面插入的错误行，不会由 Catalog 产生
	CategoryError
)

// ContextValue 返回类别的上下文标识（用于菜单/命令匹配）
func (c Category) ContextValue() string {
	switch c {
	case CategoryImagesRoot:
		return "dockerImagesLabel"
	case CategoryContainersRoot:
		return "dockerContainersLabel"
	case CategoryRegistriesRoot:
		return "dockerRegistriesLabel"
	case CategoryImage:
		return "dockerImage"
	case CategoryContainerRunning:
		return "dockerContainerRunning"
	case CategoryContainerStopped:
		return "dockerContainerStopped"
	case CategoryRegistryEntry:
		return "dockerRegistryLabel"
	case CategoryHubRegistry:
		return "dockerHubRegistryLabel"
	case CategoryHubRepository:
		return "dockerHubRegistryImage"
	case CategoryHubImageTag:
		return "dockerHubRegistryImageTag"
	case CategoryError:
		return "dockerExplorerError"
	default:
		return "unknown"
	}
}

// String 实现 fmt.Stringer
func (c Category) String() string {
	return c.ContextValue()
}

// IsRoot 是否为三个根类别之一
func (c Category) IsRoot() bool {
	return c == CategoryImagesRoot || c == CategoryContainersRoot || c == CategoryRegistriesRoot
}

// Collapsible 节点折叠状态
type Collapsible int

const (
	CollapsibleNone Collapsible = iota
	CollapsibleCollapsed
	CollapsibleExpanded
)

// IconRef 亮色/暗色主题下的图标路径，零值表示不显示图标
type IconRef struct {
	Light string
	Dark  string
}

// IsZero 是否未设置图标
func (i IconRef) IsZero() bool {
	return i.Light == "" && i.Dark == ""
}

// Node 资源树中的一个显示节点
// 每次枚举都会重新创建，创建后不再修改
type Node struct {
	Label       string
	Collapsible Collapsible
	Category    Category
	Icon        IconRef

	// 负载，最多设置一个
	Image      *docker.ImageDescriptor
	Container  *docker.ContainerDescriptor
	Repository *hub.Repository

	// Err 仅 CategoryError 节点使用
	Err error
}

// Key 返回节点在同级中的标识，用于在刷新后保持展开状态
func (n *Node) Key() string {
	if n == nil {
		return ""
	}
	return n.Category.ContextValue() + "/" + n.Label
}

// Expandable 节点是否可以展开
func (n *Node) Expandable() bool {
	return n != nil && n.Collapsible != CollapsibleNone
}

// ErrorNode 构造用于展示枚举失败的叶子节点
func ErrorNode(err error) *Node {
	return &Node{
		Label:       err.Error(),
		Collapsible: CollapsibleNone,
		Category:    CategoryError,
		Err:         err,
	}
}

// RootSet 三个固定根节点，在视图生命周期内只创建一次
type RootSet struct {
	Images     *Node
	Containers *Node
	Registries *Node
}

// NewRootSet 创建根节点，labels 依次为 Images、Containers、Registries 的显示名
func NewRootSet(icons Icons, images, containers, registries string) *RootSet {
	root := func(label string, c Category) *Node {
		return &Node{Label: label, Collapsible: CollapsibleCollapsed, Category: c, Icon: icons.Default()}
	}
	return &RootSet{
		Images:     root(images, CategoryImagesRoot),
		Containers: root(containers, CategoryContainersRoot),
		Registries: root(registries, CategoryRegistriesRoot),
	}
}

// All 按固定顺序返回根节点
func (r *RootSet) All() []*Node {
	return []*Node{r.Images, r.Containers, r.Registries}
}

// ForCategory 返回类别对应的根节点，非根类别返回 nil
func (r *RootSet) ForCategory(c Category) *Node {
	switch c {
	case CategoryImagesRoot:
		return r.Images
	case CategoryContainersRoot:
		return r.Containers
	case CategoryRegistriesRoot:
		return r.Registries
	}
	return nil
}

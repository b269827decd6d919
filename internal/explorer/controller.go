package explorer

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DefaultRefreshInterval 默认自动刷新防抖间隔
const DefaultRefreshInterval = 1000 * time.Millisecond

// Change 树变更事件，Node 为 nil 表示整棵树
type Change struct {
	Node *Node
}

// TreeDataProvider 界面拉取数据的约定
// 界面按需调用 GetChildren，收到变更事件后自行重新拉取对应子树
type TreeDataProvider interface {
	GetChildren(ctx context.Context, node *Node) ([]*Node, error)
	GetTreeItem(node *Node) *Node
	Subscribe() (<-chan Change, func())
}

var _ TreeDataProvider = (*Controller)(nil)

// Controller 视图控制器：持有根节点，向界面发布变更事件，并在界面静默后触发自动刷新
type Controller struct {
	catalog  Enumerator
	roots    *RootSet
	debounce *Debouncer
	interval atomic.Int64

	mu     sync.RWMutex
	subs   map[int]chan Change
	nextID int
	closed bool
}

// NewController 创建视图控制器，interval <= 0 表示关闭自动刷新
func NewController(catalog Enumerator, roots *RootSet, interval time.Duration) *Controller {
	c := &Controller{
		catalog: catalog,
		roots:   roots,
		subs:    make(map[int]chan Change),
	}
	c.interval.Store(int64(interval))
	c.debounce = NewDebouncer(c.RefreshInterval, c.RefreshAll)
	return c
}

// Roots 返回根节点
func (c *Controller) Roots() *RootSet {
	return c.roots
}

// RefreshInterval 当前自动刷新间隔
func (c *Controller) RefreshInterval() time.Duration {
	return time.Duration(c.interval.Load())
}

// SetRefreshInterval 修改自动刷新间隔，下一次活动时生效
func (c *Controller) SetRefreshInterval(d time.Duration) {
	c.interval.Store(int64(d))
	if d <= 0 {
		c.debounce.Stop()
	}
}

// GetChildren 委托 Catalog 枚举子节点，然后记录一次活动以重置自动刷新定时器
// 枚举失败同样计为活动
func (c *Controller) GetChildren(ctx context.Context, node *Node) ([]*Node, error) {
	reqID := uuid.NewString()
	start := time.Now()

	nodes, err := c.catalog.Enumerate(ctx, node)

	logger := log.With().Str("request", reqID).Str("parent", parentName(node)).Dur("took", time.Since(start)).Logger()
	if err != nil {
		logger.Warn().Err(err).Msg("enumerate failed")
	} else {
		logger.Debug().Int("count", len(nodes)).Msg("enumerated")
	}

	c.activity()
	return nodes, err
}

func parentName(node *Node) string {
	if node == nil {
		return "<root>"
	}
	return node.Category.ContextValue()
}

// GetTreeItem 节点本身就是显示项
func (c *Controller) GetTreeItem(node *Node) *Node {
	return node
}

// activity 界面拉取数据的活动事件，驱动防抖定时器
func (c *Controller) activity() {
	c.debounce.Touch()
}

// Subscribe 订阅变更事件，返回事件通道和取消函数
func (c *Controller) Subscribe() (<-chan Change, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan Change, 16)
	if c.closed {
		close(ch)
		return ch, func() {}
	}
	id := c.nextID
	c.nextID++
	c.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if sub, ok := c.subs[id]; ok {
				delete(c.subs, id)
				close(sub)
			}
		})
	}
}

// NotifyChanged 发布变更事件，node 为 nil 表示整棵树
// 订阅者通道已满时丢弃该事件
func (c *Controller) NotifyChanged(node *Node) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for id, sub := range c.subs {
		select {
		case sub <- Change{Node: node}:
		default:
			log.Debug().Int("subscriber", id).Str("node", parentName(node)).Msg("subscriber full, change dropped")
		}
	}
}

// RefreshAll 对三个根节点分别发布一次变更事件
func (c *Controller) RefreshAll() {
	for _, root := range c.roots.All() {
		c.NotifyChanged(root)
	}
}

// Close 停止自动刷新并关闭所有订阅
func (c *Controller) Close() {
	c.debounce.Stop()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for id, sub := range c.subs {
		close(sub)
		delete(c.subs, id)
	}
}

package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"dockexplorer/internal/explorer"
	"dockexplorer/internal/i18n"
	"dockexplorer/internal/ui/components"
	"dockexplorer/internal/ui/styles"
)

// Refresher 支持手动全部刷新的数据源
type Refresher interface {
	RefreshAll()
}

// intervalSource 能报告自动刷新间隔的数据源
type intervalSource interface {
	RefreshInterval() time.Duration
}

// Model 资源树界面，只通过 TreeDataProvider 拉取数据
type Model struct {
	provider explorer.TreeDataProvider
	timeout  time.Duration

	changes     <-chan explorer.Change
	unsubscribe func()

	// 按路径缓存的子节点，不存在表示尚未加载
	children map[string][]*explorer.Node
	expanded map[string]bool
	loading  map[string]bool

	rows   []row
	cursor int
	offset int

	keys     components.KeyMap
	help     help.Model
	spinner  spinner.Model
	showHelp bool

	lastRefresh time.Time
	width       int
	height      int
}

// NewModel 创建界面模型并订阅变更事件，timeout 为单次拉取的超时
func NewModel(provider explorer.TreeDataProvider, timeout time.Duration) Model {
	changes, unsubscribe := provider.Subscribe()
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = styles.KeyStyle
	return Model{
		provider:    provider,
		timeout:     timeout,
		changes:     changes,
		unsubscribe: unsubscribe,
		children:    make(map[string][]*explorer.Node),
		expanded:    make(map[string]bool),
		loading:     make(map[string]bool),
		keys:        components.DefaultKeyMap(),
		help:        help.New(),
		spinner:     sp,
	}
}

func (m Model) Init() tea.Cmd {
	m.loading[rootPath] = true
	return tea.Batch(m.load(nil, rootPath), m.waitForChange(), m.spinner.Tick)
}

// load 异步拉取 node 的子节点，node 为 nil 表示根
func (m Model) load(node *explorer.Node, path string) tea.Cmd {
	provider, timeout := m.provider, m.timeout
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		nodes, err := provider.GetChildren(ctx, node)
		return childrenLoadedMsg{path: path, nodes: nodes, err: err}
	}
}

// waitForChange 等待下一条变更事件
func (m Model) waitForChange() tea.Cmd {
	changes := m.changes
	return func() tea.Msg {
		ch, ok := <-changes
		if !ok {
			return changesClosedMsg{}
		}
		return changeMsg{change: ch}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case childrenLoadedMsg:
		cmd := m.applyChildren(msg)
		return m, cmd

	case changeMsg:
		cmd := m.handleChange(msg.change)
		return m, tea.Batch(cmd, m.waitForChange())

	case changesClosedMsg:
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// applyChildren 写入拉取结果；失败时插入一行错误节点
// 已展开的子节点会随父节点一起重新拉取
func (m *Model) applyChildren(msg childrenLoadedMsg) tea.Cmd {
	delete(m.loading, msg.path)
	if msg.path != rootPath && m.nodeAt(msg.path) == nil {
		// 父节点已在刷新中消失
		return nil
	}

	nodes := make([]*explorer.Node, 0, len(msg.nodes))
	for _, n := range msg.nodes {
		nodes = append(nodes, m.provider.GetTreeItem(n))
	}
	if msg.err != nil {
		nodes = []*explorer.Node{explorer.ErrorNode(msg.err)}
	}
	m.children[msg.path] = nodes
	if msg.path == rootPath {
		m.lastRefresh = time.Now()
	}

	var cmds []tea.Cmd
	for _, n := range nodes {
		p := childPath(msg.path, n)
		if n.Expandable() && m.expanded[p] {
			m.loading[p] = true
			cmds = append(cmds, m.load(n, p))
		}
	}
	m.prune()
	m.rebuild()
	return tea.Batch(cmds...)
}

// prune 删除不再可达的缓存
func (m *Model) prune() {
	for path := range m.children {
		if path != rootPath && m.nodeAt(path) == nil {
			delete(m.children, path)
		}
	}
}

// handleChange 重新拉取发生变化的子树；未展开的子树只清除缓存，下次展开时再拉取
func (m *Model) handleChange(ch explorer.Change) tea.Cmd {
	if ch.Node == nil {
		m.loading[rootPath] = true
		return m.load(nil, rootPath)
	}

	path, ok := m.pathOf(ch.Node)
	if !ok {
		return nil
	}
	if !m.expanded[path] {
		delete(m.children, path)
		return nil
	}
	m.loading[path] = true
	return m.load(ch.Node, path)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.unsubscribe != nil {
			m.unsubscribe()
		}
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
	case key.Matches(msg, m.keys.Up):
		m.cursor--
		m.clampCursor()
	case key.Matches(msg, m.keys.Down):
		m.cursor++
		m.clampCursor()
	case key.Matches(msg, m.keys.Home):
		m.cursor = 0
		m.clampCursor()
	case key.Matches(msg, m.keys.End):
		m.cursor = len(m.rows) - 1
		m.clampCursor()
	case key.Matches(msg, m.keys.Toggle):
		cmd := m.toggle()
		return m, cmd
	case key.Matches(msg, m.keys.Collapse):
		m.collapse()
	case key.Matches(msg, m.keys.Refresh):
		if r, ok := m.provider.(Refresher); ok {
			r.RefreshAll()
		}
	case key.Matches(msg, m.keys.Language):
		i18n.ToggleLanguage()
		m.keys = components.DefaultKeyMap()
	}
	return m, nil
}

// toggle 展开或折叠光标所在节点，首次展开时拉取子节点
func (m *Model) toggle() tea.Cmd {
	r, ok := m.current()
	if !ok || r.kind != rowNode || !r.node.Expandable() {
		return nil
	}
	if m.expanded[r.path] {
		m.expanded[r.path] = false
		m.rebuild()
		return nil
	}

	m.expanded[r.path] = true
	m.rebuild()
	if _, cached := m.children[r.path]; cached || m.loading[r.path] {
		return nil
	}
	m.loading[r.path] = true
	return m.load(r.node, r.path)
}

// collapse 折叠当前节点，已折叠时跳到父节点
func (m *Model) collapse() {
	r, ok := m.current()
	if !ok {
		return
	}
	if r.kind == rowNode && m.expanded[r.path] {
		m.expanded[r.path] = false
		m.rebuild()
		return
	}
	for i, other := range m.rows {
		if other.kind == rowNode && other.path == r.parent {
			m.cursor = i
			m.clampCursor()
			return
		}
	}
}

func (m *Model) current() (row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return row{}, false
	}
	return m.rows[m.cursor], true
}

// rebuild 重新展开行并尽量保持光标在原来的路径上
func (m *Model) rebuild() {
	prev, hadPrev := m.current()
	m.rows = m.flatten()
	if hadPrev {
		for i, r := range m.rows {
			if r.path == prev.path && r.kind == prev.kind {
				m.cursor = i
				break
			}
		}
	}
	m.clampCursor()
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}

	visible := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if visible > 0 && m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
}

// visibleRows 树区域可显示的行数，未知窗口大小时不限制
func (m *Model) visibleRows() int {
	if m.height == 0 {
		return 0
	}
	n := m.height - 5
	if n < 1 {
		n = 1
	}
	return n
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("🐳 DockExplorer"))
	b.WriteString("  ")
	b.WriteString(styles.MutedStyle.Render(m.refreshInfo()))
	b.WriteString("\n\n")

	if len(m.rows) == 0 && m.loading[rootPath] {
		b.WriteString(m.spinner.View() + " " + i18n.T("loading") + "\n")
	}

	end := len(m.rows)
	if visible := m.visibleRows(); visible > 0 && m.offset+visible < end {
		end = m.offset + visible
	}
	for i := m.offset; i < end; i++ {
		line := m.renderRow(m.rows[i])
		if i == m.cursor {
			line = styles.SelectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}

	if m.showHelp {
		b.WriteString(styles.BoxStyle.Render(m.help.View(m.keys)))
	} else {
		b.WriteString(styles.StatusBarStyle.Render(m.help.View(m.keys)))
	}
	return b.String()
}

func (m Model) refreshInfo() string {
	info := i18n.T("auto_refresh") + ": "
	if src, ok := m.provider.(intervalSource); ok {
		if iv := src.RefreshInterval(); iv > 0 {
			info += iv.String()
		} else {
			info += i18n.T("disabled")
		}
	} else {
		info += "-"
	}
	if !m.lastRefresh.IsZero() {
		info += "  " + i18n.T("refresh") + ": " + m.lastRefresh.Format("15:04:05")
	}
	info += "  [" + i18n.GetLanguageDisplay() + "]"
	return info
}

func (m Model) renderRow(r row) string {
	indent := strings.Repeat("  ", r.depth)
	switch r.kind {
	case rowLoading:
		return indent + "  " + m.spinner.View() + " " + styles.MutedStyle.Render(i18n.T("loading"))
	case rowEmpty:
		return indent + "  " + styles.MutedStyle.Render(i18n.T("empty"))
	}

	n := r.node
	marker := "  "
	if n.Expandable() {
		marker = "▸ "
		if m.expanded[r.path] {
			marker = "▾ "
		}
	}
	return indent + marker + Label(n)
}

// Label 节点的显示文本（带状态符号）
func Label(n *explorer.Node) string {
	switch n.Category {
	case explorer.CategoryImagesRoot:
		return styles.RootStyle.Render(i18n.T("images"))
	case explorer.CategoryContainersRoot:
		return styles.RootStyle.Render(i18n.T("containers"))
	case explorer.CategoryRegistriesRoot:
		return styles.RootStyle.Render(i18n.T("registries"))
	case explorer.CategoryContainerRunning:
		return styles.RunningStyle.Render("●") + " " + n.Label
	case explorer.CategoryContainerStopped:
		return styles.StoppedStyle.Render("○ " + n.Label)
	case explorer.CategoryError:
		return styles.ErrorStyle.Render("✗ " + errorText(n.Err))
	case explorer.CategoryHubRegistry, explorer.CategoryRegistryEntry:
		return styles.SubtitleStyle.Render(n.Label)
	}
	return n.Label
}

// errorText 上游错误的本地化说明
func errorText(err error) string {
	if err == nil {
		return i18n.T("error")
	}
	var prefix string
	switch {
	case explorer.IsMalformed(err):
		prefix = i18n.T("malformed_response")
	case explorer.IsUnavailable(err):
		prefix = serviceText(err)
	default:
		return fmt.Sprintf("%s: %v", i18n.T("error"), err)
	}
	return fmt.Sprintf("%s (%v)", prefix, err)
}

func serviceText(err error) string {
	var ue *explorer.UpstreamError
	if !errors.As(err, &ue) {
		return i18n.T("error")
	}
	switch ue.Service {
	case explorer.ServiceEngine:
		return i18n.T("docker_unavailable")
	case explorer.ServiceHub:
		return i18n.T("hub_unavailable")
	case explorer.ServiceRegistry:
		return i18n.T("registry_unavailable")
	}
	return i18n.T("error")
}

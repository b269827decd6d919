package components

import (
	"github.com/charmbracelet/bubbles/key"

	"dockexplorer/internal/i18n"
)

// KeyMap 资源树快捷键映射（使用 bubbles/key 管理）
type KeyMap struct {
	Quit key.Binding
	Help key.Binding

	// 导航快捷键
	Up   key.Binding
	Down key.Binding
	Home key.Binding
	End  key.Binding

	// 树操作
	Toggle   key.Binding
	Collapse key.Binding
	Refresh  key.Binding
	Language key.Binding
}

// DefaultKeyMap 返回默认的快捷键映射，帮助文字使用当前语言；切换语言后需重新创建
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", i18n.T("quit")),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", i18n.T("help")),
		),

		// vim 风格
		Up: key.NewBinding(
			key.WithKeys("k", i18n.T("up")),
			key.WithHelp("k/↑", i18n.T("up")),
		),
		Down: key.NewBinding(
			key.WithKeys("j", i18n.T("down")),
			key.WithHelp("j/↓", i18n.T("down")),
		),
		Home: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", i18n.T("top")),
		),
		End: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", i18n.T("bottom")),
		),

		Toggle: key.NewBinding(
			key.WithKeys("enter", " ", "l", "right"),
			key.WithHelp("enter", i18n.T("toggle_expand")),
		),
		Collapse: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", i18n.T("collapse")),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", i18n.T("refresh_all")),
		),
		Language: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", i18n.T("switch_lang")),
		),
	}
}

// ShortHelp 返回简短的帮助信息（用于底部状态栏）
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Refresh, k.Help, k.Quit}
}

// FullHelp 返回完整的帮助信息（用于帮助面板）
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Home, k.End},
		{k.Toggle, k.Collapse, k.Refresh},
		{k.Language, k.Help, k.Quit},
	}
}

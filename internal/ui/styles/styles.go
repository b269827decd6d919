// Package styles 定义全局统一的 UI 样式
package styles

import "github.com/charmbracelet/lipgloss"

// 颜色常量
const (
	ColorPrimary   = "220" // 黄色 - 标题、根节点
	ColorSecondary = "81"  // 蓝色 - 键名、仓库
	ColorSuccess   = "82"  // 绿色 - 运行中
	ColorError     = "196" // 红色 - 错误
	ColorMuted     = "245" // 灰色 - 次要信息、提示
	ColorBorder    = "240" // 深灰 - 边框
)

// 标题样式
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorPrimary)).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSecondary)).
			Bold(true)
)

// 文本样式
var (
	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorMuted))

	KeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSecondary))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorError)).
			Bold(true)
)

// 节点状态样式
var (
	RunningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSuccess))

	StoppedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorMuted))

	RootStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorPrimary)).
			Bold(true)

	SelectedStyle = lipgloss.NewStyle().
			Reverse(true)
)

// 边框/容器样式
var (
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorBorder)).
			Padding(0, 1)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorMuted)).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(lipgloss.Color(ColorBorder))
)

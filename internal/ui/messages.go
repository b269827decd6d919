package ui

import "dockexplorer/internal/explorer"

// childrenLoadedMsg 一次 GetChildren 的结果
type childrenLoadedMsg struct {
	path  string
	nodes []*explorer.Node
	err   error
}

// changeMsg 控制器发布的变更事件
type changeMsg struct {
	change explorer.Change
}

// changesClosedMsg 订阅已关闭
type changesClosedMsg struct{}

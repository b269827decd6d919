package i18n

var zhMessages = &Messages{
	Images:     "镜像",
	Containers: "容器",
	Registries: "镜像仓库",
	DockerHub:  "Docker Hub",

	Loading: "加载中...",
	Error:   "错误",
	Empty:   "（空）",
	Refresh: "刷新",

	Quit:         "退出",
	Help:         "帮助",
	Up:           "上移",
	Down:         "下移",
	Top:          "顶部",
	Bottom:       "底部",
	ToggleExpand: "展开/折叠",
	Collapse:     "折叠",
	RefreshAll:   "全部刷新",
	SwitchLang:   "切换语言",

	AutoRefresh: "自动刷新",
	Disabled:    "已关闭",

	DockerUnavailable:   "无法连接 Docker 守护进程",
	HubUnavailable:      "无法连接 Docker Hub",
	RegistryUnavailable: "无法读取 Docker 配置",
	MalformedResponse:   "响应格式异常",
}

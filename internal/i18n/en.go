package i18n

var enMessages = &Messages{
	Images:     "Images",
	Containers: "Containers",
	Registries: "Registries",
	DockerHub:  "Docker Hub",

	Loading: "Loading...",
	Error:   "Error",
	Empty:   "(empty)",
	Refresh: "Refresh",

	Quit:         "quit",
	Help:         "help",
	Up:           "up",
	Down:         "down",
	Top:          "top",
	Bottom:       "bottom",
	ToggleExpand: "expand/collapse",
	Collapse:     "collapse",
	RefreshAll:   "refresh all",
	SwitchLang:   "language",

	AutoRefresh: "auto refresh",
	Disabled:    "disabled",

	DockerUnavailable:   "Docker daemon is not reachable",
	HubUnavailable:      "Docker Hub is not reachable",
	RegistryUnavailable: "Docker config could not be read",
	MalformedResponse:   "unexpected response format",
}

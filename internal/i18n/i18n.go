package i18n

import (
	"os"
	"strings"
	"sync/atomic"
)

// Language type
type Language string

const (
	EN Language = "en"
	ZH Language = "zh"
)

var current atomic.Value

func init() {
	current.Store(EN)
}

// Messages all text messages
type Messages struct {
	// Roots
	Images     string
	Containers string
	Registries string
	DockerHub  string

	// Common
	Loading string
	Error   string
	Empty   string
	Refresh string

	// Key hints
	Quit         string
	Help         string
	Up           string
	Down         string
	Top          string
	Bottom       string
	ToggleExpand string
	Collapse     string
	RefreshAll   string
	SwitchLang   string

	// Status bar
	AutoRefresh string
	Disabled    string

	// Errors
	DockerUnavailable   string
	HubUnavailable      string
	RegistryUnavailable string
	MalformedResponse   string
}

var messages = map[Language]*Messages{
	EN: enMessages,
	ZH: zhMessages,
}

// SetLanguage set current language
func SetLanguage(lang Language) {
	if _, ok := messages[lang]; ok {
		current.Store(lang)
	}
}

// GetLanguage get current language
func GetLanguage() Language {
	return current.Load().(Language)
}

// ToggleLanguage toggle between EN and ZH
func ToggleLanguage() Language {
	next := ZH
	if GetLanguage() == ZH {
		next = EN
	}
	current.Store(next)
	return next
}

// GetLanguageDisplay get display name for current language
func GetLanguageDisplay() string {
	if GetLanguage() == ZH {
		return "中文"
	}
	return "EN"
}

// ParseLanguage 解析配置中的语言，无法识别时返回 false
func ParseLanguage(s string) (Language, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(s, "zh"):
		return ZH, true
	case strings.HasPrefix(s, "en"):
		return EN, true
	}
	return EN, false
}

// T get translated text
func T(key string) string {
	m := messages[GetLanguage()]
	if m == nil {
		m = messages[EN]
	}

	switch key {
	case "images":
		return m.Images
	case "containers":
		return m.Containers
	case "registries":
		return m.Registries
	case "docker_hub":
		return m.DockerHub

	case "loading":
		return m.Loading
	case "error":
		return m.Error
	case "empty":
		return m.Empty
	case "refresh":
		return m.Refresh

	case "quit":
		return m.Quit
	case "help":
		return m.Help
	case "up":
		return m.Up
	case "down":
		return m.Down
	case "top":
		return m.Top
	case "bottom":
		return m.Bottom
	case "toggle_expand":
		return m.ToggleExpand
	case "collapse":
		return m.Collapse
	case "refresh_all":
		return m.RefreshAll
	case "switch_lang":
		return m.SwitchLang

	case "auto_refresh":
		return m.AutoRefresh
	case "disabled":
		return m.Disabled

	case "docker_unavailable":
		return m.DockerUnavailable
	case "hub_unavailable":
		return m.HubUnavailable
	case "registry_unavailable":
		return m.RegistryUnavailable
	case "malformed_response":
		return m.MalformedResponse

	default:
		return key
	}
}

// DetectLanguage detect language from environment variables
func DetectLanguage() Language {
	lang := os.Getenv("LANG")
	if lang == "" {
		lang = os.Getenv("LANGUAGE")
	}
	if lang == "" {
		lang = os.Getenv("LC_ALL")
	}

	if l, ok := ParseLanguage(lang); ok {
		return l
	}
	return EN
}

// Init initialize i18n; 配置的语言优先，否则根据环境变量检测
func Init(configured string) {
	if l, ok := ParseLanguage(configured); ok {
		SetLanguage(l)
		return
	}
	SetLanguage(DetectLanguage())
}

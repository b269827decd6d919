package explorer

import (
	"errors"
	"fmt"
)

// Service 外部服务名称
type Service string

const (
	ServiceEngine   Service = "docker engine"
	ServiceHub      Service = "docker hub"
	ServiceRegistry Service = "registry config"
)

// ErrorKind 上游错误类型
type ErrorKind int

const (
	// KindUnavailable 服务不可达或请求失败
	KindUnavailable ErrorKind = iota
	// KindMalformed 服务返回的数据无法解析
	KindMalformed
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnavailable:
		return "unavailable"
	case KindMalformed:
		return "malformed response"
	default:
		return "unknown"
	}
}

// UpstreamError 枚举时外部服务调用失败
// 服务正常返回零条数据不是错误，返回空列表
type UpstreamError struct {
	Service Service
	Kind    ErrorKind
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Service, e.Kind, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsUnavailable 判断是否为连接类错误
func IsUnavailable(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.Kind == KindUnavailable
}

// IsMalformed 判断是否为数据格式错误
func IsMalformed(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.Kind == KindMalformed
}

// upstream 包装外部调用错误，err 链中包含 malformed 哨兵时归类为 KindMalformed
func upstream(service Service, err error, malformed error) error {
	kind := KindUnavailable
	if malformed != nil && errors.Is(err, malformed) {
		kind = KindMalformed
	}
	return &UpstreamError{Service: service, Kind: kind, Err: err}
}

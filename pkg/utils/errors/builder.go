package errors

import (
	"fmt"
	"net/http"
	"sync"

	"google.golang.org/grpc/codes"
)

// serviceRegistry 记录已分配的服务代码，防止多个服务抢占同一段错误码。
var (
	serviceRegistry = make(map[int]string) // 服务代码 -> 服务名
	serviceMu       sync.Mutex
)

// RegisterService 登记一个服务代码。服务初始化时调用一次。
// 同一代码被不同服务重复登记时 panic。
//
// Example:
//
//	func init() {
//	    errors.RegisterService(ServiceDocQA, "docqa")
//	}
func RegisterService(code int, name string) {
	serviceMu.Lock()
	defer serviceMu.Unlock()

	if existing, ok := serviceRegistry[code]; ok {
		if existing != name {
			panic(fmt.Sprintf("service code %d already registered by '%s', cannot register for '%s'", code, existing, name))
		}
		return
	}
	serviceRegistry[code] = name
}

func validateCodeParams(service, category, sequence int) {
	if service < 0 || service > 99 {
		panic(fmt.Sprintf("errors: service code must be 0-99, got %d", service))
	}
	if category < 0 || category > 99 {
		panic(fmt.Sprintf("errors: category code must be 0-99, got %d", category))
	}
	if sequence < 0 || sequence > 999 {
		panic(fmt.Sprintf("errors: sequence must be 0-999, got %d", sequence))
	}
}

// NewError 构造并注册一个 Errno，HTTP 状态和 gRPC 码完全自定义。
// 注册冲突或缺少英文消息时 panic。
//
// Example:
//
//	var ErrDocQACorrupted = errors.NewError(ServiceDocQA, errors.CategoryResource, 9,
//	    http.StatusUnprocessableEntity, codes.FailedPrecondition,
//	    "Document corrupted", "文档已损坏")
func NewError(service, category, sequence int, httpStatus int, grpcCode codes.Code, messageEN, messageZH string) *Errno {
	validateCodeParams(service, category, sequence)
	if messageEN == "" {
		panic("errors: english message is required")
	}

	return Register(&Errno{
		Code:      MakeCode(service, category, sequence),
		HTTP:      httpStatus,
		GRPCCode:  grpcCode,
		MessageEN: messageEN,
		MessageZH: messageZH,
	})
}

// 以下按类别预设 HTTP 状态和 gRPC 码，业务错误优先使用这些入口。

// NewRequestErr 注册一个请求参数错误 (HTTP 400)。
//
// Example:
//
//	var ErrDocQAEmptyQuestion = errors.NewRequestErr(ServiceDocQA, 2,
//	    "Question must not be empty", "问题不能为空")
func NewRequestErr(service, sequence int, en, zh string) *Errno {
	return NewError(service, CategoryRequest, sequence, http.StatusBadRequest, codes.InvalidArgument, en, zh)
}

// NewNotFoundErr 注册一个资源不存在错误 (HTTP 404)。
//
// Example:
//
//	var ErrDocQADocumentNotFound = errors.NewNotFoundErr(ServiceDocQA, 1,
//	    "Document not found", "文档不存在")
func NewNotFoundErr(service, sequence int, en, zh string) *Errno {
	return NewError(service, CategoryResource, sequence, http.StatusNotFound, codes.NotFound, en, zh)
}

// NewInternalErr 注册一个内部处理错误 (HTTP 500)。
//
// Example:
//
//	var ErrDocQAExtractFailed = errors.NewInternalErr(ServiceDocQA, 1,
//	    "Text extraction failed", "文本提取失败")
func NewInternalErr(service, sequence int, en, zh string) *Errno {
	return NewError(service, CategoryInternal, sequence, http.StatusInternalServerError, codes.Internal, en, zh)
}

// NewNetworkErr 注册一个下游依赖不可用错误 (HTTP 503)。
//
// Example:
//
//	var ErrDocQAVectorStoreUnavailable = errors.NewNetworkErr(ServiceDocQA, 1,
//	    "Vector store unavailable", "向量存储不可用")
func NewNetworkErr(service, sequence int, en, zh string) *Errno {
	return NewError(service, CategoryNetwork, sequence, http.StatusServiceUnavailable, codes.Unavailable, en, zh)
}

// NewTimeoutErr 注册一个超时错误 (HTTP 504)。
//
// Example:
//
//	var ErrDocQAQueryTimeout = errors.NewTimeoutErr(ServiceDocQA, 1,
//	    "Query timeout", "查询超时")
func NewTimeoutErr(service, sequence int, en, zh string) *Errno {
	return NewError(service, CategoryTimeout, sequence, http.StatusGatewayTimeout, codes.DeadlineExceeded, en, zh)
}

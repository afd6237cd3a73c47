package errors

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

// Common errors shared by all services (service code 00).
var (
	// OK indicates success.
	OK = Register(New(MakeCode(ServiceCommon, CategorySuccess, 0), http.StatusOK, codes.OK, "Success", "成功"))

	// ErrUnknown is the fallback for unclassified errors.
	ErrUnknown = Register(New(MakeCode(ServiceCommon, CategoryInternal, 999), http.StatusInternalServerError, codes.Unknown, "Unknown error", "未知错误"))

	// Request errors (category 01)
	ErrBadRequest   = Register(New(MakeCode(ServiceCommon, CategoryRequest, 1), http.StatusBadRequest, codes.InvalidArgument, "Bad request", "请求错误"))
	ErrInvalidParam = Register(New(MakeCode(ServiceCommon, CategoryRequest, 2), http.StatusBadRequest, codes.InvalidArgument, "Invalid parameter", "参数无效"))
	ErrMissingParam = Register(New(MakeCode(ServiceCommon, CategoryRequest, 3), http.StatusBadRequest, codes.InvalidArgument, "Missing parameter", "缺少参数"))

	// Resource errors (category 04)
	ErrNotFound = Register(New(MakeCode(ServiceCommon, CategoryResource, 1), http.StatusNotFound, codes.NotFound, "Resource not found", "资源不存在"))

	// Internal errors (category 07)
	ErrInternal = Register(New(MakeCode(ServiceCommon, CategoryInternal, 1), http.StatusInternalServerError, codes.Internal, "Internal server error", "服务器内部错误"))

	// Database errors (category 08)
	ErrDatabase = Register(New(MakeCode(ServiceCommon, CategoryDatabase, 1), http.StatusInternalServerError, codes.Internal, "Database error", "数据库错误"))

	// Cache errors (category 09)
	ErrCache = Register(New(MakeCode(ServiceCommon, CategoryCache, 1), http.StatusInternalServerError, codes.Internal, "Cache error", "缓存错误"))

	// Network errors (category 10)
	ErrServiceUnavailable = Register(New(MakeCode(ServiceCommon, CategoryNetwork, 1), http.StatusServiceUnavailable, codes.Unavailable, "Service unavailable", "服务不可用"))

	// Timeout errors (category 11)
	ErrTimeout = Register(New(MakeCode(ServiceCommon, CategoryTimeout, 1), http.StatusGatewayTimeout, codes.DeadlineExceeded, "Request timeout", "请求超时"))
)

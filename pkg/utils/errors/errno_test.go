package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
)

func TestMakeCode(t *testing.T) {
	tests := []struct {
		name     string
		service  int
		category int
		sequence int
		expected int
	}{
		{"通用成功码", 0, 0, 0, 0},
		{"DocQA 请求错误", 20, 1, 1, 2001001},
		{"DocQA 超时错误", 20, 11, 1, 2011001},
		{"最大值", 99, 99, 999, 9999999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MakeCode(tt.service, tt.category, tt.sequence))
		})
	}
}

func TestParseCode(t *testing.T) {
	service, category, sequence := ParseCode(2001002)
	assert.Equal(t, 20, service)
	assert.Equal(t, 1, category)
	assert.Equal(t, 2, sequence)
}

func TestErrnoMapping(t *testing.T) {
	tests := []struct {
		name     string
		errno    *Errno
		httpCode int
		grpcCode codes.Code
	}{
		{"空问题错误映射为 400", ErrDocQAEmptyQuestion, http.StatusBadRequest, codes.InvalidArgument},
		{"不支持的文件类型映射为 400", ErrDocQAUnsupportedType, http.StatusBadRequest, codes.InvalidArgument},
		{"文档不存在映射为 404", ErrDocQADocumentNotFound, http.StatusNotFound, codes.NotFound},
		{"提取失败映射为 500", ErrDocQAExtractFailed, http.StatusInternalServerError, codes.Internal},
		{"向量存储不可用映射为 503", ErrDocQAVectorStoreUnavailable, http.StatusServiceUnavailable, codes.Unavailable},
		{"查询超时映射为 504", ErrDocQAQueryTimeout, http.StatusGatewayTimeout, codes.DeadlineExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.httpCode, tt.errno.HTTPStatus())
			assert.Equal(t, tt.grpcCode, tt.errno.GRPCStatus())
		})
	}
}

func TestErrnoWithCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	e := ErrDocQAVectorStoreUnavailable.WithCause(cause)

	// WithCause 不修改原始错误
	assert.Nil(t, ErrDocQAVectorStoreUnavailable.Unwrap())
	assert.Equal(t, cause, e.Unwrap())
	assert.Equal(t, ErrDocQAVectorStoreUnavailable.Code, e.Code)
	assert.True(t, errors.Is(e, ErrDocQAVectorStoreUnavailable))
}

func TestRegistryUniqueness(t *testing.T) {
	// 重复注册同一错误码应 panic
	assert.Panics(t, func() {
		Register(New(ErrDocQAEmptyQuestion.Code, http.StatusBadRequest, codes.InvalidArgument, "dup", ""))
	})
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	// Errno 原样返回
	assert.Equal(t, ErrDocQAQueryFailed, FromError(ErrDocQAQueryFailed))

	// 普通错误包装为 ErrInternal
	plain := fmt.Errorf("boom")
	wrapped := FromError(plain)
	assert.Equal(t, ErrInternal.Code, wrapped.Code)
	assert.Equal(t, plain, wrapped.Unwrap())
}

func TestLookup(t *testing.T) {
	e, ok := Lookup(ErrDocQAIngestFailed.Code)
	assert.True(t, ok)
	assert.Equal(t, ErrDocQAIngestFailed, e)

	_, ok = Lookup(9999998)
	assert.False(t, ok)
}

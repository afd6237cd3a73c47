package errors

// DocQA 服务代码: 20 (业务服务范围 20-79)
// 错误码格式: AABBCCC
// - AA: 20 (DocQA 服务)
// - BB: 类别代码
// - CCC: 序号

const (
	// ServiceDocQA is for the document Q&A service.
	ServiceDocQA = 20
)

func init() {
	RegisterService(ServiceDocQA, "docqa")
}

var (
	// 请求参数错误 (类别 01)
	ErrDocQAInvalidRequest  = NewRequestErr(ServiceDocQA, 1, "Invalid request parameters", "请求参数无效")
	ErrDocQAEmptyQuestion   = NewRequestErr(ServiceDocQA, 2, "Question must not be empty", "问题不能为空")
	ErrDocQAUnsupportedType = NewRequestErr(ServiceDocQA, 3, "Only PDF files are supported", "仅支持 PDF 文件")
	ErrDocQAEmptyFile       = NewRequestErr(ServiceDocQA, 4, "Uploaded file is empty", "上传文件为空")

	// 资源错误 (类别 04)
	ErrDocQADocumentNotFound = NewNotFoundErr(ServiceDocQA, 1, "Document not found", "文档不存在")

	// 内部错误 (类别 07)
	ErrDocQAExtractFailed  = NewInternalErr(ServiceDocQA, 1, "Text extraction failed", "文本提取失败")
	ErrDocQAIngestFailed   = NewInternalErr(ServiceDocQA, 2, "Document ingestion failed", "文档摄取失败")
	ErrDocQAQueryFailed    = NewInternalErr(ServiceDocQA, 3, "Query processing failed", "查询处理失败")
	ErrDocQAStatsFailed    = NewInternalErr(ServiceDocQA, 4, "Statistics unavailable", "统计信息不可用")
	ErrDocQASaveFileFailed = NewInternalErr(ServiceDocQA, 5, "Failed to persist uploaded file", "上传文件保存失败")

	// 网络/依赖错误 (类别 10)
	ErrDocQAVectorStoreUnavailable = NewNetworkErr(ServiceDocQA, 1, "Vector store unavailable", "向量存储不可用")

	// 超时错误 (类别 11)
	ErrDocQAQueryTimeout = NewTimeoutErr(ServiceDocQA, 1, "Query timeout", "查询超时")
)

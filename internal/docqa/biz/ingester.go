package biz

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kart-io/logger"

	"github.com/kart-io/docqa/internal/model"
	"github.com/kart-io/docqa/internal/pkg/docqa/pdfutil"
	"github.com/kart-io/docqa/internal/pkg/docqa/textutil"
	"github.com/kart-io/docqa/pkg/utils/errors"
	"github.com/kart-io/docqa/pkg/utils/id"
)

// IngesterConfig 文档摄取配置。
type IngesterConfig struct {
	// ChunkSize 文本块大小。
	ChunkSize int
	// ChunkOverlap 块重叠大小。
	ChunkOverlap int
	// UploadDir 上传文件持久化目录。
	UploadDir string
}

// Ingester 负责文档摄取：落盘、提取、分块、登记、入库。
type Ingester struct {
	registry *DocumentRegistry
	gateway  *IndexGateway
	config   *IngesterConfig
}

// NewIngester 创建摄取器实例。
func NewIngester(registry *DocumentRegistry, gateway *IndexGateway, config *IngesterConfig) *Ingester {
	return &Ingester{
		registry: registry,
		gateway:  gateway,
		config:   config,
	}
}

// Ingest 处理一次文档上传。
// 校验失败（非 PDF、空文件）返回 Errno；处理阶段的失败
// 记录为 error 状态的上传结果而不作为错误返回。
func (i *Ingester) Ingest(ctx context.Context, content []byte, filename string) (*model.UploadResult, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".pdf" {
		return nil, errors.ErrDocQAUnsupportedType.WithCause(
			fmt.Errorf("unsupported file type: %s", ext))
	}
	if len(content) == 0 {
		return nil, errors.ErrDocQAEmptyFile
	}

	documentID := id.NewUUID()

	if err := i.saveFile(content, documentID+ext); err != nil {
		logger.Errorw("failed to persist uploaded file",
			"error", err.Error(),
			"filename", filename,
		)
		return i.failedResult(documentID, filename, len(content),
			errors.ErrDocQASaveFileFailed.WithCause(err)), nil
	}

	text, err := pdfutil.ExtractTextFromBytes(content)
	if err != nil {
		logger.Errorw("text extraction failed",
			"error", err.Error(),
			"document_id", documentID,
			"filename", filename,
		)
		i.registerDocument(documentID, filename, 0, 0, 0, model.StatusError)
		return i.failedResult(documentID, filename, len(content),
			errors.ErrDocQAExtractFailed.WithCause(err)), nil
	}

	chunks := textutil.RecursiveSplit(text, i.config.ChunkSize, i.config.ChunkOverlap)
	if len(chunks) == 0 && strings.TrimSpace(text) != "" {
		// 固定窗口回退
		chunks = textutil.SplitIntoChunks(text, i.config.ChunkSize, i.config.ChunkOverlap)
	}

	totalWords := textutil.CountWords(text)
	totalChars := utf8.RuneCountInString(text)

	i.registerDocument(documentID, filename, len(chunks), totalWords, totalChars, model.StatusProcessed)

	if len(chunks) > 0 {
		logger.Infof("Adding document %s (%s) to vector store, %d chunks", documentID, filename, len(chunks))
		if err := i.gateway.AddChunks(ctx, documentID, filename, chunks); err != nil {
			logger.Errorw("failed to index document chunks",
				"error", err.Error(),
				"document_id", documentID,
				"filename", filename,
			)
			i.registerDocument(documentID, filename, len(chunks), totalWords, totalChars, model.StatusError)
			return i.failedResult(documentID, filename, len(content), err), nil
		}
		logger.Infof("Document %s (%s) successfully processed and stored", documentID, filename)
	} else {
		logger.Warnf("Document %s (%s) has no chunks to store", documentID, filename)
	}

	return &model.UploadResult{
		DocumentID:  documentID,
		Filename:    filename,
		Status:      model.StatusProcessed,
		TotalChunks: len(chunks),
		TotalWords:  totalWords,
		FileSize:    len(content),
	}, nil
}

// saveFile 将上传内容写入上传目录，文件名为 <文档ID><扩展名>。
func (i *Ingester) saveFile(content []byte, savedName string) error {
	if err := os.MkdirAll(i.config.UploadDir, 0o755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}
	path := filepath.Join(i.config.UploadDir, savedName)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("failed to save uploaded file: %w", err)
	}
	return nil
}

func (i *Ingester) registerDocument(documentID, filename string, chunks, words, chars int, status string) {
	i.registry.Register(&model.Document{
		ID:              documentID,
		Filename:        filename,
		FileType:        "pdf",
		TotalChunks:     chunks,
		TotalWords:      words,
		TotalCharacters: chars,
		Status:          status,
		UploadedAt:      time.Now(),
	})
}

func (i *Ingester) failedResult(documentID, filename string, fileSize int, err error) *model.UploadResult {
	return &model.UploadResult{
		DocumentID: documentID,
		Filename:   filename,
		Status:     model.StatusError,
		FileSize:   fileSize,
		Error:      err.Error(),
	}
}

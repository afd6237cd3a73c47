package biz

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/docqa/internal/model"
	"github.com/kart-io/docqa/pkg/utils/errors"
)

// buildTextPDF 构造一个带文本层的最小单页 PDF。
// 交叉引用表的偏移量在写入时计算，text 不能包含括号和反斜杠。
func buildTextPDF(t *testing.T, text string) []byte {
	t.Helper()

	stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] " +
			"/Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects)+1)
	for i, obj := range objects {
		offsets[i+1] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= len(objects); i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(objects)+1, xrefOffset)

	return buf.Bytes()
}

func newTestIngester(t *testing.T, vs *fakeVectorStore) (*Ingester, *DocumentRegistry, string) {
	t.Helper()

	gateway, err := NewIndexGateway(vs, &fakeEmbedder{}, &IndexGatewayConfig{
		Collection:   "test_collection",
		EmbeddingDim: 3,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = gateway.Close(context.Background()) })

	registry := NewDocumentRegistry()
	uploadDir := t.TempDir()
	ingester := NewIngester(registry, gateway, &IngesterConfig{
		ChunkSize:    1000,
		ChunkOverlap: 200,
		UploadDir:    uploadDir,
	})
	return ingester, registry, uploadDir
}

func TestIngestValidation(t *testing.T) {
	ingester, registry, _ := newTestIngester(t, &fakeVectorStore{})

	t.Run("非 PDF 文件被拒绝", func(t *testing.T) {
		_, err := ingester.Ingest(context.Background(), []byte("plain text"), "notes.txt")
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrDocQAUnsupportedType.Code))
	})

	t.Run("扩展名大小写不敏感", func(t *testing.T) {
		// 内容非法，但扩展名校验应当通过，失败发生在提取阶段
		result, err := ingester.Ingest(context.Background(), []byte("not a pdf"), "REPORT.PDF")
		require.NoError(t, err)
		assert.Equal(t, model.StatusError, result.Status)
	})

	t.Run("空文件被拒绝", func(t *testing.T) {
		_, err := ingester.Ingest(context.Background(), nil, "empty.pdf")
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrDocQAEmptyFile.Code))
	})

	// 校验失败的请求不产生注册记录
	assert.Equal(t, 1, registry.Len())
}

func TestIngestSuccess(t *testing.T) {
	vs := &fakeVectorStore{}
	ingester, registry, uploadDir := newTestIngester(t, vs)

	content := buildTextPDF(t, "Quarterly revenue grew to 10M in 2024.")
	result, err := ingester.Ingest(context.Background(), content, "report.pdf")
	require.NoError(t, err)

	assert.Equal(t, model.StatusProcessed, result.Status)
	assert.Equal(t, "report.pdf", result.Filename)
	assert.Greater(t, result.TotalChunks, 0)
	assert.Greater(t, result.TotalWords, 0)
	assert.Equal(t, len(content), result.FileSize)
	assert.Empty(t, result.Error)

	// 注册表记录为 processed
	doc, ok := registry.Get(result.DocumentID)
	require.True(t, ok)
	assert.Equal(t, model.StatusProcessed, doc.Status)
	assert.Equal(t, result.TotalChunks, doc.TotalChunks)

	// 块带原始文件名和嵌入向量写入向量存储
	require.NotEmpty(t, vs.chunks)
	assert.Equal(t, result.DocumentID, vs.chunks[0].DocumentID)
	assert.Equal(t, "report.pdf", vs.chunks[0].Filename)
	assert.Contains(t, vs.chunks[0].Content, "Quarterly revenue grew to 10M")
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vs.chunks[0].Embedding)

	// 原始内容以 <文档ID>.pdf 落盘
	saved, readErr := os.ReadFile(filepath.Join(uploadDir, result.DocumentID+".pdf"))
	require.NoError(t, readErr)
	assert.Equal(t, content, saved)
}

func TestIngestIndexFailure(t *testing.T) {
	vs := &fakeVectorStore{insertErr: fmt.Errorf("milvus down")}
	ingester, registry, _ := newTestIngester(t, vs)

	result, err := ingester.Ingest(context.Background(),
		buildTextPDF(t, "Some indexable content for the store."), "fail.pdf")
	require.NoError(t, err)

	assert.Equal(t, model.StatusError, result.Status)
	assert.NotEmpty(t, result.Error)

	doc, ok := registry.Get(result.DocumentID)
	require.True(t, ok)
	assert.Equal(t, model.StatusError, doc.Status)
}

func TestIngestExtractionFailure(t *testing.T) {
	ingester, registry, uploadDir := newTestIngester(t, &fakeVectorStore{})

	result, err := ingester.Ingest(context.Background(), []byte("definitely not a pdf"), "broken.pdf")
	require.NoError(t, err)

	assert.Equal(t, model.StatusError, result.Status)
	assert.Equal(t, "broken.pdf", result.Filename)
	assert.NotEmpty(t, result.DocumentID)
	assert.NotEmpty(t, result.Error)
	assert.Equal(t, len("definitely not a pdf"), result.FileSize)

	// 失败文档保留在注册表中，状态为 error
	doc, ok := registry.Get(result.DocumentID)
	require.True(t, ok)
	assert.Equal(t, model.StatusError, doc.Status)

	// 文件以 <文档ID>.pdf 落盘
	saved := filepath.Join(uploadDir, result.DocumentID+".pdf")
	data, readErr := os.ReadFile(saved)
	require.NoError(t, readErr)
	assert.Equal(t, "definitely not a pdf", string(data))
}

func TestIngestSavedFilename(t *testing.T) {
	ingester, _, uploadDir := newTestIngester(t, &fakeVectorStore{})

	result, err := ingester.Ingest(context.Background(), []byte("x"), "原始文件名.pdf")
	require.NoError(t, err)

	entries, err := os.ReadDir(uploadDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// 落盘文件名不含原始文件名，避免路径注入
	assert.Equal(t, result.DocumentID+".pdf", entries[0].Name())
	assert.False(t, strings.Contains(entries[0].Name(), "原始文件名"))
}

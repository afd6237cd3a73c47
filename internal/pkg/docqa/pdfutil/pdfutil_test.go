package pdfutil_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/kart-io/docqa/internal/pkg/docqa/pdfutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPDF 构造一个带文本层的最小 PDF，每个入参为一页的文本。
// 交叉引用表的偏移量在写入时计算，页面文本不能包含括号和反斜杠。
func buildPDF(t *testing.T, pages ...string) []byte {
	t.Helper()
	require.NotEmpty(t, pages)

	// 对象编号: 1 catalog, 2 pages, 3 font, 之后每页两个对象（页面和内容流）
	kids := ""
	for i := range pages {
		if i > 0 {
			kids += " "
		}
		kids += fmt.Sprintf("%d 0 R", 4+2*i)
	}

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, len(pages)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}
	for i, text := range pages {
		stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
				"/Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		)
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

func TestExtractTextFromBytes(t *testing.T) {
	t.Run("单页文本", func(t *testing.T) {
		data := buildPDF(t, "Quarterly revenue grew to 10M in 2024.")

		text, err := pdfutil.ExtractTextFromBytes(data)
		require.NoError(t, err)
		assert.Contains(t, text, "Quarterly revenue grew to 10M in 2024.")
	})

	t.Run("多页文本逐页拼接", func(t *testing.T) {
		data := buildPDF(t, "First page about revenue.", "Second page about costs.")

		text, err := pdfutil.ExtractTextFromBytes(data)
		require.NoError(t, err)
		assert.Contains(t, text, "First page about revenue.")
		assert.Contains(t, text, "Second page about costs.")
		// 第一页内容先于第二页
		assert.Less(t,
			bytes.Index([]byte(text), []byte("First page")),
			bytes.Index([]byte(text), []byte("Second page")))
	})
}

func TestExtractTextFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.pdf")
	require.NoError(t, os.WriteFile(path, buildPDF(t, "Stored on disk."), 0o644))

	text, err := pdfutil.ExtractTextFromFile(path)
	require.NoError(t, err)
	assert.Contains(t, text, "Stored on disk.")
}

func TestExtractTextFromBytesInvalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"空内容", []byte{}},
		{"非 PDF 内容", []byte("this is not a pdf document")},
		{"截断的 PDF 头", []byte("%PDF-1.4")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pdfutil.ExtractTextFromBytes(tt.data)
			assert.Error(t, err)
		})
	}
}

func TestExtractTextFromFileMissing(t *testing.T) {
	_, err := pdfutil.ExtractTextFromFile("/nonexistent/path/doc.pdf")
	assert.Error(t, err)
}

// Package pdfutil 提供 PDF 文本提取工具函数。
package pdfutil

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNoTextContent 表示 PDF 中没有可提取的文本层。
var ErrNoTextContent = fmt.Errorf("pdf contains no extractable text")

// ExtractText 从 PDF 中逐页提取纯文本，页与页之间以换行连接。
// 无法解析的页面会被跳过；所有页面都无文本时返回 ErrNoTextContent。
func ExtractText(r io.ReaderAt, size int64) (string, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("failed to parse pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// 跳过无法解析的页面
			continue
		}

		sb.WriteString(text)
		sb.WriteString("\n")
	}

	content := strings.TrimSpace(sb.String())
	if content == "" {
		return "", ErrNoTextContent
	}
	return content, nil
}

// ExtractTextFromBytes 从内存中的 PDF 内容提取纯文本。
func ExtractTextFromBytes(data []byte) (string, error) {
	return ExtractText(bytes.NewReader(data), int64(len(data)))
}

// ExtractTextFromFile 从本地 PDF 文件提取纯文本。
func ExtractTextFromFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat pdf file: %w", err)
	}

	return ExtractText(f, stat.Size())
}

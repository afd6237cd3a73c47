package biz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kart-io/docqa/internal/docqa/store"
)

func TestAssemble(t *testing.T) {
	assembler := NewContextAssembler(&AssemblerConfig{TopN: 3})

	t.Run("空结果返回空字符串", func(t *testing.T) {
		assert.Equal(t, "", assembler.Assemble(nil))
		assert.Equal(t, "", assembler.Assemble([]*store.SearchResult{}))
	})

	t.Run("单条结果", func(t *testing.T) {
		got := assembler.Assemble([]*store.SearchResult{
			{Filename: "report.pdf", Content: "Revenue was 10M."},
		})
		want := "=== RELEVANT DOCUMENT CONTENT ===\n" +
			"Source 1 (from report.pdf):\n" +
			"Revenue was 10M.\n"
		assert.Equal(t, want, got)
	})

	t.Run("超出 TopN 的结果被截断", func(t *testing.T) {
		results := []*store.SearchResult{
			{Filename: "a.pdf", Content: "first"},
			{Filename: "b.pdf", Content: "second"},
			{Filename: "c.pdf", Content: "third"},
			{Filename: "d.pdf", Content: "fourth"},
		}
		got := assembler.Assemble(results)

		assert.Contains(t, got, "Source 1 (from a.pdf):")
		assert.Contains(t, got, "Source 3 (from c.pdf):")
		assert.NotContains(t, got, "Source 4")
		assert.NotContains(t, got, "fourth")
	})
}

func TestNewContextAssemblerDefaults(t *testing.T) {
	results := []*store.SearchResult{
		{Filename: "a.pdf", Content: "1"},
		{Filename: "b.pdf", Content: "2"},
		{Filename: "c.pdf", Content: "3"},
		{Filename: "d.pdf", Content: "4"},
	}

	t.Run("nil 配置使用默认 TopN", func(t *testing.T) {
		got := NewContextAssembler(nil).Assemble(results)
		assert.Contains(t, got, "Source 3 (from c.pdf):")
		assert.NotContains(t, got, "Source 4")
	})

	t.Run("非法 TopN 使用默认值", func(t *testing.T) {
		got := NewContextAssembler(&AssemblerConfig{TopN: 0}).Assemble(results)
		assert.Contains(t, got, "Source 3 (from c.pdf):")
		assert.NotContains(t, got, "Source 4")
	})
}

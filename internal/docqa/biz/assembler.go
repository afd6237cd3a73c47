package biz

import (
	"fmt"
	"strings"

	"github.com/kart-io/docqa/internal/docqa/store"
)

// contextHeader 上下文块的首行标题。
const contextHeader = "=== RELEVANT DOCUMENT CONTENT ==="

// AssemblerConfig 上下文组装器配置。
type AssemblerConfig struct {
	// TopN 参与组装的检索结果数上限。
	TopN int
}

// ContextAssembler 将检索结果组装成送入 LLM 的上下文文本。
type ContextAssembler struct {
	config *AssemblerConfig
}

// NewContextAssembler 创建上下文组装器实例。
func NewContextAssembler(config *AssemblerConfig) *ContextAssembler {
	if config == nil || config.TopN <= 0 {
		config = &AssemblerConfig{TopN: 3}
	}
	return &ContextAssembler{config: config}
}

// Assemble 按检索排序取前 TopN 条结果拼装上下文。
// 空结果返回空字符串。
func (a *ContextAssembler) Assemble(results []*store.SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	top := results
	if len(top) > a.config.TopN {
		top = top[:a.config.TopN]
	}

	parts := []string{contextHeader}
	for i, result := range top {
		parts = append(parts, fmt.Sprintf("Source %d (from %s):", i+1, result.Filename))
		parts = append(parts, result.Content)
		parts = append(parts, "")
	}

	return strings.Join(parts, "\n")
}

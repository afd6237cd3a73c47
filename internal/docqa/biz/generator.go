package biz

import (
	"context"
	"fmt"
	"strings"

	"github.com/kart-io/logger"

	"github.com/kart-io/docqa/pkg/llm"
)

// systemPrompt 答案生成的系统提示词。
const systemPrompt = "You are a helpful financial assistant that answers questions based on provided document context."

// generationFailedAnswer 供应商故障时返回的固定答案。
const generationFailedAnswer = "I encountered an error while generating a response. Please try again."

// GeneratorConfig 答案生成器配置。
type GeneratorConfig struct {
	// Temperature 采样温度。
	Temperature float64
	// MaxTokens 最大生成 token 数。
	MaxTokens int
}

// AnswerGenerator 基于上下文生成答案。
type AnswerGenerator struct {
	chatProvider llm.ChatProvider
	config       *GeneratorConfig
}

// NewAnswerGenerator 创建答案生成器实例。
func NewAnswerGenerator(chatProvider llm.ChatProvider, config *GeneratorConfig) *AnswerGenerator {
	if config == nil {
		config = &GeneratorConfig{Temperature: 0.1, MaxTokens: 500}
	}
	return &AnswerGenerator{
		chatProvider: chatProvider,
		config:       config,
	}
}

// Generate 根据问题和上下文生成答案。
// 供应商故障被转换为固定的道歉答案，同时返回底层错误供指标记录。
func (g *AnswerGenerator) Generate(ctx context.Context, question, contextText string) (*llm.GenerateResponse, error) {
	prompt := buildPrompt(question, contextText)

	resp, err := g.chatProvider.Generate(ctx, prompt, &llm.GenerateOptions{
		SystemPrompt: systemPrompt,
		Temperature:  g.config.Temperature,
		MaxTokens:    g.config.MaxTokens,
	})
	if err != nil {
		logger.Errorw("answer generation failed",
			"error", err.Error(),
		)
		return &llm.GenerateResponse{Content: generationFailedAnswer}, err
	}

	resp.Content = strings.TrimSpace(resp.Content)
	logger.Infof("Answer generated (length: %d, tokens: %d)",
		len(resp.Content), resp.Usage.TotalTokens)

	return resp, nil
}

// buildPrompt 构建基于文档上下文的问答提示词。
func buildPrompt(question, contextText string) string {
	return fmt.Sprintf(`You are a helpful financial assistant. Answer the user's question based on the provided context from financial documents.

Context from financial documents:
%s

User Question: %s

Instructions:
- Provide a clear and accurate answer based on the context provided
- If the context doesn't contain enough information, clearly state this limitation
- Use professional financial language
- Be concise but comprehensive
- If you find specific numbers, metrics, or data in the context, include them in your answer
- Always cite which document the information comes from when possible

Answer:`, contextText, question)
}

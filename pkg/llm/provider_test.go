package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider 测试用的假供应商。
type fakeProvider struct {
	name string
}

func (f *fakeProvider) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i)}
	}
	return out, nil
}

func (f *fakeProvider) EmbedSingle(_ context.Context, _ string) ([]float32, error) {
	return []float32{0.1, 0.2}, nil
}

func (f *fakeProvider) Chat(_ context.Context, _ []Message) (string, error) {
	return "chat-reply", nil
}

func (f *fakeProvider) Generate(_ context.Context, prompt string, opts *GenerateOptions) (*GenerateResponse, error) {
	content := "echo: " + prompt
	if opts != nil && opts.SystemPrompt != "" {
		content = opts.SystemPrompt + " | " + content
	}
	return &GenerateResponse{Content: content}, nil
}

func (f *fakeProvider) Name() string {
	return f.name
}

var _ Provider = (*fakeProvider)(nil)

func TestProviderRegistry(t *testing.T) {
	RegisterProvider("fake-full", func(_ map[string]any) (Provider, error) {
		return &fakeProvider{name: "fake-full"}, nil
	})

	t.Run("创建完整供应商", func(t *testing.T) {
		p, err := NewProvider("fake-full", nil)
		require.NoError(t, err)
		assert.Equal(t, "fake-full", p.Name())
	})

	t.Run("未知供应商返回错误", func(t *testing.T) {
		_, err := NewProvider("no-such-provider", nil)
		assert.Error(t, err)
	})

	t.Run("Embedding 回退到完整供应商", func(t *testing.T) {
		p, err := NewEmbeddingProvider("fake-full", nil)
		require.NoError(t, err)

		emb, err := p.EmbedSingle(context.Background(), "hello")
		require.NoError(t, err)
		assert.Len(t, emb, 2)
	})

	t.Run("Chat 回退到完整供应商", func(t *testing.T) {
		p, err := NewChatProvider("fake-full", nil)
		require.NoError(t, err)

		resp, err := p.Generate(context.Background(), "hi", &GenerateOptions{SystemPrompt: "sys"})
		require.NoError(t, err)
		assert.Equal(t, "sys | echo: hi", resp.Content)
	})

	t.Run("专用工厂优先于完整供应商", func(t *testing.T) {
		RegisterProvider("fake-both", func(_ map[string]any) (Provider, error) {
			return &fakeProvider{name: "full"}, nil
		})
		RegisterChatProvider("fake-both", func(_ map[string]any) (ChatProvider, error) {
			return &fakeProvider{name: "chat-only"}, nil
		})

		p, err := NewChatProvider("fake-both", nil)
		require.NoError(t, err)
		assert.Equal(t, "chat-only", p.Name())
	})

	t.Run("列出已注册供应商", func(t *testing.T) {
		names := ListProviders()
		assert.Contains(t, names, "fake-full")
	})
}

func TestGenerateOptionsNilSafe(t *testing.T) {
	p := &fakeProvider{name: "fake"}

	resp, err := p.Generate(context.Background(), "question", nil)
	require.NoError(t, err)
	assert.Equal(t, "echo: question", resp.Content)
	assert.Zero(t, resp.Usage.TotalTokens)
}

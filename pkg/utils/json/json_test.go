package json

import (
	"bytes"
	"io"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Done     bool          `json:"done"`
	Tokens   int           `json:"tokens,omitempty"`
}

func TestMarshalUnmarshal(t *testing.T) {
	t.Run("结构体往返", func(t *testing.T) {
		in := chatResponse{
			Model: "qwen2.5",
			Messages: []chatMessage{
				{Role: "user", Content: "什么是向量检索？"},
				{Role: "assistant", Content: "Vector search finds nearest neighbors."},
			},
			Done:   true,
			Tokens: 42,
		}

		data, err := Marshal(in)
		require.NoError(t, err)

		var out chatResponse
		require.NoError(t, Unmarshal(data, &out))
		assert.Equal(t, in, out)
	})

	t.Run("omitempty 省略零值", func(t *testing.T) {
		data, err := Marshal(chatResponse{Model: "m"})
		require.NoError(t, err)
		assert.NotContains(t, string(data), "tokens")
	})

	t.Run("未知字段被忽略", func(t *testing.T) {
		var out chatMessage
		err := Unmarshal([]byte(`{"role":"user","content":"hi","extra":1}`), &out)
		require.NoError(t, err)
		assert.Equal(t, "user", out.Role)
	})

	t.Run("非法输入返回错误", func(t *testing.T) {
		var out chatMessage
		assert.Error(t, Unmarshal([]byte(`{"role":`), &out))
	})
}

func TestStreaming(t *testing.T) {
	t.Run("编码到 Writer", func(t *testing.T) {
		var buf bytes.Buffer
		enc := NewEncoder(&buf)
		require.NoError(t, enc.Encode(chatMessage{Role: "user", Content: "hello"}))

		var out chatMessage
		require.NoError(t, Unmarshal(buf.Bytes(), &out))
		assert.Equal(t, "hello", out.Content)
	})

	t.Run("从 Reader 逐条解码", func(t *testing.T) {
		// Ollama 的流式响应是逐行 JSON
		body := `{"role":"assistant","content":"part one"}
{"role":"assistant","content":"part two"}
`
		dec := NewDecoder(strings.NewReader(body))

		var contents []string
		for {
			var msg chatMessage
			err := dec.Decode(&msg)
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			contents = append(contents, msg.Content)
		}
		assert.Equal(t, []string{"part one", "part two"}, contents)
	})
}

func TestIsUsingSonic(t *testing.T) {
	want := runtime.GOARCH == "amd64" || runtime.GOARCH == "arm64"
	assert.Equal(t, want, IsUsingSonic())
}

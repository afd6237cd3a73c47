package textutil_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/kart-io/docqa/internal/pkg/docqa/textutil"
	"github.com/stretchr/testify/assert"
)

func TestRecursiveSplit(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		chunkSize int
		overlap   int
		expected  []string
	}{
		{
			name:      "短文本返回单块",
			text:      "hello world",
			chunkSize: 100,
			overlap:   20,
			expected:  []string{"hello world"},
		},
		{
			name:      "按段落切分",
			text:      "aaa\n\nbbb\n\nccc",
			chunkSize: 5,
			overlap:   0,
			expected:  []string{"aaa", "bbb", "ccc"},
		},
		{
			name:      "按空格切分并保留重叠",
			text:      "one two three four",
			chunkSize: 10,
			overlap:   4,
			expected:  []string{"one two", "two three", "four"},
		},
		{
			name:      "无分隔符时按字符切分",
			text:      "abcdefghij",
			chunkSize: 3,
			overlap:   1,
			expected:  []string{"abc", "cde", "efg", "ghi", "ij"},
		},
		{
			name:      "空白文本返回空",
			text:      "   \n\n  ",
			chunkSize: 10,
			overlap:   0,
			expected:  nil,
		},
		{
			name:      "非法块大小返回空",
			text:      "hello",
			chunkSize: 0,
			overlap:   0,
			expected:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := textutil.RecursiveSplit(tt.text, tt.chunkSize, tt.overlap)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestRecursiveSplitLongDocument(t *testing.T) {
	// 构造多个段落的长文档，验证块大小上界和内容完整性
	var sb strings.Builder
	for i := 0; i < 50; i++ {
		sb.WriteString("This is a sentence inside a fairly long paragraph of text. ")
		if i%10 == 9 {
			sb.WriteString("\n\n")
		}
	}
	text := sb.String()

	chunks := textutil.RecursiveSplit(text, 200, 40)
	assert.NotEmpty(t, chunks)

	for _, chunk := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), 200)
		assert.NotEmpty(t, strings.TrimSpace(chunk))
	}

	// 每个句子都应出现在至少一个块中
	joined := strings.Join(chunks, " ")
	assert.Contains(t, joined, "This is a sentence")
}

func TestSplitIntoChunks(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		chunkSize int
		overlap   int
		expected  []string
	}{
		{
			name:      "短于块大小",
			text:      "abc",
			chunkSize: 10,
			overlap:   2,
			expected:  []string{"abc"},
		},
		{
			name:      "固定步长切分",
			text:      "abcdefghij",
			chunkSize: 4,
			overlap:   2,
			expected:  []string{"abcd", "cdef", "efgh", "ghij"},
		},
		{
			name:      "中文字符按字符数切分",
			text:      "一二三四五六",
			chunkSize: 4,
			overlap:   2,
			expected:  []string{"一二三四", "三四五六"},
		},
		{
			name:      "非法块大小",
			text:      "abc",
			chunkSize: 0,
			overlap:   0,
			expected:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := textutil.SplitIntoChunks(tt.text, tt.chunkSize, tt.overlap)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestCountWords(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{"普通句子", "hello wonderful world", 3},
		{"多余空白", "  a \t b \n c  ", 3},
		{"空字符串", "", 0},
		{"仅空白", "   \n ", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, textutil.CountWords(tt.input))
		})
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{"短于限制", "hello", 10, "hello"},
		{"等于限制", "hello", 5, "hello"},
		{"超过限制", "hello world", 5, "hello"},
		{"中文字符", "你好世界", 2, "你好"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, textutil.TruncateString(tt.input, tt.maxLen))
		})
	}
}

func TestHashString(t *testing.T) {
	// 相同输入应产生相同输出
	hash1 := textutil.HashString("test")
	hash2 := textutil.HashString("test")
	assert.Equal(t, hash1, hash2)

	// 不同输入应产生不同输出
	hash3 := textutil.HashString("different")
	assert.NotEqual(t, hash1, hash3)

	// 哈希应为32字符的十六进制字符串
	assert.Len(t, hash1, 32)
}

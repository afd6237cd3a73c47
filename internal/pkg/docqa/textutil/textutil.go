// Package textutil 提供文档问答相关的文本处理工具函数。
package textutil

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"unicode/utf8"
)

// DefaultSeparators 递归分块时按优先级尝试的分隔符。
// 空字符串表示退化为按单个字符切分。
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// RecursiveSplit 将文本递归分割成带重叠的块。
// 优先按段落、换行、空格切分，切不开时按字符切分；
// 分隔符保留在后续片段的开头。长度以 Unicode 字符数计。
func RecursiveSplit(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		return nil
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize - 1
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return splitRecursive(text, chunkSize, overlap, DefaultSeparators)
}

func splitRecursive(text string, chunkSize, overlap int, separators []string) []string {
	separator := separators[len(separators)-1]
	var next []string
	for i, s := range separators {
		if s == "" || strings.Contains(text, s) {
			separator = s
			next = separators[i+1:]
			break
		}
	}

	splits := splitKeepSeparator(text, separator)

	var final []string
	var good []string
	for _, s := range splits {
		if utf8.RuneCountInString(s) < chunkSize {
			good = append(good, s)
			continue
		}
		if len(good) > 0 {
			final = append(final, mergeSplits(good, chunkSize, overlap)...)
			good = nil
		}
		if len(next) == 0 {
			final = append(final, s)
		} else {
			final = append(final, splitRecursive(s, chunkSize, overlap, next)...)
		}
	}
	if len(good) > 0 {
		final = append(final, mergeSplits(good, chunkSize, overlap)...)
	}
	return final
}

// splitKeepSeparator 按分隔符切分，分隔符附着在后续片段开头。
func splitKeepSeparator(text, separator string) []string {
	if separator == "" {
		out := make([]string, 0, utf8.RuneCountInString(text))
		for _, r := range text {
			out = append(out, string(r))
		}
		return out
	}

	parts := strings.Split(text, separator)
	splits := make([]string, 0, len(parts))
	if parts[0] != "" {
		splits = append(splits, parts[0])
	}
	for _, p := range parts[1:] {
		splits = append(splits, separator+p)
	}
	return splits
}

// mergeSplits 将小片段合并成接近 chunkSize 的块，
// 块与块之间保留不超过 overlap 的尾部重叠。
func mergeSplits(splits []string, chunkSize, overlap int) []string {
	var docs []string
	var window []string
	total := 0

	for _, d := range splits {
		l := utf8.RuneCountInString(d)
		if total+l > chunkSize && len(window) > 0 {
			doc := strings.TrimSpace(strings.Join(window, ""))
			if doc != "" {
				docs = append(docs, doc)
			}
			for total > overlap || (total+l > chunkSize && total > 0) {
				total -= utf8.RuneCountInString(window[0])
				window = window[1:]
			}
		}
		window = append(window, d)
		total += l
	}

	doc := strings.TrimSpace(strings.Join(window, ""))
	if doc != "" {
		docs = append(docs, doc)
	}
	return docs
}

// SplitIntoChunks 将文本按固定窗口分割成重叠的块。
// 递归分块失败时的回退路径，步长为 chunkSize-overlap。
func SplitIntoChunks(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		return nil
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize - 1
	}

	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	step := chunkSize - overlap

	for i := 0; i < len(runes); i += step {
		end := i + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
		if end == len(runes) {
			break
		}
	}

	return chunks
}

// CountWords 统计空白分隔的单词数。
func CountWords(s string) int {
	return len(strings.Fields(s))
}

// TruncateString 截断字符串到指定的最大 Unicode 字符数。
func TruncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen])
}

// HashString 计算字符串的 MD5 哈希值。
func HashString(s string) string {
	hash := md5.Sum([]byte(s))
	return hex.EncodeToString(hash[:])
}

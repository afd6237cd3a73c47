// Package json 封装 JSON 编解码入口。
// amd64/arm64 上走 sonic，其余架构回退到标准库 encoding/json。
package json

import (
	stdjson "encoding/json"
	"io"
	"runtime"

	"github.com/bytedance/sonic"
)

var (
	// Marshal 将 v 编码为 JSON 字节。
	Marshal func(v interface{}) ([]byte, error)

	// Unmarshal 将 JSON 字节解码到 v。
	Unmarshal func(data []byte, v interface{}) error

	// NewEncoder 返回面向 w 的流式编码器。
	NewEncoder func(w io.Writer) Encoder

	// NewDecoder 返回面向 r 的流式解码器。
	NewDecoder func(r io.Reader) Decoder

	usingSonic bool
)

// Encoder 流式 JSON 编码器。
type Encoder interface {
	Encode(v interface{}) error
}

// Decoder 流式 JSON 解码器。
type Decoder interface {
	Decode(v interface{}) error
}

func init() {
	// sonic 只支持 amd64 和 arm64
	if runtime.GOARCH == "amd64" || runtime.GOARCH == "arm64" {
		Marshal = sonic.Marshal
		Unmarshal = sonic.Unmarshal
		NewEncoder = func(w io.Writer) Encoder {
			return sonic.ConfigDefault.NewEncoder(w)
		}
		NewDecoder = func(r io.Reader) Decoder {
			return sonic.ConfigDefault.NewDecoder(r)
		}
		usingSonic = true
	} else {
		Marshal = stdjson.Marshal
		Unmarshal = stdjson.Unmarshal
		NewEncoder = func(w io.Writer) Encoder {
			return stdjson.NewEncoder(w)
		}
		NewDecoder = func(r io.Reader) Decoder {
			return stdjson.NewDecoder(r)
		}
		usingSonic = false
	}
}

// IsUsingSonic 报告当前是否使用 sonic 实现。
func IsUsingSonic() bool {
	return usingSonic
}

package errors

import (
	"fmt"
	"sync"
)

// errnoRegistry 保存全部已注册的错误码，用于唯一性校验。
var (
	errnoRegistry = make(map[int]*Errno)
	registryMu    sync.RWMutex
)

// Register 注册一个 Errno，错误码重复时 panic。
// 错误码在包初始化阶段注册，冲突属于编码错误，启动即失败。
func Register(e *Errno) *Errno {
	registryMu.Lock()
	defer registryMu.Unlock()

	if existing, ok := errnoRegistry[e.Code]; ok {
		panic(fmt.Sprintf("errno code %d already registered: %s", e.Code, existing.MessageEN))
	}
	errnoRegistry[e.Code] = e
	return e
}

// Lookup 按错误码返回已注册的 Errno。
func Lookup(code int) (*Errno, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	e, ok := errnoRegistry[code]
	return e, ok
}

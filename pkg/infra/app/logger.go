package app

import (
	"github.com/kart-io/logger"
	"github.com/kart-io/logger/core"
)

// Logger 返回全局日志器。
func Logger() core.Logger {
	return logger.Global()
}

// Flush 把缓冲的日志写出，进程退出前调用。
func Flush() error {
	return logger.Flush()
}

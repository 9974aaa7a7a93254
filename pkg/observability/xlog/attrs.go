package xlog

import (
	"log/slog"
	"time"

	"github.com/omeyang/xdaily/pkg/observability/xrotate"
)

// 常用属性 Key
const (
	KeyError     = "error"
	KeyPath      = "path"
	KeyTemplate  = "template"
	KeyDate      = "date"
	KeyCount     = "count"
	KeyDuration  = "duration"
	KeyComponent = "component"
	KeyOperation = "operation"
)

// Err 创建错误属性。err 为 nil 时返回空属性，slog 会忽略它。
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Path 文件路径属性
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// Template 路径模板属性
func Template(t string) slog.Attr {
	return slog.String(KeyTemplate, t)
}

// Date 日历日期属性，格式 YYYY-MM-DD
func Date(d xrotate.Date) slog.Attr {
	return slog.String(KeyDate, d.String())
}

// Count 计数属性
func Count(n int64) slog.Attr {
	return slog.Int64(KeyCount, n)
}

// Duration 耗时属性，输出人类可读格式（如 "1m30s"）
func Duration(d time.Duration) slog.Attr {
	return slog.String(KeyDuration, d.String())
}

// Component 组件名属性
func Component(name string) slog.Attr {
	return slog.String(KeyComponent, name)
}

// Operation 操作名属性
func Operation(name string) slog.Attr {
	return slog.String(KeyOperation, name)
}

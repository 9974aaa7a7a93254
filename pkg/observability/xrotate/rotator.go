package xrotate

import "io"

var _ io.WriteCloser = (Rotator)(nil)

// Rotator 日志轮转器接口
//
// 隐式实现 [io.WriteCloser]，可直接作为 xlog 等日志库的输出目标。
// 所有实现都必须是并发安全的，并满足：
//   - Close 后调用 Write 或 Rotate 返回 [ErrClosed]
//   - Rotate 可以在任意时刻调用
type Rotator interface {
	// Write 写入日志数据，满足轮转条件时先切换文件
	Write(p []byte) (n int, err error)

	// Close 刷新并关闭当前文件，重复调用返回 [ErrClosed]
	Close() error

	// Rotate 手动触发轮转：关闭当前文件，下次写入时重新打开
	Rotate() error
}

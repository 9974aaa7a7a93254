package xrotate

import "errors"

// 配置校验错误
var (
	// ErrMissingOption 构建 Daily 时缺少必需选项（path/encoder/trigger/append）
	ErrMissingOption = errors.New("xrotate: missing required option")

	// ErrNilDateSource 日期源为 nil
	ErrNilDateSource = errors.New("xrotate: date source is nil")

	// ErrInvalidFileMode FileMode 包含非权限位（仅允许低 9 位 0000~0777）
	ErrInvalidFileMode = errors.New("xrotate: invalid FileMode")

	// ErrInvalidBufferSize 缓冲区大小必须大于 0
	ErrInvalidBufferSize = errors.New("xrotate: invalid buffer size")

	// ErrInvalidPattern PatternEncoder 的模式串无效
	ErrInvalidPattern = errors.New("xrotate: invalid pattern")

	// ErrNilWriter Handler 的目标写入器为 nil
	ErrNilWriter = errors.New("xrotate: daily writer is nil")
)

// 运行时错误
var (
	// ErrDateSource 日期源读取失败或返回了无效日期
	ErrDateSource = errors.New("xrotate: date source failed")

	// ErrClosed 轮转器已关闭
	ErrClosed = errors.New("xrotate: rotator is closed")
)

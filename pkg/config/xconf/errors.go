package xconf

import "errors"

// 加载和解析错误
var (
	// ErrEmptyPath 配置文件路径为空
	ErrEmptyPath = errors.New("xconf: empty config path")

	// ErrUnsupportedFormat 不支持的配置格式
	ErrUnsupportedFormat = errors.New("xconf: unsupported config format")

	// ErrLoadFailed 读取配置文件失败
	ErrLoadFailed = errors.New("xconf: failed to load config")

	// ErrParseFailed 解析配置内容失败
	ErrParseFailed = errors.New("xconf: failed to parse config")

	// ErrUnmarshalFailed 反序列化失败
	ErrUnmarshalFailed = errors.New("xconf: failed to unmarshal config")

	// ErrNotReloadable 从字节数据创建的配置不能重载或监视
	ErrNotReloadable = errors.New("xconf: config was not loaded from a file")
)

// 监视错误
var (
	// ErrWatch fsnotify 报告的错误，通过 WatchCallback 传递
	ErrWatch = errors.New("xconf: watch error")
)

// ErrInvalidLogConfig 日志配置校验失败
var ErrInvalidLogConfig = errors.New("xconf: invalid log config")

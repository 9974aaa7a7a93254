package xrun

import "github.com/omeyang/xdaily/pkg/observability/xlog"

// Option 配置 Group 的选项函数。
type Option func(*groupOptions)

type groupOptions struct {
	logger xlog.Logger
	name   string
}

func defaultOptions() *groupOptions {
	return &groupOptions{name: "xrun"}
}

// WithLogger 设置记录任务启停的日志器，nil 表示不记录。
func WithLogger(logger xlog.Logger) Option {
	return func(o *groupOptions) {
		o.logger = logger
	}
}

// WithName 设置 Group 名称，出现在日志的 group 字段。空字符串被忽略。
func WithName(name string) Option {
	return func(o *groupOptions) {
		if name != "" {
			o.name = name
		}
	}
}

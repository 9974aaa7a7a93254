package xrotate

import (
	"context"
	"io"
	"log/slog"
)

// Encoder 把一条日志记录渲染为字节写入 w。
//
// [Daily.Append] 先把记录渲染到内存缓冲区，再整体写入文件，
// 渲染失败不会在文件中留下半条记录。
type Encoder interface {
	Encode(w io.Writer, r slog.Record) error
}

// EncoderFunc 函数适配器。
type EncoderFunc func(w io.Writer, r slog.Record) error

// Encode 实现 Encoder。
func (f EncoderFunc) Encode(w io.Writer, r slog.Record) error {
	return f(w, r)
}

// slogEncoder 借用 slog 内置 handler 的格式化逻辑。
// handler 绑定在具体 writer 上，因此每条记录新建一个（只是一次小对象分配）。
type slogEncoder struct {
	newHandler func(w io.Writer) slog.Handler
}

func (e slogEncoder) Encode(w io.Writer, r slog.Record) error {
	return e.newHandler(w).Handle(context.Background(), r)
}

// NewTextEncoder 以 slog.TextHandler 的 key=value 格式渲染记录。
//
// opts.Level 不参与过滤，级别过滤由上游（如 [Handler]）负责。
func NewTextEncoder(opts *slog.HandlerOptions) Encoder {
	return slogEncoder{newHandler: func(w io.Writer) slog.Handler {
		return slog.NewTextHandler(w, opts)
	}}
}

// NewJSONEncoder 以 slog.JSONHandler 的 JSON 行格式渲染记录。
func NewJSONEncoder(opts *slog.HandlerOptions) Encoder {
	return slogEncoder{newHandler: func(w io.Writer) slog.Handler {
		return slog.NewJSONHandler(w, opts)
	}}
}

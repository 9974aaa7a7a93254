package xrotate

import (
	"context"
	"log/slog"
	"slices"
)

// HandlerOptions Handler 配置
type HandlerOptions struct {
	// Level 最低记录级别，nil 时为 slog.LevelInfo。
	// 传入 *slog.LevelVar 可在运行时调整。
	Level slog.Leveler
}

// Handler 把 slog 记录交给 [Daily.Append] 的 slog.Handler 适配器
//
// 记录格式由 Daily 的 Encoder 决定。WithGroup 以 "group." 前缀展平属性键，
// 不产生嵌套结构，与文本类编码器的输出保持一致。
type Handler struct {
	daily  *Daily
	level  slog.Leveler
	attrs  []slog.Attr
	prefix string
}

var _ slog.Handler = (*Handler)(nil)

// NewHandler 创建 Handler。d 为 nil 时返回 [ErrNilWriter]。
func NewHandler(d *Daily, opts *HandlerOptions) (*Handler, error) {
	if d == nil {
		return nil, ErrNilWriter
	}
	h := &Handler{daily: d, level: slog.LevelInfo}
	if opts != nil && opts.Level != nil {
		h.level = opts.Level
	}
	return h, nil
}

// Enabled 按最低级别过滤
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle 合并预设属性后写入 Daily
//
// 按 slog 契约不修改传入的 record，需要追加属性时构造新记录。
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	if len(h.attrs) == 0 && h.prefix == "" {
		return h.daily.Append(ctx, r)
	}

	nr := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	nr.AddAttrs(h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		nr.AddAttrs(h.qualify(a))
		return true
	})
	return h.daily.Append(ctx, nr)
}

// WithAttrs 返回带预设属性的新 Handler
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	nh := h.clone()
	for _, a := range attrs {
		nh.attrs = append(nh.attrs, h.qualify(a))
	}
	return nh
}

// WithGroup 返回后续属性键带分组前缀的新 Handler
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	nh := h.clone()
	nh.prefix = h.prefix + name + "."
	return nh
}

func (h *Handler) clone() *Handler {
	return &Handler{
		daily:  h.daily,
		level:  h.level,
		attrs:  slices.Clip(h.attrs),
		prefix: h.prefix,
	}
}

func (h *Handler) qualify(a slog.Attr) slog.Attr {
	if h.prefix == "" {
		return a
	}
	return slog.Attr{Key: h.prefix + a.Key, Value: a.Value}
}

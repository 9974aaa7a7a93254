package xlog

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/omeyang/xdaily/pkg/observability/xmetrics"
	"github.com/omeyang/xdaily/pkg/observability/xrotate"
)

// ReplaceAttrFunc 属性替换函数，用于字段重命名、脱敏、过滤。
// 返回空 Key 的 Attr 表示移除该属性。
type ReplaceAttrFunc func(groups []string, a slog.Attr) slog.Attr

// dailyOptions SetDailyRotation 收集的参数，Build 时才创建 Daily，
// 这样编码器能使用最终确定的格式和属性处理选项。
type dailyOptions struct {
	template   string
	appendMode bool
	dates      xrotate.DateSource
}

// Builder 日志配置构建器
type Builder struct {
	output      io.Writer
	levelVar    *slog.LevelVar
	format      string
	addSource   bool
	replaceAttr ReplaceAttrFunc
	onError     func(error)
	observer    xmetrics.Observer

	rotator xrotate.Rotator
	daily   *dailyOptions

	err error
}

// New 创建配置构建器：stderr、Info 级别、text 格式
func New() *Builder {
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)
	return &Builder{
		output:   os.Stderr,
		levelVar: levelVar,
		format:   "text",
	}
}

// SetOutput 设置输出目标，会覆盖之前的 SetRotator/SetDailyRotation
func (b *Builder) SetOutput(w io.Writer) *Builder {
	if b.err == nil {
		b.output = w
		b.rotator = nil
		b.daily = nil
	}
	return b
}

// SetLevel 设置日志级别
func (b *Builder) SetLevel(level Level) *Builder {
	if b.err == nil {
		b.levelVar.Set(slog.Level(level))
	}
	return b
}

// SetLevelString 通过字符串设置日志级别，见 [ParseLevel]
func (b *Builder) SetLevelString(s string) *Builder {
	if b.err != nil {
		return b
	}
	level, err := ParseLevel(s)
	if err != nil {
		b.err = err
		return b
	}
	return b.SetLevel(level)
}

// SetFormat 设置输出格式：text 或 json，空值按 text 处理
func (b *Builder) SetFormat(format string) *Builder {
	if b.err != nil {
		return b
	}
	switch normalized := strings.ToLower(strings.TrimSpace(format)); normalized {
	case "":
		b.format = "text"
	case "text", "json":
		b.format = normalized
	default:
		b.err = fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return b
}

// SetAddSource 是否在日志中添加源码位置
func (b *Builder) SetAddSource(enable bool) *Builder {
	if b.err == nil {
		b.addSource = enable
	}
	return b
}

// SetOnError 设置内部错误回调
//
// 记录写入失败时调用；按日滚动输出时还接收目录创建失败等文件层面的软错误。
// 回调在写入路径上同步执行，应保持轻量，且不得向同一个 logger 写日志。
func (b *Builder) SetOnError(fn func(error)) *Builder {
	if b.err == nil {
		b.onError = fn
	}
	return b
}

// SetReplaceAttr 设置属性替换函数
//
//	xlog.New().SetReplaceAttr(func(_ []string, a slog.Attr) slog.Attr {
//		if a.Key == "token" {
//			return slog.String(a.Key, "***")
//		}
//		return a
//	})
func (b *Builder) SetReplaceAttr(fn ReplaceAttrFunc) *Builder {
	if b.err == nil {
		b.replaceAttr = fn
	}
	return b
}

// SetObserver 设置按日滚动文件的观测器（文件打开、跨天切换）
func (b *Builder) SetObserver(obs xmetrics.Observer) *Builder {
	if b.err == nil {
		b.observer = obs
	}
	return b
}

// SetDailyRotation 输出到按日期滚动的文件
//
// template 为路径模板，文件基名中的 {year}、{month}、{day} 替换为当天日期；
// appendMode 为 true 时追加到已有文件，否则打开时截断。日期取本地时区。
func (b *Builder) SetDailyRotation(template string, appendMode bool) *Builder {
	if b.err == nil {
		b.daily = &dailyOptions{template: template, appendMode: appendMode}
		b.rotator = nil
	}
	return b
}

// SetDateSource 替换按日滚动使用的日期源，默认本地时区。
// 必须在 SetDailyRotation 之后调用。
func (b *Builder) SetDateSource(src xrotate.DateSource) *Builder {
	if b.err != nil {
		return b
	}
	if b.daily == nil {
		b.err = errors.New("xlog: SetDateSource requires SetDailyRotation")
		return b
	}
	if src == nil {
		b.err = xrotate.ErrNilDateSource
		return b
	}
	b.daily.dates = src
	return b
}

// SetRotator 输出到调用方构建的轮转器，cleanup 时关闭它
func (b *Builder) SetRotator(r xrotate.Rotator) *Builder {
	if b.err != nil {
		return b
	}
	if r == nil {
		b.err = ErrNilRotator
		return b
	}
	b.rotator = r
	b.output = r
	b.daily = nil
	return b
}

// Build 构建 Logger
//
// 返回 logger、清理函数（关闭文件输出，幂等）和配置错误。
func (b *Builder) Build() (LoggerWithLevel, func() error, error) {
	if b.err != nil {
		return nil, nil, b.err
	}

	opts := &slog.HandlerOptions{
		Level:     b.levelVar,
		AddSource: b.addSource,
	}
	if b.replaceAttr != nil {
		opts.ReplaceAttr = b.replaceAttr
	}

	var (
		handler slog.Handler
		closer  io.Closer
	)
	if b.daily != nil {
		d, h, err := b.buildDaily(opts)
		if err != nil {
			return nil, nil, err
		}
		handler, closer = h, d
	} else {
		if b.format == "json" {
			handler = slog.NewJSONHandler(b.output, opts)
		} else {
			handler = slog.NewTextHandler(b.output, opts)
		}
		if b.rotator != nil {
			closer = b.rotator
		}
	}

	logger := &xlogger{
		handler:        handler,
		levelVar:       b.levelVar,
		addSource:      b.addSource,
		onError:        b.onError,
		errorCount:     new(atomic.Uint64),
		inErrorHandler: new(atomic.Bool),
	}
	return logger, newCleanup(closer), nil
}

// buildDaily 创建按日滚动的 Daily 及其 slog 适配器。
// 级别过滤由适配器负责，编码器只负责格式。
func (b *Builder) buildDaily(opts *slog.HandlerOptions) (*xrotate.Daily, slog.Handler, error) {
	dates := b.daily.dates
	if dates == nil {
		dates = xrotate.LocalDateSource()
	}
	trigger, err := xrotate.NewDayTrigger(dates)
	if err != nil {
		return nil, nil, err
	}

	var enc xrotate.Encoder
	if b.format == "json" {
		enc = xrotate.NewJSONEncoder(opts)
	} else {
		enc = xrotate.NewTextEncoder(opts)
	}

	db := xrotate.NewDaily().
		SetPath(b.daily.template).
		SetEncoder(enc).
		SetTrigger(trigger).
		SetAppend(b.daily.appendMode).
		SetDateSource(dates).
		SetObserver(b.observer)
	if b.onError != nil {
		db.SetOnError(b.onError)
	}
	d, err := db.Build()
	if err != nil {
		return nil, nil, err
	}

	h, err := xrotate.NewHandler(d, &xrotate.HandlerOptions{Level: b.levelVar})
	if err != nil {
		return nil, nil, errors.Join(err, d.Close())
	}
	return d, h, nil
}

func newCleanup(c io.Closer) func() error {
	var once sync.Once
	return func() error {
		var err error
		once.Do(func() {
			if c != nil {
				err = c.Close()
			}
		})
		return err
	}
}

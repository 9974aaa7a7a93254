package xrotate

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/omeyang/xdaily/pkg/observability/xmetrics"
)

var _ Rotator = (*Daily)(nil)

// Daily 按日期滚动的日志文件写入器
//
// 文件名由路径模板与当前日期渲染得到；触发器报告跨天时丢弃已打开的文件，
// 下次写入按新日期重新打开。通过 [NewDaily] 构建。
//
// 所有方法并发安全。检查触发器、切换句柄、写入、Flush 在同一把锁内完成，
// 缓存的句柄始终对应触发器最近一次记录的日期。
type Daily struct {
	template   string
	encoder    Encoder
	trigger    Trigger
	appendMode bool
	dates      DateSource
	fileMode   os.FileMode
	dirMode    os.FileMode
	bufSize    int
	onError    func(error)
	observer   xmetrics.Observer

	// 可注入的文件系统调用，仅用于测试
	ensureDir func(string, os.FileMode) error
	openFile  func(string, int, os.FileMode) (*os.File, error)

	mu      sync.Mutex
	file    *os.File
	w       *bufio.Writer
	current string
	closed  bool
}

// bufPool Append 渲染记录用的缓冲区池
var bufPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// maxPooledBuffer 超过此容量的缓冲区不放回池中
const maxPooledBuffer = 64 * 1024

// Write 实现 io.Writer，把 p 原样写入当天的文件并 Flush。
func (d *Daily) Write(p []byte) (int, error) {
	return d.write(context.Background(), p)
}

// Append 用 Encoder 渲染记录后写入当天的文件。
//
// 渲染在加锁前完成；渲染失败时不触碰文件和触发器。
func (d *Daily) Append(ctx context.Context, r slog.Record) error {
	buf, ok := bufPool.Get().(*bytes.Buffer)
	if !ok {
		buf = new(bytes.Buffer)
	}
	buf.Reset()
	defer func() {
		if buf.Cap() <= maxPooledBuffer {
			bufPool.Put(buf)
		}
	}()

	if err := d.encoder.Encode(buf, r); err != nil {
		return fmt.Errorf("xrotate: encode record: %w", err)
	}
	_, err := d.write(ctx, buf.Bytes())
	return err
}

func (d *Daily) write(ctx context.Context, p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	w, err := d.prepare(ctx)
	if err != nil {
		return 0, err
	}

	n, err := w.Write(p)
	if err == nil {
		err = w.Flush()
	}
	if err != nil {
		// 保留文件句柄，但 bufio.Writer 会记住首个错误，必须重置，
		// 否则故障消除后的写入仍然失败。未写出的缓冲数据随之丢弃。
		w.Reset(d.file)
		return n, err
	}
	return n, nil
}

// prepare 检查触发器并确保有可用句柄，调用方必须持有 d.mu。
func (d *Daily) prepare(ctx context.Context) (*bufio.Writer, error) {
	if d.closed {
		return nil, ErrClosed
	}

	date, dated, rolled, err := d.check()
	if err != nil {
		return nil, err
	}

	if rolled && d.file != nil {
		d.rollover(ctx, date)
	}

	if d.w == nil {
		if !dated {
			if date, err = readDate(d.dates); err != nil {
				return nil, err
			}
		}
		if err := d.open(ctx, date, rolled); err != nil {
			return nil, err
		}
	}
	return d.w, nil
}

// rollover 丢弃跨天前的句柄。每次写入后都已 Flush，直接丢弃不会丢数据。
func (d *Daily) rollover(ctx context.Context, date Date) {
	prev := d.current
	_, span := xmetrics.Start(ctx, d.observer, xmetrics.SpanOptions{
		Component: "xrotate",
		Operation: "rollover",
		Kind:      xmetrics.KindInternal,
		Attrs: []xmetrics.Attr{
			xmetrics.String("previous", prev),
			xmetrics.String("date", date.String()),
		},
	})
	err := d.release()
	if err != nil {
		d.reportError(fmt.Errorf("xrotate: close %s on rollover: %w", prev, err))
	}
	span.End(xmetrics.Result{Err: err})
}

// check 询问触发器。dated 为 true 时 date 是触发器本次观察到的日期。
func (d *Daily) check() (date Date, dated, rolled bool, err error) {
	if dt, ok := d.trigger.(DatedTrigger); ok {
		date, rolled, err = dt.CheckDate()
		return date, err == nil, rolled, err
	}
	rolled, err = d.trigger.Check()
	return Date{}, false, rolled, err
}

// open 按 date 渲染文件名并打开，调用方必须持有 d.mu。
func (d *Daily) open(ctx context.Context, date Date, rollover bool) (err error) {
	name := RenderPath(d.template, date)

	_, span := xmetrics.Start(ctx, d.observer, xmetrics.SpanOptions{
		Component: "xrotate",
		Operation: "open",
		Kind:      xmetrics.KindInternal,
		Attrs: []xmetrics.Attr{
			xmetrics.String("path", name),
			xmetrics.Bool("rollover", rollover),
			xmetrics.Bool("append", d.appendMode),
		},
	})
	defer func() { span.End(xmetrics.Result{Err: err}) }()

	// 目录创建失败只做报告，打开操作的结果才是最终判定
	if dirErr := d.ensureDir(name, d.dirMode); dirErr != nil {
		d.reportError(fmt.Errorf("xrotate: create directory for %s: %w", name, dirErr))
	}

	flag := os.O_CREATE | os.O_WRONLY
	if d.appendMode {
		flag |= os.O_APPEND
	} else {
		flag |= os.O_TRUNC
	}

	//#nosec G304 -- 路径来自调用方配置的模板
	f, err := d.openFile(name, flag, d.fileMode)
	if err != nil {
		return fmt.Errorf("xrotate: open %s: %w", name, err)
	}

	d.file = f
	d.w = bufio.NewWriterSize(f, d.bufSize)
	d.current = name
	return nil
}

// release 刷新并关闭当前句柄，调用方必须持有 d.mu。
func (d *Daily) release() error {
	if d.file == nil {
		return nil
	}
	flushErr := d.w.Flush()
	closeErr := d.file.Close()
	d.file, d.w, d.current = nil, nil, ""
	return errors.Join(flushErr, closeErr)
}

// reportError 通过回调上报内部错误，回调 panic 被隔离。
func (d *Daily) reportError(err error) {
	if err == nil || d.onError == nil {
		return
	}
	defer func() { recover() }() //nolint:errcheck // recover 返回值无需检查
	d.onError(err)
}

// Rotate 手动轮转：关闭当前文件，下次写入按当前日期重新打开。
//
// 截断模式（append=false）下，同一天内 Rotate 后的重新打开会清空当天文件。
func (d *Daily) Rotate() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	return d.release()
}

// Close 刷新并关闭当前文件。之后的 Write/Append/Rotate 返回 [ErrClosed]，
// 重复调用 Close 也返回 [ErrClosed]。
func (d *Daily) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	d.closed = true
	return d.release()
}

// CurrentPath 返回当前打开文件的路径，尚未打开或已关闭时返回空字符串。
func (d *Daily) CurrentPath() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// Template 返回规范化后的路径模板。
func (d *Daily) Template() string {
	return d.template
}

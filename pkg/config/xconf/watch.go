package xconf

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce 默认防抖时间
const DefaultDebounce = 100 * time.Millisecond

// WatchCallback 配置变更回调，err 非 nil 表示重载失败或监视出错（此时 cfg 仍为旧配置）
type WatchCallback func(cfg Config, err error)

// WatchOption 监视器选项
type WatchOption func(*Watcher)

// WithDebounce 设置防抖时间，窗口内的多次变更只触发一次重载。非正值被忽略。
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// Watcher 配置文件监视器，由 [Watch] 创建
type Watcher struct {
	cfg      Config
	fs       *fsnotify.Watcher
	filename string
	callback WatchCallback
	debounce time.Duration
}

// Watch 创建配置文件监视器
//
// 监视配置文件所在目录而非文件本身：编辑器保存时常先删除或 rename，
// 直接监视文件会丢失后续事件。创建后调用 [Watcher.Run] 开始处理事件；
// 不再需要且未运行时调用 [Watcher.Close] 释放资源。
func Watch(cfg Config, callback WatchCallback, opts ...WatchOption) (*Watcher, error) {
	if cfg == nil || cfg.Path() == "" {
		return nil, ErrNotReloadable
	}
	if callback == nil {
		callback = func(Config, error) {}
	}

	w := &Watcher{
		cfg:      cfg,
		filename: filepath.Base(cfg.Path()),
		callback: callback,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("xconf: create watcher: %w", err)
	}
	dir := filepath.Dir(cfg.Path())
	if err := fsw.Add(dir); err != nil {
		return nil, errors.Join(fmt.Errorf("xconf: watch directory %s: %w", dir, err), fsw.Close())
	}
	w.fs = fsw
	return w, nil
}

// Run 处理文件事件直到 ctx 取消，返回前关闭底层 fsnotify 监视器。
//
// 回调在 Run 所在 goroutine 中同步执行，Run 返回后不再有回调。
// 正常退出返回 nil。
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.fs.Close() }()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.callback(w.cfg, w.cfg.Reload())

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.callback(w.cfg, fmt.Errorf("%w: %w", ErrWatch, err))
		}
	}
}

// Close 释放监视器资源，用于从未调用 Run 的情况。可重复调用。
func (w *Watcher) Close() error {
	return w.fs.Close()
}

// relevant 只关心目标文件的写入、创建和 rename（原子保存）事件
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Base(event.Name) != w.filename {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

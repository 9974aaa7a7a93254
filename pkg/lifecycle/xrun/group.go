package xrun

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/omeyang/xdaily/pkg/observability/xlog"
)

// Group 管理一组任务的并发运行和协调退出。
//
// Go、GoWithName、Cancel 可并发调用；Wait 只应调用一次。
type Group struct {
	eg       *errgroup.Group
	ctx      context.Context
	causeCtx context.Context
	cancel   context.CancelCauseFunc
	opts     *groupOptions
}

// NewGroup 创建 Group，返回的 ctx 在任一任务出错或 Cancel 时取消。
func NewGroup(ctx context.Context, opts ...Option) (*Group, context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	options := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}

	causeCtx, cancel := context.WithCancelCause(ctx)
	eg, egCtx := errgroup.WithContext(causeCtx)
	return &Group{
		eg:       eg,
		ctx:      egCtx,
		causeCtx: causeCtx,
		cancel:   cancel,
		opts:     options,
	}, egCtx
}

// Go 启动任务，fn 应在 ctx 取消后尽快返回。
func (g *Group) Go(fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		if fn == nil {
			return ErrNilFunc
		}
		return fn(g.ctx)
	})
}

// GoWithName 与 Go 相同，并在日志中记录任务名和退出原因。
func (g *Group) GoWithName(name string, fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		if fn == nil {
			return ErrNilFunc
		}
		g.debug("task starting", name)
		err := fn(g.ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			if l := g.opts.logger; l != nil {
				l.Warn(context.WithoutCancel(g.ctx), "task exited with error",
					slog.String("group", g.opts.name),
					slog.String("task", name),
					xlog.Err(err),
				)
			}
		} else {
			g.debug("task stopped", name)
		}
		return err
	})
}

func (g *Group) debug(msg, task string) {
	if l := g.opts.logger; l != nil {
		l.Debug(context.WithoutCancel(g.ctx), msg,
			slog.String("group", g.opts.name),
			slog.String("task", task),
		)
	}
}

// Wait 等待所有任务结束，返回第一个错误。
//
// 组被 Cancel 或父 ctx 取消时，任务返回的 context.Canceled 被过滤：
// 有显式 cause 返回 cause，否则返回 nil。任务自身产生的 context.Canceled 原样返回。
func (g *Group) Wait() error {
	defer g.cancel(nil)

	err := g.eg.Wait()
	cause := context.Cause(g.causeCtx)
	explicit := g.causeCtx.Err() != nil && cause != nil && !errors.Is(cause, context.Canceled)

	if errors.Is(err, context.Canceled) && g.causeCtx.Err() != nil {
		if explicit {
			return cause
		}
		return nil
	}
	if err == nil && explicit {
		return cause
	}
	return err
}

// Cancel 结束整组任务，cause 会由 Wait 返回；nil 表示正常结束。
func (g *Group) Cancel(cause error) {
	g.cancel(cause)
}

// Context 返回任务使用的 ctx。
func (g *Group) Context() context.Context {
	return g.ctx
}

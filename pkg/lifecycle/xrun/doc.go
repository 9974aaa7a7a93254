// Package xrun 基于 errgroup + context 协调一组长期运行的任务。
//
// 任一任务返回错误时，其余任务通过 ctx 收到取消；Wait 返回第一个错误。
// Cancel(cause) 主动结束整组任务，cause 为 nil 时视为正常结束。
//
//	g, ctx := xrun.NewGroup(ctx, xrun.WithName("pipe"), xrun.WithLogger(logger))
//	g.GoWithName("watch", watcher.Run)
//	g.GoWithName("pump", func(ctx context.Context) error {
//	    defer g.Cancel(nil)
//	    return pump(ctx)
//	})
//	err := g.Wait()
//
// 信号处理不在本包内：CLI 在入口处把信号转换为 ctx 取消。
package xrun

// Package xmetrics 为日志写入器提供最小化的观测接口（metrics + tracing）。
//
// 业务代码只依赖 [Observer]/[Span]/[Attr]；默认实现基于 OpenTelemetry，
// 未配置时使用 [NoopObserver]，不产生任何开销以外的副作用。
//
//	obs, _ := xmetrics.NewOTelObserver()
//	_, span := xmetrics.Start(ctx, obs, xmetrics.SpanOptions{
//		Component: "xrotate",
//		Operation: "open",
//	})
//	defer span.End(xmetrics.Result{Err: err})
//
// # 指标命名
//
//   - xdaily.operation.total
//   - xdaily.operation.duration
//
// 统一属性：component / operation / status。
package xmetrics

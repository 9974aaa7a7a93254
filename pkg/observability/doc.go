// Package observability 提供可观测性相关的子包。
//
// 子包列表：
//   - xrotate: 按日期滚动的日志文件写入
//   - xlog: 结构化日志，基于 log/slog 扩展，可输出到 xrotate
//   - xmetrics: 统一可观测性接口（指标、追踪），OpenTelemetry 实现
//
// 设计原则：
//   - xrotate 作为日志落地层，不反向依赖 xlog
//   - 文件操作的观测通过 xmetrics.Observer 注入，默认无开销
package observability

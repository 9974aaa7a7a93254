// Package xlog 基于 log/slog 的结构化日志库。
//
// # 创建 Logger
//
// 使用 Builder 模式，first-error-wins：遇到第一个配置错误后，后续 Set 操作被跳过。
// Builder 为一次性使用，调用 [Builder.Build] 后需通过 [New] 创建新实例。
//
//	logger, cleanup, err := xlog.New().
//		SetLevelString("debug").
//		SetFormat("json").
//		SetDailyRotation("/var/log/app/app-{year}-{month}-{day}.log", true).
//		Build()
//	if err != nil {
//		return err
//	}
//	defer cleanup()
//
// # 输出目标
//
//   - [Builder.SetOutput]: 任意 io.Writer，默认 os.Stderr
//   - [Builder.SetDailyRotation]: 按日期滚动的文件，每天一个文件，见 xrotate 包
//   - [Builder.SetRotator]: 调用方自行构建的 xrotate.Rotator
//
// 文件输出时 cleanup 负责关闭文件，多次调用只关闭一次。
//
// # 日志级别
//
// LevelDebug(-4)、LevelInfo(0)、LevelWarn(4)、LevelError(8)。
// Level 实现 encoding.TextMarshaler/TextUnmarshaler，可直接出现在配置结构体中。
// 构建出的 [LoggerWithLevel] 支持运行时调整级别，派生 logger 共享同一个级别。
//
// # 内部错误
//
// 写入失败不会返回给业务代码，而是计数并交给 [Builder.SetOnError] 设置的回调。
// 按日滚动输出时，目录创建失败等文件层面的软错误也走同一个回调。
package xlog

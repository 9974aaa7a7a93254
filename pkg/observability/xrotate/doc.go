// Package xrotate 提供按日期滚动的日志文件写入器。
//
// [Rotator] 接口定义了轮转器的核心行为（Write/Close/Rotate），所有实现并发安全。
//
// # 当前实现
//
//   - [Daily]: 文件名内嵌当前日期，跨天后自动切换到新文件
//
// # 组成
//
//   - [DateSource]: 提供"今天"的日期，可注入以便测试模拟跨天
//   - [DayTrigger]: 记录上次看到的日期，每次写入前判断是否跨天
//   - [RenderPath]: 把 {year}/{month}/{day} 替换进文件基名
//   - [Encoder]: 把 slog.Record 渲染为字节，[Daily.Append] 使用
//   - [Handler]: slog.Handler 适配器，记录直接落到 [Daily]
//
// # 文件名宽度
//
// 占位符按自然宽度输出（strconv.Itoa，不补零）：模板 "log/{year}-{month}-{day}.log"
// 在 2024-03-07 渲染为 "log/2024-3-7.log"。下游读取日志的工具应按此约定匹配文件名。
// 只替换这三个占位符，其他 {...} 原样保留；目录部分不做替换。
//
// # 写入流程
//
// 每次写入在同一把互斥锁内完成：检查触发器 → 跨天则丢弃旧句柄 → 无句柄则按当前日期
// 打开文件 → 写入 → Flush。句柄与触发器的日期因此始终一致，并发写入者不会写进
// 过期日期的文件。锁内可能执行文件打开等阻塞调用，文件系统慢时所有写入者一起等待。
//
// # 错误处理
//
//   - 构建时缺少必需选项：Build 返回 [ErrMissingOption]（MustBuild 则 panic）
//   - 日期源读取失败：本次写入返回 [ErrDateSource]，缓存句柄不受影响
//   - 父目录创建失败：只通过 OnError 回调报告，随后的打开操作决定成败
//   - 打开/写入/Flush 失败：返回给调用方，写入失败不丢弃句柄
package xrotate

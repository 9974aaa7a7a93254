// Package xconf 基于 koanf 的配置加载。
//
// 负责文件或字节数据的加载、反序列化和热重载；字段默认值与校验由使用方负责，
// 日志相关配置见 [LoadLog]。
//
// # 支持的格式
//
//   - YAML：.yaml, .yml
//   - JSON：.json
//
// # 并发安全
//
// Reload 串行执行，解析成功后原子替换内部 koanf 实例；解析失败时保留旧配置。
// Client 返回调用时刻的快照，Reload 后旧指针仍可用但数据已过期，不要长期缓存。
//
// # 配置监视
//
// [Watch] 基于 fsnotify 监视配置文件所在目录，兼容编辑器先写临时文件再 rename 的保存方式。
// 短时间内的多次变更合并为一次重载。[Watcher.Run] 阻塞直到 ctx 取消，
// 回调只在 Run 所在 goroutine 中执行，Run 返回后不会再有回调。
package xconf

// Package util 提供通用工具相关的子包。
//
// 子包列表：
//   - xfile: 路径校验、文件名替换、父目录创建
//   - xproc: 进程信息查询，PID 和进程名称
package util

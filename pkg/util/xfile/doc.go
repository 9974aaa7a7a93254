// Package xfile 提供日志文件路径相关的文件系统工具。
//
// # 路径校验
//
// [SanitizePath] 对文件路径做格式净化：拒绝空路径、空字节、目录路径（尾随分隔符）
// 以及作为独立路径段出现的 ".."；其余路径经 filepath.Clean 规范化后返回。
// 以 ".." 开头的合法文件名（如 "..app.log"）不受影响。
//
// # 基名替换
//
// [ReplaceBase] 只改写路径的文件名部分，目录部分按原文保留。
// 按日期命名的日志文件用它把占位符限制在基名内：
//
//	xfile.ReplaceBase("log/{day}/app-{day}.log", render) // 仅替换 "app-{day}.log"
//
// # 目录创建
//
// [EnsureDir]/[EnsureDirWithPerm] 递归创建文件的父目录，目录已存在时不报错。
// 底层使用 os.MkdirAll，会跟随符号链接。
//
// # 错误处理
//
// 预定义错误变量支持 [errors.Is] 判断：
//
//	_, err := xfile.SanitizePath("../etc/passwd")
//	if errors.Is(err, xfile.ErrPathTraversal) {
//	    // 处理路径穿越
//	}
package xfile

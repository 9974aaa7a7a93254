// Package xproc 提供当前进程的标识信息，用于日志模式串中的 {pid}、{process}。
package xproc

import (
	"os"
	"path/filepath"
	"sync"
)

// osExecutable 测试替换点
var osExecutable = os.Executable

var (
	processNameOnce  sync.Once
	processNameValue string
)

// ProcessID 返回当前进程 ID。
func ProcessID() int {
	return os.Getpid()
}

// ProcessName 返回可执行文件名（不含目录），首次调用后缓存。
//
// 优先取 [os.Executable]，失败时回退到 os.Args[0]；都不可用时返回空字符串。
// 空结果同样被缓存。
func ProcessName() string {
	processNameOnce.Do(func() {
		processNameValue = resolveProcessName()
	})
	return processNameValue
}

func resolveProcessName() string {
	if exe, err := osExecutable(); err == nil {
		if name := baseName(exe); name != "" {
			return name
		}
	}
	if len(os.Args) == 0 {
		return ""
	}
	return baseName(os.Args[0])
}

// baseName 对空路径以及 "."、".."、根目录返回空字符串
func baseName(path string) string {
	if path == "" {
		return ""
	}
	name := filepath.Base(path)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return ""
	}
	return name
}

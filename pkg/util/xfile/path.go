package xfile

import (
	"fmt"
	"path/filepath"
	"strings"
)

func containsNullByte(path string) bool {
	return strings.ContainsRune(path, 0)
}

// hasDotDotSegment 检测路径中是否有恰好为 ".." 的路径段。
// '/' 和 '\' 都视为分隔符，逐字符扫描，不分配内存。
func hasDotDotSegment(path string) bool {
	i := 0
	for i < len(path) {
		if path[i] == '/' || path[i] == '\\' {
			i++
			continue
		}
		j := i
		for j < len(path) && path[j] != '/' && path[j] != '\\' {
			j++
		}
		if j-i == 2 && path[i] == '.' && path[i+1] == '.' {
			return true
		}
		i = j
	}
	return false
}

// CleanPath 校验并规范化文件路径，允许相对路径以 ".." 指向上级目录。
//
// 拒绝：空路径、含空字节的路径、以分隔符结尾的目录路径、没有文件名的路径。
// 日志路径模板由调用方配置，"../logs/app-{day}.log" 这样的写法是合法的。
func CleanPath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename is required: %w", ErrEmptyPath)
	}
	if containsNullByte(filename) {
		return "", fmt.Errorf("filename contains null byte: %w", ErrNullByte)
	}

	// 必须在 Clean 之前检查，Clean 会去掉尾部分隔符
	if strings.HasSuffix(filename, "/") || strings.HasSuffix(filename, "\\") {
		return "", fmt.Errorf("path is a directory: %w", ErrInvalidPath)
	}

	cleaned := filepath.Clean(filename)
	base := filepath.Base(cleaned)
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return "", fmt.Errorf("no file name specified: %w", ErrInvalidPath)
	}
	return cleaned, nil
}

// SanitizePath 在 [CleanPath] 的基础上拒绝规范化后仍含 ".." 段的路径。
// 绝对路径中的 ".." 会被 filepath.Clean 正常折叠
// （"/var/log/../tmp/a.log" -> "/var/tmp/a.log"），不视为穿越。
//
// 本函数只做格式净化，不把路径限制在某个目录内。
func SanitizePath(filename string) (string, error) {
	cleaned, err := CleanPath(filename)
	if err != nil {
		return "", err
	}
	if hasDotDotSegment(cleaned) {
		return "", fmt.Errorf("path traversal in filename: %w", ErrPathTraversal)
	}
	return cleaned, nil
}

// ReplaceBase 用 fn 改写 path 的文件名部分，目录部分（含分隔符）原样保留。
//
// 返回值满足 dir + fn(base) 的形式，其中 dir, base = filepath.Split(path)。
func ReplaceBase(path string, fn func(base string) string) string {
	dir, base := filepath.Split(path)
	return dir + fn(base)
}

package xrotate

import (
	"strconv"
	"strings"

	"github.com/omeyang/xdaily/pkg/util/xfile"
)

// 文件名模板占位符
const (
	TokenYear  = "{year}"
	TokenMonth = "{month}"
	TokenDay   = "{day}"
)

// RenderPath 把模板文件基名中的 {year}、{month}、{day} 替换为 d 的对应分量。
//
// 目录部分原样保留；未知的 {...} 不做处理。数字按自然宽度输出：
//
//	RenderPath("log/{year}-{month}-{day}.log", Date{2024, 3, 7}) // "log/2024-3-7.log"
func RenderPath(template string, d Date) string {
	r := strings.NewReplacer(
		TokenYear, strconv.Itoa(d.Year),
		TokenMonth, strconv.Itoa(d.Month),
		TokenDay, strconv.Itoa(d.Day),
	)
	return xfile.ReplaceBase(template, r.Replace)
}

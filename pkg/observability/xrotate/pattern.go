package xrotate

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/omeyang/xdaily/pkg/util/xproc"
)

// DefaultPattern 默认模式：
//
//	[2024-03-07 21:56:44 +09:00] - [INFO] PID = 53280
//	started server addr=:8080
const DefaultPattern = "[{date}] - [{level}] PID = {pid}{n}{message}{attrs}{n}"

// patternDateLayout {date} 的时间格式
const patternDateLayout = "2006-01-02 15:04:05 -07:00"

type patternKind int

const (
	patLiteral patternKind = iota
	patDate
	patLevel
	patMessage
	patAttrs
	patPID
	patProcess
	patNewline
)

var patternTokens = map[string]patternKind{
	"date":    patDate,
	"level":   patLevel,
	"message": patMessage,
	"attrs":   patAttrs,
	"pid":     patPID,
	"process": patProcess,
	"n":       patNewline,
}

type patternPart struct {
	kind patternKind
	text string
}

// PatternEncoder 按模式串渲染记录。
//
// 支持的占位符：
//   - {date}: 记录时间，格式 "2006-01-02 15:04:05 -07:00"
//   - {level}: 级别名（DEBUG/INFO/WARN/ERROR）
//   - {message}: 日志消息
//   - {attrs}: 记录属性，每个以空格开头，形如 " key=value"
//   - {pid}: 当前进程号
//   - {process}: 可执行文件名
//   - {n}: 换行
//
// 未识别的占位符在构建时报错；没有闭合 "}" 的 "{" 按字面量处理。
type PatternEncoder struct {
	parts   []patternPart
	pid     string
	process string
}

var _ Encoder = (*PatternEncoder)(nil)

// NewPatternEncoder 解析模式串。pattern 为空时使用 [DefaultPattern]。
func NewPatternEncoder(pattern string) (*PatternEncoder, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	parts, err := parsePattern(pattern)
	if err != nil {
		return nil, err
	}
	return &PatternEncoder{
		parts:   parts,
		pid:     strconv.Itoa(xproc.ProcessID()),
		process: xproc.ProcessName(),
	}, nil
}

func parsePattern(pattern string) ([]patternPart, error) {
	var parts []patternPart
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			parts = append(parts, patternPart{kind: patLiteral, text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(pattern); {
		if pattern[i] != '{' {
			lit.WriteByte(pattern[i])
			i++
			continue
		}
		end := strings.IndexByte(pattern[i:], '}')
		if end < 0 {
			lit.WriteString(pattern[i:])
			break
		}
		name := pattern[i+1 : i+end]
		kind, ok := patternTokens[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown token {%s}", ErrInvalidPattern, name)
		}
		flush()
		parts = append(parts, patternPart{kind: kind})
		i += end + 1
	}
	flush()
	return parts, nil
}

// Encode 实现 Encoder，整条记录通过一次 w.Write 写出。
func (e *PatternEncoder) Encode(w io.Writer, r slog.Record) error {
	var buf bytes.Buffer
	for _, p := range e.parts {
		switch p.kind {
		case patLiteral:
			buf.WriteString(p.text)
		case patDate:
			buf.WriteString(r.Time.Format(patternDateLayout))
		case patLevel:
			buf.WriteString(r.Level.String())
		case patMessage:
			buf.WriteString(r.Message)
		case patAttrs:
			r.Attrs(func(a slog.Attr) bool {
				buf.WriteByte(' ')
				buf.WriteString(a.String())
				return true
			})
		case patPID:
			buf.WriteString(e.pid)
		case patProcess:
			buf.WriteString(e.process)
		case patNewline:
			buf.WriteByte('\n')
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}

package xconf

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/omeyang/xdaily/pkg/observability/xlog"
	"github.com/omeyang/xdaily/pkg/observability/xrotate"
	"github.com/omeyang/xdaily/pkg/util/xfile"
)

// DefaultLogPath 日志配置在配置文件中的默认节点
const DefaultLogPath = "log"

// 日志格式
const (
	LogFormatText    = "text"
	LogFormatJSON    = "json"
	LogFormatPattern = "pattern"
)

// LogConfig 按日滚动日志的配置
//
// 对应的 YAML：
//
//	log:
//	  template: /var/log/app/app-{year}-{month}-{day}.log
//	  append: true
//	  format: pattern
//	  pattern: "[{date}] [{level}] {message}{attrs}{n}"
//	  level: info
//	  file_mode: "0640"   # 八进制字符串，需加引号
//	  utc: false
type LogConfig struct {
	Template string
	Append   bool
	Format   string
	Pattern  string
	Level    xlog.Level
	FileMode os.FileMode
	UTC      bool
}

// rawLogConfig 配置文件中的原始形态，Append 用指针区分未设置
type rawLogConfig struct {
	Template string `koanf:"template"`
	Append   *bool  `koanf:"append"`
	Format   string `koanf:"format"`
	Pattern  string `koanf:"pattern"`
	Level    string `koanf:"level"`
	FileMode string `koanf:"file_mode"`
	UTC      bool   `koanf:"utc"`
}

// LoadLog 读取 path 节点（为空时使用 [DefaultLogPath]）下的日志配置并校验。
//
// 默认值：append=true、format=text、level=info、file_mode=0644。
// template 必填，且必须是合法的文件路径。
func LoadLog(cfg Config, path string) (LogConfig, error) {
	if path == "" {
		path = DefaultLogPath
	}
	var raw rawLogConfig
	if err := cfg.Unmarshal(path, &raw); err != nil {
		return LogConfig{}, err
	}

	out := LogConfig{
		Append:   true,
		Format:   LogFormatText,
		Pattern:  raw.Pattern,
		Level:    xlog.LevelInfo,
		FileMode: xrotate.DefaultFileMode,
		UTC:      raw.UTC,
	}

	if strings.TrimSpace(raw.Template) == "" {
		return LogConfig{}, fmt.Errorf("%w: %s.template is required", ErrInvalidLogConfig, path)
	}
	tpl, err := xfile.CleanPath(raw.Template)
	if err != nil {
		return LogConfig{}, fmt.Errorf("%w: %s.template: %w", ErrInvalidLogConfig, path, err)
	}
	out.Template = tpl

	if raw.Append != nil {
		out.Append = *raw.Append
	}

	switch f := strings.ToLower(strings.TrimSpace(raw.Format)); f {
	case "":
	case LogFormatText, LogFormatJSON, LogFormatPattern:
		out.Format = f
	default:
		return LogConfig{}, fmt.Errorf("%w: %s.format %q", ErrInvalidLogConfig, path, raw.Format)
	}
	if out.Format == LogFormatPattern {
		if _, err := xrotate.NewPatternEncoder(out.Pattern); err != nil {
			return LogConfig{}, fmt.Errorf("%w: %s.pattern: %w", ErrInvalidLogConfig, path, err)
		}
	}

	if raw.Level != "" {
		if out.Level, err = xlog.ParseLevel(raw.Level); err != nil {
			return LogConfig{}, fmt.Errorf("%w: %s.level: %w", ErrInvalidLogConfig, path, err)
		}
	}

	if raw.FileMode != "" {
		mode, err := strconv.ParseUint(raw.FileMode, 8, 32)
		if err != nil || mode > 0o777 {
			return LogConfig{}, fmt.Errorf("%w: %s.file_mode %q must be octal 0000~0777", ErrInvalidLogConfig, path, raw.FileMode)
		}
		out.FileMode = os.FileMode(mode)
	}
	return out, nil
}

// DateSource 返回配置对应的日期源
func (c LogConfig) DateSource() xrotate.DateSource {
	if c.UTC {
		return xrotate.UTCDateSource()
	}
	return xrotate.LocalDateSource()
}

// Encoder 按 Format 创建记录编码器，opts 只作用于 text/json
func (c LogConfig) Encoder(opts *slog.HandlerOptions) (xrotate.Encoder, error) {
	switch c.Format {
	case LogFormatJSON:
		return xrotate.NewJSONEncoder(opts), nil
	case LogFormatPattern:
		enc, err := xrotate.NewPatternEncoder(c.Pattern)
		if err != nil {
			return nil, err
		}
		return enc, nil
	default:
		return xrotate.NewTextEncoder(opts), nil
	}
}

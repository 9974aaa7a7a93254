package xrotate

import (
	"fmt"
	"os"
	"strings"

	"github.com/omeyang/xdaily/pkg/observability/xmetrics"
	"github.com/omeyang/xdaily/pkg/util/xfile"
)

// Daily 默认配置值
const (
	// DefaultFileMode 默认日志文件权限
	DefaultFileMode os.FileMode = 0644

	// DefaultBufferSize 默认写缓冲区大小。每次写入都会 Flush，缓冲区只需容纳单条记录的常见长度
	DefaultBufferSize = 1024
)

// DailyBuilder Daily 配置构建器
//
// path、encoder、trigger、append 四项必须显式设置，缺任何一项 Build 都会失败。
// 采用 first-error-wins：第一个配置错误之后的 Set 调用被忽略。
// Builder 为一次性使用，Build 后不应复用。
type DailyBuilder struct {
	template   string
	encoder    Encoder
	trigger    Trigger
	appendMode bool
	appendSet  bool

	dates    DateSource
	fileMode os.FileMode
	dirMode  os.FileMode
	bufSize  int
	onError  func(error)
	observer xmetrics.Observer

	err error
}

// NewDaily 创建 Daily 构建器
func NewDaily() *DailyBuilder {
	return &DailyBuilder{
		fileMode: DefaultFileMode,
		dirMode:  xfile.DefaultDirPerm,
		bufSize:  DefaultBufferSize,
	}
}

// SetPath 设置文件路径模板（必需），如 "log/{year}-{month}-{day}.log"。
// 相对路径可以用 ".." 指向上级目录；模板按 [xfile.CleanPath] 规范化。
func (b *DailyBuilder) SetPath(template string) *DailyBuilder {
	if b.err == nil {
		b.template = template
	}
	return b
}

// SetEncoder 设置记录编码器（必需），[Daily.Append] 用它渲染记录
func (b *DailyBuilder) SetEncoder(enc Encoder) *DailyBuilder {
	if b.err == nil {
		b.encoder = enc
	}
	return b
}

// SetTrigger 设置轮转触发器（必需），通常为 [NewDayTrigger] 的结果
func (b *DailyBuilder) SetTrigger(t Trigger) *DailyBuilder {
	if b.err == nil {
		b.trigger = t
	}
	return b
}

// SetAppend 设置打开策略（必需）：true 追加已有文件，false 截断
func (b *DailyBuilder) SetAppend(appendMode bool) *DailyBuilder {
	if b.err == nil {
		b.appendMode = appendMode
		b.appendSet = true
	}
	return b
}

// SetDateSource 设置渲染文件名使用的日期源，默认 [LocalDateSource]
//
// 触发器实现了 [DatedTrigger] 时，文件名使用触发器观察到的日期，此日期源不会被读取。
// 使用自定义日期源时应让触发器共享同一个实例。
func (b *DailyBuilder) SetDateSource(src DateSource) *DailyBuilder {
	if b.err != nil {
		return b
	}
	if src == nil {
		b.err = ErrNilDateSource
		return b
	}
	b.dates = src
	return b
}

// SetFileMode 设置新建日志文件的权限，默认 [DefaultFileMode]
//
// 仅允许权限位（0000~0777）。已存在的文件不会被 chmod。
func (b *DailyBuilder) SetFileMode(mode os.FileMode) *DailyBuilder {
	if b.err != nil {
		return b
	}
	if mode&^os.FileMode(0o777) != 0 {
		b.err = fmt.Errorf("%w: got %04o, only permission bits (0000~0777) allowed", ErrInvalidFileMode, mode)
		return b
	}
	b.fileMode = mode
	return b
}

// SetDirMode 设置自动创建父目录时使用的权限，默认 [xfile.DefaultDirPerm]
func (b *DailyBuilder) SetDirMode(mode os.FileMode) *DailyBuilder {
	if b.err != nil {
		return b
	}
	if mode&0100 == 0 || mode&^os.FileMode(0o777) != 0 {
		b.err = fmt.Errorf("%w: directory mode %04o", xfile.ErrInvalidPerm, mode)
		return b
	}
	b.dirMode = mode
	return b
}

// SetBufferSize 设置写缓冲区大小，默认 [DefaultBufferSize]
func (b *DailyBuilder) SetBufferSize(n int) *DailyBuilder {
	if b.err != nil {
		return b
	}
	if n <= 0 {
		b.err = fmt.Errorf("%w: got %d", ErrInvalidBufferSize, n)
		return b
	}
	b.bufSize = n
	return b
}

// SetOnError 设置内部错误回调，默认输出到 os.Stderr
//
// 接收父目录创建失败、轮转时关闭旧文件失败等不影响本次写入结果的错误。
//
// 设计决策: 不使用 slog 记录内部错误。Daily 常作为日志库的输出目标，
// 经日志库上报会递归写回自身。回调同样不得向同一个 Daily 写入。
func (b *DailyBuilder) SetOnError(fn func(error)) *DailyBuilder {
	if b.err == nil {
		b.onError = fn
	}
	return b
}

// SetObserver 设置观测器，每次打开文件记录一个 span（operation=open）
func (b *DailyBuilder) SetObserver(obs xmetrics.Observer) *DailyBuilder {
	if b.err == nil {
		b.observer = obs
	}
	return b
}

// Build 校验配置并创建 Daily。不会打开任何文件，首次写入时才创建。
func (b *DailyBuilder) Build() (*Daily, error) {
	if b.err != nil {
		return nil, b.err
	}

	var missing []string
	if b.template == "" {
		missing = append(missing, "path")
	}
	if b.encoder == nil {
		missing = append(missing, "encoder")
	}
	if b.trigger == nil {
		missing = append(missing, "trigger")
	}
	if !b.appendSet {
		missing = append(missing, "append")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingOption, strings.Join(missing, ", "))
	}

	template, err := xfile.CleanPath(b.template)
	if err != nil {
		return nil, err
	}

	dates := b.dates
	if dates == nil {
		dates = LocalDateSource()
	}
	onError := b.onError
	if onError == nil {
		onError = stderrOnError
	}

	return &Daily{
		template:   template,
		encoder:    b.encoder,
		trigger:    b.trigger,
		appendMode: b.appendMode,
		dates:      dates,
		fileMode:   b.fileMode,
		dirMode:    b.dirMode,
		bufSize:    b.bufSize,
		onError:    onError,
		observer:   b.observer,
		ensureDir:  xfile.EnsureDirWithPerm,
		openFile:   os.OpenFile,
	}, nil
}

// MustBuild 与 Build 相同，但配置错误时 panic。
// 适用于启动阶段的固定配置，缺少选项属于编程错误。
func (b *DailyBuilder) MustBuild() *Daily {
	d, err := b.Build()
	if err != nil {
		panic(err)
	}
	return d
}

func stderrOnError(err error) {
	fmt.Fprintf(os.Stderr, "%v\n", err)
}

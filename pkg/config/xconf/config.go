package xconf

import "github.com/knadh/koanf/v2"

// Format 配置文件格式
type Format string

// 支持的配置格式
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Config 配置接口
//
// 基础读取操作直接使用 Client 返回的 koanf 实例。
type Config interface {
	// Client 返回当前配置快照对应的 koanf 实例
	Client() *koanf.Koanf

	// Unmarshal 把 path 下的配置反序列化到 target，path 为空表示整个配置
	Unmarshal(path string, target any) error

	// Reload 重新读取配置文件，失败时保留旧配置。
	// 从字节数据创建的 Config 返回 [ErrNotReloadable]。
	Reload() error

	// Path 返回配置文件路径，从字节数据创建时为空
	Path() string

	// Format 返回配置格式
	Format() Format
}

// MustUnmarshal 与 Config.Unmarshal 相同，失败时 panic。用于启动阶段的必需配置。
func MustUnmarshal(cfg Config, path string, target any) {
	if err := cfg.Unmarshal(path, target); err != nil {
		panic(err)
	}
}

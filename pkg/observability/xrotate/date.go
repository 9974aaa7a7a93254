package xrotate

import (
	"fmt"
	"time"
)

// Date 日历日期，Month 和 Day 从 1 开始。
type Date struct {
	Year  int
	Month int
	Day   int
}

// DateOf 取 t 所在时区的日历日期。
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: int(m), Day: d}
}

// ParseDate 解析 "2006-01-02" 格式的日期。
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, fmt.Errorf("xrotate: parse date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// AddDays 返回 n 天之后（n 为负则之前）的日期，跨月跨年按公历进位。
func (d Date) AddDays(n int) Date {
	return DateOf(time.Date(d.Year, time.Month(d.Month), d.Day+n, 0, 0, 0, 0, time.UTC))
}

// Equal 报告两个日期是否为同一天。
func (d Date) Equal(o Date) bool {
	return d == o
}

// Valid 报告日期的各分量是否在合法范围内。
func (d Date) Valid() bool {
	if d.Year <= 0 || d.Month < 1 || d.Month > 12 || d.Day < 1 {
		return false
	}
	// 下月第 0 天即本月最后一天
	last := time.Date(d.Year, time.Month(d.Month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	return d.Day <= last
}

// String 返回 YYYY-MM-DD，仅用于诊断输出；文件名渲染见 [RenderPath]。
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// DateSource 提供"今天"的日期。
//
// 生产环境使用 [LocalDateSource]；测试可注入受控实现来模拟跨天。
// 实现必须可并发调用，且读取代价低、无副作用。
type DateSource interface {
	Today() (Date, error)
}

// DateSourceFunc 函数适配器。
type DateSourceFunc func() (Date, error)

// Today 实现 DateSource。
func (f DateSourceFunc) Today() (Date, error) {
	return f()
}

type clockSource struct {
	now func() time.Time
}

func (s clockSource) Today() (Date, error) {
	return DateOf(s.now()), nil
}

// LocalDateSource 返回基于系统本地时区的日期源。
func LocalDateSource() DateSource {
	return clockSource{now: time.Now}
}

// UTCDateSource 返回基于 UTC 的日期源。
func UTCDateSource() DateSource {
	return clockSource{now: func() time.Time { return time.Now().UTC() }}
}

// readDate 读取并校验日期，失败时统一包装为 ErrDateSource。
func readDate(src DateSource) (Date, error) {
	d, err := src.Today()
	if err != nil {
		return Date{}, fmt.Errorf("%w: %w", ErrDateSource, err)
	}
	if !d.Valid() {
		return Date{}, fmt.Errorf("%w: invalid date %d-%d-%d", ErrDateSource, d.Year, d.Month, d.Day)
	}
	return d, nil
}

package xrotate

import "sync"

// Trigger 轮转触发器
//
// Check 报告自上次检查以来是否跨过了轮转边界。返回 true 后，
// 在边界条件不变的情况下紧接着的 Check 必须返回 false。
type Trigger interface {
	Check() (bool, error)
}

// DatedTrigger 能同时给出本次检查所观察到的日期的触发器。
//
// [Daily] 优先使用 CheckDate，用同一次读取的日期渲染文件名，
// 避免检查和打开之间恰好跨过零点时两者不一致。
type DatedTrigger interface {
	Trigger
	CheckDate() (Date, bool, error)
}

var _ DatedTrigger = (*DayTrigger)(nil)

// DayTrigger 按日历日期触发的轮转触发器
//
// 保存最近一次观察到的日期；日期变化即视为跨天。比较的是完整的年月日，
// 长时间无写入后恰好落在另一个月的同一天也能识别。
type DayTrigger struct {
	src  DateSource
	mu   sync.Mutex
	last Date
}

// NewDayTrigger 创建触发器，以构造时的日期作为初始值。
func NewDayTrigger(src DateSource) (*DayTrigger, error) {
	if src == nil {
		return nil, ErrNilDateSource
	}
	today, err := readDate(src)
	if err != nil {
		return nil, err
	}
	return &DayTrigger{src: src, last: today}, nil
}

// Check 实现 Trigger。
func (t *DayTrigger) Check() (bool, error) {
	_, changed, err := t.CheckDate()
	return changed, err
}

// CheckDate 读取当前日期并与上次记录比较，变化时更新记录并返回 true。
//
// 日期源读取失败时不修改内部状态。读取、比较与更新在同一把锁内完成，
// 记录的日期按读取顺序更新，并发调用者中只有一个会看到某次跨天。
func (t *DayTrigger) CheckDate() (Date, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	today, err := readDate(t.src)
	if err != nil {
		return Date{}, false, err
	}
	if today == t.last {
		return today, false, nil
	}
	t.last = today
	return today, true, nil
}

// LastDate 返回最近一次记录的日期。
func (t *DayTrigger) LastDate() Date {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

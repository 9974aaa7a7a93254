package xrotate

import (
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeDates 可控日期源，读取是单次原子加载
type fakeDates struct {
	packed atomic.Int64 // yyyymmdd
}

func newFakeDates(d Date) *fakeDates {
	f := &fakeDates{}
	f.set(d)
	return f
}

func (f *fakeDates) set(d Date) {
	f.packed.Store(int64(d.Year)*10000 + int64(d.Month)*100 + int64(d.Day))
}

func (f *fakeDates) Today() (Date, error) {
	v := f.packed.Load()
	return Date{Year: int(v / 10000), Month: int(v / 100 % 100), Day: int(v % 100)}, nil
}

func (f *fakeDates) advance(days int) Date {
	d, _ := f.Today()
	next := d.AddDays(days)
	f.set(next)
	return next
}

var testDay = Date{Year: 2024, Month: 3, Day: 7}

// newTestDaily 构建使用 fakeDates 的 Daily，测试结束自动关闭
func newTestDaily(t *testing.T, template string, dates DateSource, appendMode bool) *Daily {
	t.Helper()
	trig, err := NewDayTrigger(dates)
	require.NoError(t, err)

	d, err := NewDaily().
		SetPath(template).
		SetEncoder(NewTextEncoder(nil)).
		SetTrigger(trig).
		SetAppend(appendMode).
		SetDateSource(dates).
		SetOnError(func(err error) { t.Logf("xrotate onError: %v", err) }).
		Build()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// readLines 读取文件的非空行
func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func dayPath(dir string, d Date) string {
	return RenderPath(filepath.Join(dir, "app-{year}-{month}-{day}.log"), d)
}

package xrotate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/sync/errgroup"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/omeyang/xdaily/pkg/observability/xmetrics"
)

// =============================================================================
// 基本写入
// =============================================================================

func TestDaily_LazyOpen(t *testing.T) {
	dir := t.TempDir()
	d := newTestDaily(t, filepath.Join(dir, "app-{year}-{month}-{day}.log"), newFakeDates(testDay), true)

	assert.Empty(t, d.CurrentPath())
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "首次写入前不创建文件")

	_, err = d.Write([]byte("hello\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "app-2024-3-7.log"), d.CurrentPath())
	assert.Equal(t, []string{"hello"}, readLines(t, d.CurrentPath()))
}

func TestDaily_AppendRoundTrip(t *testing.T) {
	dir := t.TempDir()
	tpl := filepath.Join(dir, "app-{year}-{month}-{day}.log")
	dates := newFakeDates(testDay)

	const n, m = 5, 7
	d := newTestDaily(t, tpl, dates, true)
	for i := range n {
		_, err := fmt.Fprintf(d, "first-%d\n", i)
		require.NoError(t, err)
	}
	require.NoError(t, d.Close())

	// 同一天重启后以追加模式继续写
	d2 := newTestDaily(t, tpl, dates, true)
	for i := range m {
		_, err := fmt.Fprintf(d2, "second-%d\n", i)
		require.NoError(t, err)
	}

	lines := readLines(t, dayPath(dir, testDay))
	require.Len(t, lines, n+m)
	assert.Equal(t, "first-0", lines[0])
	assert.Equal(t, "second-0", lines[n])
}

func TestDaily_TruncateMode(t *testing.T) {
	dir := t.TempDir()
	path := dayPath(dir, testDay)
	require.NoError(t, os.WriteFile(path, []byte("stale\n"), 0o600))

	d := newTestDaily(t, filepath.Join(dir, "app-{year}-{month}-{day}.log"), newFakeDates(testDay), false)
	_, err := d.Write([]byte("fresh\n"))
	require.NoError(t, err)
	_, err = d.Write([]byte("more\n"))
	require.NoError(t, err)

	// 截断只发生在打开时，同一句柄上的后续写入不互相覆盖
	assert.Equal(t, []string{"fresh", "more"}, readLines(t, path))
}

func TestDaily_CreatesParentDirectories(t *testing.T) {
	dir := t.TempDir()
	tpl := filepath.Join(dir, "a", "b", "app-{day}.log")
	d := newTestDaily(t, tpl, newFakeDates(testDay), true)

	_, err := d.Write([]byte("x\n"))
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "a", "b", "app-7.log"))
}

func TestDaily_ExistingDirectory(t *testing.T) {
	dir := t.TempDir()
	logDir := filepath.Join(dir, "logs")
	require.NoError(t, os.MkdirAll(logDir, 0o750))

	var reported []error
	trig, err := NewDayTrigger(newFakeDates(testDay))
	require.NoError(t, err)
	d, err := NewDaily().
		SetPath(filepath.Join(logDir, "app-{day}.log")).
		SetEncoder(NewTextEncoder(nil)).
		SetTrigger(trig).
		SetAppend(true).
		SetOnError(func(err error) { reported = append(reported, err) }).
		Build()
	require.NoError(t, err)
	defer d.Close()

	_, err = d.Write([]byte("x\n"))
	require.NoError(t, err)
	assert.Empty(t, reported, "目录已存在不是错误")
}

// =============================================================================
// 跨天轮转
// =============================================================================

func TestDaily_RolloverStopsWritingOldFile(t *testing.T) {
	dir := t.TempDir()
	dates := newFakeDates(testDay)
	d := newTestDaily(t, filepath.Join(dir, "app-{year}-{month}-{day}.log"), dates, true)

	const n, m = 3, 4
	for i := range n {
		_, err := fmt.Fprintf(d, "day1-%d\n", i)
		require.NoError(t, err)
	}
	oldPath := dayPath(dir, testDay)
	oldInfo, err := os.Stat(oldPath)
	require.NoError(t, err)

	next := dates.advance(1)
	for i := range m {
		_, err := fmt.Fprintf(d, "day2-%d\n", i)
		require.NoError(t, err)
	}

	assert.Equal(t, dayPath(dir, next), d.CurrentPath())
	assert.Len(t, readLines(t, oldPath), n)
	assert.Len(t, readLines(t, dayPath(dir, next)), m)

	newInfo, err := os.Stat(oldPath)
	require.NoError(t, err)
	assert.Equal(t, oldInfo.Size(), newInfo.Size())
}

func TestDaily_MonthBoundary(t *testing.T) {
	dir := t.TempDir()
	dates := newFakeDates(Date{2024, 1, 31})
	d := newTestDaily(t, filepath.Join(dir, "app-{year}-{month}-{day}.log"), dates, true)

	_, err := d.Write([]byte("jan\n"))
	require.NoError(t, err)
	dates.advance(1)
	_, err = d.Write([]byte("feb\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"jan"}, readLines(t, filepath.Join(dir, "app-2024-1-31.log")))
	assert.Equal(t, []string{"feb"}, readLines(t, filepath.Join(dir, "app-2024-2-1.log")))
}

var lineRe = regexp.MustCompile(`^w\d{2}-\d{3}$`)

func TestDaily_ConcurrentWritersAcrossBoundary(t *testing.T) {
	dir := t.TempDir()
	dates := newFakeDates(testDay)
	d := newTestDaily(t, filepath.Join(dir, "app-{year}-{month}-{day}.log"), dates, true)

	const writers, perWriter = 16, 100
	var written atomic.Int64
	var advanced atomic.Bool

	var g errgroup.Group
	for w := range writers {
		g.Go(func() error {
			for i := range perWriter {
				if _, err := fmt.Fprintf(d, "w%02d-%03d\n", w, i); err != nil {
					return err
				}
				// 写到一半时跨天，只推进一次
				if written.Add(1) >= writers*perWriter/2 && advanced.CompareAndSwap(false, true) {
					dates.advance(1)
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.True(t, advanced.Load())

	day1 := readLines(t, dayPath(dir, testDay))
	day2 := readLines(t, dayPath(dir, testDay.AddDays(1)))
	assert.NotEmpty(t, day1)
	assert.NotEmpty(t, day2)

	seen := make(map[string]int, writers*perWriter)
	for _, line := range append(day1, day2...) {
		require.Regexp(t, lineRe, line, "记录不应被截断或交错")
		seen[line]++
	}
	require.Len(t, seen, writers*perWriter)
	for line, count := range seen {
		assert.Equal(t, 1, count, "记录 %s 重复", line)
	}
}

// =============================================================================
// 错误处理
// =============================================================================

func TestDaily_DateSourceErrorKeepsHandle(t *testing.T) {
	dir := t.TempDir()
	ctrl := gomock.NewController(t)
	src := NewMockDateSource(ctrl)
	boom := errors.New("clock unavailable")

	// DayTrigger 是 DatedTrigger，Daily 不会额外读取日期源
	gomock.InOrder(
		src.EXPECT().Today().Return(testDay, nil), // NewDayTrigger
		src.EXPECT().Today().Return(testDay, nil),
		src.EXPECT().Today().Return(Date{}, boom),
		src.EXPECT().Today().Return(testDay.AddDays(1), nil),
	)

	d := newTestDaily(t, filepath.Join(dir, "app-{year}-{month}-{day}.log"), src, true)

	_, err := d.Write([]byte("ok\n"))
	require.NoError(t, err)
	opened := d.CurrentPath()

	_, err = d.Write([]byte("lost\n"))
	require.ErrorIs(t, err, ErrDateSource)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, opened, d.CurrentPath(), "日期源故障不影响已缓存的句柄")

	_, err = d.Write([]byte("next\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, readLines(t, opened))
	assert.Equal(t, []string{"next"}, readLines(t, dayPath(dir, testDay.AddDays(1))))
}

func TestDaily_PlainTriggerUsesDateSource(t *testing.T) {
	dir := t.TempDir()
	ctrl := gomock.NewController(t)
	trig := NewMockTrigger(ctrl)
	dates := NewMockDateSource(ctrl)

	gomock.InOrder(
		trig.EXPECT().Check().Return(false, nil),
		dates.EXPECT().Today().Return(testDay, nil), // 首次打开读取一次
		trig.EXPECT().Check().Return(false, nil),     // 已有句柄，不再读取
		trig.EXPECT().Check().Return(true, nil),
		dates.EXPECT().Today().Return(testDay.AddDays(1), nil),
	)

	d, err := NewDaily().
		SetPath(filepath.Join(dir, "app-{year}-{month}-{day}.log")).
		SetEncoder(NewTextEncoder(nil)).
		SetTrigger(trig).
		SetDateSource(dates).
		SetAppend(true).
		Build()
	require.NoError(t, err)
	defer d.Close()

	for _, line := range []string{"a\n", "b\n", "c\n"} {
		_, err := d.Write([]byte(line))
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"a", "b"}, readLines(t, dayPath(dir, testDay)))
	assert.Equal(t, []string{"c"}, readLines(t, dayPath(dir, testDay.AddDays(1))))
}

func TestDaily_TriggerErrorPropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	trig := NewMockTrigger(ctrl)
	boom := errors.New("trigger failed")
	trig.EXPECT().Check().Return(false, boom)

	d, err := NewDaily().
		SetPath(filepath.Join(t.TempDir(), "app-{day}.log")).
		SetEncoder(NewTextEncoder(nil)).
		SetTrigger(trig).
		SetAppend(true).
		Build()
	require.NoError(t, err)
	defer d.Close()

	_, err = d.Write([]byte("x\n"))
	require.ErrorIs(t, err, boom)
	assert.Empty(t, d.CurrentPath())
}

func TestDaily_DirectoryErrorIsSoft(t *testing.T) {
	dir := t.TempDir()
	var reported []error
	trig, err := NewDayTrigger(newFakeDates(testDay))
	require.NoError(t, err)
	d, err := NewDaily().
		SetPath(filepath.Join(dir, "app-{day}.log")).
		SetEncoder(NewTextEncoder(nil)).
		SetTrigger(trig).
		SetAppend(true).
		SetOnError(func(err error) { reported = append(reported, err) }).
		Build()
	require.NoError(t, err)
	defer d.Close()

	mkdirErr := errors.New("mkdir denied")
	d.ensureDir = func(string, os.FileMode) error { return mkdirErr }

	// 目录实际存在，打开仍然成功
	_, err = d.Write([]byte("x\n"))
	require.NoError(t, err)
	require.Len(t, reported, 1)
	assert.ErrorIs(t, reported[0], mkdirErr)
}

func TestDaily_OpenFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	var reported []error
	trig, err := NewDayTrigger(newFakeDates(testDay))
	require.NoError(t, err)
	d, err := NewDaily().
		SetPath(filepath.Join(blocker, "app-{day}.log")).
		SetEncoder(NewTextEncoder(nil)).
		SetTrigger(trig).
		SetAppend(true).
		SetOnError(func(err error) { reported = append(reported, err) }).
		Build()
	require.NoError(t, err)
	defer d.Close()

	_, err = d.Write([]byte("x\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xrotate: open")
	assert.Len(t, reported, 1, "目录创建失败先经回调上报")
	assert.Empty(t, d.CurrentPath())
}

func TestDaily_WriteFailureKeepsHandle(t *testing.T) {
	dir := t.TempDir()
	d := newTestDaily(t, filepath.Join(dir, "app-{day}.log"), newFakeDates(testDay), true)

	_, err := d.Write([]byte("first\n"))
	require.NoError(t, err)
	path := d.CurrentPath()

	// 模拟底层文件失效
	require.NoError(t, d.file.Close())

	_, err = d.Write([]byte("broken\n"))
	require.Error(t, err)
	assert.Equal(t, path, d.CurrentPath(), "写入失败不丢弃句柄")

	// 手动轮转后恢复
	assert.Error(t, d.Rotate())
	assert.Empty(t, d.CurrentPath())
	_, err = d.Write([]byte("recovered\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "recovered"}, readLines(t, path))
}

func TestDaily_TransientWriteFailureRecovers(t *testing.T) {
	d := newTestDaily(t, filepath.Join(t.TempDir(), "app-{day}.log"), newFakeDates(testDay), true)

	pr, pw, err := os.Pipe()
	require.NoError(t, err)
	defer pr.Close()
	d.openFile = func(string, int, os.FileMode) (*os.File, error) { return pw, nil }

	received := make(chan []byte, 1)
	go func() {
		data, _ := io.ReadAll(pr)
		received <- data
	}()

	_, err = d.Write([]byte("before\n"))
	require.NoError(t, err)

	// 过期的写截止时间模拟短暂故障
	require.NoError(t, pw.SetWriteDeadline(time.Now().Add(-time.Second)))
	_, err = d.Write([]byte("broken\n"))
	require.ErrorIs(t, err, os.ErrDeadlineExceeded)
	path := d.CurrentPath()

	// 故障消除后同一句柄恢复写入
	require.NoError(t, pw.SetWriteDeadline(time.Time{}))
	for i := range 3 {
		_, err = d.Write([]byte("after\n"))
		require.NoError(t, err, "第 %d 次写入", i)
	}
	assert.Equal(t, path, d.CurrentPath(), "恢复过程不更换句柄")

	require.NoError(t, d.Close())
	assert.Equal(t, "before\nafter\nafter\nafter\n", string(<-received))
}

func TestDaily_OnErrorPanicIsolated(t *testing.T) {
	dir := t.TempDir()
	trig, err := NewDayTrigger(newFakeDates(testDay))
	require.NoError(t, err)
	d, err := NewDaily().
		SetPath(filepath.Join(dir, "app-{day}.log")).
		SetEncoder(NewTextEncoder(nil)).
		SetTrigger(trig).
		SetAppend(true).
		SetOnError(func(error) { panic("callback bug") }).
		Build()
	require.NoError(t, err)
	defer d.Close()
	d.ensureDir = func(string, os.FileMode) error { return errors.New("mkdir denied") }

	assert.NotPanics(t, func() {
		_, err = d.Write([]byte("x\n"))
	})
	require.NoError(t, err)
}

// =============================================================================
// 生命周期
// =============================================================================

func TestDaily_RotateReopens(t *testing.T) {
	dir := t.TempDir()
	d := newTestDaily(t, filepath.Join(dir, "app-{day}.log"), newFakeDates(testDay), true)

	require.NoError(t, d.Rotate(), "未打开时 Rotate 为空操作")

	_, err := d.Write([]byte("a\n"))
	require.NoError(t, err)
	require.NoError(t, d.Rotate())
	assert.Empty(t, d.CurrentPath())

	_, err = d.Write([]byte("b\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, readLines(t, d.CurrentPath()))
}

func TestDaily_RotateTruncatesInTruncateMode(t *testing.T) {
	dir := t.TempDir()
	d := newTestDaily(t, filepath.Join(dir, "app-{day}.log"), newFakeDates(testDay), false)

	_, err := d.Write([]byte("a\n"))
	require.NoError(t, err)
	require.NoError(t, d.Rotate())
	_, err = d.Write([]byte("b\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, readLines(t, d.CurrentPath()))
}

func TestDaily_Close(t *testing.T) {
	dir := t.TempDir()
	d := newTestDaily(t, filepath.Join(dir, "app-{day}.log"), newFakeDates(testDay), true)

	_, err := d.Write([]byte("a\n"))
	require.NoError(t, err)
	require.NoError(t, d.Close())
	assert.Empty(t, d.CurrentPath())

	_, err = d.Write([]byte("b\n"))
	require.ErrorIs(t, err, ErrClosed)
	err = d.Append(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "late", 0))
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, d.Rotate(), ErrClosed)
	require.ErrorIs(t, d.Close(), ErrClosed)

	assert.Equal(t, []string{"a"}, readLines(t, filepath.Join(dir, "app-7.log")))
}

func TestDaily_ConcurrentCloseAndWrite(t *testing.T) {
	dir := t.TempDir()
	d := newTestDaily(t, filepath.Join(dir, "app-{day}.log"), newFakeDates(testDay), true)

	var g errgroup.Group
	for range 8 {
		g.Go(func() error {
			for range 50 {
				if _, err := d.Write([]byte("x\n")); err != nil && !errors.Is(err, ErrClosed) {
					return err
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		err := d.Close()
		if errors.Is(err, ErrClosed) {
			return nil
		}
		return err
	})
	require.NoError(t, g.Wait())
}

// =============================================================================
// Append 与编码
// =============================================================================

func TestDaily_AppendRecord(t *testing.T) {
	dir := t.TempDir()
	dates := newFakeDates(testDay)
	trig, err := NewDayTrigger(dates)
	require.NoError(t, err)

	enc, err := NewPatternEncoder("{level} {message}{attrs}{n}")
	require.NoError(t, err)
	d, err := NewDaily().
		SetPath(filepath.Join(dir, "app-{day}.log")).
		SetEncoder(enc).
		SetTrigger(trig).
		SetAppend(true).
		Build()
	require.NoError(t, err)
	defer d.Close()

	r := slog.NewRecord(time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC), slog.LevelWarn, "disk low", 0)
	r.AddAttrs(slog.Int("free_mb", 42))
	require.NoError(t, d.Append(context.Background(), r))

	assert.Equal(t, []string{"WARN disk low free_mb=42"}, readLines(t, filepath.Join(dir, "app-7.log")))
}

func TestDaily_AppendEncodeErrorSkipsFile(t *testing.T) {
	dir := t.TempDir()
	trig, err := NewDayTrigger(newFakeDates(testDay))
	require.NoError(t, err)
	boom := errors.New("encode failed")
	d, err := NewDaily().
		SetPath(filepath.Join(dir, "app-{day}.log")).
		SetEncoder(EncoderFunc(func(io.Writer, slog.Record) error { return boom })).
		SetTrigger(trig).
		SetAppend(true).
		Build()
	require.NoError(t, err)
	defer d.Close()

	err = d.Append(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "x", 0))
	require.ErrorIs(t, err, boom)
	assert.Empty(t, d.CurrentPath(), "编码失败不打开文件")
}

// =============================================================================
// 观测
// =============================================================================

func TestDaily_ObserverSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader()))
	obs, err := xmetrics.NewOTelObserver(xmetrics.WithTracerProvider(tp), xmetrics.WithMeterProvider(mp))
	require.NoError(t, err)

	dir := t.TempDir()
	dates := newFakeDates(testDay)
	trig, err := NewDayTrigger(dates)
	require.NoError(t, err)
	d, err := NewDaily().
		SetPath(filepath.Join(dir, "app-{day}.log")).
		SetEncoder(NewTextEncoder(nil)).
		SetTrigger(trig).
		SetAppend(true).
		SetObserver(obs).
		Build()
	require.NoError(t, err)
	defer d.Close()

	_, err = d.Write([]byte("a\n"))
	require.NoError(t, err)
	dates.advance(1)
	_, err = d.Write([]byte("b\n"))
	require.NoError(t, err)

	var names []string
	var rollovers []bool
	for _, s := range exporter.GetSpans() {
		names = append(names, s.Name)
		if s.Name != "open" {
			continue
		}
		for _, kv := range s.Attributes {
			if kv.Key == attribute.Key("rollover") {
				rollovers = append(rollovers, kv.Value.AsBool())
			}
		}
	}
	assert.Equal(t, []string{"open", "rollover", "open"}, names)
	assert.Equal(t, []bool{false, true}, rollovers)
}

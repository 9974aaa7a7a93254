package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xdaily/pkg/config/xconf"
	"github.com/omeyang/xdaily/pkg/lifecycle/xrun"
	"github.com/omeyang/xdaily/pkg/observability/xlog"
	"github.com/omeyang/xdaily/pkg/observability/xmetrics"
	"github.com/omeyang/xdaily/pkg/observability/xrotate"
)

// formatRaw 原样写入每行，不经过编码器
const formatRaw = "raw"

// maxLineSize 单行上限
const maxLineSize = 1 << 20

type pipeOptions struct {
	template    string
	appendMode  bool
	format      string
	pattern     string
	level       xlog.Level
	recordLevel xlog.Level
	fileMode    os.FileMode
	utc         bool
	configPath  string
	section     string
	watch       bool
	stats       bool
}

func createPipeCommand(s streams) *cli.Command {
	return &cli.Command{
		Name:  "pipe",
		Usage: "逐行读取标准输入，写入按日期滚动的日志文件",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "template",
				Aliases: []string{"t"},
				Usage:   "文件路径模板，如 /var/log/app/app-{year}-{month}-{day}.log",
			},
			&cli.BoolFlag{
				Name:  "append",
				Usage: "追加到已有文件；--append=false 时打开即截断",
				Value: true,
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "记录格式：text、json、pattern、raw",
				Value:   xconf.LogFormatText,
			},
			&cli.StringFlag{
				Name:  "pattern",
				Usage: "pattern 格式的模式串，默认 " + xrotate.DefaultPattern,
			},
			&cli.StringFlag{
				Name:    "level",
				Aliases: []string{"l"},
				Usage:   "最低记录级别",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "record-level",
				Usage: "每行日志使用的级别",
				Value: "info",
			},
			&cli.BoolFlag{
				Name:  "utc",
				Usage: "按 UTC 日期滚动",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML/JSON 配置文件，命令行参数优先",
			},
			&cli.StringFlag{
				Name:  "section",
				Usage: "配置文件中日志配置所在节点",
				Value: xconf.DefaultLogPath,
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "配置文件变更时重新加载级别（需要 --config）",
			},
			&cli.BoolFlag{
				Name:  "stats",
				Usage: "结束时向标准错误打印文件操作统计",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts, cfg, err := resolvePipeOptions(cmd)
			if err != nil {
				return err
			}
			return cmdPipe(ctx, s, opts, cfg)
		},
	}
}

// resolvePipeOptions 合并配置文件和命令行参数，命令行显式设置的值优先
func resolvePipeOptions(cmd *cli.Command) (pipeOptions, xconf.Config, error) {
	opts := pipeOptions{
		appendMode: true,
		format:     xconf.LogFormatText,
		level:      xlog.LevelInfo,
		fileMode:   xrotate.DefaultFileMode,
		configPath: cmd.String("config"),
		section:    cmd.String("section"),
		watch:      cmd.Bool("watch"),
		stats:      cmd.Bool("stats"),
	}

	var cfg xconf.Config
	if opts.configPath != "" {
		var err error
		if cfg, err = xconf.New(opts.configPath); err != nil {
			return opts, nil, err
		}
		lc, err := xconf.LoadLog(cfg, opts.section)
		if err != nil {
			return opts, nil, err
		}
		opts.template = lc.Template
		opts.appendMode = lc.Append
		opts.format = lc.Format
		opts.pattern = lc.Pattern
		opts.level = lc.Level
		opts.fileMode = lc.FileMode
		opts.utc = lc.UTC
	} else if opts.watch {
		return opts, nil, usagef("--watch requires --config")
	}

	if cmd.IsSet("template") || opts.template == "" {
		opts.template = cmd.String("template")
	}
	if opts.template == "" {
		return opts, nil, usagef("--template or a config file with %s.template is required", opts.section)
	}
	if cmd.IsSet("append") {
		opts.appendMode = cmd.Bool("append")
	}
	if cmd.IsSet("format") {
		opts.format = strings.ToLower(strings.TrimSpace(cmd.String("format")))
	}
	switch opts.format {
	case xconf.LogFormatText, xconf.LogFormatJSON, xconf.LogFormatPattern, formatRaw:
	default:
		return opts, nil, usagef("unknown format %q", opts.format)
	}
	if cmd.IsSet("pattern") {
		opts.pattern = cmd.String("pattern")
	}
	if cmd.IsSet("level") {
		lv, err := xlog.ParseLevel(cmd.String("level"))
		if err != nil {
			return opts, nil, usagef("%v", err)
		}
		opts.level = lv
	}
	rl, err := xlog.ParseLevel(cmd.String("record-level"))
	if err != nil {
		return opts, nil, usagef("%v", err)
	}
	opts.recordLevel = rl
	if cmd.IsSet("utc") {
		opts.utc = cmd.Bool("utc")
	}
	return opts, cfg, nil
}

// cmdPipe 把 s.in 的每一行写入按日滚动的文件，直到输入结束或 ctx 取消
func cmdPipe(ctx context.Context, s streams, opts pipeOptions, cfg xconf.Config) (err error) {
	diag, cleanup, err := xlog.New().SetOutput(s.err).Build()
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, cleanup()) }()

	var st *stats
	var obs xmetrics.Observer = xmetrics.NoopObserver{}
	if opts.stats {
		st = newStats()
		if obs, err = st.observer(); err != nil {
			return err
		}
	}

	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.Level(opts.level))

	daily, sink, err := buildSink(opts, levelVar, obs, func(e error) {
		fmt.Fprintf(s.err, "xdaily: %v\n", e)
	})
	if err != nil {
		return err
	}

	g, gctx := xrun.NewGroup(ctx, xrun.WithName("pipe"), xrun.WithLogger(diag))

	if opts.watch {
		w, werr := xconf.Watch(cfg, func(c xconf.Config, err error) {
			if err != nil {
				diag.Warn(gctx, "config reload failed", xlog.Err(err))
				return
			}
			lc, err := xconf.LoadLog(c, opts.section)
			if err != nil {
				diag.Warn(gctx, "config reload rejected", xlog.Err(err))
				return
			}
			levelVar.Set(slog.Level(lc.Level))
			diag.Info(gctx, "log level reloaded", slog.String("level", lc.Level.String()))
		})
		if werr != nil {
			g.Cancel(nil)
			return errors.Join(werr, daily.Close())
		}
		g.GoWithName("watch", w.Run)
	}

	var lines int64
	g.GoWithName("pump", func(ctx context.Context) error {
		defer g.Cancel(nil)
		n, err := pump(ctx, s.in, sink)
		lines = n
		return err
	})

	err = g.Wait()
	if cerr := daily.Close(); cerr != nil {
		err = errors.Join(err, cerr)
	}
	if st != nil {
		err = errors.Join(err, st.report(context.WithoutCancel(ctx), s.err, lines))
	}
	return err
}

// buildSink 创建 Daily 和逐行写入函数
func buildSink(opts pipeOptions, level slog.Leveler, obs xmetrics.Observer, onError func(error)) (*xrotate.Daily, func(context.Context, string) error, error) {
	dates := xconf.LogConfig{UTC: opts.utc}.DateSource()
	trigger, err := xrotate.NewDayTrigger(dates)
	if err != nil {
		return nil, nil, err
	}

	var enc xrotate.Encoder
	if opts.format == formatRaw {
		enc = xrotate.NewTextEncoder(nil)
	} else {
		lc := xconf.LogConfig{Format: opts.format, Pattern: opts.pattern}
		if enc, err = lc.Encoder(nil); err != nil {
			return nil, nil, usagef("%v", err)
		}
	}

	daily, err := xrotate.NewDaily().
		SetPath(opts.template).
		SetEncoder(enc).
		SetTrigger(trigger).
		SetAppend(opts.appendMode).
		SetDateSource(dates).
		SetFileMode(opts.fileMode).
		SetObserver(obs).
		SetOnError(onError).
		Build()
	if err != nil {
		return nil, nil, usagef("%v", err)
	}

	if opts.format == formatRaw {
		return daily, func(_ context.Context, line string) error {
			_, err := daily.Write([]byte(line + "\n"))
			return err
		}, nil
	}

	h, err := xrotate.NewHandler(daily, &xrotate.HandlerOptions{Level: level})
	if err != nil {
		return nil, nil, errors.Join(err, daily.Close())
	}
	recordLevel := slog.Level(opts.recordLevel)
	return daily, func(ctx context.Context, line string) error {
		if !h.Enabled(ctx, recordLevel) {
			return nil
		}
		return h.Handle(ctx, slog.NewRecord(time.Now(), recordLevel, line, 0))
	}, nil
}

// pump 逐行读取 r 交给 sink，返回写入的行数。
//
// 读取在独立 goroutine 中进行，ctx 取消时 pump 立即在行边界返回，
// 不必等待阻塞中的读取；该 goroutine 在读取返回后退出。
func pump(ctx context.Context, r io.Reader, sink func(context.Context, string) error) (int64, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		var err error
		defer func() {
			readErr <- err
			close(lines)
		}()
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		err = sc.Err()
	}()

	var n int64
	for {
		select {
		case <-ctx.Done():
			return n, nil
		case line, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					return n, fmt.Errorf("read input: %w", err)
				}
				return n, nil
			}
			if ctx.Err() != nil {
				return n, nil
			}
			if err := sink(ctx, line); err != nil {
				return n, err
			}
			n++
		}
	}
}

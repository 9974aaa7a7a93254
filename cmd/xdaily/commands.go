package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xdaily/pkg/observability/xrotate"
	"github.com/omeyang/xdaily/pkg/util/xfile"
)

// usageError 参数错误，退出码 2
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// cliUsageMarkers urfave/cli 与 flag 包参数错误的消息特征
var cliUsageMarkers = []string{
	"flag provided but not defined",
	"flag needs an argument",
	"invalid value",
	"Required flag",
	"No help topic for",
}

// isCLIUsageError 判断错误是否来自 CLI 框架的参数解析
func isCLIUsageError(err error) bool {
	msg := err.Error()
	for _, marker := range cliUsageMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// setupSignalHandler 第一次 SIGINT/SIGTERM 取消 ctx，第二次强制退出。
func setupSignalHandler(cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()

		<-sigCh
		signal.Stop(sigCh)
		os.Exit(130)
	}()
}

func createPathCommand(s streams) *cli.Command {
	return &cli.Command{
		Name:  "path",
		Usage: "打印模板在指定日期渲染出的文件路径",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "template",
				Aliases:  []string{"t"},
				Usage:    "文件路径模板，如 log/{year}-{month}-{day}.log",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "date",
				Aliases: []string{"d"},
				Usage:   "日期 YYYY-MM-DD，默认今天",
			},
			&cli.BoolFlag{
				Name:  "utc",
				Usage: "默认日期按 UTC 计算",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			return cmdPath(s, cmd.String("template"), cmd.String("date"), cmd.Bool("utc"))
		},
	}
}

func cmdPath(s streams, template, date string, utc bool) error {
	tpl, err := xfile.CleanPath(template)
	if err != nil {
		return usagef("invalid template %q: %v", template, err)
	}

	var d xrotate.Date
	if date != "" {
		if d, err = xrotate.ParseDate(date); err != nil {
			return usagef("%v", err)
		}
	} else {
		src := xrotate.LocalDateSource()
		if utc {
			src = xrotate.UTCDateSource()
		}
		if d, err = src.Today(); err != nil {
			return err
		}
	}

	_, err = fmt.Fprintln(s.out, xrotate.RenderPath(tpl, d))
	return err
}

// xdaily 把标准输入按行写入按日期滚动的日志文件。
//
// 用法:
//
//	xdaily <命令> [命令参数]
//
// 命令:
//
//	pipe    逐行读取标准输入，每行作为一条日志写入当天的文件
//	path    打印模板在指定日期渲染出的文件路径
//
// 文件名模板中的 {year}、{month}、{day} 按自然宽度替换（2024-03-07 → 2024、3、7），
// 只替换文件名部分，目录不变。
//
// 退出码:
//
//	0: 成功
//	1: 运行时失败（打开文件失败、配置加载失败等）
//	2: 参数错误（缺少模板、未知格式、无效日期等）
//
// 示例:
//
//	app 2>&1 | xdaily pipe -t '/var/log/app/app-{year}-{month}-{day}.log'
//	app | xdaily pipe -t 'app-{day}.log' --format json --level debug
//	app | xdaily pipe --config /etc/app/log.yaml --watch
//	xdaily path -t 'log/{year}-{month}-{day}.log' --date 2024-03-07
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
)

// 版本信息，可通过 -ldflags "-X main.Version=..." 注入
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

// streams 命令使用的标准输入输出，测试时替换
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandler(cancel)

	code := run(ctx, os.Args, streams{in: os.Stdin, out: os.Stdout, err: os.Stderr})
	cancel()
	os.Exit(code)
}

func createApp(s streams) *cli.Command {
	return &cli.Command{
		Name:      "xdaily",
		Usage:     "按日期滚动的日志文件写入工具",
		Version:   fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		Reader:    s.in,
		Writer:    s.out,
		ErrWriter: s.err,
		Commands: []*cli.Command{
			createPipeCommand(s),
			createPathCommand(s),
		},
		// 设计决策: 禁止 urfave/cli 直接调用 os.Exit，由 run 统一映射退出码。
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			var coder cli.ExitCoder
			if errors.As(err, &coder) {
				fmt.Fprintln(s.err, err)
			}
		},
	}
}

// run 执行命令并返回退出码
func run(ctx context.Context, args []string, s streams) int {
	err := createApp(s).Run(ctx, args)
	if err == nil {
		return 0
	}

	var usageErr *usageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(s.err, "参数错误: %v\n", usageErr)
		return 2
	}
	if isCLIUsageError(err) {
		// flag 解析器已输出详情
		return 2
	}
	fmt.Fprintf(s.err, "错误: %v\n", err)
	return 1
}

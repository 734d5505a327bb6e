// base62 在十进制和 Base62 之间转换，每个参数输出一行。
//
//	base62 encode 123 0       # B9, A
//	base62 decode B9          # 123
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"base62num.local/base62"
)

const usage = "usage: base62 encode <n>... | base62 decode <code>..."

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run 返回进程退出码：0 全部成功，1 有输入无效，2 用法错误。
func run(args []string, stdout, stderr io.Writer) int {
	logger := slog.New(slog.NewTextHandler(stderr, nil))
	if len(args) < 2 {
		fmt.Fprintln(stderr, usage)
		return 2
	}

	var convert func(string) (string, error)
	switch args[0] {
	case "encode":
		convert = func(s string) (string, error) {
			n, err := strconv.ParseUint(s, 10, 64)
			if err != nil {
				return "", err
			}
			return base62.Encode(n), nil
		}
	case "decode":
		convert = func(s string) (string, error) {
			n, err := base62.Parse(s)
			if err != nil {
				return "", err
			}
			return strconv.FormatUint(n, 10), nil
		}
	default:
		fmt.Fprintln(stderr, usage)
		return 2
	}

	code := 0
	for _, in := range args[1:] {
		out, err := convert(in)
		if err != nil {
			logger.Error(args[0]+" failed", "input", in, "err", err)
			code = 1
			continue
		}
		fmt.Fprintln(stdout, out)
	}
	return code
}

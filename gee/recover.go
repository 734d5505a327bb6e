package gee

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"strings"
)

// stack 返回 panic 点之上的调用栈，跳过 runtime 与 Recovery 自身。
func stack(message string) string {
	var pcs [32]uintptr
	n := runtime.Callers(4, pcs[:])

	var b strings.Builder
	b.WriteString(message)
	b.WriteString("\nTraceback:")
	frames := runtime.CallersFrames(pcs[:n])
	for {
		f, more := frames.Next()
		fmt.Fprintf(&b, "\n\t%s:%d", f.File, f.Line)
		if !more {
			break
		}
	}
	return b.String()
}

func Recovery() HandlerFunc {
	return func(ctx *Context) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("panic recovered",
					"request_id", ctx.Req.Header.Get("X-Request-ID"),
					"method", ctx.Method,
					"path", ctx.Path,
					"panic", err,
					"stack", stack(fmt.Sprint(err)),
				)
				if ctx.Writer.Written() {
					ctx.Abort()
					return
				}
				ctx.AbortWithError(http.StatusInternalServerError, "Internal Server Error")
			}
		}()
		ctx.Next()
	}
}

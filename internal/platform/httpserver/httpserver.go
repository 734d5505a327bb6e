package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"base62num.local/internal/platform/config"
)

// New 构造对外服务的 http.Server，超时全部来自配置。
func New(cfg config.Config, handler http.Handler) *http.Server {
	return newServer(cfg, cfg.Addr, handler)
}

// NewAdmin 构造管理端口（/metrics、/readyz、pprof），建议只监听本机或内网。
func NewAdmin(cfg config.Config, handler http.Handler) *http.Server {
	return newServer(cfg, cfg.AdminAddr, handler)
}

func newServer(cfg config.Config, addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// RunWithGracefulShutdownContext 阻塞运行 srv，stopCtx 结束后在 shutdownTimeout 内优雅关闭。
// 正常关闭返回 nil。
func RunWithGracefulShutdownContext(srv *http.Server, shutdownTimeout time.Duration, stopCtx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-stopCtx.Done():
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		slog.Info("http server stopped", "addr", srv.Addr)
	}
	return nil
}

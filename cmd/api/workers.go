package main

import (
	"context"
	"sync"
	"time"
)

// workers 跟踪后台 goroutine，退出时等它们把手头的活干完再关连接池
type workers struct {
	wg sync.WaitGroup
}

func (w *workers) Go(ctx context.Context, fn func(context.Context)) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		fn(ctx)
	}()
}

// Wait 最多等 timeout，超时返回 false
func (w *workers) Wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

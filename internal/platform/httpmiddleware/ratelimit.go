package httpmiddleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"base62num.local/gee"
)

// Allower 是滑动窗口限流器的最小能力，*ratelimit.Limiter 实现它。
type Allower interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration, member string) (bool, time.Duration, error)
}

var rateLimitMemberSeq uint64

// ClientIP 返回真实客户端 IP。只有直连方是可信代理（本机/内网）时才读转发头，
// 否则客户端可以伪造 X-Forwarded-For 绕过按 IP 的限流。
func ClientIP(req *http.Request) string {
	remoteHost, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		remoteHost = req.RemoteAddr
	}
	remoteIP := net.ParseIP(remoteHost)
	if remoteIP == nil || !isTrustedProxy(remoteIP) {
		return remoteHost
	}

	if cf := strings.TrimSpace(req.Header.Get("CF-Connecting-IP")); cf != "" && net.ParseIP(cf) != nil {
		return cf
	}
	// 第一个是原始客户端，后面是沿途代理
	if xff := req.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		first = strings.TrimSpace(first)
		if net.ParseIP(first) != nil {
			return first
		}
	}
	if xrip := strings.TrimSpace(req.Header.Get("X-Real-IP")); xrip != "" && net.ParseIP(xrip) != nil {
		return xrip
	}
	return remoteHost
}

func isTrustedProxy(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate()
}

// RateLimit 按 prefix + 客户端 IP 限流。limiter 为 nil 时直接放行；Redis 故障时也放行。
func RateLimit(limiter Allower, prefix string, limit int, window time.Duration) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		if limiter == nil {
			ctx.Next()
			return
		}
		key := "rl:" + prefix + ":" + ClientIP(ctx.Req)
		// 纳秒时间戳在部分虚拟化环境会重复，拼上自增序号保证唯一
		member := strconv.FormatInt(time.Now().UnixNano(), 10) + "-" + strconv.FormatUint(atomic.AddUint64(&rateLimitMemberSeq, 1), 10)

		rlCtx, cancel := context.WithTimeout(ctx.Req.Context(), 50*time.Millisecond)
		defer cancel()
		allowed, retryAfter, err := limiter.Allow(rlCtx, key, limit, window, member)
		if err != nil {
			slog.Error("rate limit check failed", "key", key, "err", err)
			ctx.Next()
			return
		}
		if !allowed {
			if retryAfter > 0 {
				secs := int64((retryAfter + time.Second - 1) / time.Second)
				ctx.SetHeader("Retry-After", strconv.FormatInt(secs, 10))
			}
			ctx.AbortWithError(http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		ctx.Next()
	}
}

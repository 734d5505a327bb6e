package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"base62num.local/gee"
	"base62num.local/internal/app/shortlink"
	"base62num.local/internal/app/shortlink/stats"
	"base62num.local/internal/platform/httpmiddleware"
	"base62num.local/internal/platform/metrics"
)

type CreateRequest struct {
	URL string `json:"url"`
}

type CreateResponse struct {
	ID       int64  `json:"id"`
	Code     string `json:"code"`
	ShortURL string `json:"short_url"`
	URL      string `json:"url"`
}

// shortURL 优先用配置的 BaseURL，否则按请求推断。
func shortURL(ctx *gee.Context, baseURL, code string) string {
	if baseURL != "" {
		return strings.TrimRight(baseURL, "/") + "/" + code
	}
	scheme := ctx.Req.Header.Get("X-Forwarded-Proto")
	if scheme == "" {
		scheme = "http"
		if ctx.Req.TLS != nil {
			scheme = "https"
		}
	}
	if ctx.Req.Host == "" {
		return "/" + code
	}
	return scheme + "://" + ctx.Req.Host + "/" + code
}

// linkID 解析路径里的 :code，失败时已写入 400。
func linkID(ctx *gee.Context) (int64, bool) {
	id, err := shortlink.IDOf(ctx.Param("code"))
	if err != nil {
		ctx.AbortWithError(http.StatusBadRequest, err.Error())
		return 0, false
	}
	return id, true
}

func NewCreateHandler(c shortlink.Creator, baseURL string) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		var req CreateRequest
		if err := ctx.BindJSON(&req); err != nil {
			return
		}
		req.URL = strings.TrimSpace(req.URL)
		if err := shortlink.ValidateURL(req.URL); err != nil {
			ctx.AbortWithError(http.StatusBadRequest, err.Error())
			return
		}

		link, err := c.Create(ctx.Req.Context(), req.URL)
		if err != nil {
			if errors.Is(err, shortlink.ErrLinkDisabled) {
				ctx.AbortWithError(http.StatusConflict, err.Error())
				return
			}
			ctx.AbortWithError(http.StatusInternalServerError, "link create failed")
			return
		}
		ctx.JSON(http.StatusOK, CreateResponse{
			ID:       link.ID,
			Code:     link.Code,
			ShortURL: shortURL(ctx, baseURL, link.Code),
			URL:      link.URL,
		})
	}
}

func NewFindHandler(f shortlink.Finder) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		id, ok := linkID(ctx)
		if !ok {
			return
		}
		meta, err := f.Find(ctx.Req.Context(), id)
		if err != nil {
			if errors.Is(err, shortlink.ErrLinkNotFound) {
				ctx.AbortWithError(http.StatusNotFound, err.Error())
				return
			}
			ctx.AbortWithError(http.StatusInternalServerError, "internal error")
			return
		}
		ctx.JSON(http.StatusOK, meta)
	}
}

func NewDisableHandler(d shortlink.Disabler) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		id, ok := linkID(ctx)
		if !ok {
			return
		}
		if err := d.Disable(ctx.Req.Context(), id); err != nil {
			switch {
			case errors.Is(err, shortlink.ErrLinkNotFound):
				ctx.AbortWithError(http.StatusNotFound, err.Error())
			case errors.Is(err, shortlink.ErrAlreadyDisabled):
				ctx.AbortWithError(http.StatusConflict, err.Error())
			default:
				ctx.AbortWithError(http.StatusInternalServerError, "internal error")
			}
			return
		}
		ctx.Status(http.StatusNoContent)
	}
}

func NewStatsHandler(s shortlink.StatsLister) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		id, ok := linkID(ctx)
		if !ok {
			return
		}
		limit := 20
		if l := ctx.Query("limit"); l != "" {
			n, err := strconv.Atoi(l)
			if err != nil || n <= 0 || n > 100 {
				ctx.AbortWithError(http.StatusBadRequest, "invalid limit")
				return
			}
			limit = n
		}
		var cursor int64
		if c := ctx.Query("cursor"); c != "" {
			n, err := strconv.ParseInt(c, 10, 64)
			if err != nil || n <= 0 {
				ctx.AbortWithError(http.StatusBadRequest, "invalid cursor")
				return
			}
			cursor = n
		}

		page, err := s.ListStats(ctx.Req.Context(), id, limit, cursor)
		if err != nil {
			if errors.Is(err, shortlink.ErrLinkNotFound) {
				ctx.AbortWithError(http.StatusNotFound, err.Error())
				return
			}
			slog.Error("list stats failed", "id", id, "err", err)
			ctx.AbortWithError(http.StatusInternalServerError, "internal error")
			return
		}
		ctx.JSON(http.StatusOK, page)
	}
}

// NewRedirectHandler 非法短码和未知短码一样返回 404。
func NewRedirectHandler(r shortlink.Resolver, collector stats.Collector) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		code := ctx.Param("code")
		id, err := shortlink.IDOf(code)
		if err != nil {
			ctx.AbortWithError(http.StatusNotFound, "link not found")
			return
		}
		url, err := r.Resolve(ctx.Req.Context(), id)
		if err != nil {
			if errors.Is(err, shortlink.ErrLinkNotFound) {
				ctx.AbortWithError(http.StatusNotFound, "link not found")
				return
			}
			ctx.AbortWithError(http.StatusInternalServerError, "internal error")
			return
		}
		metrics.LinkRedirects.Inc()

		if collector != nil {
			collector.Collect(stats.ClickEvent{
				ID:        id,
				Code:      code,
				ClickedAt: time.Now(),
				IP:        httpmiddleware.ClientIP(ctx.Req),
				UserAgent: ctx.Req.UserAgent(),
				Referer:   ctx.Req.Referer(),
			})
		}
		ctx.Redirect(http.StatusFound, url)
	}
}

package httpapi

import (
	"net/http"
	"time"

	"base62num.local/gee"
	"base62num.local/internal/app/shortlink"
	"base62num.local/internal/app/shortlink/stats"
	"base62num.local/internal/platform/auth"
	"base62num.local/internal/platform/httpmiddleware"
)

// Store 是 handler 需要的全部存储能力，*repo.LinksRepo 实现它。
type Store interface {
	shortlink.Creator
	shortlink.Resolver
	shortlink.Finder
	shortlink.Disabler
	shortlink.StatsLister
}

type Deps struct {
	Links     Store
	Collector stats.Collector
	Limiter   httpmiddleware.Allower // nil 表示不限流
	Tokens    auth.TokenService
	// BaseURL 为空时用请求的 Host 拼短链
	BaseURL string
}

// RegisterAPIRoutes 挂在 /api/v1 分组下。
func RegisterAPIRoutes(api *gee.RouterGroup, d Deps) {
	// 根路径的单段路径都留给短码，健康检查只能放在分组下
	api.GET("/healthz", func(ctx *gee.Context) {
		ctx.String(http.StatusOK, "ok")
	})

	// 创建 10次/分钟
	api.POST("/links", httpmiddleware.RateLimit(d.Limiter, "create", 10, time.Minute), NewCreateHandler(d.Links, d.BaseURL))
	api.GET("/links/:code", NewFindHandler(d.Links))

	api.GET("/codec/encode/:n", NewEncodeHandler())
	api.GET("/codec/decode/:code", NewDecodeHandler())

	admin := api.Group("/admin")
	admin.Use(httpmiddleware.AuthRequired(d.Tokens), httpmiddleware.RequireRole(auth.RoleAdmin))
	admin.POST("/links/:code/disable", NewDisableHandler(d.Links))
	admin.GET("/links/:code/stats", NewStatsHandler(d.Links))
}

// RegisterPublicRoutes 跳转入口挂在根路径，浏览器直接访问 /{code}。
func RegisterPublicRoutes(engine *gee.Engine, d Deps) {
	// 跳转 100次/分钟
	engine.GET("/:code", httpmiddleware.RateLimit(d.Limiter, "redirect", 100, time.Minute), NewRedirectHandler(d.Links, d.Collector))
}

package gee

import (
	"log/slog"
	"net/http"
	"strings"
)

type Engine struct {
	*RouterGroup
	router   *router
	groups   []*RouterGroup
	noMethod []HandlerFunc
	noRoute  []HandlerFunc
}

type RouterGroup struct {
	prefix      string
	middlewares []HandlerFunc
	parent      *RouterGroup
	engine      *Engine
}

func New() *Engine {
	engine := &Engine{
		router: newRouter(),
	}
	engine.noRoute = []HandlerFunc{func(ctx *Context) {
		ctx.AbortWithError(http.StatusNotFound, "route not found")
	}}
	engine.noMethod = []HandlerFunc{func(ctx *Context) {
		ctx.AbortWithError(http.StatusMethodNotAllowed, "method not allowed")
	}}
	engine.RouterGroup = &RouterGroup{engine: engine}
	engine.groups = []*RouterGroup{engine.RouterGroup}
	return engine
}

// Default 返回挂好 Recovery 的 Engine。访问日志/请求 ID 在 gee/middleware 里按需挂载。
func Default() *Engine {
	engine := New()
	engine.Use(Recovery())
	return engine
}

func (e *Engine) NoRoute(handlers ...HandlerFunc) {
	e.noRoute = handlers
}

func (e *Engine) NoMethod(handlers ...HandlerFunc) {
	e.noMethod = handlers
}

func (group *RouterGroup) Group(prefix string) *RouterGroup {
	engine := group.engine
	newGroup := &RouterGroup{
		prefix: group.prefix + prefix,
		parent: group,
		engine: engine,
	}
	engine.groups = append(engine.groups, newGroup)
	return newGroup
}

// Use 添加中间件，对该分组及其子分组生效
func (group *RouterGroup) Use(middlewares ...HandlerFunc) {
	group.middlewares = append(group.middlewares, middlewares...)
}

func (group *RouterGroup) Handle(method string, comp string, handlers ...HandlerFunc) {
	pattern := group.prefix + comp
	slog.Debug("route registered", "method", method, "pattern", pattern)
	group.engine.router.addRoute(method, pattern, handlers...)
}

func (group *RouterGroup) GET(pattern string, handlers ...HandlerFunc) {
	group.Handle(http.MethodGet, pattern, handlers...)
}

func (group *RouterGroup) POST(pattern string, handlers ...HandlerFunc) {
	group.Handle(http.MethodPost, pattern, handlers...)
}

func (group *RouterGroup) DELETE(pattern string, handlers ...HandlerFunc) {
	group.Handle(http.MethodDelete, pattern, handlers...)
}

// hasPrefix 按路径段匹配分组前缀：/api 能匹配 /api 和 /api/x，但不能匹配 /apix。
func hasPrefix(path, prefix string) bool {
	if prefix == "" {
		return true
	}
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/' || strings.HasSuffix(prefix, "/")
}

// ServeHTTP implements http.Handler.
func (e *Engine) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var middlewares []HandlerFunc
	for _, group := range e.groups {
		if hasPrefix(req.URL.Path, group.prefix) {
			middlewares = append(middlewares, group.middlewares...)
		}
	}
	ctx := newContext(w, req)
	ctx.handlers = middlewares
	ctx.engine = e
	e.router.handle(ctx)
}

func (e *Engine) Run(addr string) error {
	return http.ListenAndServe(addr, e)
}

package gee

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
)

type H map[string]any

// abortIndex 要大于任何真实的 handler 下标，又不能大到嵌套 Next() 自增时溢出。
const abortIndex = math.MaxInt32

type Context struct {
	Writer *ResponseWriter
	Req    *http.Request

	Path         string
	Method       string
	Params       map[string]string
	RoutePattern string // 命中的路由模板，如 /api/v1/links/:code；未命中时为空

	handlers []HandlerFunc
	index    int

	engine *Engine
}

func newContext(w http.ResponseWriter, req *http.Request) *Context {
	return &Context{
		Writer: NewResponseWriter(w),
		Req:    req,
		Path:   req.URL.Path,
		Method: req.Method,
		index:  -1,
	}
}

func (c *Context) Param(key string) string {
	return c.Params[key]
}

// Query 返回 URL 查询参数中 key 的第一个值，不存在时为空串。
func (c *Context) Query(key string) string {
	return c.Req.URL.Query().Get(key)
}

func (c *Context) Next() {
	c.index++
	s := len(c.handlers)
	for ; c.index < s && !c.IsAborted(); c.index++ {
		c.handlers[c.index](c)
	}
}

func (c *Context) Status(code int) {
	c.Writer.WriteHeader(code)
}

func (c *Context) SetHeader(key string, value string) {
	c.Writer.SetHeader(key, value)
}

func (c *Context) String(code int, format string, values ...any) {
	c.SetHeader("Content-Type", "text/plain; charset=utf-8")
	c.Status(code)
	fmt.Fprintf(c.Writer, format, values...)
}

// JSON 先序列化再写头，序列化失败时还能改成 500。
func (c *Context) JSON(code int, obj any) {
	c.writeJSON(code, obj)
}

func (c *Context) writeJSON(code int, obj any) {
	body, err := json.Marshal(obj)
	if err != nil {
		code = http.StatusInternalServerError
		body = []byte(`{"code":500,"message":"Internal Server Error"}`)
	}
	c.SetHeader("Content-Type", "application/json")
	c.Status(code)
	c.Writer.Write(body)
}

func (c *Context) Data(code int, data []byte) {
	c.Status(code)
	c.Writer.Write(data)
}

// Redirect 写 Location 并返回 3xx，不写响应体。
func (c *Context) Redirect(code int, location string) {
	c.SetHeader("Location", location)
	c.Status(code)
}

func (c *Context) Fail(code int, message string) {
	c.String(code, "%s", message)
	c.Abort()
}

func (c *Context) Abort() {
	c.index = abortIndex
}

func (c *Context) IsAborted() bool {
	return c.index >= abortIndex
}

func (c *Context) AbortWithStatus(code int) {
	c.Status(code)
	c.Abort()
}

func (c *Context) AbortWithStatusJSON(code int, obj any) {
	c.Abort()
	// 已经写过响应（比如 handler 写了一半 panic）就不再追加
	if c.Writer.Written() {
		return
	}
	c.writeJSON(code, obj)
}

func (c *Context) AbortWithError(code int, message string) {
	c.AbortWithStatusJSON(code, NewErrorResponse(c, code, message))
}

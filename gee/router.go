package gee

import (
	"sort"
	"strings"
)

type HandlerFunc func(*Context)

// router 每个 method 一棵树，handlers 以 method + " " + pattern 为 key。
type router struct {
	roots    map[string]*node
	handlers map[string][]HandlerFunc
}

func newRouter() *router {
	return &router{
		roots:    make(map[string]*node),
		handlers: make(map[string][]HandlerFunc),
	}
}

func routeKey(method, pattern string) string {
	return method + " " + pattern
}

func (r *router) addRoute(method string, pattern string, handlers ...HandlerFunc) {
	if len(handlers) == 0 {
		panic("gee: route " + pattern + " has no handler")
	}
	root, ok := r.roots[method]
	if !ok {
		root = &node{}
		r.roots[method] = root
	}
	root.insert(pattern, splitPath(pattern))
	r.handlers[routeKey(method, pattern)] = append([]HandlerFunc(nil), handlers...)
}

func (r *router) getRoute(method string, path string) (*node, map[string]string) {
	root, ok := r.roots[method]
	if !ok {
		return nil, nil
	}
	params := make(map[string]string)
	n := root.search(splitPath(path), params)
	if n == nil {
		return nil, nil
	}
	return n, params
}

func (r *router) handle(c *Context) {
	n, params := r.getRoute(c.Method, c.Path)
	if n != nil {
		c.Params = params
		c.RoutePattern = n.pattern
		c.handlers = append(c.handlers, r.handlers[routeKey(c.Method, n.pattern)]...)
	} else if allow := r.allowedMethods(c.Path); len(allow) > 0 {
		c.SetHeader("Allow", strings.Join(allow, ", "))
		c.handlers = append(c.handlers, c.engine.noMethod...)
	} else {
		c.handlers = append(c.handlers, c.engine.noRoute...)
	}
	c.Next()
}

func (r *router) allowedMethods(path string) []string {
	var allow []string
	for method := range r.roots {
		if n, _ := r.getRoute(method, path); n != nil {
			allow = append(allow, method)
		}
	}
	sort.Strings(allow)
	return allow
}

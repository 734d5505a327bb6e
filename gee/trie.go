package gee

import "strings"

// node 是按路径段组织的前缀树节点。
// 查找顺序：静态段 > :param > *catchall，同一层只允许一个 param 子节点和一个 catchall 子节点。
type node struct {
	pattern  string // 仅在路由终点非空，如 /api/v1/links/:code
	static   map[string]*node
	param    *node
	catchAll *node
	name     string // param/catchall 的参数名（不含 : 或 *）
}

func splitPath(path string) []string {
	parts := make([]string, 0, 8)
	for _, item := range strings.Split(path, "/") {
		if item == "" {
			continue
		}
		parts = append(parts, item)
		if item[0] == '*' {
			break
		}
	}
	return parts
}

func (n *node) insert(pattern string, parts []string) {
	cur := n
	for _, part := range parts {
		switch part[0] {
		case ':':
			if cur.param == nil {
				cur.param = &node{name: part[1:]}
			} else if cur.param.name != part[1:] {
				panic("gee: conflicting param name " + part + " in " + pattern)
			}
			cur = cur.param
		case '*':
			if cur.catchAll == nil {
				cur.catchAll = &node{name: part[1:]}
			}
			cur = cur.catchAll
		default:
			if cur.static == nil {
				cur.static = make(map[string]*node)
			}
			child, ok := cur.static[part]
			if !ok {
				child = &node{}
				cur.static[part] = child
			}
			cur = child
		}
	}
	if cur.pattern != "" && cur.pattern != pattern {
		panic("gee: route " + pattern + " conflicts with " + cur.pattern)
	}
	cur.pattern = pattern
}

// search 回溯查找：静态段优先，失败再尝试 param，最后 catchall。
func (n *node) search(parts []string, params map[string]string) *node {
	if len(parts) == 0 {
		if n.pattern != "" {
			return n
		}
		if n.catchAll != nil && n.catchAll.pattern != "" {
			params[n.catchAll.name] = ""
			return n.catchAll
		}
		return nil
	}
	part := parts[0]
	if child, ok := n.static[part]; ok {
		if found := child.search(parts[1:], params); found != nil {
			return found
		}
	}
	if n.param != nil {
		if found := n.param.search(parts[1:], params); found != nil {
			params[n.param.name] = part
			return found
		}
	}
	if n.catchAll != nil && n.catchAll.pattern != "" {
		params[n.catchAll.name] = strings.Join(parts, "/")
		return n.catchAll
	}
	return nil
}

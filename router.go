package gemini

import "strings"

// RouteOption configures a single Router.Insert call. It narrows, for
// one route, the router-wide relaxed matching that FixPath applies,
// instead of special-casing routes inside FixPath.
type RouteOption func(*routeOptions)

type routeOptions struct {
	exactOnly bool
}

// WithExactPath opts a route out of Router.FixPath's relaxed, case- and
// trailing-slash-tolerant lookup: it is only ever reached by an exact
// path match, even when the server's fix-path flag is set. By default
// (no options) every mounted route participates in FixPath, matching
// the server-wide "fix_path" behavior described in §4.1.
func WithExactPath() RouteOption {
	return func(o *routeOptions) { o.exactOnly = true }
}

// Router is a segment-by-segment path matcher. Each node holds at most
// one literal child per segment value and at most one parameter child;
// literal children always win over the parameter child (no
// backtracking), matching the core dispatcher's matching algorithm.
type Router struct {
	root *routeNode
}

type routeNode struct {
	literal map[string]*routeNode
	param   *routeNode
	paramName string
	handler   Handler
	pattern   string
	options   routeOptions
}

func newRouteNode() *routeNode {
	return &routeNode{literal: map[string]*routeNode{}}
}

// NewRouter returns an empty Router.
func NewRouter() *Router {
	return &Router{root: newRouteNode()}
}

func splitSegments(path string) []string {
	path = NormalizePath(path)
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// Insert registers handler for pattern. Duplicate patterns, and patterns
// that bind two different parameter names at the same tree position, are
// rejected with a *RouteConflictError.
func (rt *Router) Insert(pattern string, handler Handler, opts ...RouteOption) error {
	var o routeOptions
	for _, opt := range opts {
		opt(&o)
	}

	segs := splitSegments(pattern)
	node := rt.root
	for _, seg := range segs {
		if strings.HasPrefix(seg, ":") {
			name := seg[1:]
			if node.param == nil {
				node.param = newRouteNode()
				node.paramName = name
			} else if node.paramName != name {
				return &RouteConflictError{
					Pattern: pattern,
					Reason:  "parameter name " + name + " conflicts with existing :" + node.paramName + " at the same position",
				}
			}
			node = node.param
		} else {
			child, ok := node.literal[seg]
			if !ok {
				child = newRouteNode()
				node.literal[seg] = child
			}
			node = child
		}
	}

	if node.handler != nil {
		return &RouteConflictError{Pattern: pattern, Reason: "pattern already registered"}
	}
	node.handler = handler
	node.pattern = pattern
	node.options = o
	return nil
}

// At looks up path, returning the registered handler and any captured
// path parameters. The second return value is false if no route matched.
func (rt *Router) At(path string) (Handler, map[string]string, bool) {
	segs := splitSegments(path)
	node := rt.root
	var params map[string]string
	for _, seg := range segs {
		if child, ok := node.literal[seg]; ok {
			node = child
			continue
		}
		if node.param != nil {
			if params == nil {
				params = map[string]string{}
			}
			params[node.paramName] = seg
			node = node.param
			continue
		}
		return nil, nil, false
	}
	if node.handler == nil {
		return nil, nil, false
	}
	return node.handler, params, true
}

// FixPath performs a relaxed, case-insensitive and trailing-slash
// tolerant lookup and returns the concrete path of a matching route
// (with the tree's canonical casing for literal segments, and the
// caller's original value for any parameter segments), suitable for a
// follow-up Router.At call. Every route participates unless it was
// registered WithExactPath(). It is only consulted by the dispatcher
// when the server's fix-path flag is set.
func (rt *Router) FixPath(path string) (string, bool) {
	segs := splitSegments(path)

	var walk func(node *routeNode, i int, resolved []string, folded bool) ([]string, bool)
	walk = func(node *routeNode, i int, resolved []string, folded bool) ([]string, bool) {
		if i == len(segs) {
			if node.handler != nil && (!folded || !node.options.exactOnly) {
				return resolved, true
			}
			return nil, false
		}
		seg := segs[i]
		if child, ok := node.literal[seg]; ok {
			next := append(append([]string(nil), resolved...), seg)
			if out, ok := walk(child, i+1, next, folded); ok {
				return out, true
			}
		}
		for lit, child := range node.literal {
			if lit == seg {
				continue
			}
			if strings.EqualFold(lit, seg) {
				next := append(append([]string(nil), resolved...), lit)
				if out, ok := walk(child, i+1, next, true); ok {
					return out, true
				}
			}
		}
		if node.param != nil {
			next := append(append([]string(nil), resolved...), seg)
			if out, ok := walk(node.param, i+1, next, folded); ok {
				return out, true
			}
		}
		return nil, false
	}

	out, ok := walk(rt.root, 0, make([]string, 0, len(segs)), false)
	if !ok {
		return "", false
	}
	return "/" + strings.Join(out, "/"), true
}

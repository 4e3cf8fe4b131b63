// File: router/router.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Exact-match (method, path) router. The table is built before the server
// starts and is read-only afterwards, so lookups take no lock.

package router

import (
	"sort"

	"go.uber.org/zap"

	"github.com/momentics/hioload-httpd/protocol"
)

// Handler produces a response for a parsed request.
type Handler interface {
	Serve(req *protocol.Request) *protocol.Response
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(req *protocol.Request) *protocol.Response

// Serve implements Handler.
func (f HandlerFunc) Serve(req *protocol.Request) *protocol.Response { return f(req) }

// RouteKey identifies a handler. Matching is exact string equality.
type RouteKey struct {
	Method string
	Path   string
}

func (k RouteKey) String() string { return k.Method + " " + k.Path }

// Router maps RouteKeys to handlers.
type Router struct {
	routes map[RouteKey]Handler
	log    *zap.Logger
}

// Option customizes a Router.
type Option func(*Router)

// WithLogger sets the logger that records recovered handler panics.
func WithLogger(log *zap.Logger) Option {
	return func(r *Router) {
		if log != nil {
			r.log = log
		}
	}
}

// New returns an empty router.
func New(opts ...Option) *Router {
	r := &Router{routes: make(map[RouteKey]Handler), log: zap.NewNop()}
	for _, o := range opts {
		o(r)
	}
	return r
}

// AddRoute registers h under (method, path), replacing any previous handler.
func (r *Router) AddRoute(method, path string, h Handler) {
	r.routes[RouteKey{Method: method, Path: path}] = h
}

// HandleFunc registers fn under (method, path).
func (r *Router) HandleFunc(method, path string, fn func(*protocol.Request) *protocol.Response) {
	r.AddRoute(method, path, HandlerFunc(fn))
}

// GET registers fn for GET path.
func (r *Router) GET(path string, fn func(*protocol.Request) *protocol.Response) {
	r.HandleFunc(protocol.MethodGet.String(), path, fn)
}

// POST registers fn for POST path.
func (r *Router) POST(path string, fn func(*protocol.Request) *protocol.Response) {
	r.HandleFunc(protocol.MethodPost.String(), path, fn)
}

// Route dispatches req to its handler or returns 404 Not Found. A panicking
// handler or a nil response yields 500.
func (r *Router) Route(req *protocol.Request) (resp *protocol.Response) {
	key := RouteKey{Method: req.Method.String(), Path: req.Path}
	h, ok := r.routes[key]
	if !ok {
		return protocol.NotFound()
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("handler panic", zap.Stringer("route", key), zap.Any("panic", rec), zap.Stack("stack"))
			resp = protocol.Error(protocol.StatusInternalServerError, protocol.StatusText(protocol.StatusInternalServerError))
		}
	}()
	resp = h.Serve(req)
	if resp == nil {
		resp = protocol.Error(protocol.StatusInternalServerError, protocol.StatusText(protocol.StatusInternalServerError))
	}
	return resp
}

// Routes returns the registered keys, sorted by path then method.
func (r *Router) Routes() []RouteKey {
	keys := make([]RouteKey, 0, len(r.routes))
	for k := range r.routes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Path != keys[j].Path {
			return keys[i].Path < keys[j].Path
		}
		return keys[i].Method < keys[j].Method
	})
	return keys
}

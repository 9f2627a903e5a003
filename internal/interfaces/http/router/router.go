// Package router assembles the HTTP route table.
package router

import (
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
)

// Route is one mounted method and path
type Route struct {
	Method string
	Path   string

	handlers []gin.HandlerFunc
}

// Resource is a set of routes sharing a path prefix such as /tasks
type Resource struct {
	prefix string
	routes []Route
}

// NewResource starts an empty resource under prefix
func NewResource(prefix string) *Resource {
	return &Resource{prefix: prefix}
}

// Handle adds a route relative to the resource prefix
func (res *Resource) Handle(method, relativePath string, handlers ...gin.HandlerFunc) *Resource {
	res.routes = append(res.routes, Route{Method: method, Path: relativePath, handlers: handlers})
	return res
}

func (res *Resource) GET(relativePath string, handlers ...gin.HandlerFunc) *Resource {
	return res.Handle(http.MethodGet, relativePath, handlers...)
}

func (res *Resource) POST(relativePath string, handlers ...gin.HandlerFunc) *Resource {
	return res.Handle(http.MethodPost, relativePath, handlers...)
}

func (res *Resource) PATCH(relativePath string, handlers ...gin.HandlerFunc) *Resource {
	return res.Handle(http.MethodPatch, relativePath, handlers...)
}

// Prefix returns the path the resource is mounted under
func (res *Resource) Prefix() string {
	return res.prefix
}

// mount registers every route on rg and returns them with full paths
func (res *Resource) mount(rg *gin.RouterGroup) []Route {
	group := rg.Group(res.prefix)
	mounted := make([]Route, 0, len(res.routes))
	for _, rt := range res.routes {
		group.Handle(rt.Method, rt.Path, rt.handlers...)
		mounted = append(mounted, Route{Method: rt.Method, Path: joinPath(group.BasePath(), rt.Path)})
	}
	return mounted
}

func joinPath(base, rel string) string {
	if rel == "" {
		return base
	}
	return path.Join(base, rel)
}

// Router mounts resources on an engine behind a shared middleware chain
type Router struct {
	engine     *gin.Engine
	basePath   string
	middleware []gin.HandlerFunc
	resources  []*Resource
}

// Option configures a Router
type Option func(*Router)

// WithBasePath mounts every resource under p (e.g. "/api"). The default is
// the server root.
func WithBasePath(p string) Option {
	return func(r *Router) {
		r.basePath = p
	}
}

// NewRouter creates a Router for engine
func NewRouter(engine *gin.Engine, opts ...Option) *Router {
	r := &Router{engine: engine, basePath: "/"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Use appends middleware run for every resource, after the engine-wide chain
func (r *Router) Use(middleware ...gin.HandlerFunc) *Router {
	r.middleware = append(r.middleware, middleware...)
	return r
}

// Register queues resources for Setup
func (r *Router) Register(resources ...*Resource) *Router {
	r.resources = append(r.resources, resources...)
	return r
}

// Setup mounts the queued resources and returns what was mounted
func (r *Router) Setup() []Route {
	group := r.engine.Group(r.basePath, r.middleware...)

	var routes []Route
	for _, res := range r.resources {
		routes = append(routes, res.mount(group)...)
	}
	return routes
}

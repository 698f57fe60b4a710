package router

import (
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
)

// Route describes one mounted endpoint
type Route struct {
	Group  string
	Method string
	Path   string
}

// RouteRegistrar mounts a set of routes on a router group and reports what
// it mounted
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup) []Route
}

// Router mounts registrars under /api/<version>
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption configures a Router
type RouterOption func(*Router)

// WithAPIVersion sets the version segment of the API prefix
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a Router mounting under /api/v1 unless configured
// otherwise
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register queues registrars for Setup
func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

// Setup mounts every queued registrar in order and returns the resulting
// routes
func (r *Router) Setup() []Route {
	api := r.engine.Group("/api/" + r.apiVersion)
	var routes []Route
	for _, registrar := range r.registrars {
		routes = append(routes, registrar.RegisterRoutes(api)...)
	}
	return routes
}

// DomainGroup is the route table of one API area. Routes mount in the order
// they were added, which matters when a static segment shares a position
// with a parameter.
type DomainGroup struct {
	name       string
	prefix     string
	middleware []gin.HandlerFunc
	routes     []routeDef
}

type routeDef struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates an empty group mounted at prefix
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Use adds middleware run before every route of the group
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

// Handle adds a route
func (dg *DomainGroup) Handle(method, relPath string, handlers ...gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDef{method: method, path: relPath, handlers: handlers})
	return dg
}

func (dg *DomainGroup) GET(relPath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodGet, relPath, handlers...)
}

func (dg *DomainGroup) POST(relPath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPost, relPath, handlers...)
}

func (dg *DomainGroup) PUT(relPath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPut, relPath, handlers...)
}

func (dg *DomainGroup) PATCH(relPath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPatch, relPath, handlers...)
}

func (dg *DomainGroup) DELETE(relPath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodDelete, relPath, handlers...)
}

// Name returns the group name
func (dg *DomainGroup) Name() string { return dg.name }

// RegisterRoutes implements RouteRegistrar
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) []Route {
	group := rg.Group(dg.prefix, dg.middleware...)
	routes := make([]Route, 0, len(dg.routes))
	for _, def := range dg.routes {
		group.Handle(def.method, def.path, def.handlers...)
		routes = append(routes, Route{
			Group:  dg.name,
			Method: def.method,
			Path:   joinPath(group.BasePath(), def.path),
		})
	}
	return routes
}

func joinPath(base, rel string) string {
	if rel == "" {
		return base
	}
	return path.Join(base, rel)
}

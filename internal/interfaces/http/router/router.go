// Package router assembles the gin engine: the middleware stack, the
// versioned API groups and the unversioned system routes.
package router

import (
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
)

// Mountable adds its routes below a gin group
type Mountable interface {
	Mount(rg *gin.RouterGroup)
}

// API is the versioned /api/<version> tree
type API struct {
	engine     *gin.Engine
	version    string
	middleware []gin.HandlerFunc
	groups     []Mountable
}

func NewAPI(engine *gin.Engine, version string) *API {
	if version == "" {
		version = "v1"
	}
	return &API{engine: engine, version: version}
}

// Use appends middleware that wraps every versioned route, in order.
func (a *API) Use(mw ...gin.HandlerFunc) *API {
	a.middleware = append(a.middleware, mw...)
	return a
}

func (a *API) Add(groups ...Mountable) *API {
	a.groups = append(a.groups, groups...)
	return a
}

func (a *API) Prefix() string { return "/api/" + a.version }

// Mount creates the versioned group on the engine and mounts every added
// group below it. The returned group accepts further routes.
func (a *API) Mount() *gin.RouterGroup {
	api := a.engine.Group(a.Prefix(), a.middleware...)
	for _, g := range a.groups {
		g.Mount(api)
	}
	return api
}

// Route is one endpoint, with Path relative to the mount point.
type Route struct {
	Method string
	Path   string
}

type endpoint struct {
	Route
	handlers []gin.HandlerFunc
}

// RouteGroup is a named set of endpoints sharing a path prefix. Groups nest.
type RouteGroup struct {
	name       string
	prefix     string
	middleware []gin.HandlerFunc
	endpoints  []endpoint
	children   []*RouteGroup
}

func NewRouteGroup(name, prefix string) *RouteGroup {
	return &RouteGroup{name: name, prefix: prefix}
}

func (g *RouteGroup) Name() string   { return g.name }
func (g *RouteGroup) Prefix() string { return g.prefix }

func (g *RouteGroup) Use(mw ...gin.HandlerFunc) *RouteGroup {
	g.middleware = append(g.middleware, mw...)
	return g
}

func (g *RouteGroup) Handle(method, p string, handlers ...gin.HandlerFunc) *RouteGroup {
	g.endpoints = append(g.endpoints, endpoint{Route: Route{method, p}, handlers: handlers})
	return g
}

func (g *RouteGroup) GET(p string, handlers ...gin.HandlerFunc) *RouteGroup {
	return g.Handle(http.MethodGet, p, handlers...)
}

func (g *RouteGroup) POST(p string, handlers ...gin.HandlerFunc) *RouteGroup {
	return g.Handle(http.MethodPost, p, handlers...)
}

func (g *RouteGroup) PUT(p string, handlers ...gin.HandlerFunc) *RouteGroup {
	return g.Handle(http.MethodPut, p, handlers...)
}

func (g *RouteGroup) PATCH(p string, handlers ...gin.HandlerFunc) *RouteGroup {
	return g.Handle(http.MethodPatch, p, handlers...)
}

// Sub returns a nested group mounted below g's prefix
func (g *RouteGroup) Sub(name, prefix string) *RouteGroup {
	child := NewRouteGroup(name, prefix)
	g.children = append(g.children, child)
	return child
}

func (g *RouteGroup) Mount(rg *gin.RouterGroup) {
	group := rg.Group(g.prefix, g.middleware...)
	for _, e := range g.endpoints {
		group.Handle(e.Method, e.Path, e.handlers...)
	}
	for _, child := range g.children {
		child.Mount(group)
	}
}

// Routes lists every endpoint of g and its children, prefixed with g's
// own prefix.
func (g *RouteGroup) Routes() []Route {
	out := make([]Route, 0, len(g.endpoints))
	for _, e := range g.endpoints {
		out = append(out, Route{e.Method, join(g.prefix, e.Path)})
	}
	for _, child := range g.children {
		for _, r := range child.Routes() {
			out = append(out, Route{r.Method, join(g.prefix, r.Path)})
		}
	}
	return out
}

func join(prefix, p string) string {
	if p == "" {
		return prefix
	}
	return path.Join(prefix, p)
}

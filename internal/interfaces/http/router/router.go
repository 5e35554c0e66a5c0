package router

import (
	"github.com/gin-gonic/gin"
)

// RouteRegistrar is implemented by handlers that attach their routes to
// a router group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router assembles the versioned API from registered handlers
type Router struct {
	engine     *gin.Engine
	registrars []RouteRegistrar
}

// New creates a Router on top of an existing gin engine
func New(engine *gin.Engine) *Router {
	return &Router{engine: engine}
}

// Register queues handlers for route setup
func (r *Router) Register(registrars ...RouteRegistrar) {
	r.registrars = append(r.registrars, registrars...)
}

// Setup mounts every registered handler under /api/v1
func (r *Router) Setup() {
	v1 := r.engine.Group("/api/v1")
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(v1)
	}
}

// Engine returns the underlying gin engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

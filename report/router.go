package report

import (
	"github.com/gin-gonic/gin"

	"github.com/guardkit/guardkit/guard"
)

// Routes registers the reporting endpoints for one guard on r.
func Routes(r gin.IRoutes, g *guard.Guard) {
	r.GET("/healthz", Healthz(g.Collector()))
	r.GET("/metrics", Metrics(g.Collector()))
	r.GET("/breaker", Breaker(g.Breaker()))
	r.GET("/version", Version())
}

// Router builds a standalone engine exposing the reporting endpoints
// for one guard. All endpoints are read-only.
func Router(g *guard.Guard) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), RequestID())
	Routes(engine, g)
	return engine
}

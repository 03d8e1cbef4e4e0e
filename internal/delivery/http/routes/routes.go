package routes

import (
	"portfolio-sync/internal/delivery/http/handler"
	v1 "portfolio-sync/internal/delivery/http/routes/v1"
	"portfolio-sync/internal/ws"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	health   *handler.HealthHandler
	ws       *ws.Handler
	registry *prometheus.Registry
	v1       v1.Deps
}

func NewRegistry(health *handler.HealthHandler, wsHandler *ws.Handler, registry *prometheus.Registry, deps v1.Deps) *Registry {
	return &Registry{health: health, ws: wsHandler, registry: registry, v1: deps}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerHealth(app)
	r.registerMetrics(app)
	r.registerWS(app)
	r.registerAPI(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	if r.health != nil {
		r.health.RegisterRoutes(app)
	}
}

func (r *Registry) registerMetrics(app *fiber.App) {
	if r.registry == nil {
		return
	}
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})))
}

func (r *Registry) registerWS(app *fiber.App) {
	if r.ws != nil {
		r.ws.RegisterRoutes(app)
	}
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")
	RegisterV1(api.Group("/v1"), r.v1)
}

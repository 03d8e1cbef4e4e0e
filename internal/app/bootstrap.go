package app

import (
	"context"
	"fmt"
	"log"
	"strings"

	"portfolio-sync/internal/config"
	"portfolio-sync/internal/delivery/http/handler"
	"portfolio-sync/internal/delivery/http/middleware"
	"portfolio-sync/internal/delivery/http/routes"
	v1 "portfolio-sync/internal/delivery/http/routes/v1"
	"portfolio-sync/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

// New builds the HTTP app over an already started container. ctx bounds the
// sync refreshes triggered from websocket messages.
func New(ctx context.Context, c *Container) *App {
	f := fiber.New(fiber.Config{AppName: c.Config.App.AppName})

	registerGlobalMiddleware(f, c)
	registerRoutes(ctx, f, c)

	return &App{Fiber: f, Container: c}
}

// Bootstrap opens the container, starts its background loops and returns the
// app with a cleanup that stops them and closes the store.
func Bootstrap(ctx context.Context, cfg config.Config, logger *log.Logger) (*App, func() error, error) {
	c, err := NewContainer(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := c.Start(ctx); err != nil {
		_ = c.Close()
		return nil, nil, err
	}
	return New(ctx, c), c.Close, nil
}

func registerGlobalMiddleware(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	accessMw := middleware.NewAccessLogMiddleware(c.Logger, c.Metrics)
	app.Use(accessMw.Middleware())

	errMw := middleware.NewErrorMiddleware(c.Logger)
	app.Use(errMw.Middleware())
}

func registerRoutes(ctx context.Context, app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	health := handler.NewHealthHandler(c.Config.App.AppName, c.Config.Store.Driver, c.Hub.ClientCount)
	wsHandler := ws.NewHandler(ctx, c.Hub, c.Notifier, c.Trigger, c.Logger)

	routes.NewRegistry(health, wsHandler, c.Metrics.Registry(), v1.Deps{
		JWT:      c.JWT,
		Auth:     c.Auth,
		Sessions: c.Sessions,
		Trigger:  c.Trigger,
		Viewers:  c.Viewers,
	}).Register(app)
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}

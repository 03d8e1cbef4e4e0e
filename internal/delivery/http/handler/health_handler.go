package handler

import (
	"portfolio-sync/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

type HealthHandler struct {
	appName string
	driver  string
	clients func() int
}

// NewHealthHandler reports liveness. clients may be nil.
func NewHealthHandler(appName, driver string, clients func() int) *HealthHandler {
	return &HealthHandler{appName: appName, driver: driver, clients: clients}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/health", h.Health)
}

func (h *HealthHandler) Health(c fiber.Ctx) error {
	data := map[string]any{
		"app":          h.appName,
		"store_driver": h.driver,
	}
	if h.clients != nil {
		data["ws_clients"] = h.clients()
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, data)
}

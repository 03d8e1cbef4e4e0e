package v1

import (
	"portfolio-sync/internal/delivery/http/handler"

	"github.com/gofiber/fiber/v3"
)

func RegisterContent(r fiber.Router, contentHandler *handler.ContentHandler) {
	if r == nil {
		return
	}
	if contentHandler == nil {
		return
	}

	contentHandler.RegisterRoutes(r)
}

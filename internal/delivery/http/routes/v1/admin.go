package v1

import (
	"portfolio-sync/internal/delivery/http/handler"

	"github.com/gofiber/fiber/v3"
)

// editorRoutes is satisfied by every EditorHandler instantiation.
type editorRoutes interface {
	RegisterRoutes(r fiber.Router)
}

func RegisterAdmin(r fiber.Router, sessionHandler *handler.AdminSessionHandler, editors ...editorRoutes) {
	if r == nil {
		return
	}
	if sessionHandler == nil {
		return
	}

	sessionHandler.RegisterRoutes(r)
	for _, e := range editors {
		if e != nil {
			e.RegisterRoutes(r)
		}
	}
}

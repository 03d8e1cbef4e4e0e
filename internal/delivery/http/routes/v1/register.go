package v1

import (
	"portfolio-sync/internal/delivery/http/handler"
	"portfolio-sync/internal/delivery/http/middleware"
	"portfolio-sync/internal/pkg/jwt"
	"portfolio-sync/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type Deps struct {
	JWT      jwt.Service
	Auth     usecase.AuthUsecase
	Sessions *usecase.SessionRegistry
	Trigger  *usecase.SyncTrigger
	Viewers  *usecase.Viewers
}

func Register(r fiber.Router, deps Deps) {
	if r == nil {
		return
	}

	authMw := middleware.NewAuthMiddleware(deps.JWT)

	authHandler := handler.NewAuthHandler(deps.Auth, authMw.Middleware())
	contentHandler := handler.NewContentHandler(deps.Viewers)
	sessionHandler := handler.NewAdminSessionHandler(deps.Sessions, deps.Trigger)

	authGroup := r.Group("/auth")
	authHandler.RegisterRoutes(authGroup)

	RegisterContent(r, contentHandler)

	admin := r.Group("/admin", authMw.Middleware())
	RegisterAdmin(admin, sessionHandler,
		handler.NewWorkEntryEditorHandler(deps.Sessions),
		handler.NewCertificateEditorHandler(deps.Sessions),
		handler.NewProjectEditorHandler(deps.Sessions),
	)
}

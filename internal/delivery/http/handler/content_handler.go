package handler

import (
	"errors"

	"portfolio-sync/internal/delivery/http/dto"
	"portfolio-sync/internal/delivery/http/middleware"
	"portfolio-sync/internal/domain/content"
	"portfolio-sync/internal/pkg/response"
	"portfolio-sync/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

// ContentHandler serves the public, read-only view of every domain.
type ContentHandler struct {
	viewers *usecase.Viewers
}

func NewContentHandler(viewers *usecase.Viewers) *ContentHandler {
	return &ContentHandler{viewers: viewers}
}

func (h *ContentHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/content")
	grp.Get("/", h.List)
	grp.Get("/:domain", h.Get)
}

func (h *ContentHandler) List(c fiber.Ctx) error {
	views := h.viewers.ViewAll()
	res := make([]dto.DomainContentResponse, 0, len(views))
	for _, v := range views {
		res = append(res, toDomainContent(v))
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}

func (h *ContentHandler) Get(c fiber.Ctx) error {
	d, err := content.ParseDomain(c.Params("domain"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusNotFound, "Unknown content domain", nil, err)
	}

	view, err := h.viewers.View(d)
	if err != nil {
		if errors.Is(err, content.ErrUnknownDomain) {
			return middleware.NewAppError(fiber.StatusNotFound, "Unknown content domain", nil, err)
		}
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, toDomainContent(view))
}

func toDomainContent(v usecase.DomainView) dto.DomainContentResponse {
	return dto.DomainContentResponse{Domain: v.Domain.String(), Items: v.Items, Empty: v.Empty}
}

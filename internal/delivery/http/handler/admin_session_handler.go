package handler

import (
	"portfolio-sync/internal/delivery/http/dto"
	"portfolio-sync/internal/delivery/http/middleware"
	"portfolio-sync/internal/domain/content"
	"portfolio-sync/internal/pkg/response"
	"portfolio-sync/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type AdminSessionHandler struct {
	sessions *usecase.SessionRegistry
	trigger  *usecase.SyncTrigger
}

type switchTabRequest struct {
	Tab string `json:"tab"`
}

func NewAdminSessionHandler(sessions *usecase.SessionRegistry, trigger *usecase.SyncTrigger) *AdminSessionHandler {
	return &AdminSessionHandler{sessions: sessions, trigger: trigger}
}

func (h *AdminSessionHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/session", h.Get)
	r.Put("/session/tab", h.SwitchTab)
	r.Post("/sync", h.Sync)
}

func (h *AdminSessionHandler) Get(c fiber.Ctx) error {
	s, err := adminSession(c, h.sessions)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, toSessionResponse(s))
}

func (h *AdminSessionHandler) SwitchTab(c fiber.Ctx) error {
	s, err := adminSession(c, h.sessions)
	if err != nil {
		return err
	}

	var req switchTabRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	d, err := content.ParseDomain(req.Tab)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Unknown tab", nil, err)
	}
	if err := s.SetActiveTab(d); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Unknown tab", nil, err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, toSessionResponse(s))
}

// Sync forces a refresh of every domain from the store, the admin-side
// counterpart of a viewer regaining focus.
func (h *AdminSessionHandler) Sync(c fiber.Ctx) error {
	report := h.trigger.Refresh(c.Context())

	res := dto.SyncResponse{Trigger: report.Trigger, At: report.At}
	for _, d := range report.Domains {
		res.Domains = append(res.Domains, dto.DomainSyncSummary{
			Domain: d.Domain.String(),
			Result: d.Result,
			Items:  d.Items,
			Error:  d.Error,
		})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}

func adminSession(c fiber.Ctx, sessions *usecase.SessionRegistry) (*usecase.AdminSession, error) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return nil, middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	s, err := sessions.Get(c.Context(), userID)
	if err != nil {
		return nil, middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
	return s, nil
}

func toSessionResponse(s *usecase.AdminSession) dto.SessionResponse {
	snap := s.Snapshot()
	res := dto.SessionResponse{
		UserID:    s.UserID.String(),
		ActiveTab: snap.ActiveTab.String(),
		Editors:   make(map[string]dto.EditorStatus, len(snap.Editors)),
	}
	for d, st := range snap.Editors {
		res.Editors[d.String()] = dto.EditorStatus{Mode: string(st.Mode), EditingID: st.EditingID}
	}
	return res
}

package handler

import (
	"errors"
	"strconv"

	"portfolio-sync/internal/delivery/http/dto"
	"portfolio-sync/internal/delivery/http/middleware"
	"portfolio-sync/internal/domain/content"
	"portfolio-sync/internal/pkg/response"
	"portfolio-sync/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

// EditorHandler exposes one domain editor of the caller's admin session.
type EditorHandler[T content.Record[T]] struct {
	domain   content.Domain
	sessions *usecase.SessionRegistry
	pick     func(*usecase.AdminSession) *usecase.Editor[T]
}

func NewEditorHandler[T content.Record[T]](domain content.Domain, sessions *usecase.SessionRegistry, pick func(*usecase.AdminSession) *usecase.Editor[T]) *EditorHandler[T] {
	return &EditorHandler[T]{domain: domain, sessions: sessions, pick: pick}
}

func NewWorkEntryEditorHandler(sessions *usecase.SessionRegistry) *EditorHandler[content.WorkEntry] {
	return NewEditorHandler(content.DomainWorkEntries, sessions, func(s *usecase.AdminSession) *usecase.Editor[content.WorkEntry] {
		return s.WorkEntries
	})
}

func NewCertificateEditorHandler(sessions *usecase.SessionRegistry) *EditorHandler[content.Certificate] {
	return NewEditorHandler(content.DomainCertificates, sessions, func(s *usecase.AdminSession) *usecase.Editor[content.Certificate] {
		return s.Certificates
	})
}

func NewProjectEditorHandler(sessions *usecase.SessionRegistry) *EditorHandler[content.Project] {
	return NewEditorHandler(content.DomainProjects, sessions, func(s *usecase.AdminSession) *usecase.Editor[content.Project] {
		return s.Projects
	})
}

func (h *EditorHandler[T]) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/" + h.domain.String())
	grp.Get("/", h.Get)
	grp.Post("/add", h.Add)
	grp.Post("/:id/edit", h.Edit)
	grp.Put("/draft", h.Compose)
	grp.Post("/save", h.Save)
	grp.Post("/cancel", h.Cancel)
	grp.Delete("/:id", h.Delete)
}

func (h *EditorHandler[T]) Get(c fiber.Ctx) error {
	ed, err := h.editor(c)
	if err != nil {
		return err
	}
	if err := ed.Open(c.Context()); err != nil {
		return mapEditorError(err)
	}
	return h.respond(c, fiber.StatusOK, ed)
}

func (h *EditorHandler[T]) Add(c fiber.Ctx) error {
	ed, err := h.editor(c)
	if err != nil {
		return err
	}
	if err := ed.Add(); err != nil {
		return mapEditorError(err)
	}
	return h.respond(c, fiber.StatusOK, ed)
}

func (h *EditorHandler[T]) Edit(c fiber.Ctx) error {
	ed, err := h.editor(c)
	if err != nil {
		return err
	}
	if err := ed.Edit(c.Params("id")); err != nil {
		return mapEditorError(err)
	}
	return h.respond(c, fiber.StatusOK, ed)
}

func (h *EditorHandler[T]) Compose(c fiber.Ctx) error {
	ed, err := h.editor(c)
	if err != nil {
		return err
	}

	var draft T
	if err := c.Bind().Body(&draft); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	if err := ed.Compose(draft); err != nil {
		return mapEditorError(err)
	}
	return h.respond(c, fiber.StatusOK, ed)
}

// Save commits the draft. A request body, when present, replaces the draft
// first so a form can be submitted in one call.
func (h *EditorHandler[T]) Save(c fiber.Ctx) error {
	ed, err := h.editor(c)
	if err != nil {
		return err
	}

	if len(c.Body()) > 0 {
		var draft T
		if err := c.Bind().Body(&draft); err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
		}
		if err := ed.Compose(draft); err != nil {
			return mapEditorError(err)
		}
	}

	created := ed.State().Mode == usecase.ModeCreating
	if _, err := ed.Save(c.Context()); err != nil {
		return mapEditorError(err)
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return h.respond(c, status, ed)
}

func (h *EditorHandler[T]) Cancel(c fiber.Ctx) error {
	ed, err := h.editor(c)
	if err != nil {
		return err
	}
	if err := ed.Cancel(); err != nil {
		return mapEditorError(err)
	}
	return h.respond(c, fiber.StatusOK, ed)
}

// Delete removes a record. The caller confirms with ?confirm=true.
func (h *EditorHandler[T]) Delete(c fiber.Ctx) error {
	ed, err := h.editor(c)
	if err != nil {
		return err
	}

	confirmed, _ := strconv.ParseBool(c.Query("confirm"))
	if err := ed.Delete(c.Context(), c.Params("id"), usecase.Confirmed(confirmed)); err != nil {
		return mapEditorError(err)
	}
	return h.respond(c, fiber.StatusOK, ed)
}

func (h *EditorHandler[T]) editor(c fiber.Ctx) (*usecase.Editor[T], error) {
	s, err := adminSession(c, h.sessions)
	if err != nil {
		return nil, err
	}
	return h.pick(s), nil
}

func (h *EditorHandler[T]) respond(c fiber.Ctx, status int, ed *usecase.Editor[T]) error {
	st := ed.State()
	res := dto.EditorResponse{
		Domain:    h.domain.String(),
		Mode:      string(st.Mode),
		EditingID: st.EditingID,
		Items:     ed.Items(),
	}
	if draft, ok := ed.Draft(); ok {
		res.Draft = draft
	}
	return response.Success(c, status, "", res)
}

func mapEditorError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrRecordNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Record not found", nil, err)
	case errors.Is(err, usecase.ErrInvalidTransition), errors.Is(err, usecase.ErrEditorNotOpen):
		return middleware.NewAppError(fiber.StatusConflict, err.Error(), nil, err)
	case errors.Is(err, usecase.ErrDeleteNotConfirmed):
		return middleware.NewAppError(fiber.StatusPreconditionRequired, "Delete must be confirmed", nil, err)
	case errors.Is(err, content.ErrInvalidRecord):
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, err.Error(), nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}

package handler

import (
	"errors"

	"portfolio-sync/internal/delivery/http/dto"
	"portfolio-sync/internal/delivery/http/middleware"
	"portfolio-sync/internal/pkg/response"
	"portfolio-sync/internal/usecase"
	ucauth "portfolio-sync/internal/usecase/auth"

	"github.com/gofiber/fiber/v3"
)

type AuthHandler struct {
	uc     usecase.AuthUsecase
	authMw fiber.Handler
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func NewAuthHandler(uc usecase.AuthUsecase, authMw fiber.Handler) *AuthHandler {
	return &AuthHandler{uc: uc, authMw: authMw}
}

func (h *AuthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/login", h.Login)
	r.Post("/refresh", h.Refresh)
	if h.authMw != nil {
		r.Post("/logout", h.authMw, h.Logout)
	}
}

func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req loginRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	usr, pair, err := h.uc.Login(c.Context(), ucauth.LoginInput{Username: req.Username, Password: req.Password})
	if err != nil {
		return mapAuthUsecaseError(err)
	}

	data := dto.LoginResponse{
		User:         dto.AdminResponse{ID: usr.ID, Username: usr.Username},
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
		ExpiresAt:    pair.AccessExpiresAt,
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, data)
}

func (h *AuthHandler) Refresh(c fiber.Ctx) error {
	tok, ok := middleware.BearerToken(c.Get("Authorization"))
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	pair, err := h.uc.Refresh(c.Context(), tok)
	if err != nil {
		if errors.Is(err, usecase.ErrRefreshTokenExpired) {
			return middleware.NewAppError(fiber.StatusUnauthorized, "Refresh token expired", nil, err)
		}
		if errors.Is(err, usecase.ErrInvalidRefreshToken) {
			return middleware.NewAppError(fiber.StatusUnauthorized, "Invalid refresh token", nil, err)
		}
		if errors.Is(err, usecase.ErrUnauthorized) {
			return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
		}
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.TokenPairResponse{
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
		ExpiresAt:    pair.AccessExpiresAt,
	})
}

func (h *AuthHandler) Logout(c fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	dropped := h.uc.Logout(c.Context(), userID)
	return response.Success(c, fiber.StatusOK, response.MessageOK, map[string]any{"session_dropped": dropped})
}

func mapAuthUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ucauth.ErrInvalidCredentials):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Invalid username or password", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}

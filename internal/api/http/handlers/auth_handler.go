package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/openticket/helpdesk/internal/api/dto"
	"github.com/openticket/helpdesk/internal/service"
	apperrors "github.com/openticket/helpdesk/pkg/util/errorutil"
)

// AuthHandler exposes the JWT token endpoints.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// Obtain POST /api/token/.
func (h *AuthHandler) Obtain(c *fiber.Ctx) error {
	var req dto.TokenObtainRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	_, pair, err := h.service.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.TokenPairResponse{Access: pair.Access, Refresh: pair.Refresh, ExpiresAt: pair.ExpiresAt})
}

// Refresh POST /api/token/refresh/.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.TokenRefreshRequest
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Refresh) == "" {
		return apperrors.NewValidationError("refresh required", map[string]any{"fields": []string{"refresh"}})
	}
	pair, err := h.service.Refresh(c.UserContext(), req.Refresh)
	if err != nil {
		return err
	}
	return c.JSON(dto.TokenPairResponse{Access: pair.Access, ExpiresAt: pair.ExpiresAt})
}

// Verify POST /api/token/verify/.
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	var req dto.TokenVerifyRequest
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		return apperrors.NewValidationError("token required", map[string]any{"fields": []string{"token"}})
	}
	if err := h.service.Verify(req.Token); err != nil {
		return err
	}
	return c.JSON(fiber.Map{})
}

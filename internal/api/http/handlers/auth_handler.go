package handlers

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"github.com/creatorhub/ticket-bot/internal/auth"
	"github.com/creatorhub/ticket-bot/pkg/util"
)

// AuthHandler exchanges the configured admin key for an ops bearer token.
type AuthHandler struct {
	adminKey string
	tokens   *auth.TokenManager
}

// NewAuthHandler returns a new handler instance.
func NewAuthHandler(adminKey string, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{adminKey: adminKey, tokens: tokens}
}

type tokenRequest struct {
	AdminKey string `json:"admin_key"`
}

// Token issues a short-lived JWT when the admin key matches.
func (h *AuthHandler) Token(c *fiber.Ctx) error {
	if h.adminKey == "" {
		return util.NewUnauthorized("ops API authentication is not configured")
	}

	var req tokenRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}
	if subtle.ConstantTimeCompare([]byte(req.AdminKey), []byte(h.adminKey)) != 1 {
		return util.NewUnauthorized("invalid admin key")
	}

	token, expiresAt, err := h.tokens.GenerateToken("ops")
	if err != nil {
		return util.NewInternalError(err)
	}
	return c.JSON(fiber.Map{
		"access_token": token,
		"expires_at":   expiresAt,
	})
}

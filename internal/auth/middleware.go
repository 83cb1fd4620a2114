package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/creatorhub/ticket-bot/pkg/util"
)

// LocalsClaims is the fiber locals key carrying parsed claims.
const LocalsClaims = "auth_claims"

// Middleware guards ops routes with bearer-token authentication.
type Middleware struct {
	tokens *TokenManager
}

// NewMiddleware builds the middleware.
func NewMiddleware(tokens *TokenManager) *Middleware {
	return &Middleware{tokens: tokens}
}

// Handle extracts and validates the bearer token.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return util.NewUnauthorized("missing authorization header")
	}
	tokenStr, found := strings.CutPrefix(header, "Bearer ")
	if !found || tokenStr == "" {
		return util.NewUnauthorized("malformed authorization header")
	}

	claims, err := m.tokens.ParseToken(tokenStr)
	if err != nil {
		return util.NewUnauthorized("invalid or expired token")
	}

	c.Locals(LocalsClaims, claims)
	return c.Next()
}

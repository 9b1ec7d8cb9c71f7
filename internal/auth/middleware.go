package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/complyhub/compliance-service/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Middleware validates bearer access credentials and stores the principal
// for downstream handlers. The access token carries the normalized role,
// so no repository lookup happens here.
type Middleware struct {
	tokens *TokenManager
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager) *Middleware {
	return &Middleware{tokens: tokens}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("authentication required")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("authentication required")
	}

	claims, err := m.tokens.ParseAccess(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("authentication required")
	}

	c.Locals(principalKey, Principal{
		IdentityID: claims.Subject,
		Role:       RoleFromClaim(string(claims.Role)),
	})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated caller.
func PrincipalFromContext(c *fiber.Ctx) (Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return Principal{}, false
	}
	principal, ok := val.(Principal)
	return principal, ok
}

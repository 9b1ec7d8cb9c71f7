package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/complyhub/compliance-service/internal/api/dto"
	"github.com/complyhub/compliance-service/internal/auth"
	"github.com/complyhub/compliance-service/internal/config"
	"github.com/complyhub/compliance-service/internal/service"
	apperrors "github.com/complyhub/compliance-service/pkg/util/errorutil"
)

// AuthHandler exposes the login/refresh/logout endpoints.
type AuthHandler struct {
	svc *service.AuthService
	cfg config.AuthConfig
}

// NewAuthHandler constructs handler.
func NewAuthHandler(svc *service.AuthService, cfg config.AuthConfig) *AuthHandler {
	return &AuthHandler{svc: svc, cfg: cfg}
}

// Login handles POST /auth/login. On success the refresh credential goes
// out as an HttpOnly cookie under the policy resolved for the effective
// host.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password required")
	}

	result, err := h.svc.Login(c.Context(), req.Email, req.Password, c.IP(), c.Get("User-Agent"))
	if err != nil {
		return err
	}

	policy := h.cookiePolicy(c)
	policy.Set(c, result.Refresh)

	resp := dto.TokenResponse{
		AccessToken: result.Access,
		ExpiresAt:   result.AccessExpiresAt,
	}
	if h.cfg.RefreshInBody {
		resp.RefreshToken = result.Refresh
	}
	return c.JSON(resp)
}

// Refresh handles POST /auth/refresh. The refresh credential is read from
// the cookie only; a new cookie is written when rotation produced a new
// credential.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	raw := c.Cookies(auth.RefreshCookieName)
	if raw == "" {
		return apperrors.NewUnauthorized("invalid refresh token")
	}

	result, err := h.svc.Refresh(c.Context(), raw)
	if err != nil {
		return err
	}

	if result.Refresh != "" {
		h.cookiePolicy(c).Set(c, result.Refresh)
	}
	return c.JSON(dto.TokenResponse{
		AccessToken: result.Access,
		ExpiresAt:   result.AccessExpiresAt,
	})
}

// Logout handles POST /auth/logout. Idempotent: revocation is best effort
// and the cookie is always cleared, so logout never surfaces an error.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.svc.Logout(c.Context(), c.Cookies(auth.RefreshCookieName))
	h.cookiePolicy(c).Clear(c)
	return c.JSON(fiber.Map{"detail": "ok"})
}

// cookiePolicy resolves the refresh cookie attributes per request. When a
// public host is configured it overrides the request's host header, which
// cannot be trusted behind a tunnel.
func (h *AuthHandler) cookiePolicy(c *fiber.Ctx) auth.CookiePolicy {
	host := h.cfg.PublicHost
	if host == "" {
		host = c.Hostname()
	}
	return auth.ResolveCookiePolicy(host, auth.CookieOptions{
		Domain:     h.cfg.CookieDomain,
		RefreshTTL: h.cfg.RefreshTTL(),
	})
}

package auth

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RefreshCookieName is the cookie carrying the refresh credential.
const RefreshCookieName = "refresh_token"

// refreshCookiePath scopes the cookie to the token endpoints only, never
// site-wide.
const refreshCookiePath = "/auth"

// CookiePolicy holds the resolved attributes for the refresh cookie.
type CookiePolicy struct {
	MaxAge   int
	Path     string
	Domain   string
	Secure   bool
	HTTPOnly bool
	SameSite string
}

// CookieOptions is the injected deployment configuration consulted when
// resolving a policy.
type CookieOptions struct {
	// Domain is an explicitly configured cookie domain for external
	// deployments; empty means a host-only cookie.
	Domain string
	// RefreshTTL sets the cookie max-age.
	RefreshTTL time.Duration
}

// ResolveCookiePolicy computes refresh cookie attributes for the given
// effective host. Loopback hosts get a permissive-but-safe policy so local
// HTTP development works; any externally reachable host gets
// Secure + SameSite=None for cross-site front-ends. An undeterminable host
// fails closed to the loopback policy. Pure function, re-evaluated per
// request: the same deployment may be reached through different hostnames
// over its lifetime.
func ResolveCookiePolicy(host string, opts CookieOptions) CookiePolicy {
	policy := CookiePolicy{
		MaxAge:   int(opts.RefreshTTL / time.Second),
		Path:     refreshCookiePath,
		HTTPOnly: true,
	}

	if hostname := stripPort(host); hostname == "" || isLoopback(hostname) {
		policy.Secure = false
		policy.SameSite = fiber.CookieSameSiteLaxMode
		policy.Domain = "localhost"
		return policy
	}

	policy.Secure = true
	policy.SameSite = fiber.CookieSameSiteNoneMode
	policy.Domain = opts.Domain
	return policy
}

// Set writes the refresh credential under this policy.
func (p CookiePolicy) Set(c *fiber.Ctx, value string) {
	c.Cookie(&fiber.Cookie{
		Name:     RefreshCookieName,
		Value:    value,
		MaxAge:   p.MaxAge,
		Expires:  time.Now().Add(time.Duration(p.MaxAge) * time.Second),
		Path:     p.Path,
		Domain:   p.Domain,
		Secure:   p.Secure,
		HTTPOnly: p.HTTPOnly,
		SameSite: p.SameSite,
	})
}

// Clear expires the refresh cookie. Attributes must match the ones used to
// set it or browsers will keep the cookie alive.
func (p CookiePolicy) Clear(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Path:     p.Path,
		Domain:   p.Domain,
		Secure:   p.Secure,
		HTTPOnly: p.HTTPOnly,
		SameSite: p.SameSite,
	})
}

func isLoopback(hostname string) bool {
	return hostname == "localhost" || hostname == "127.0.0.1"
}

func stripPort(host string) string {
	host = strings.TrimSpace(strings.ToLower(host))
	if idx := strings.LastIndex(host, ":"); idx != -1 && !strings.Contains(host, "]") {
		return host[:idx]
	}
	return host
}

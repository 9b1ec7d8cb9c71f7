package auth

import (
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

func TestResolveCookiePolicy(t *testing.T) {
	opts := CookieOptions{RefreshTTL: 30 * time.Minute}

	tests := []struct {
		name         string
		host         string
		cookieDomain string
		wantSecure   bool
		wantSameSite string
		wantDomain   string
	}{
		{
			name:         "localhost",
			host:         "localhost",
			wantSecure:   false,
			wantSameSite: fiber.CookieSameSiteLaxMode,
			wantDomain:   "localhost",
		},
		{
			name:         "loopback ip with port",
			host:         "127.0.0.1:8080",
			wantSecure:   false,
			wantSameSite: fiber.CookieSameSiteLaxMode,
			wantDomain:   "localhost",
		},
		{
			name:         "external host",
			host:         "app.example.com",
			wantSecure:   true,
			wantSameSite: fiber.CookieSameSiteNoneMode,
			wantDomain:   "",
		},
		{
			name:         "external host with configured domain",
			host:         "tunnel.example.dev",
			cookieDomain: ".example.dev",
			wantSecure:   true,
			wantSameSite: fiber.CookieSameSiteNoneMode,
			wantDomain:   ".example.dev",
		},
		{
			name:         "undeterminable host fails closed to loopback policy",
			host:         "",
			cookieDomain: ".example.dev",
			wantSecure:   false,
			wantSameSite: fiber.CookieSameSiteLaxMode,
			wantDomain:   "localhost",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := opts
			o.Domain = tt.cookieDomain
			policy := ResolveCookiePolicy(tt.host, o)

			if policy.Secure != tt.wantSecure {
				t.Errorf("Secure = %v, want %v", policy.Secure, tt.wantSecure)
			}
			if policy.SameSite != tt.wantSameSite {
				t.Errorf("SameSite = %q, want %q", policy.SameSite, tt.wantSameSite)
			}
			if policy.Domain != tt.wantDomain {
				t.Errorf("Domain = %q, want %q", policy.Domain, tt.wantDomain)
			}
			if !policy.HTTPOnly {
				t.Error("refresh cookie must always be HttpOnly")
			}
			if policy.Path != "/auth" {
				t.Errorf("Path = %q, want /auth", policy.Path)
			}
			if policy.MaxAge != int((30 * time.Minute).Seconds()) {
				t.Errorf("MaxAge = %d, want %d", policy.MaxAge, int((30 * time.Minute).Seconds()))
			}
		})
	}
}

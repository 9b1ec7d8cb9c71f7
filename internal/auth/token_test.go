package auth

import (
	"testing"
	"time"

	"github.com/complyhub/compliance-service/internal/domain"
)

func testIdentity(role string, superuser bool) *domain.Identity {
	return &domain.Identity{
		ID:          "id-1",
		Email:       "dpo@example.com",
		Role:        role,
		IsSuperuser: superuser,
		IsActive:    true,
	}
}

func TestIssuePairRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Minute, time.Hour)

	pair, err := tm.IssuePair(testIdentity("admin", false))
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	if pair.RefreshJTI == "" {
		t.Fatal("expected a refresh jti")
	}

	access, err := tm.ParseAccess(pair.Access)
	if err != nil {
		t.Fatalf("ParseAccess: %v", err)
	}
	if access.Subject != "id-1" {
		t.Fatalf("unexpected subject: %s", access.Subject)
	}
	if access.Role != RoleAdmin {
		t.Fatalf("expected role admin, got %s", access.Role)
	}

	refresh, err := tm.ParseRefresh(pair.Refresh)
	if err != nil {
		t.Fatalf("ParseRefresh: %v", err)
	}
	if refresh.ID != pair.RefreshJTI {
		t.Fatalf("jti mismatch: %s vs %s", refresh.ID, pair.RefreshJTI)
	}
	if refresh.Subject != "id-1" {
		t.Fatalf("unexpected subject: %s", refresh.Subject)
	}
}

func TestAccessTokenCarriesNormalizedRole(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Minute, time.Hour)

	// Superuser with a generic stored role must come out as admin.
	pair, err := tm.IssuePair(testIdentity("user", true))
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	claims, err := tm.ParseAccess(pair.Access)
	if err != nil {
		t.Fatalf("ParseAccess: %v", err)
	}
	if claims.Role != RoleAdmin {
		t.Fatalf("expected admin, got %s", claims.Role)
	}
}

func TestParseRejectsWrongKey(t *testing.T) {
	tm := NewTokenManager("key-one", time.Minute, time.Hour)
	other := NewTokenManager("key-two", time.Minute, time.Hour)

	pair, err := tm.IssuePair(testIdentity("dpo", false))
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}

	if _, err := other.ParseAccess(pair.Access); err == nil {
		t.Fatal("access token signed with a different key was accepted")
	}
	if _, err := other.ParseRefresh(pair.Refresh); err == nil {
		t.Fatal("refresh token signed with a different key was accepted")
	}
}

func TestParseRejectsExpiredTokens(t *testing.T) {
	past := &TokenManager{
		secret:     []byte("test-secret"),
		accessTTL:  time.Minute,
		refreshTTL: time.Hour,
		now:        func() time.Time { return time.Now().Add(-2 * time.Hour) },
	}
	pair, err := past.IssuePair(testIdentity("admin", false))
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}

	tm := NewTokenManager("test-secret", time.Minute, time.Hour)
	if _, err := tm.ParseAccess(pair.Access); err == nil {
		t.Fatal("expired access token was accepted")
	}
	if _, err := tm.ParseRefresh(pair.Refresh); err == nil {
		t.Fatal("expired refresh token was accepted")
	}
}

func TestTokenTypeConfusionRejected(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Minute, time.Hour)
	pair, err := tm.IssuePair(testIdentity("admin", false))
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}

	if _, err := tm.ParseRefresh(pair.Access); err == nil {
		t.Fatal("access token accepted as refresh token")
	}
	if _, err := tm.ParseAccess(pair.Refresh); err == nil {
		t.Fatal("refresh token accepted as access token")
	}
}

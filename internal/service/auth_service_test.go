package service

import (
	"context"
	"errors"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/complyhub/compliance-service/internal/auth"
	"github.com/complyhub/compliance-service/internal/config"
	"github.com/complyhub/compliance-service/internal/domain"
	"github.com/complyhub/compliance-service/internal/events"
	apperrors "github.com/complyhub/compliance-service/pkg/util/errorutil"
)

type fakeIdentityRepo struct {
	identities map[string]*domain.Identity
}

func (f *fakeIdentityRepo) GetByID(_ context.Context, id string) (*domain.Identity, error) {
	if identity, ok := f.identities[id]; ok {
		return identity, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeIdentityRepo) GetByEmail(_ context.Context, email string) (*domain.Identity, error) {
	for _, identity := range f.identities {
		if identity.Email == email {
			return identity, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeIdentityRepo) Deactivate(_ context.Context, id string) error {
	if identity, ok := f.identities[id]; ok {
		identity.IsActive = false
		return nil
	}
	return pgx.ErrNoRows
}

type failingRevocationList struct{}

func (failingRevocationList) Revoke(context.Context, string, time.Duration) (bool, error) {
	return false, errors.New("store unavailable")
}

func (failingRevocationList) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("store unavailable")
}

type authFixture struct {
	svc    *AuthService
	tokens *auth.TokenManager
	repo   *fakeIdentityRepo
	events *[]events.Event
}

func newAuthFixture(t *testing.T, cfg config.AuthConfig, revocations auth.RevocationList) *authFixture {
	t.Helper()

	hash, err := auth.HashPassword("correct-horse", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	repo := &fakeIdentityRepo{identities: map[string]*domain.Identity{
		"id-1": {
			ID: "id-1", Name: "Ana", Email: "ana@example.com",
			PasswordHash: hash, Role: "admin", IsActive: true,
		},
		"id-2": {
			ID: "id-2", Name: "Bruno", Email: "bruno@example.com",
			PasswordHash: hash, Role: "gerente", IsActive: false,
		},
	}}

	tokens := auth.NewTokenManager("test-secret", time.Minute, time.Hour)
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())

	var published []events.Event
	dispatcher.Subscribe(events.EventLoginRecorded, func(_ context.Context, event events.Event) error {
		published = append(published, event)
		return nil
	})

	svc := NewAuthService(cfg, AuthDependencies{
		IdentityRepo: repo,
		Revocations:  revocations,
		Tokens:       tokens,
		Dispatcher:   dispatcher,
		Logger:       zap.NewNop(),
	})
	return &authFixture{svc: svc, tokens: tokens, repo: repo, events: &published}
}

func rotatingConfig() config.AuthConfig {
	return config.AuthConfig{RotateRefreshTokens: true, BlacklistAfterRotation: true}
}

func assertUnauthorized(t *testing.T, err error) {
	t.Helper()
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError, got %v", err)
	}
	if domainErr.HTTPStatus != 401 {
		t.Fatalf("expected 401, got %d", domainErr.HTTPStatus)
	}
}

// signExpiredRefresh builds a structurally valid refresh token that is
// already past its expiry.
func signExpiredRefresh(t *testing.T, secret, identityID string) string {
	t.Helper()
	now := time.Now().Add(-2 * time.Hour)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": identityID,
		"jti": "expired-jti",
		"typ": "refresh",
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	return signed
}

func TestLoginIssuesCredentialPair(t *testing.T) {
	fx := newAuthFixture(t, rotatingConfig(), auth.NewMemoryRevocationList())

	result, err := fx.svc.Login(context.Background(), "ana@example.com", "correct-horse", "10.0.0.1", "cli")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	claims, err := fx.tokens.ParseAccess(result.Access)
	if err != nil {
		t.Fatalf("ParseAccess: %v", err)
	}
	if claims.Role != auth.RoleAdmin {
		t.Fatalf("expected admin role in access token, got %s", claims.Role)
	}
	if result.Refresh == "" {
		t.Fatal("expected refresh token")
	}

	if len(*fx.events) != 1 {
		t.Fatalf("expected 1 login event, got %d", len(*fx.events))
	}
	payload, ok := (*fx.events)[0].Payload.(events.LoginRecordedPayload)
	if !ok {
		t.Fatalf("unexpected payload type %T", (*fx.events)[0].Payload)
	}
	if payload.SourceIP != "10.0.0.1" {
		t.Fatalf("unexpected source ip %q", payload.SourceIP)
	}
}

func TestLoginFailuresAreGeneric(t *testing.T) {
	fx := newAuthFixture(t, rotatingConfig(), auth.NewMemoryRevocationList())
	ctx := context.Background()

	_, unknownErr := fx.svc.Login(ctx, "nobody@example.com", "correct-horse", "", "")
	_, wrongPassErr := fx.svc.Login(ctx, "ana@example.com", "wrong", "", "")
	_, inactiveErr := fx.svc.Login(ctx, "bruno@example.com", "correct-horse", "", "")

	for _, err := range []error{unknownErr, wrongPassErr, inactiveErr} {
		assertUnauthorized(t, err)
	}
	// No enumeration: the three failures are indistinguishable.
	if unknownErr.Error() != wrongPassErr.Error() || wrongPassErr.Error() != inactiveErr.Error() {
		t.Fatal("login failure messages differ")
	}
	if len(*fx.events) != 0 {
		t.Fatal("failed logins must not publish login events")
	}
}

func TestRefreshRotationIsSingleUse(t *testing.T) {
	fx := newAuthFixture(t, rotatingConfig(), auth.NewMemoryRevocationList())
	ctx := context.Background()

	login, err := fx.svc.Login(ctx, "ana@example.com", "correct-horse", "", "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	first, err := fx.svc.Refresh(ctx, login.Refresh)
	if err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	if first.Refresh == "" || first.Refresh == login.Refresh {
		t.Fatal("rotation did not produce a new refresh token")
	}
	if first.Access == "" {
		t.Fatal("expected a new access token")
	}

	// Replaying the rotated-away token must fail closed.
	if _, err := fx.svc.Refresh(ctx, login.Refresh); err == nil {
		t.Fatal("replay of rotated refresh token accepted")
	} else {
		assertUnauthorized(t, err)
	}

	// The rotated-to token keeps working.
	if _, err := fx.svc.Refresh(ctx, first.Refresh); err != nil {
		t.Fatalf("rotated-to token rejected: %v", err)
	}
}

func TestRefreshWithoutRotationKeepsToken(t *testing.T) {
	cfg := config.AuthConfig{RotateRefreshTokens: false}
	fx := newAuthFixture(t, cfg, auth.NewMemoryRevocationList())
	ctx := context.Background()

	login, err := fx.svc.Login(ctx, "ana@example.com", "correct-horse", "", "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	for i := 0; i < 2; i++ {
		result, err := fx.svc.Refresh(ctx, login.Refresh)
		if err != nil {
			t.Fatalf("refresh %d: %v", i, err)
		}
		if result.Refresh != "" {
			t.Fatal("non-rotating refresh issued a new refresh token")
		}
		if result.Access == "" {
			t.Fatal("expected access token")
		}
	}
}

func TestRefreshRejectsForgedAndExpiredTokens(t *testing.T) {
	fx := newAuthFixture(t, rotatingConfig(), auth.NewMemoryRevocationList())
	ctx := context.Background()

	forged := auth.NewTokenManager("other-secret", time.Minute, time.Hour)
	forgedToken, _, err := forged.IssueRefresh("id-1")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	if _, err := fx.svc.Refresh(ctx, forgedToken); err == nil {
		t.Fatal("refresh token signed with a different key accepted")
	}

	expiredToken := signExpiredRefresh(t, "test-secret", "id-1")
	if _, err := fx.svc.Refresh(ctx, expiredToken); err == nil {
		t.Fatal("expired refresh token accepted")
	}
}

func TestRefreshFailsClosedWhenStoreUnavailable(t *testing.T) {
	fx := newAuthFixture(t, rotatingConfig(), failingRevocationList{})
	ctx := context.Background()

	login, err := fx.svc.Login(ctx, "ana@example.com", "correct-horse", "", "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	_, err = fx.svc.Refresh(ctx, login.Refresh)
	if err == nil {
		t.Fatal("refresh succeeded with revocation store down")
	}
	assertUnauthorized(t, err)
}

func TestRefreshRejectsRemovedOrInactiveIdentity(t *testing.T) {
	fx := newAuthFixture(t, rotatingConfig(), auth.NewMemoryRevocationList())
	ctx := context.Background()

	login, err := fx.svc.Login(ctx, "ana@example.com", "correct-horse", "", "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	fx.repo.identities["id-1"].IsActive = false
	_, err = fx.svc.Refresh(ctx, login.Refresh)
	if err == nil {
		t.Fatal("refresh succeeded for deactivated identity")
	}
	assertUnauthorized(t, err)
}

func TestLogoutIsIdempotentAndRevokes(t *testing.T) {
	fx := newAuthFixture(t, rotatingConfig(), auth.NewMemoryRevocationList())
	ctx := context.Background()

	login, err := fx.svc.Login(ctx, "ana@example.com", "correct-horse", "", "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	// Twice in a row, then with garbage, then with nothing: all fine.
	fx.svc.Logout(ctx, login.Refresh)
	fx.svc.Logout(ctx, login.Refresh)
	fx.svc.Logout(ctx, "not-a-token")
	fx.svc.Logout(ctx, "")

	if _, err := fx.svc.Refresh(ctx, login.Refresh); err == nil {
		t.Fatal("refresh accepted after logout")
	}
}

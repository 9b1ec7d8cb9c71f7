package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/complyhub/compliance-service/internal/auth"
	"github.com/complyhub/compliance-service/internal/config"
	"github.com/complyhub/compliance-service/internal/domain"
	"github.com/complyhub/compliance-service/internal/events"
	"github.com/complyhub/compliance-service/internal/repository"
	apperrors "github.com/complyhub/compliance-service/pkg/util/errorutil"
)

// AuthService coordinates login, refresh rotation and logout.
type AuthService struct {
	identities  repository.IdentityRepository
	revocations auth.RevocationList
	tokens      *auth.TokenManager
	dispatcher  events.Dispatcher
	logger      *zap.Logger

	rotate         bool
	blacklistAfter bool
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	IdentityRepo repository.IdentityRepository
	Revocations  auth.RevocationList
	Tokens       *auth.TokenManager
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		identities:     deps.IdentityRepo,
		revocations:    deps.Revocations,
		tokens:         deps.Tokens,
		dispatcher:     deps.Dispatcher,
		logger:         deps.Logger,
		rotate:         cfg.RotateRefreshTokens,
		blacklistAfter: cfg.BlacklistAfterRotation,
	}
}

// LoginResult carries the issued credentials after a successful login.
type LoginResult struct {
	Identity        *domain.Identity
	Access          string
	AccessExpiresAt time.Time
	Refresh         string
}

// RefreshResult carries a fresh access credential. Refresh is empty when
// rotation is disabled: the original cookie stays untouched.
type RefreshResult struct {
	Access          string
	AccessExpiresAt time.Time
	Refresh         string
}

// Login verifies primary credentials and issues a token pair. Unknown
// identity, inactive account and wrong password all collapse into one
// generic unauthorized error to prevent enumeration.
func (s *AuthService) Login(ctx context.Context, email, password, sourceIP, userAgent string) (*LoginResult, error) {
	identity, err := s.identities.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if !identity.IsActive {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(identity.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	pair, err := s.tokens.IssuePair(identity)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.publishLoginRecorded(ctx, identity, sourceIP, userAgent)

	return &LoginResult{
		Identity:        identity,
		Access:          pair.Access,
		AccessExpiresAt: pair.AccessExpiresAt,
		Refresh:         pair.Refresh,
	}, nil
}

// Refresh exchanges a refresh credential for a new access credential,
// rotating the refresh credential when configured. Every failure path
// denies with the same unauthorized error: an unreadable revocation store
// fails closed rather than risk accepting a revoked token.
func (s *AuthService) Refresh(ctx context.Context, rawRefresh string) (*RefreshResult, error) {
	claims, err := s.tokens.ParseRefresh(rawRefresh)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid refresh token")
	}

	revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		s.logger.Warn("revocation store unavailable; denying refresh", zap.Error(err))
		return nil, apperrors.NewUnauthorized("invalid refresh token")
	}
	if revoked {
		s.logger.Info("revoked refresh token replayed",
			zap.String("identity_id", claims.Subject),
			zap.String("jti", claims.ID))
		return nil, apperrors.NewUnauthorized("invalid refresh token")
	}

	if !s.rotate {
		identity, err := s.identities.GetByID(ctx, claims.Subject)
		if err != nil || !identity.IsActive {
			return nil, apperrors.NewUnauthorized("invalid refresh token")
		}
		access, accessExp, err := s.tokens.IssueAccess(identity.ID, auth.NormalizeRole(identity))
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		return &RefreshResult{Access: access, AccessExpiresAt: accessExp}, nil
	}

	if s.blacklistAfter {
		// Revocation doubles as the single-use gate: of two concurrent
		// refresh calls for the same jti, only the first add succeeds.
		added, err := s.revocations.Revoke(ctx, claims.ID, time.Until(claims.ExpiresAt.Time))
		if err != nil {
			s.logger.Warn("revocation store unavailable; denying refresh", zap.Error(err))
			return nil, apperrors.NewUnauthorized("invalid refresh token")
		}
		if !added {
			return nil, apperrors.NewUnauthorized("invalid refresh token")
		}
	}

	identity, err := s.identities.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid refresh token")
	}
	if !identity.IsActive {
		return nil, apperrors.NewUnauthorized("invalid refresh token")
	}

	pair, err := s.tokens.IssuePair(identity)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &RefreshResult{
		Access:          pair.Access,
		AccessExpiresAt: pair.AccessExpiresAt,
		Refresh:         pair.Refresh,
	}, nil
}

// Logout revokes the refresh credential's jti on a best-effort basis. It
// never returns an error: a missing, malformed or expired cookie and an
// unavailable store all still count as a successful logout, and the
// handler clears the cookie regardless.
func (s *AuthService) Logout(ctx context.Context, rawRefresh string) {
	if rawRefresh == "" {
		return
	}
	claims, err := s.tokens.ParseRefresh(rawRefresh)
	if err != nil {
		return
	}
	if _, err := s.revocations.Revoke(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
		s.logger.Warn("failed to revoke refresh token on logout",
			zap.String("identity_id", claims.Subject),
			zap.Error(err))
	}
}

func (s *AuthService) publishLoginRecorded(ctx context.Context, identity *domain.Identity, sourceIP, userAgent string) {
	if s.dispatcher == nil {
		return
	}
	// Fire and forget: dispatcher handlers log their own failures and a
	// failed audit write never blocks or fails the login response.
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:         uuid.NewString(),
		Type:       events.EventLoginRecorded,
		IdentityID: identity.ID,
		Timestamp:  time.Now(),
		Payload: events.LoginRecordedPayload{
			Email:     identity.Email,
			SourceIP:  sourceIP,
			UserAgent: userAgent,
		},
	})
}

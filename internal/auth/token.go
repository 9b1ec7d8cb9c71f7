package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/complyhub/compliance-service/internal/domain"
)

// TokenType tags a credential so access and refresh tokens can never be
// substituted for one another.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// ErrInvalidToken indicates a token failed signature, expiry or type checks.
var ErrInvalidToken = errors.New("invalid token")

// TokenManager issues and validates the access/refresh credential pair.
// Validation is purely cryptographic plus expiry; no store lookup happens
// here.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenManager builds a manager. The caller guarantees a non-empty
// secret; config loading refuses to start without one.
func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	if accessTTL <= 0 {
		accessTTL = 5 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 24 * time.Hour
	}
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// AccessClaims is the payload of the short-lived access credential. It
// carries the normalized role so authorization never needs a database
// round trip on the request path.
type AccessClaims struct {
	Role      Role      `json:"role"`
	TokenType TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of the refresh credential. The registered
// ID field holds the jti used as the revocation key.
type RefreshClaims struct {
	TokenType TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// TokenPair bundles a freshly issued credential pair.
type TokenPair struct {
	Access           string
	AccessExpiresAt  time.Time
	Refresh          string
	RefreshJTI       string
	RefreshExpiresAt time.Time
}

// IssuePair mints an access and refresh credential for the identity.
func (tm *TokenManager) IssuePair(identity *domain.Identity) (TokenPair, error) {
	access, accessExp, err := tm.IssueAccess(identity.ID, NormalizeRole(identity))
	if err != nil {
		return TokenPair{}, err
	}
	refresh, refreshClaims, err := tm.IssueRefresh(identity.ID)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		Access:           access,
		AccessExpiresAt:  accessExp,
		Refresh:          refresh,
		RefreshJTI:       refreshClaims.ID,
		RefreshExpiresAt: refreshClaims.ExpiresAt.Time,
	}, nil
}

// IssueAccess builds and signs a short-lived access credential.
func (tm *TokenManager) IssueAccess(identityID string, role Role) (string, time.Time, error) {
	now := tm.now()
	expiresAt := now.Add(tm.accessTTL)
	claims := &AccessClaims{
		Role:      role,
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identityID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// IssueRefresh builds and signs a refresh credential with a fresh jti.
func (tm *TokenManager) IssueRefresh(identityID string) (string, *RefreshClaims, error) {
	now := tm.now()
	claims := &RefreshClaims{
		TokenType: TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identityID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.refreshTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// ParseAccess validates an access credential and returns its claims.
func (tm *TokenManager) ParseAccess(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := tm.parse(tokenStr, claims); err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeAccess {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ParseRefresh validates a refresh credential and returns its claims.
func (tm *TokenManager) ParseRefresh(tokenStr string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := tm.parse(tokenStr, claims); err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeRefresh || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// RefreshTTL exposes the refresh lifetime for cookie max-age computation.
func (tm *TokenManager) RefreshTTL() time.Duration {
	return tm.refreshTTL
}

func (tm *TokenManager) parse(tokenStr string, claims jwt.Claims) error {
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(tm.now))
	if err != nil {
		return ErrInvalidToken
	}
	if !parsed.Valid {
		return ErrInvalidToken
	}
	return nil
}

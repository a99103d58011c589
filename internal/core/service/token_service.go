package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/storefront/catalog-api/internal/core/domain"
	"github.com/storefront/catalog-api/internal/core/ports"
)

// TokenService issues and validates HS256-signed JWT pairs. The signing key
// is process-wide configuration loaded once at startup; there is no
// server-side revocation, a leaked token stays valid until expiry.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) *TokenService {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenService{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

type tokenClaims struct {
	Username  string           `json:"username"`
	TokenType domain.TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

// Issue produces an access/refresh pair bound to the user's identity.
func (s *TokenService) Issue(user *domain.User) (*domain.TokenPair, error) {
	access, err := s.sign(user, domain.TokenTypeAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(user, domain.TokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Validate verifies signature, expiry and the type tag, in that order of
// precedence, and recovers the identity encoded at issuance.
func (s *TokenService) Validate(token string, expected domain.TokenType) (*ports.TokenClaims, error) {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrExpiredToken
		}
		return nil, domain.ErrInvalidToken
	}
	if !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}
	if claims.TokenType != expected {
		return nil, domain.ErrWrongTokenType
	}
	if claims.Subject == "" {
		return nil, domain.ErrInvalidToken
	}

	return &ports.TokenClaims{UserID: claims.Subject, Username: claims.Username}, nil
}

func (s *TokenService) sign(user *domain.User, tt domain.TokenType, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &tokenClaims{
		Username:  user.Username,
		TokenType: tt,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

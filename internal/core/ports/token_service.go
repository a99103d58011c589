package ports

import "github.com/storefront/catalog-api/internal/core/domain"

// TokenClaims is the identity recovered from a validated token.
type TokenClaims struct {
	UserID   string
	Username string
}

// TokenService issues and validates the signed token pair. Validation is
// stateless: signature, expiry and type tag are all the server checks.
type TokenService interface {
	Issue(user *domain.User) (*domain.TokenPair, error)
	Validate(token string, expected domain.TokenType) (*TokenClaims, error)
}

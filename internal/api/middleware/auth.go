package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/storefront/catalog-api/internal/core/domain"
	"github.com/storefront/catalog-api/internal/core/ports"
	"github.com/storefront/catalog-api/internal/metrics"
)

const (
	// ContextUserID and ContextUsername are the echo context keys the auth
	// middleware populates for downstream handlers.
	ContextUserID   = "user_id"
	ContextUsername = "username"
)

// RequireAuth validates the bearer access token and injects the caller's
// identity into the request context. It rejects before any handler logic
// runs, so authentication always precedes authorization and business logic.
func RequireAuth(tokens ports.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := authenticate(c, tokens)
			if err != nil {
				return err
			}

			c.Set(ContextUserID, claims.UserID)
			c.Set(ContextUsername, claims.Username)

			return next(c)
		}
	}
}

// OptionalAuth parses a bearer token when one is presented but never rejects
// the request. The product listing declares token support yet allows anyone
// through; the effective permissive behaviour is kept on purpose.
func OptionalAuth(tokens ports.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Anonymous requests are the normal case here, not an auth
			// failure; skip the parse so the failure counters stay honest.
			if c.Request().Header.Get("Authorization") == "" {
				return next(c)
			}
			if claims, err := authenticate(c, tokens); err == nil {
				c.Set(ContextUserID, claims.UserID)
				c.Set(ContextUsername, claims.Username)
			}
			return next(c)
		}
	}
}

func authenticate(c echo.Context, tokens ports.TokenService) (*ports.TokenClaims, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		metrics.AuthFailuresTotal.WithLabelValues("missing_header").Inc()
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		metrics.AuthFailuresTotal.WithLabelValues("malformed_header").Inc()
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}

	claims, err := tokens.Validate(parts[1], domain.TokenTypeAccess)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrExpiredToken):
			metrics.AuthFailuresTotal.WithLabelValues("expired").Inc()
			return nil, echo.NewHTTPError(http.StatusUnauthorized, "token has expired")
		case errors.Is(err, domain.ErrWrongTokenType):
			metrics.AuthFailuresTotal.WithLabelValues("wrong_type").Inc()
			return nil, echo.NewHTTPError(http.StatusUnauthorized, "access token required")
		default:
			metrics.AuthFailuresTotal.WithLabelValues("invalid").Inc()
			return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}
	}

	return claims, nil
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/storefront/catalog-api/internal/core/domain"
)

func handleError(t *testing.T, err error) (int, string) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return rec.Code, resp.Message
}

func TestHTTPErrorHandler_DomainErrors(t *testing.T) {
	tests := []struct {
		err     error
		code    int
		message string
	}{
		{domain.ErrInvalidToken, http.StatusUnauthorized, "invalid token"},
		{domain.ErrExpiredToken, http.StatusUnauthorized, "invalid token"},
		{domain.ErrSelfOnly, http.StatusForbidden, domain.ErrSelfOnly.Error()},
		{domain.ErrInvalidCredentials, http.StatusBadRequest, "invalid credentials"},
		{domain.ErrUserExists, http.StatusBadRequest, "user already exists"},
		{domain.ErrUserNotFound, http.StatusNotFound, "user not found"},
		{domain.ErrProductNotFound, http.StatusNotFound, "product not found"},
	}
	for _, tt := range tests {
		code, msg := handleError(t, tt.err)
		if code != tt.code || msg != tt.message {
			t.Fatalf("%v: got (%d, %q), want (%d, %q)", tt.err, code, msg, tt.code, tt.message)
		}
	}
}

func TestHTTPErrorHandler_WrappedDomainError(t *testing.T) {
	code, msg := handleError(t, fmt.Errorf("fetch product: %w", domain.ErrProductNotFound))
	if code != http.StatusNotFound || msg != "product not found" {
		t.Fatalf("got (%d, %q)", code, msg)
	}
}

func TestHTTPErrorHandler_EchoError(t *testing.T) {
	code, msg := handleError(t, echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header"))
	if code != http.StatusUnauthorized || msg != "missing authorization header" {
		t.Fatalf("got (%d, %q)", code, msg)
	}
}

func TestHTTPErrorHandler_UnexpectedError(t *testing.T) {
	code, msg := handleError(t, errors.New("mongo: connection reset"))
	if code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", code)
	}
	if msg != "internal server error" {
		t.Fatalf("internal detail leaked: %q", msg)
	}
}

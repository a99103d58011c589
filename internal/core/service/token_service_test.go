package service

import (
	"errors"
	"testing"
	"time"

	"github.com/storefront/catalog-api/internal/core/domain"
)

func testUser() *domain.User {
	return &domain.User{ID: "user_1", Username: "alice"}
}

func TestTokenService_IssueAndValidate(t *testing.T) {
	svc := NewTokenService("secret", time.Hour, 24*time.Hour)

	pair, err := svc.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected both tokens, got %+v", pair)
	}
	if pair.AccessToken == pair.RefreshToken {
		t.Fatalf("access and refresh tokens must differ")
	}

	claims, err := svc.Validate(pair.AccessToken, domain.TokenTypeAccess)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if claims.UserID != "user_1" {
		t.Fatalf("expected user_1, got %s", claims.UserID)
	}
	if claims.Username != "alice" {
		t.Fatalf("expected alice, got %s", claims.Username)
	}

	if _, err := svc.Validate(pair.RefreshToken, domain.TokenTypeRefresh); err != nil {
		t.Fatalf("refresh token should validate as refresh: %v", err)
	}
}

func TestTokenService_WrongType(t *testing.T) {
	svc := NewTokenService("secret", time.Hour, 24*time.Hour)
	pair, err := svc.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := svc.Validate(pair.AccessToken, domain.TokenTypeRefresh); !errors.Is(err, domain.ErrWrongTokenType) {
		t.Fatalf("expected ErrWrongTokenType for access-as-refresh, got %v", err)
	}
	if _, err := svc.Validate(pair.RefreshToken, domain.TokenTypeAccess); !errors.Is(err, domain.ErrWrongTokenType) {
		t.Fatalf("expected ErrWrongTokenType for refresh-as-access, got %v", err)
	}
}

func TestTokenService_Expired(t *testing.T) {
	svc := NewTokenService("secret", time.Nanosecond, time.Nanosecond)
	pair, err := svc.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	if _, err := svc.Validate(pair.AccessToken, domain.TokenTypeAccess); !errors.Is(err, domain.ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
	if _, err := svc.Validate(pair.RefreshToken, domain.TokenTypeRefresh); !errors.Is(err, domain.ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken for refresh, got %v", err)
	}
}

func TestTokenService_BadSignature(t *testing.T) {
	issuer := NewTokenService("secret", time.Hour, 24*time.Hour)
	verifier := NewTokenService("other-secret", time.Hour, 24*time.Hour)

	pair, err := issuer.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := verifier.Validate(pair.AccessToken, domain.TokenTypeAccess); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong key, got %v", err)
	}
}

func TestTokenService_Garbage(t *testing.T) {
	svc := NewTokenService("secret", time.Hour, 24*time.Hour)

	if _, err := svc.Validate("not-a-jwt", domain.TokenTypeAccess); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

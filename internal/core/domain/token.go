package domain

import "errors"

// TokenType discriminates access tokens from refresh tokens. A token of one
// type is never accepted where the other is required.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")
var ErrExpiredToken = errors.New("token has expired")
var ErrWrongTokenType = errors.New("wrong token type")

// TokenPair is what a successful login or refresh exchange returns.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

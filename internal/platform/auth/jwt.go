package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const RoleAdmin = "admin"

type Claims struct {
	Subject string
	Role    string
}

type jwtClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type TokenService interface {
	Sign(subject string, role string) (string, error)
	Verify(token string) (Claims, error)
}

var (
	ErrEmptySecret = errors.New("jwt secret is empty")
	ErrEmptyIssuer = errors.New("jwt issuer is empty")
	ErrInvalidTTL  = errors.New("jwt ttl must be > 0")
)

func NewHS256Service(secret, issuer string, ttl time.Duration) (TokenService, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if issuer == "" {
		return nil, ErrEmptyIssuer
	}
	if ttl <= 0 {
		return nil, ErrInvalidTTL
	}
	return &hs256Service{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}, nil
}

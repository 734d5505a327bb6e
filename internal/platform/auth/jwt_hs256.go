package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type hs256Service struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func (h *hs256Service) clock() time.Time {
	if h.now != nil {
		return h.now()
	}
	return time.Now()
}

func (h *hs256Service) Sign(subject string, role string) (string, error) {
	if subject == "" {
		return "", errors.New("empty subject")
	}
	now := h.clock()
	claims := jwtClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    h.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(h.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
}

// Verify 只接受 HS256、本服务签发、带过期时间的 token。
func (h *hs256Service) Verify(tokenString string) (Claims, error) {
	var parsed jwtClaims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(h.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(h.clock),
	)
	if _, err := parser.ParseWithClaims(tokenString, &parsed, func(*jwt.Token) (any, error) {
		return h.secret, nil
	}); err != nil {
		return Claims{}, err
	}
	return Claims{Subject: parsed.Subject, Role: parsed.Role}, nil
}

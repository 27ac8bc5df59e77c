// Package token mints and verifies the signed, self-expiring credentials
// embedded in password-reset links. Tokens are stateless: nothing is stored
// at issue time, and verification needs only the signing secret.
package token

import (
	"strings"
	"time"

	"github.com/ErlanBelekov/account-recovery/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewCodec(secret []byte, ttl time.Duration) *Codec {
	return &Codec{secret: secret, ttl: ttl, now: time.Now}
}

// Issue signs a reset token for email. The email is lowercased before it is
// embedded, and each call carries a fresh jti so two tokens for the same
// address expire independently and can be consumed independently.
func (c *Codec) Issue(email string) (string, error) {
	now := c.now()
	claims := jwt.MapClaims{
		"sub": strings.ToLower(email),
		"iat": now.Unix(),
		"exp": now.Add(c.ttl).Unix(),
		"jti": uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify checks signature and expiry and returns the embedded email and jti.
// Every failure — malformed input, bad signature, expired token — maps to
// domain.ErrTokenInvalid so the caller cannot act as an oracle.
//
// Expiry is recomputed server-side from the embedded iat and the configured
// TTL; the exp claim is present for interop but is not trusted.
func (c *Codec) Verify(raw string) (email, jti string, err error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	)
	parsed, err := parser.Parse(raw, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", "", domain.ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", domain.ErrTokenInvalid
	}

	email, ok = claims["sub"].(string)
	if !ok || email == "" {
		return "", "", domain.ErrTokenInvalid
	}
	jti, ok = claims["jti"].(string)
	if !ok || jti == "" {
		return "", "", domain.ErrTokenInvalid
	}

	issuedAt, err := claims.GetIssuedAt()
	if err != nil || issuedAt == nil {
		return "", "", domain.ErrTokenInvalid
	}
	if !c.now().Before(issuedAt.Add(c.ttl)) {
		return "", "", domain.ErrTokenInvalid
	}

	return email, jti, nil
}

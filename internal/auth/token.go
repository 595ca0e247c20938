package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleAdmin   = "admin"
	RoleDoctor  = "doctor"
	RolePatient = "patient"
)

var (
	ErrBadToken  = errors.New("invalid token")
	ErrWrongRole = errors.New("token role mismatch")
)

// Claims carries the caller identifier (email or admin username) in the
// subject and the role it was issued for.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

func (i *Issuer) Issue(identifier, role string) (string, error) {
	if identifier == "" {
		return "", fmt.Errorf("issue token: empty identifier")
	}
	now := time.Now()
	c := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identifier,
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.secret)
}

// Verify checks signature, expiry and role and returns the identifier.
func (i *Issuer) Verify(raw, role string) (string, error) {
	c, err := i.parse(raw)
	if err != nil {
		return "", err
	}
	if c.Role != role {
		return "", ErrWrongRole
	}
	return c.Subject, nil
}

// ExtractIdentifier checks only the signature. It is meant for tokens that
// already passed Verify earlier in the same request.
func (i *Issuer) ExtractIdentifier(raw string) (string, error) {
	c, err := i.parse(raw, jwt.WithoutClaimsValidation())
	if err != nil {
		return "", err
	}
	return c.Subject, nil
}

func (i *Issuer) parse(raw string, opts ...jwt.ParserOption) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		// block alg confusion
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadToken
		}
		return i.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	c, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid || c.Subject == "" {
		return nil, ErrBadToken
	}
	return c, nil
}

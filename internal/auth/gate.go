package auth

import (
	"errors"

	"github.com/rs/zerolog"
)

// ErrUnauthorized is the only failure the gate reports, whatever the cause.
var ErrUnauthorized = errors.New("invalid or expired token")

type Verifier interface {
	Verify(token, role string) (string, error)
}

// Gate guards identity-scoped operations.
type Gate struct {
	verifier Verifier
	log      zerolog.Logger
}

func NewGate(v Verifier, logger zerolog.Logger) *Gate {
	return &Gate{verifier: v, log: logger.With().Str("component", "auth").Logger()}
}

// Authorize returns the token's identifier when it verifies for one of
// roles. Expired, malformed and wrong-role tokens are not told apart.
func (g *Gate) Authorize(token string, roles ...string) (string, error) {
	if token == "" || len(roles) == 0 {
		return "", ErrUnauthorized
	}

	var lastErr error
	for _, role := range roles {
		id, err := g.verifier.Verify(token, role)
		if err == nil {
			return id, nil
		}
		lastErr = err
	}

	g.log.Debug().Err(lastErr).Strs("roles", roles).Msg("token rejected")
	return "", ErrUnauthorized
}

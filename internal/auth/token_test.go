package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueVerify(t *testing.T) {
	iss := NewIssuer("test-secret", time.Hour)

	tok, err := iss.Issue("pat@example.com", RolePatient)
	require.NoError(t, err)

	id, err := iss.Verify(tok, RolePatient)
	require.NoError(t, err)
	assert.Equal(t, "pat@example.com", id)

	_, err = iss.Verify(tok, RoleDoctor)
	assert.ErrorIs(t, err, ErrWrongRole)
}

func TestIssueEmptyIdentifier(t *testing.T) {
	_, err := NewIssuer("s", time.Hour).Issue("", RoleAdmin)
	assert.Error(t, err)
}

func TestVerifyRejects(t *testing.T) {
	iss := NewIssuer("test-secret", time.Hour)

	expired, err := NewIssuer("test-secret", -time.Minute).Issue("doc@clinic.test", RoleDoctor)
	require.NoError(t, err)
	otherKey, err := NewIssuer("other-secret", time.Hour).Issue("doc@clinic.test", RoleDoctor)
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Role:             RoleDoctor,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "doc@clinic.test"},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"wrong secret", otherKey},
		{"alg none", none},
		{"garbage", "not.a.token"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := iss.Verify(tt.token, RoleDoctor)
			assert.Error(t, err)
		})
	}
}

func TestExtractIdentifierIgnoresExpiry(t *testing.T) {
	iss := NewIssuer("test-secret", -time.Minute)
	tok, err := iss.Issue("pat@example.com", RolePatient)
	require.NoError(t, err)

	id, err := iss.ExtractIdentifier(tok)
	require.NoError(t, err)
	assert.Equal(t, "pat@example.com", id)

	forged, err := NewIssuer("other", time.Hour).Issue("pat@example.com", RolePatient)
	require.NoError(t, err)
	_, err = iss.ExtractIdentifier(forged)
	assert.Error(t, err)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)
	assert.True(t, CheckPassword(hash, "hunter2"))
	assert.False(t, CheckPassword(hash, "hunter3"))
	assert.False(t, CheckPassword("not-a-hash", "hunter2"))
}

package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)

	token, expiresAt, err := tm.GenerateToken("client-1", "cust-1", []string{"tickets:read", "tickets:write"})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.False(t, expiresAt.IsZero())

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "client-1", claims.ClientID)
	assert.Equal(t, "cust-1", claims.CustomerID)
	assert.Equal(t, []string{"tickets:read", "tickets:write"}, claims.Scopes)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("secret-a", 60).GenerateToken("client-1", "", nil)
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", 60).ParseToken(token)
	assert.Error(t, err)
}

func TestPrincipalHasScope(t *testing.T) {
	principal := Principal{ClientID: "client-1", Scopes: []string{"tickets:read"}}
	assert.True(t, principal.HasScope("tickets:read"))
	assert.False(t, principal.HasScope("tickets:write"))
}

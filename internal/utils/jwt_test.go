package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT("sale01", "test-secret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseJWT(token, "test-secret")
	require.NoError(t, err)
	require.Equal(t, "sale01", claims.Username)
	require.NotEmpty(t, claims.ID)
}

func TestJWTTokenIDsAreUnique(t *testing.T) {
	a, err := GenerateJWT("sale01", "test-secret")
	require.NoError(t, err)
	b, err := GenerateJWT("sale01", "test-secret")
	require.NoError(t, err)

	ca, err := ParseJWT(a, "test-secret")
	require.NoError(t, err)
	cb, err := ParseJWT(b, "test-secret")
	require.NoError(t, err)
	require.NotEqual(t, ca.ID, cb.ID)
}

func TestJWTWrongSecretRejected(t *testing.T) {
	token, err := GenerateJWT("sale01", "test-secret")
	require.NoError(t, err)

	_, err = ParseJWT(token, "other-secret")
	require.Error(t, err)
}

func TestJWTGarbageRejected(t *testing.T) {
	_, err := ParseJWT("not-a-token", "test-secret")
	require.Error(t, err)
}

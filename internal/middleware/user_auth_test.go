package middleware

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims Claims) string {
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestParseToken(t *testing.T) {
	valid := sign(t, jwt.SigningMethodHS256, []byte("secret"), Claims{
		UID:              7,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute))},
	})
	claims, err := ParseToken("secret", valid)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UID)

	_, err = ParseToken("other", valid)
	assert.Error(t, err)

	expired := sign(t, jwt.SigningMethodHS256, []byte("secret"), Claims{
		UID:              7,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
	})
	_, err = ParseToken("secret", expired)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	noUID := sign(t, jwt.SigningMethodHS512, []byte("secret"), Claims{})
	_, err = ParseToken("secret", noUID)
	assert.Error(t, err)

	_, err = ParseToken("secret", "not-a-token")
	assert.Error(t, err)
}

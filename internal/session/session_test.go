package session

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret-test-secret-test-secret"))
	require.NoError(t, err)
	return tok
}

func TestFromToken_ReadsJWTClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok := signed(t, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "sub-1", ExpiresAt: jwt.NewNumericDate(exp)},
		UserID:           "u-42",
		Name:             "Kim",
		Role:             "admin",
	})

	s, err := FromToken(tok, "")
	require.NoError(t, err)
	assert.Equal(t, "u-42", s.User.ID)
	assert.Equal(t, "Kim", s.User.Name)
	assert.Equal(t, "admin", s.User.Role)
	assert.True(t, exp.Equal(s.ExpiresAt))
	assert.False(t, s.Expired(time.Now()))
	assert.True(t, s.Expired(exp.Add(time.Second)))
}

func TestFromToken_SubjectFallbackAndExplicitUser(t *testing.T) {
	tok := signed(t, jwt.RegisteredClaims{Subject: "sub-7"})

	s, err := FromToken(tok, "")
	require.NoError(t, err)
	assert.Equal(t, "sub-7", s.User.ID)

	s, err = FromToken(tok, "override")
	require.NoError(t, err)
	assert.Equal(t, "override", s.User.ID)
}

func TestFromToken_OpaqueToken(t *testing.T) {
	s, err := FromToken("opaque-token", "u-1")
	require.NoError(t, err)
	assert.Equal(t, "opaque-token", s.Token)
	assert.Equal(t, "u-1", s.User.ID)

	_, err = FromToken("  ", "u-1")
	assert.True(t, errors.Is(err, ErrNotLoggedIn))
}

func TestAuthorize(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "http://example.test", nil)
	require.NoError(t, err)

	require.ErrorIs(t, Session{}.Authorize(req), ErrNotLoggedIn)

	require.NoError(t, Session{Token: "abc"}.Authorize(req))
	assert.Equal(t, "Bearer abc", req.Header.Get("Authorization"))
}

func TestSaveLoadClear(t *testing.T) {
	t.Setenv("CATALOG_CONFIG_DIR", t.TempDir())

	_, err := Load()
	require.ErrorIs(t, err, ErrNotLoggedIn)

	in := Session{Token: "abc", User: User{ID: "u-1", Name: "Lee"}}
	require.NoError(t, Save(in))

	out, err := Load()
	require.NoError(t, err)
	assert.Equal(t, in.Token, out.Token)
	assert.Equal(t, in.User, out.User)

	require.NoError(t, Clear())
	require.NoError(t, Clear())
	_, err = Load()
	require.ErrorIs(t, err, ErrNotLoggedIn)
}

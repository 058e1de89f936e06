package token

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wms/internal/model"
)

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test"))
	require.NoError(t, err)
	return s
}

func TestDecodeValidToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	raw := sign(t, jwt.MapClaims{
		"id":       3,
		"username": "alice",
		"role":     map[string]any{"ADMIN": "ADMIN", "MANAGER": "MANAGER", "Value": "MANAGER"},
		"orig_iat": 1700000000,
		"exp":      exp,
	})

	ident, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(3), ident.SubjectID)
	assert.Equal(t, "alice", ident.Username)
	assert.Equal(t, model.RoleManager, ident.Role)
	assert.Equal(t, time.Unix(1700000000, 0), ident.IssuedAt)
	assert.Equal(t, time.Unix(exp, 0), ident.ExpiresAt)
	assert.False(t, ident.Expired(time.Now()))
}

func TestDecodeIgnoresSignature(t *testing.T) {
	raw := sign(t, jwt.MapClaims{
		"id": 1, "username": "bob", "role": map[string]any{"Value": "ADMIN"}, "exp": time.Now().Add(time.Minute).Unix(),
	})
	tampered := raw[:len(raw)-4] + "AAAA"

	ident, err := Decode(tampered)
	require.NoError(t, err)
	assert.Equal(t, "bob", ident.Username)
}

func TestDecodeMalformed(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))

	cases := map[string]string{
		"empty":              "",
		"one segment":        "abc",
		"two segments":       "abc.def",
		"non-json payload":   header + "." + base64.RawURLEncoding.EncodeToString([]byte("not json")) + ".sig",
		"bad base64":         header + ".***." + "sig",
		"missing role":       sign(t, jwt.MapClaims{"id": 1, "username": "a", "exp": exp}),
		"missing role.Value": sign(t, jwt.MapClaims{"id": 1, "username": "a", "role": map[string]any{"ADMIN": "ADMIN"}, "exp": exp}),
		"missing exp":        sign(t, jwt.MapClaims{"id": 1, "username": "a", "role": map[string]any{"Value": "ADMIN"}}),
		"missing id":         sign(t, jwt.MapClaims{"username": "a", "role": map[string]any{"Value": "ADMIN"}, "exp": exp}),
		"missing username":   sign(t, jwt.MapClaims{"id": 1, "role": map[string]any{"Value": "ADMIN"}, "exp": exp}),
		"role not object":    sign(t, jwt.MapClaims{"id": 1, "username": "a", "role": "ADMIN", "exp": exp}),
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			var (
				ident Identity
				err   error
			)
			require.NotPanics(t, func() { ident, err = Decode(raw) })
			require.ErrorIs(t, err, ErrDecode)
			assert.Zero(t, ident)
		})
	}
}

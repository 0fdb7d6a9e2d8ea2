package service

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthService_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	assert.NoError(t, err)

	svc := NewAuthService("signing-key", string(hash))
	assert.True(t, svc.Enabled())

	t.Run("valid password yields verifiable token", func(t *testing.T) {
		token, err := svc.Login("secret")
		assert.NoError(t, err)
		assert.NotEmpty(t, token)

		parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
			return []byte("signing-key"), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		assert.NoError(t, err)
		assert.True(t, parsed.Valid)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login("nope")
		assert.ErrorIs(t, err, ErrBadCredentials)
	})
}

func TestAuthService_DisabledWithoutHash(t *testing.T) {
	svc := NewAuthService("signing-key", "")
	assert.False(t, svc.Enabled())

	// без настроенного хеша вход невозможен с любым паролем
	_, err := svc.Login("anything")
	assert.ErrorIs(t, err, ErrBadCredentials)
}

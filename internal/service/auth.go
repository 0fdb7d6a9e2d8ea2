package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

// AuthService выдаёт JWT администратору. Таблицы пользователей нет:
// система однопользовательская, пароль задаётся bcrypt-хешем в конфиге.
type AuthService struct {
	secret       string
	passwordHash string
}

func NewAuthService(secret, passwordHash string) *AuthService {
	return &AuthService{secret: secret, passwordHash: passwordHash}
}

// Enabled сообщает, требуется ли авторизация на мутирующих маршрутах.
func (s *AuthService) Enabled() bool {
	return s.passwordHash != ""
}

// Login сверяет пароль с хешем и возвращает подписанный токен.
func (s *AuthService) Login(password string) (string, error) {
	if s.passwordHash == "" {
		return "", ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		return "", ErrBadCredentials
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	})
	return token.SignedString([]byte(s.secret))
}

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const adminContextKey contextKey = "admin"

// CookieName — cookie с JWT администратора; токен также принимается
// в заголовке Authorization: Bearer.
const CookieName = "toolshed_auth"

// WithAuth валидирует токен из заголовка или cookie и помечает контекст.
// Отсутствие или невалидность токена не прерывают запрос: решение
// принимает RequireAdmin на конкретных маршрутах.
func WithAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := tokenFromRequest(r); token != "" && validToken(token, secret) {
				r = r.WithContext(context.WithValue(r.Context(), adminContextKey, true))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin отвечает 401 на запрос без валидного токена.
// При enabled=false (авторизация не настроена) пропускает всех.
func RequireAdmin(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if enabled && !IsAdmin(r.Context()) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IsAdmin сообщает, прошёл ли запрос проверку токена.
func IsAdmin(ctx context.Context) bool {
	v, _ := ctx.Value(adminContextKey).(bool)
	return v
}

// SetLoginCookie кладёт выданный токен в cookie ответа.
func SetLoginCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

func validToken(token, secret string) bool {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	return err == nil && parsed.Valid
}

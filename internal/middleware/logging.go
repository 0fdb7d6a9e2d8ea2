package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

var log = zap.NewNop().Sugar()

// SetLogger передаёт логгер в пакет middleware; до вызова пишем в no-op.
func SetLogger(l *zap.SugaredLogger) {
	log = l
}

type responseData struct {
	status int
	size   int
}

// loggingResponseWriter перехватывает код ответа и объём записанного тела.
type loggingResponseWriter struct {
	http.ResponseWriter
	data *responseData
}

func (w *loggingResponseWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.data.size += n
	return n, err
}

func (w *loggingResponseWriter) WriteHeader(statusCode int) {
	w.data.status = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

// WithLogging логирует каждый запрос: метод, путь, статус, размер, длительность.
func WithLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		data := &responseData{status: http.StatusOK}
		lw := &loggingResponseWriter{ResponseWriter: w, data: data}

		next.ServeHTTP(lw, r)

		log.Infow("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", data.status,
			"size", data.size,
			"duration", time.Since(start),
		)
	})
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/award28/toolshed/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError переводит ошибки сервисного слоя в HTTP-статусы
func writeServiceError(w http.ResponseWriter, log *zap.SugaredLogger, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, service.ErrLabelRequired):
		writeError(w, http.StatusBadRequest, "Label is required")
	case errors.Is(err, service.ErrNameRequired):
		writeError(w, http.StatusBadRequest, "Name is required")
	case errors.Is(err, service.ErrSelfParent):
		writeError(w, http.StatusConflict, "Location cannot be its own parent")
	case errors.Is(err, service.ErrBadCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
	default:
		log.Errorw("internal error", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// optString декодирует строку либо null
func optString(raw json.RawMessage) (*string, bool) {
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false
	}
	return s, true
}

// optID декодирует числовой идентификатор либо null; клиенты
// на формах присылают id строкой, это тоже принимаем
func optID(raw json.RawMessage) (*int64, bool) {
	var n *int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false
	}
	if s == nil || *s == "" {
		return nil, true
	}
	return optInt64(*s)
}

// optInt64 разбирает id из строки; пустая строка означает null
func optInt64(s string) (*int64, bool) {
	if s == "" || s == "null" {
		return nil, true
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return nil, false
	}
	return &id, true
}

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

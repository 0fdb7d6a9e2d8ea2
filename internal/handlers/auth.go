package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/award28/toolshed/internal/middleware"
	"github.com/award28/toolshed/internal/service"
)

type AuthHandler struct {
	service *service.AuthService
	log     *zap.SugaredLogger
}

func NewAuthHandler(s *service.AuthService, log *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{service: s, log: log}
}

// Login выдаёт токен администратора по паролю
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, err := h.service.Login(req.Password)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	middleware.SetLoginCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

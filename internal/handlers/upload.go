package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/award28/toolshed/internal/assets"
)

type UploadHandler struct {
	store *assets.Store
	log   *zap.SugaredLogger
}

func NewUploadHandler(store *assets.Store, log *zap.SugaredLogger) *UploadHandler {
	return &UploadHandler{store: store, log: log}
}

// Serve отдаёт сохранённое изображение инструмента
func (h *UploadHandler) Serve(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	data, contentType, err := h.store.Open(filename)
	switch {
	case errors.Is(err, assets.ErrInvalidName):
		writeError(w, http.StatusBadRequest, "Invalid file name")
		return
	case errors.Is(err, assets.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
		return
	case err != nil:
		h.log.Errorw("read upload", "file", filename, "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// Имена файлов уникальны, содержимое не меняется
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=31536000")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

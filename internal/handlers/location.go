package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/award28/toolshed/internal/service"
)

type LocationHandler struct {
	service *service.LocationService
	log     *zap.SugaredLogger
}

func NewLocationHandler(s *service.LocationService, log *zap.SugaredLogger) *LocationHandler {
	return &LocationHandler{service: s, log: log}
}

func (h *LocationHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var parentID *int64
	if raw := q.Get("parentId"); raw != "" {
		v, ok := optInt64(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "Invalid parentId")
			return
		}
		parentID = v
	}
	flat := q.Get("flat") == "true"

	locations, err := h.service.List(r.Context(), parentID, flat)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, locations)
}

func (h *LocationHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.ListWithToolCounts(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *LocationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid location ID")
		return
	}

	location, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, location)
}

func (h *LocationHandler) Create(w http.ResponseWriter, r *http.Request) {
	upd, ok := decodeLocationJSON(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var name string
	if upd.Name != nil {
		name = *upd.Name
	}
	location, err := h.service.Create(r.Context(), name, upd.Description, upd.ParentID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, location)
}

func (h *LocationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid location ID")
		return
	}

	upd, ok := decodeLocationJSON(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	location, err := h.service.Update(r.Context(), id, upd)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, location)
}

func (h *LocationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid location ID")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// decodeLocationJSON различает отсутствующее поле, null и значение
func decodeLocationJSON(r *http.Request) (service.LocationUpdate, bool) {
	var upd service.LocationUpdate

	raw := map[string]json.RawMessage{}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&raw); err != nil {
		return upd, false
	}

	if v, ok := raw["name"]; ok {
		s, ok := optString(v)
		if !ok {
			return upd, false
		}
		upd.Name = s
	}
	if v, ok := raw["description"]; ok {
		s, ok := optString(v)
		if !ok {
			return upd, false
		}
		upd.Description = s
		upd.SetDescription = true
	}
	if v, ok := raw["parentId"]; ok {
		n, ok := optID(v)
		if !ok {
			return upd, false
		}
		upd.ParentID = n
		upd.SetParent = true
	}
	return upd, true
}

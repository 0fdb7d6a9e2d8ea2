package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/award28/toolshed/internal/service"
)

const maxUploadSize = 32 << 20

type ToolHandler struct {
	service *service.ToolService
	log     *zap.SugaredLogger
}

func NewToolHandler(s *service.ToolService, log *zap.SugaredLogger) *ToolHandler {
	return &ToolHandler{service: s, log: log}
}

func (h *ToolHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	listQuery := service.ToolListQuery{Query: q.Get("q")}
	if raw := q.Get("locationId"); raw != "" {
		id, ok := optInt64(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "Invalid locationId")
			return
		}
		listQuery.LocationID = id
	}
	if raw := q.Get("borrowed"); raw != "" {
		b := raw == "true"
		listQuery.Borrowed = &b
	}

	tools, err := h.service.List(r.Context(), listQuery)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, tools)
}

func (h *ToolHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid tool ID")
		return
	}

	tool, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, tool)
}

func (h *ToolHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeToolRequest(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tool, err := h.service.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, tool)
}

func (h *ToolHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid tool ID")
		return
	}

	req, ok := decodeToolRequest(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tool, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, tool)
}

func (h *ToolHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid tool ID")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// decodeToolRequest принимает и JSON, и multipart-форму с файлом
func decodeToolRequest(r *http.Request) (service.ToolWriteRequest, bool) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return decodeToolForm(r)
	}
	return decodeToolJSON(r)
}

func decodeToolJSON(r *http.Request) (service.ToolWriteRequest, bool) {
	var req service.ToolWriteRequest

	raw := map[string]json.RawMessage{}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return req, false
	}

	if v, ok := raw["label"]; ok {
		s, ok := optString(v)
		if !ok {
			return req, false
		}
		req.Label = s
	}
	if v, ok := raw["description"]; ok {
		s, ok := optString(v)
		if !ok {
			return req, false
		}
		req.Description = s
		req.SetDescription = true
	}
	if v, ok := raw["notes"]; ok {
		s, ok := optString(v)
		if !ok {
			return req, false
		}
		req.Notes = s
		req.SetNotes = true
	}
	if v, ok := raw["locationId"]; ok {
		n, ok := optID(v)
		if !ok {
			return req, false
		}
		req.LocationID = n
		req.SetLocation = true
	}
	if v, ok := raw["isBorrowed"]; ok {
		var b *bool
		if err := json.Unmarshal(v, &b); err != nil {
			return req, false
		}
		req.IsBorrowed = b
	}
	if v, ok := raw["borrowedBy"]; ok {
		s, ok := optString(v)
		if !ok {
			return req, false
		}
		req.BorrowedBy = s
		req.SetBorrowedBy = true
	}
	if v, ok := raw["removeImage"]; ok {
		var b bool
		if err := json.Unmarshal(v, &b); err != nil {
			return req, false
		}
		req.RemoveImage = b
	}
	return req, true
}

func decodeToolForm(r *http.Request) (service.ToolWriteRequest, bool) {
	var req service.ToolWriteRequest

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return req, false
	}
	form := r.MultipartForm

	formValue := func(key string) (string, bool) {
		vs, ok := form.Value[key]
		if !ok || len(vs) == 0 {
			return "", false
		}
		return vs[0], true
	}

	if v, ok := formValue("label"); ok {
		req.Label = &v
	}
	if v, ok := formValue("description"); ok {
		req.Description = &v
		req.SetDescription = true
	}
	if v, ok := formValue("notes"); ok {
		req.Notes = &v
		req.SetNotes = true
	}
	if v, ok := formValue("locationId"); ok {
		n, ok := optInt64(v)
		if !ok {
			return req, false
		}
		req.LocationID = n
		req.SetLocation = true
	}
	if v, ok := formValue("isBorrowed"); ok {
		b := v == "true"
		req.IsBorrowed = &b
	}
	if v, ok := formValue("borrowedBy"); ok {
		req.BorrowedBy = &v
		req.SetBorrowedBy = true
	}
	if v, ok := formValue("removeImage"); ok && v == "true" {
		req.RemoveImage = true
	}

	file, header, err := r.FormFile("image")
	if err == nil {
		defer file.Close()
		if header.Size > 0 {
			data, err := io.ReadAll(file)
			if err != nil {
				return req, false
			}
			req.Image = &service.ImageUpload{Data: data, Filename: header.Filename}
		}
	}
	return req, true
}

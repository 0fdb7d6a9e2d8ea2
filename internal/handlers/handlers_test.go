package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/award28/toolshed/internal/assets"
	"github.com/award28/toolshed/internal/config"
	"github.com/award28/toolshed/internal/model"
	"github.com/award28/toolshed/internal/repo"
	"github.com/award28/toolshed/internal/service"
)

// newTestServer поднимает полный стек поверх временного SQLite
// и временного каталога загрузок. adminHash пустой — без защиты.
func newTestServer(t *testing.T, adminHash string) *Handler {
	t.Helper()

	db, err := repo.Open(filepath.Join(t.TempDir(), "toolshed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := zap.NewNop().Sugar()

	store := assets.NewStore(t.TempDir(), log)
	locationService := service.NewLocationService(repo.NewLocationRepository(db), log)
	toolService := service.NewToolService(repo.NewToolRepository(db), locationService, store, log)
	authService := service.NewAuthService("test-secret", adminHash)

	cfg := &config.Config{AuthSecret: "test-secret", AdminPasswordHash: adminHash}

	return NewHandler(toolService, locationService, authService, store, log, cfg)
}

func doJSON(t *testing.T, h *Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.Router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func createLocation(t *testing.T, h *Handler, name string, parentID *int64) model.Location {
	t.Helper()
	body := map[string]any{"name": name}
	if parentID != nil {
		body["parentId"] = *parentID
	}
	rec := doJSON(t, h, http.MethodPost, "/api/locations", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[model.Location](t, rec)
}

func createTool(t *testing.T, h *Handler, body map[string]any) model.Tool {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/tools", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[model.Tool](t, rec)
}

func TestToolCRUD(t *testing.T) {
	h := newTestServer(t, "")

	tool := createTool(t, h, map[string]any{
		"label":       "Hammer",
		"description": "Claw hammer",
	})
	assert.Equal(t, "Hammer", tool.Label)
	require.NotNil(t, tool.Description)
	assert.Equal(t, "Claw hammer", *tool.Description)

	rec := doJSON(t, h, http.MethodGet, fmt.Sprintf("/api/tools/%d", tool.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// частичное обновление: поменять заметки, не трогая описание
	rec = doJSON(t, h, http.MethodPut, fmt.Sprintf("/api/tools/%d", tool.ID), map[string]any{
		"notes": "handle is loose",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeBody[model.Tool](t, rec)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, "handle is loose", *updated.Notes)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "Claw hammer", *updated.Description)

	// явный null затирает поле
	rec = doJSON(t, h, http.MethodPut, fmt.Sprintf("/api/tools/%d", tool.ID), map[string]any{
		"description": nil,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	updated = decodeBody[model.Tool](t, rec)
	assert.Nil(t, updated.Description)

	rec = doJSON(t, h, http.MethodDelete, fmt.Sprintf("/api/tools/%d", tool.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[map[string]bool](t, rec)["success"])

	rec = doJSON(t, h, http.MethodGet, fmt.Sprintf("/api/tools/%d", tool.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestToolValidation(t *testing.T) {
	h := newTestServer(t, "")

	rec := doJSON(t, h, http.MethodPost, "/api/tools", map[string]any{"label": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Label is required", decodeBody[map[string]string](t, rec)["error"])

	rec = doJSON(t, h, http.MethodGet, "/api/tools/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid tool ID", decodeBody[map[string]string](t, rec)["error"])

	rec = doJSON(t, h, http.MethodGet, "/api/tools/9999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestToolListScopedByLocation(t *testing.T) {
	h := newTestServer(t, "")

	garage := createLocation(t, h, "Garage", nil)
	shelf := createLocation(t, h, "Shelf A", &garage.ID)
	basement := createLocation(t, h, "Basement", nil)

	createTool(t, h, map[string]any{"label": "Hammer", "locationId": shelf.ID})
	createTool(t, h, map[string]any{"label": "Saw", "locationId": basement.ID})

	// фильтр по локации включает и её потомков
	rec := doJSON(t, h, http.MethodGet, fmt.Sprintf("/api/tools?locationId=%d", garage.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tools := decodeBody[[]model.Tool](t, rec)
	require.Len(t, tools, 1)
	assert.Equal(t, "Hammer", tools[0].Label)

	rec = doJSON(t, h, http.MethodGet, "/api/tools", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]model.Tool](t, rec), 2)
}

func TestToolSearchLifecycle(t *testing.T) {
	h := newTestServer(t, "")

	drill := createTool(t, h, map[string]any{
		"label":       "Drill",
		"description": "cordless, 18V",
	})
	createTool(t, h, map[string]any{"label": "Hammer"})

	rec := doJSON(t, h, http.MethodGet, "/api/tools?q=cordless", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tools := decodeBody[[]model.Tool](t, rec)
	require.Len(t, tools, 1)
	assert.Equal(t, "Drill", tools[0].Label)

	// после обновления описания индекс видит новую редакцию
	rec = doJSON(t, h, http.MethodPut, fmt.Sprintf("/api/tools/%d", drill.ID), map[string]any{
		"description": "corded, 500W",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/tools?q=cordless", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[[]model.Tool](t, rec))

	rec = doJSON(t, h, http.MethodGet, "/api/tools?q=corded", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]model.Tool](t, rec), 1)
}

func TestToolBorrowFlow(t *testing.T) {
	h := newTestServer(t, "")

	tool := createTool(t, h, map[string]any{"label": "Ladder"})

	rec := doJSON(t, h, http.MethodPut, fmt.Sprintf("/api/tools/%d", tool.ID), map[string]any{
		"isBorrowed": true,
		"borrowedBy": "Alex",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	borrowed := decodeBody[model.Tool](t, rec)
	assert.True(t, borrowed.IsBorrowed)
	require.NotNil(t, borrowed.BorrowedBy)
	assert.Equal(t, "Alex", *borrowed.BorrowedBy)
	assert.NotNil(t, borrowed.BorrowedAt)

	rec = doJSON(t, h, http.MethodGet, "/api/tools?borrowed=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]model.Tool](t, rec), 1)

	rec = doJSON(t, h, http.MethodPut, fmt.Sprintf("/api/tools/%d", tool.ID), map[string]any{
		"isBorrowed": false,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	returned := decodeBody[model.Tool](t, rec)
	assert.False(t, returned.IsBorrowed)
	assert.Nil(t, returned.BorrowedBy)
	assert.Nil(t, returned.BorrowedAt)
}

func TestLocationCRUD(t *testing.T) {
	h := newTestServer(t, "")

	garage := createLocation(t, h, "Garage", nil)
	shelf := createLocation(t, h, "Shelf A", &garage.ID)
	require.NotNil(t, shelf.ParentID)
	assert.Equal(t, garage.ID, *shelf.ParentID)

	// без параметров — только корневые
	rec := doJSON(t, h, http.MethodGet, "/api/locations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	roots := decodeBody[[]model.Location](t, rec)
	require.Len(t, roots, 1)
	assert.Equal(t, "Garage", roots[0].Name)

	rec = doJSON(t, h, http.MethodGet, fmt.Sprintf("/api/locations?parentId=%d", garage.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]model.Location](t, rec), 1)

	rec = doJSON(t, h, http.MethodGet, "/api/locations?flat=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]model.Location](t, rec), 2)

	rec = doJSON(t, h, http.MethodPut, fmt.Sprintf("/api/locations/%d", shelf.ID), map[string]any{
		"name": "Shelf B",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Shelf B", decodeBody[model.Location](t, rec).Name)

	rec = doJSON(t, h, http.MethodDelete, fmt.Sprintf("/api/locations/%d", shelf.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, fmt.Sprintf("/api/locations/%d", shelf.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLocationSelfParentConflict(t *testing.T) {
	h := newTestServer(t, "")

	garage := createLocation(t, h, "Garage", nil)

	rec := doJSON(t, h, http.MethodPut, fmt.Sprintf("/api/locations/%d", garage.ID), map[string]any{
		"parentId": garage.ID,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Location cannot be its own parent", decodeBody[map[string]string](t, rec)["error"])
}

func TestLocationDeleteDetachesChildrenAndTools(t *testing.T) {
	h := newTestServer(t, "")

	garage := createLocation(t, h, "Garage", nil)
	shelf := createLocation(t, h, "Shelf A", &garage.ID)
	tool := createTool(t, h, map[string]any{"label": "Hammer", "locationId": garage.ID})

	rec := doJSON(t, h, http.MethodDelete, fmt.Sprintf("/api/locations/%d", garage.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, fmt.Sprintf("/api/locations/%d", shelf.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decodeBody[model.Location](t, rec).ParentID)

	rec = doJSON(t, h, http.MethodGet, fmt.Sprintf("/api/tools/%d", tool.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decodeBody[model.Tool](t, rec).LocationID)
}

func TestLocationStats(t *testing.T) {
	h := newTestServer(t, "")

	garage := createLocation(t, h, "Garage", nil)
	createLocation(t, h, "Basement", nil)
	createTool(t, h, map[string]any{"label": "Hammer", "locationId": garage.ID})
	createTool(t, h, map[string]any{"label": "Saw", "locationId": garage.ID})

	rec := doJSON(t, h, http.MethodGet, "/api/locations/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decodeBody[[]service.LocationWithCount](t, rec)
	require.Len(t, stats, 2)

	byName := map[string]int64{}
	for _, s := range stats {
		byName[s.Name] = s.ToolCount
	}
	assert.Equal(t, int64(2), byName["Garage"])
	assert.Equal(t, int64(0), byName["Basement"])
}

func TestAuthRequiredForMutations(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	h := newTestServer(t, string(hash))

	// чтение открыто
	rec := doJSON(t, h, http.MethodGet, "/api/tools", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// мутация без токена
	rec = doJSON(t, h, http.MethodPost, "/api/tools", map[string]any{"label": "Hammer"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// неверный пароль
	rec = doJSON(t, h, http.MethodPost, "/api/login", map[string]any{"password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/login", map[string]any{"password": "s3cret"})
	require.Equal(t, http.StatusOK, rec.Code)
	token := decodeBody[map[string]string](t, rec)["token"]
	require.NotEmpty(t, token)

	body, _ := json.Marshal(map[string]any{"label": "Hammer"})
	req := httptest.NewRequest(http.MethodPost, "/api/tools", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h.Router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func multipartBody(t *testing.T, fields map[string]string, fileField, fileName string, fileData []byte) (*bytes.Buffer, string) {
	t.Helper()

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = fw.Write(fileData)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func TestToolImageLifecycle(t *testing.T) {
	h := newTestServer(t, "")

	body, contentType := multipartBody(t,
		map[string]string{"label": "Wrench"},
		"image", "wrench.png", []byte("png-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/tools", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.Router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	tool := decodeBody[model.Tool](t, rec)
	require.NotNil(t, tool.ImagePath)

	rec = doJSON(t, h, http.MethodGet, *tool.ImagePath, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "png-bytes", rec.Body.String())

	// замена: новый файл доступен, старый удалён
	oldPath := *tool.ImagePath
	body, contentType = multipartBody(t, nil, "image", "wrench2.jpg", []byte("jpg-bytes"))
	req = httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/tools/%d", tool.ID), body)
	req.Header.Set("Content-Type", contentType)
	rec = httptest.NewRecorder()
	h.Router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	updated := decodeBody[model.Tool](t, rec)
	require.NotNil(t, updated.ImagePath)
	assert.NotEqual(t, oldPath, *updated.ImagePath)

	rec = doJSON(t, h, http.MethodGet, *updated.ImagePath, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, h, http.MethodGet, oldPath, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// removeImage очищает и строку, и файл
	currentPath := *updated.ImagePath
	rec = doJSON(t, h, http.MethodPut, fmt.Sprintf("/api/tools/%d", tool.ID), map[string]any{
		"removeImage": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decodeBody[model.Tool](t, rec).ImagePath)

	rec = doJSON(t, h, http.MethodGet, currentPath, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadTraversalRejected(t *testing.T) {
	h := newTestServer(t, "")

	rec := doJSON(t, h, http.MethodGet, "/uploads/..%2Fsecret.txt", nil)
	assert.Contains(t, []int{http.StatusBadRequest, http.StatusNotFound}, rec.Code)
}

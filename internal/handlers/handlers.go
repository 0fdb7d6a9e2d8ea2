package handlers

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/award28/toolshed/internal/assets"
	"github.com/award28/toolshed/internal/config"
	"github.com/award28/toolshed/internal/middleware"
	"github.com/award28/toolshed/internal/service"
)

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров
func NewHandler(
	toolService *service.ToolService,
	locationService *service.LocationService,
	authService *service.AuthService,
	store *assets.Store,
	logger *zap.SugaredLogger,
	cfg *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithAuth(cfg.AuthSecret))

	// Handlers
	toolHandler := NewToolHandler(toolService, logger)
	locationHandler := NewLocationHandler(locationService, logger)
	uploadHandler := NewUploadHandler(store, logger)
	authHandler := NewAuthHandler(authService, logger)

	// Открытые маршруты
	r.Post("/api/login", authHandler.Login)

	r.Get("/api/tools", toolHandler.List)
	r.Get("/api/tools/{id}", toolHandler.Get)

	r.Get("/api/locations", locationHandler.List)
	r.Get("/api/locations/stats", locationHandler.Stats)
	r.Get("/api/locations/{id}", locationHandler.Get)

	r.Get("/uploads/{filename}", uploadHandler.Serve)

	// Мутирующие маршруты; при пустом ADMIN_PASSWORD_HASH защита выключена
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin(authService.Enabled()))

		r.Post("/api/tools", toolHandler.Create)
		r.Put("/api/tools/{id}", toolHandler.Update)
		r.Delete("/api/tools/{id}", toolHandler.Delete)

		r.Post("/api/locations", locationHandler.Create)
		r.Put("/api/locations/{id}", locationHandler.Update)
		r.Delete("/api/locations/{id}", locationHandler.Delete)
	})

	return &Handler{Router: r}
}

package main

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/award28/toolshed/internal/assets"
	"github.com/award28/toolshed/internal/config"
	"github.com/award28/toolshed/internal/handlers"
	"github.com/award28/toolshed/internal/middleware"
	"github.com/award28/toolshed/internal/repo"
	"github.com/award28/toolshed/internal/service"
)

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	db, err := repo.Open(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			sugar.Errorw("Failed to close database", "error", err)
		}
	}()

	locationRepo := repo.NewLocationRepository(db)
	toolRepo := repo.NewToolRepository(db)

	store := assets.NewStore(cfg.UploadDir, sugar)

	locationService := service.NewLocationService(locationRepo, sugar)
	toolService := service.NewToolService(toolRepo, locationService, store, sugar)
	authService := service.NewAuthService(cfg.AuthSecret, cfg.AdminPasswordHash)

	h := handlers.NewHandler(toolService, locationService, authService, store, sugar, cfg)

	sugar.Infow(
		"Starting server",
		"addr", cfg.Addr,
	)

	sugar.Infow("Config",
		"Addr", cfg.Addr,
		"DatabaseDSN", cfg.DatabaseDSN,
		"UploadDir", cfg.UploadDir,
		"AuthEnabled", authService.Enabled(),
	)

	if err := http.ListenAndServe(cfg.Addr, h.Router); err != nil {
		sugar.Fatalw("Server failed", "error", err)
	}
}

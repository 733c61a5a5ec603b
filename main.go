package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/agenda-api/config"
	"github.com/kendall-kelly/agenda-api/controllers"
	"github.com/kendall-kelly/agenda-api/middleware"
	"github.com/kendall-kelly/agenda-api/models"
	"github.com/kendall-kelly/agenda-api/services"
	"github.com/kendall-kelly/agenda-api/utils/logging"
)

// agendaPaths are the routes serving the agenda resource. The first one keeps
// existing frontends working unchanged.
var agendaPaths = []string{"/.netlify/functions/agenda", "/api/v1/agenda"}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	config.SetConfig(cfg)

	logger := logging.New(cfg.LogLevel, os.Stdout)
	logging.SetDefault(logger)
	slog.SetDefault(logger)
	logger.Info("Starting Agenda API server...")

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	backends, err := buildBackends(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	store := services.NewDocumentStore(backends...)
	if len(store.Backends()) == 0 {
		logger.Warn("No storage backend configured, writes will fail")
	} else {
		logger.Info("Storage backends ready", "order", store.Backends())
	}

	agenda := services.NewAgendaService(store, buildNotifier(cfg))
	router := setupRouter(cfg, logger, agenda)

	addr := ":" + cfg.Port
	logger.Info("Server is running", "addr", addr)
	if err := router.Run(addr); err != nil {
		logger.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}

// buildBackends returns the configured backends in fallback order: the blob
// stores first, the gist document last
func buildBackends(ctx context.Context, cfg *config.Config) ([]services.BlobStore, error) {
	var backends []services.BlobStore

	if cfg.AWSS3Bucket != "" {
		s3Store, err := services.InitS3BlobStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		backends = append(backends, s3Store)
	}

	if cfg.GCSBucket != "" {
		gcsStore, err := services.InitGCSBlobStore(ctx, cfg.GCSBucket)
		if err != nil {
			return nil, err
		}
		backends = append(backends, gcsStore)
	}

	if cfg.DatabaseURL != "" {
		if err := config.ConnectDatabase(cfg.DatabaseURL); err != nil {
			return nil, err
		}
		dbStore, err := services.NewDatabaseBlobStore(config.GetDB(), services.StoreName)
		if err != nil {
			return nil, err
		}
		backends = append(backends, dbStore)
	}

	if cfg.HasGist() {
		backends = append(backends, services.NewGistService(cfg.GistAPIURL, cfg.GistID, cfg.GistToken))
	}

	return backends, nil
}

func buildNotifier(cfg *config.Config) services.Notifier {
	if !cfg.TelegramActive() {
		return services.NopNotifier{}
	}
	return services.NewTelegramNotifier(
		services.NewTelegramService(cfg.TelegramAPIURL, cfg.TelegramBotToken),
		services.NewChatDirectory(cfg.TelegramUsersCSVURL, services.DefaultChatDirectoryTTL, nil),
		cfg.TelegramAdminChatID,
	)
}

// setupRouter wires middleware and routes
func setupRouter(cfg *config.Config, logger *slog.Logger, agenda *services.AgendaService) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestLogger(logger),
		middleware.Recovery(),
		middleware.NoCache(),
		middleware.CORS(),
	)
	if cfg.RateLimitRPS > 0 {
		router.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)))
	}

	agendaController := controllers.NewAgendaController(agenda)
	identify := middleware.Identify(cfg.ServiceToken)
	for _, path := range agendaPaths {
		router.Any(path, identify, agendaController.Handle)
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/storage/status", storageStatus(agenda))
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"message": "Agenda API is running",
	})
}

// storageStatus reports the backend chain and which backend currently answers reads
func storageStatus(agenda *services.AgendaService) gin.HandlerFunc {
	return func(c *gin.Context) {
		backends := agenda.Backends()
		if len(backends) == 0 {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"ok":    false,
				"error": "No storage available",
			})
			return
		}

		result := agenda.List(c.Request.Context(), models.Identity{}, true)
		c.JSON(http.StatusOK, gin.H{
			"ok":       true,
			"backends": backends,
			"read":     result.ReadMode,
			"total":    result.Total,
		})
	}
}

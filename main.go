package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sebas91ts/inmueble-panel-api/config"
	"github.com/Sebas91ts/inmueble-panel-api/handler"
	"github.com/Sebas91ts/inmueble-panel-api/middleware"
	"github.com/Sebas91ts/inmueble-panel-api/pkg/logger"
	"github.com/Sebas91ts/inmueble-panel-api/service"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded successfully")

	// Initialize services
	archivoSvc, err := service.NewArchivoService(&cfg.Archivo)
	if err != nil {
		slog.Error("failed to initialize archive service", "error", err)
		os.Exit(1)
	}

	// Ensure bucket exists
	if err := archivoSvc.EnsureBucket(context.Background()); err != nil {
		slog.Error("failed to ensure archive bucket", "error", err)
		os.Exit(1)
	}

	coreSvc := service.NewCoreAPIClient(&cfg.CoreAPI)
	resumenSvc := service.NewResumenService(coreSvc)
	analizador := service.NewAnalizador(&cfg.Reportes)

	cache, err := service.NewSnapshotCache(&cfg.Cache)
	if err != nil {
		slog.Error("failed to initialize snapshot cache", "error", err)
		os.Exit(1)
	}
	if cache != nil {
		slog.Info("snapshot cache enabled", "ttl_seconds", cfg.Cache.TTLSeconds)
		defer cache.Close()
	}

	// Initialize snapshot store with config
	service.InitSnapshotStore(&cfg.Refresco)

	refresher := service.NewRefresher(
		resumenSvc,
		service.GetSnapshotStore(),
		cache,
		time.Duration(cfg.Refresco.IntervalSeconds)*time.Second,
	)
	defer refresher.Close()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(cfg)
	contratoHandler := handler.NewContratoHandler(refresher)
	reporteHandler := handler.NewReporteHandler(coreSvc, analizador, archivoSvc)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New() // Use New() instead of Default() to avoid default middleware

	// Add custom middleware
	router.Use(middleware.RequestID())     // Request ID for tracing
	router.Use(middleware.Recovery())      // Panic recovery
	router.Use(middleware.RequestLogger()) // Access logging
	router.Use(corsMiddleware())           // CORS

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Public routes. Login is limited by client IP since there is no
	// agencia yet; keep this budget tight, it only guards brute force.
	api := router.Group("/api")
	{
		api.POST("/auth/login", middleware.RateLimit(20, time.Minute), authHandler.Login)
	}

	// Protected routes, limited per agencia after authentication.
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(&cfg.Auth))
	protected.Use(middleware.RateLimit(100, time.Minute))
	{
		protected.GET("/auth/me", authHandler.GetCurrentUser)
		protected.GET("/clientes/:id/contratos", contratoHandler.ListResumenes)
		protected.DELETE("/clientes/:id/seguimiento", contratoHandler.OlvidarCliente)
		protected.POST("/reportes/consulta", reporteHandler.ConsultaLibre)
		protected.GET("/reportes", reporteHandler.ReporteFijo)
		protected.POST("/reportes/exportar", reporteHandler.Exportar)
		protected.GET("/reportes/exports", reporteHandler.ListExports)
		protected.DELETE("/reportes/exports", reporteHandler.DeleteExport)
	}

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}

// corsMiddleware handles CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"tenderdesk/tender-portal-backend/internal/auth"
	"tenderdesk/tender-portal-backend/internal/bids"
	"tenderdesk/tender-portal-backend/internal/config"
	"tenderdesk/tender-portal-backend/internal/notifications"
	"tenderdesk/tender-portal-backend/internal/notifications/websocket"
	"tenderdesk/tender-portal-backend/internal/projects"
	"tenderdesk/tender-portal-backend/internal/scoring"
	"tenderdesk/tender-portal-backend/internal/verification"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging.Level)
	defer logger.Sync()

	// Connect to MongoDB
	connectCtx, cancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.Database.URI))
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		logger.Fatal("MongoDB ping failed", zap.Error(err))
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()
	db := client.Database(cfg.Database.DBName)
	logger.Info("Connected to MongoDB", zap.String("database", cfg.Database.DBName))

	// Auth
	authRepo := auth.NewRepository(db)
	authService := auth.NewService(authRepo, cfg.Security.JWTSecret, cfg.Security.TokenTTL, logger)
	authHandler := auth.NewHandler(authService, logger)

	// Notifications
	hub := websocket.NewHub(logger)
	defer hub.Close()
	notifRepo := notifications.NewMongoRepository(db)
	notifService := notifications.NewService(notifRepo, hub, logger)
	notifHandler := notifications.NewHandler(notifService, hub, logger)

	// Verification. Without a gateway URL the registry answers locally.
	registry := verification.NewSimulatedRegistry()
	if cfg.Registry.BaseURL != "" {
		registry = verification.NewHTTPRegistry(cfg.Registry.BaseURL, cfg.Registry.Timeout)
	}
	verifRepo := verification.NewRepository(db)
	verifService := verification.NewService(verifRepo, verification.NewEvaluator(registry, cfg.Registry.Timeout), logger)
	verifHandler := verification.NewHandler(verifService, logger)

	// Projects and bids
	bidRepo := bids.NewMongoRepository(client, db)
	projectRepo := projects.NewMongoRepository(db)
	projectService := projects.NewService(projectRepo, bidRepo, notifService, logger)
	projectHandler := projects.NewHandler(projectService, logger)

	bidService := bids.NewService(bidRepo, projectRepo, scoring.NewEngine(), notifService, logger)
	bidHandler := bids.NewHandler(bidService, logger)

	// Setup Router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// CORS Middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Register Routes
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler, authService)
		verification.RegisterRoutes(api, verifHandler, authService)
		projects.RegisterRoutes(api, projectHandler, authService)
		bids.RegisterRoutes(api, bidHandler, authService)
		notifications.RegisterRoutes(api, notifHandler, authService)
	}

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	// Start Server
	srv := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("addr", srv.Addr))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}

func newLogger(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}

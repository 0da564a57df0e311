package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"debatearena/config"
	"debatearena/controllers"
	"debatearena/internal/debate"
	"debatearena/locale"
	"debatearena/logger"
	"debatearena/middlewares"
	"debatearena/routes"
	"debatearena/services"
	"debatearena/views"
	"debatearena/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultConfigPath = "./config/config.yml"

func main() {
	configPath := os.Getenv("ARENA_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	// Load the configuration from the specified YAML file
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.File); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()
	lg := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gemini, err := services.NewGeminiClient(ctx, services.GeminiOptions{
		APIKey:  cfg.Gemini.ApiKey,
		Model:   cfg.Gemini.Model,
		BaseURL: cfg.Gemini.BaseURL,
	}, lg.Named("gemini"))
	if err != nil {
		lg.Fatal("Failed to create Gemini client", zap.Error(err))
	}

	registry := debate.NewRegistry(gemini, locale.Parse(cfg.Locale.Default, locale.Turkish), lg.Named("debate"))
	go registry.RunJanitor(ctx, time.Minute, cfg.Server.SessionTTL)

	router, err := setupRouter(cfg, registry, lg)
	if err != nil {
		lg.Fatal("Failed to set up router", zap.Error(err))
	}

	port := strconv.Itoa(cfg.Server.Port)
	srv := &http.Server{Addr: ":" + port, Handler: router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			lg.Warn("Server shutdown", zap.Error(err))
		}
	}()

	lg.Info("Server starting", zap.String("port", port), zap.String("model", gemini.Model()))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		lg.Fatal("Failed to start server", zap.Error(err))
	}
	lg.Info("Server stopped")
}

func setupRouter(cfg *config.Config, registry *debate.Registry, lg *zap.Logger) (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(lg.Named("http")))

	// Set trusted proxies (adjust as needed)
	if err := router.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		return nil, err
	}

	tmpl, err := views.Templates()
	if err != nil {
		return nil, err
	}
	router.SetHTMLTemplate(tmpl)

	if len(cfg.Server.AllowOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.Server.AllowOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept-Language"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
		}))
	}

	routes.SetupDebateRoutes(router,
		controllers.NewDebateController(cfg.Gemini.Timeout, lg.Named("controller")),
		websocket.NewHub(cfg.Server.AllowOrigins, lg.Named("ws")),
		middlewares.SessionMiddleware(registry, cfg.Server.SessionTTL))

	return router, nil
}

func requestLogger(lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		lg.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}

package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/Makiato1999/CareMate-Backend/internal/client"
	"github.com/Makiato1999/CareMate-Backend/internal/config"
	"github.com/Makiato1999/CareMate-Backend/internal/db"
	"github.com/Makiato1999/CareMate-Backend/internal/handler"
	"github.com/Makiato1999/CareMate-Backend/internal/service"
	"github.com/Makiato1999/CareMate-Backend/internal/token"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// @title CareMate Backend API
// @version 1.0
// @description WeChat mini-program login and session API for the CareMate accompaniment platform.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()
	ctx := context.Background()

	pool, err := db.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	users := db.NewUserStore(pool)
	if err := users.EnsureSchema(ctx); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	tokens, err := token.NewManager(cfg.JWT)
	if err != nil {
		logger.Error("failed to init token manager", "error", err)
		os.Exit(1)
	}

	wechat := client.NewWechatClient(cfg.Wechat)
	authService := service.NewAuthService(users, wechat, tokens, logger)
	authHandler := handler.NewAuthHandler(authService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(handler.RequestIDMiddleware())
	router.Use(handler.RequestLogger(logger))
	if cfg.CORS.AllowedOrigins != "" {
		router.Use(handler.CORSMiddleware(strings.Split(cfg.CORS.AllowedOrigins, ",")))
	}

	router.GET("/", handler.Root)
	router.GET("/ping", handler.Ping)
	router.GET("/openapi.json", handler.OpenAPIDoc)
	router.POST("/auth/login", authHandler.Login)

	authorized := router.Group("/")
	authorized.Use(handler.AuthMiddleware(tokens, cfg.JWT))
	authorized.GET("/user/me", authHandler.Me)

	logger.Info("starting server", "port", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

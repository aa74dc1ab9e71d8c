package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"example.com/snapgram/internal/config"
	"example.com/snapgram/internal/domain"
	"example.com/snapgram/internal/handler"
	"example.com/snapgram/internal/reconciler"
	"example.com/snapgram/internal/repository"
	"example.com/snapgram/internal/service"
	"example.com/snapgram/internal/store"
	"example.com/snapgram/pkg/database"
	"example.com/snapgram/pkg/jwt"
	pkglog "example.com/snapgram/pkg/log"
	"example.com/snapgram/pkg/middleware"
)

const shutdownTimeout = 5 * time.Second

func main() {
	// .env is optional, real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		ServiceName: "snapgram",
	})
	logger := pkglog.L()

	db, err := database.New(&database.Config{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		FilePath:        cfg.Database.FilePath,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := database.AutoMigrate(db,
		&domain.UserModel{},
		&domain.PostModel{},
		&domain.CommentModel{},
		&domain.FollowModel{},
	); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	var followStore store.FollowStore
	if cfg.Redis.Enabled {
		redisStore, err := store.NewRedisFollowStore(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		followStore = redisStore
		logger.Info().Str("address", cfg.Redis.Address).Msg("connected to redis")
	} else {
		followStore = store.NewMockFollowStore()
		logger.Warn().Msg("redis disabled, using in-memory follow store")
	}
	defer followStore.Close()

	tokens, err := jwt.NewManager(cfg.JWT.AccessDuration, cfg.JWT.RefreshDuration, cfg.JWT.Issuer)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialise token manager")
	}

	userRepo := repository.NewGormUserRepository(db)
	postRepo := repository.NewGormPostRepository(db)
	commentRepo := repository.NewGormCommentRepository(db)
	followRepo := repository.NewGormFollowRepository(db)

	graphService := service.NewSocialGraphService(userRepo, followRepo, followStore)
	userService := service.NewUserService(userRepo, followRepo, tokens)
	postService := service.NewPostService(postRepo, commentRepo)
	feedService := service.NewFeedService(userRepo, postRepo, commentRepo, graphService)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := reconciler.New(followStore, followRepo, cfg.Reconciler)
	rec.Start(ctx)

	authMiddleware := middleware.NewAuthMiddleware(tokens)
	h := handler.NewHandler(userService, graphService, postService, feedService, authMiddleware)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(pkglog.GinMiddleware(logger))
	router.Use(middleware.RequestTimeout(cfg.Server.RequestTimeout))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	cancel()
	rec.Stop()

	select {
	case <-rec.Done():
	case <-time.After(shutdownTimeout):
		logger.Warn().Msg("reconciler did not stop in time")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info().Msg("server stopped")
}

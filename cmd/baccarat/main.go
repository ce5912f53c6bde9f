package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frankieli/baccarat_table/internal/config"
	"github.com/frankieli/baccarat_table/internal/middleware"
	baccaratHttp "github.com/frankieli/baccarat_table/internal/modules/baccarat/adapter/http"
	baccaratRedis "github.com/frankieli/baccarat_table/internal/modules/baccarat/adapter/redis"
	"github.com/frankieli/baccarat_table/internal/modules/baccarat/domain"
	baccaratRepo "github.com/frankieli/baccarat_table/internal/modules/baccarat/repository/db"
	"github.com/frankieli/baccarat_table/internal/modules/baccarat/usecase"
	"github.com/frankieli/baccarat_table/internal/modules/points"
	"github.com/frankieli/baccarat_table/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger.InitWithFile("logs/baccarat/server.log", cfg.Server.LogLevel, "json")

	logger.InfoGlobal().Msg("🎴 Starting Baccarat Table Engine...")

	// Infrastructure
	dbConnStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name)

	db, err := gorm.Open(postgres.Open(dbConnStr), &gorm.Config{
		Logger: logger.NewGormLogger(),
	})
	if err != nil {
		logger.FatalGlobal().Err(err).Msg("Failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.FatalGlobal().Err(err).Msg("Failed to get database instance")
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		logger.FatalGlobal().Err(err).Msg("Failed to ping database")
	}
	logger.InfoGlobal().Msg("✅ Database connected")

	if err := db.AutoMigrate(
		&domain.Table{},
		&domain.Round{},
		&domain.Wager{},
		&points.UserPoints{},
		&points.Entry{},
	); err != nil {
		logger.FatalGlobal().Err(err).Msg("Failed to migrate schema")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
	})
	defer rdb.Close()
	logger.InfoGlobal().Msg("✅ Redis connected")

	// Modules
	tableRepo := baccaratRepo.NewTableRepository(db)
	roundRepo := baccaratRepo.NewRoundRepository(db)
	wagerRepo := baccaratRepo.NewWagerRepository(db)
	ledger := points.NewStore()
	publisher := baccaratRedis.NewPublisher(rdb)

	syncUC := usecase.NewSyncUseCase(db, tableRepo, roundRepo, wagerRepo, ledger, publisher, cfg.Game)
	betUC := usecase.NewBetUseCase(db, syncUC, tableRepo, wagerRepo, ledger)
	handler := baccaratHttp.NewHandler(syncUC, betUC)
	logger.InfoGlobal().Msg("✅ Baccarat module initialized")

	// HTTP server
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.GinMiddleware())
	router.Use(middleware.Identity(cfg.JWT.Secret))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	handler.RegisterRoutes(api.Group("/baccarat"))

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	logger.InfoGlobal().
		Str("port", cfg.Server.Port).
		Dur("betting_window", cfg.Game.BettingWindow).
		Msg("🚀 Baccarat Table Engine running")

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.FatalGlobal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.InfoGlobal().Msg("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.ErrorGlobal().Err(err).Msg("Server forced to shutdown")
	}

	logger.InfoGlobal().Msg("👋 Server exited")
}

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

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"ai-image-studio/internal/core/auth"
	"ai-image-studio/internal/core/cache"
	"ai-image-studio/internal/core/config"
	"ai-image-studio/internal/core/database"
	"ai-image-studio/internal/core/logger"
	"ai-image-studio/internal/core/server"
	"ai-image-studio/internal/repo"
	"ai-image-studio/internal/service"
	"ai-image-studio/internal/transport/http/handler"
	"ai-image-studio/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	log, cleanup := newLogger(cfg)
	defer cleanup()
	undo := logger.RedirectStdLog(log, zapcore.InfoLevel)
	defer undo()
	if cfg.App.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = logger.ToWriter(log, zapcore.DebugLevel)
	gin.DefaultErrorWriter = logger.ToWriter(log, zapcore.ErrorLevel)

	if cfg.InsecureSecret() {
		log.Warn("jwt secret is the development default; set JWT_SECRET before deploying")
	}

	// 数据库（失败会直接 Fatal）
	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	// 依赖
	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}
	authSvc, err := service.NewAuthService(repo.NewUserRepo(db), jwter, auth.Hasher{Cost: cfg.Auth.BcryptCost}, log)
	if err != nil {
		log.Fatal("auth service", zap.Error(err))
	}
	genSvc, err := service.NewGenerationService(repo.NewGenerationRepo(db), service.GenerationOptions{
		OverloadRate: cfg.Generation.OverloadRate,
		DefaultLimit: cfg.Generation.DefaultLimit,
		MaxLimit:     cfg.Generation.MaxLimit,
	}, log)
	if err != nil {
		log.Fatal("generation service", zap.Error(err))
	}

	deps := router.Deps{
		Log:          log,
		JWT:          jwter,
		Auth:         handler.NewAuthHandler(authSvc),
		Generations:  handler.NewGenerationHandler(genSvc, int64(cfg.Generation.MaxImageMB)<<20),
		AllowOrigins: cfg.App.CORS.AllowOrigins,
		Limits: router.Limits{
			RPS:         cfg.Limits.RPS,
			Burst:       cfg.Limits.Burst,
			PerIPRPS:    cfg.Limits.PerIPRPS,
			PerIPBurst:  cfg.Limits.PerIPBurst,
			Concurrency: cfg.Limits.Concurrency,
			MaxBodyMB:   cfg.Limits.MaxBodyMB,
			Timeout:     time.Duration(cfg.Limits.TimeoutSec) * time.Second,
		},
	}

	// Redis 可选：只用于登录限流
	if cfg.Redis.Addr != "" {
		rc := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer rc.Close()
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := rc.Ping(pingCtx)
		cancel()
		if err != nil {
			log.Warn("redis unavailable, login throttle disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		} else {
			deps.LoginCounter = rc
			deps.LoginMaxAttempts = int64(cfg.Auth.LoginMaxAttempts)
			deps.LoginWindow = time.Duration(cfg.Auth.LoginWindowSec) * time.Second
			log.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
		}
	}

	r := router.NewAPIEngine(deps)

	// HTTP Server
	errLog, err := logger.ToStdLogger(log, zapcore.WarnLevel)
	if err != nil {
		log.Fatal("std logger", zap.Error(err))
	}
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
		errLog,
	)

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("studio api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("api", baseURL+"/api"),
	)

	// 异步启动
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("studio api start FAILED", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("studio api stopped gracefully")
}

func newLogger(cfg *config.Config) (*zap.Logger, func()) {
	if !cfg.Log.File.Enable {
		return logger.New(cfg.Log.Level, cfg.Log.JSON)
	}
	return logger.NewWithRotate(cfg.Log.Level, cfg.Log.JSON, logger.FileRotate{
		Filename:   cfg.Log.File.Filename,
		MaxSizeMB:  cfg.Log.File.MaxSizeMB,
		MaxBackups: cfg.Log.File.MaxBackups,
		MaxAgeDays: cfg.Log.File.MaxAgeDays,
		Compress:   cfg.Log.File.Compress,
	})
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}

package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"ai-image-studio/internal/core/auth"
	"ai-image-studio/internal/core/server"
	"ai-image-studio/internal/transport/http/ez"
	"ai-image-studio/internal/transport/http/handler"
	mdw "ai-image-studio/internal/transport/http/middleware"
)

type Limits struct {
	RPS         float64
	Burst       int
	PerIPRPS    float64
	PerIPBurst  int
	Concurrency int64
	MaxBodyMB   int64
	Timeout     time.Duration
}

type Deps struct {
	Log          *zap.Logger
	JWT          *auth.JWTer
	Auth         *handler.AuthHandler
	Generations  *handler.GenerationHandler
	AllowOrigins []string
	Limits       Limits

	// 可选：Redis 登录限流
	LoginCounter     mdw.AttemptCounter
	LoginMaxAttempts int64
	LoginWindow      time.Duration
}

func (l Limits) withDefaults() Limits {
	if l.RPS <= 0 {
		l.RPS = 200
	}
	if l.Burst <= 0 {
		l.Burst = 400
	}
	if l.PerIPRPS <= 0 {
		l.PerIPRPS = 20
	}
	if l.PerIPBurst <= 0 {
		l.PerIPBurst = 40
	}
	if l.Concurrency <= 0 {
		l.Concurrency = 300
	}
	if l.MaxBodyMB <= 0 {
		l.MaxBodyMB = 12
	}
	if l.Timeout <= 0 {
		l.Timeout = 30 * time.Second
	}
	return l
}

func NewAPIEngine(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	lim := d.Limits.withDefaults()

	r := server.NewRouter(server.Options{AllowOrigins: d.AllowOrigins})
	r.Use(
		mdw.RequestID(),
		mdw.AccessLog(d.Log),
		mdw.Recovery(d.Log),
		mdw.Metrics(),
		mdw.RateLimit(rate.Limit(lim.RPS), lim.Burst),
		mdw.ConcurrencyLimit(lim.Concurrency),
		mdw.MaxBodyBytes(lim.MaxBodyMB<<20),
		mdw.Timeout(lim.Timeout),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	// 公共：/api/auth/*
	authGroup := api.Group("/auth")
	authGroup.Use(mdw.RateLimitPerIP(rate.Limit(lim.PerIPRPS), lim.PerIPBurst))
	MountAll(ez.New(authGroup, d.Log), d.Auth.Signup)

	loginGroup := authGroup.Group("")
	if d.LoginCounter != nil && d.LoginMaxAttempts > 0 {
		loginGroup.Use(mdw.LoginThrottle(d.LoginCounter, d.LoginMaxAttempts, d.LoginWindow, d.Log))
	}
	MountAll(ez.New(loginGroup, d.Log), d.Auth.Login)

	// 鉴权：/api/generations
	gens := api.Group("/generations")
	gens.Use(mdw.AuthJWT(d.JWT))
	MountAll(ez.New(gens, d.Log), d.Generations.Create, d.Generations.List)

	return r
}

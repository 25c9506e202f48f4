package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	resp "ai-image-studio/internal/transport/http/response"
)

// AttemptCounter 在固定窗口内计数（Redis 实现见 core/cache）
type AttemptCounter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

// LoginThrottle 同一 IP 在 window 内超过 maxAttempts 次即 429；计数器故障时放行
func LoginThrottle(counter AttemptCounter, maxAttempts int64, window time.Duration, l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := counter.Hit(c.Request.Context(), "login:"+c.ClientIP(), window)
		if err != nil {
			l.Warn("login throttle unavailable", zap.Error(err))
			c.Next()
			return
		}
		if n > maxAttempts {
			resp.Abort(c, resp.CodeTooManyRequests, "Too many login attempts, try again later")
			return
		}
		c.Next()
	}
}

package ratelimit

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"social_backend/internal/platform/logging"
)

// Middleware は上限を超えた呼び出し元に429を返すGinミドルウェアです。スコープごとにクライアントIP単位で制限します。
// Limiter がエラーを返した場合はリクエストを通します。
func Middleware(l Limiter, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		allowed, err := l.Allow(ctx, scope+":"+c.ClientIP())
		if err != nil {
			logging.FromContext(ctx).Warn("rate limiter unavailable", "scope", scope, "error", err)
			c.Next()
			return
		}
		if !allowed {
			logging.FromContext(ctx).Warn("rate limit exceeded", "scope", scope)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}

package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"examhub/backend/pkg/redis"
	"examhub/backend/pkg/response"
)

// RateLimit 基于 Redis 固定窗口计数的限流
// 已认证请求按用户限流，匿名请求退回客户端 IP；
// rdb 为 nil 或 Redis 出错时降级放行，与 JWTAuth 的黑名单检查策略一致
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		subject := c.GetString("user_id")
		if subject == "" {
			subject = c.ClientIP()
		}
		key := "rate_limit:" + c.FullPath() + ":" + subject

		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			c.Next()
			return
		}
		if !allowed {
			response.Error(c, http.StatusTooManyRequests, 10004, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}

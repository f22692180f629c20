package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"examhub/backend/pkg/jwt"
	"examhub/backend/pkg/redis"
	"examhub/backend/pkg/response"
)

// bearerToken 从 Authorization 头提取 Bearer 令牌
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}

// abortUnauthorized 写 401 响应并终止后续处理
func abortUnauthorized(c *gin.Context, message string) {
	response.Unauthorized(c, 10002, message)
	c.Abort()
}

// JWTAuth JWT 认证中间件
// 验证 Access Token 并将 user_id / role / department_id 注入上下文；
// rdb 非 nil 时额外校验 jti 黑名单（登出的 Token），黑名单查询出错降级放行
func JWTAuth(jwtMgr *jwt.Manager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, "缺少或无效的认证头")
			return
		}

		claims, err := jwtMgr.ParseToken(token)
		if err != nil {
			abortUnauthorized(c, "Token 无效或已过期")
			return
		}
		if claims.TokenType != "access" {
			abortUnauthorized(c, "Token 类型无效")
			return
		}

		if rdb != nil {
			if blacklisted, err := rdb.IsBlacklisted(c.Request.Context(), claims.ID); err == nil && blacklisted {
				abortUnauthorized(c, "Token 已失效")
				return
			}
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Set("department_id", claims.DepartmentID)

		c.Next()
	}
}

// RoleAuth 角色权限中间件，放在 JWTAuth 之后
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if role == "" {
			abortUnauthorized(c, "未认证")
			return
		}

		for _, r := range allowedRoles {
			if role == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, 10003, "无权限访问")
		c.Abort()
	}
}

package handler

import (
	"github.com/gin-gonic/gin"

	"examhub/backend/pkg/response"
)

// contextString 取认证中间件注入的字符串值
func contextString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// MustGetUserID 提取当前用户 ID
// 缺失说明请求绕过了 JWT 中间件，写 401 并返回 false，调用方直接 return
func MustGetUserID(c *gin.Context) (string, bool) {
	s, ok := contextString(c, "user_id")
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetRole 提取当前用户角色
func MustGetRole(c *gin.Context) (string, bool) {
	s, ok := contextString(c, "role")
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetDepartmentID 提取当前用户的部门 ID
// 管理员账号允许为空串，是否可用由调用方判定
func MustGetDepartmentID(c *gin.Context) (string, bool) {
	s, ok := contextString(c, "department_id")
	if !ok {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// IsAdmin 当前请求是否来自管理员
func IsAdmin(c *gin.Context) bool {
	s, ok := contextString(c, "role")
	return ok && s == "admin"
}

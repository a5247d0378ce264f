package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/SEGIMED/back-sub000/internal/api/middleware"
	"github.com/SEGIMED/back-sub000/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	return mustGetString(c, middleware.ContextUserID)
}

// MustGetTenantID 从 Gin 上下文中安全提取 tenant_id。
func MustGetTenantID(c *gin.Context) (string, bool) {
	return mustGetString(c, middleware.ContextTenantID)
}

// MustGetCaller 同时提取 tenant_id 与 user_id
func MustGetCaller(c *gin.Context) (tenantID, userID string, ok bool) {
	if tenantID, ok = MustGetTenantID(c); !ok {
		return "", "", false
	}
	if userID, ok = MustGetUserID(c); !ok {
		return "", "", false
	}
	return tenantID, userID, true
}

func mustGetString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

package shared

import (
	"strconv"

	"github.com/shudian-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ParamUint 解析路径参数为 uint，失败时统一返回 400
func ParamUint(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		RespondError(c, response.CodeBadRequest, "invalid id", nil)
		return 0, false
	}
	return uint(value), true
}

// AdminIDFromContext 读取认证中间件写入的管理员ID
func AdminIDFromContext(c *gin.Context) (uint, bool) {
	value, exists := c.Get("admin_id")
	if !exists {
		RespondError(c, response.CodeUnauthorized, "unauthorized", nil)
		return 0, false
	}
	id, ok := value.(uint)
	if !ok || id == 0 {
		RespondError(c, response.CodeUnauthorized, "unauthorized", nil)
		return 0, false
	}
	return id, true
}

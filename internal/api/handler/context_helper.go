package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"school-lunch/backend/internal/model"
	"school-lunch/backend/pkg/response"
)

// 认证中间件写入上下文的键
const (
	CtxTeacherID = "teacher_id"
	CtxTokenJTI  = "token_jti"
	CtxTokenExp  = "token_exp"
)

// MustGetTeacherID 从 Gin 上下文中安全提取 teacher_id。
// 如果 JWT 中间件未正确注入 teacher_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetTeacherID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(CtxTeacherID)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return 0, false
	}
	id, ok := v.(uint)
	if !ok || id == 0 {
		response.Unauthorized(c, 10002, "未认证")
		return 0, false
	}
	return id, true
}

// parseClassID 解析路径参数 :id
func parseClassID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, 10001, "班级ID无效")
		return 0, false
	}
	return uint(id), true
}

// parseOptionalDate 解析可选日期参数，空串返回 nil
func parseOptionalDate(c *gin.Context, value string) (*time.Time, bool) {
	if value == "" {
		return nil, true
	}
	d, err := model.ParseDate(value)
	if err != nil {
		response.BadRequest(c, 10001, "日期格式无效，应为 YYYY-MM-DD")
		return nil, false
	}
	return &d, true
}

// classNotFound 未知班级时返回 404，并给出安全的默认视图
func classNotFound(c *gin.Context) {
	response.NotFoundRedirect(c, 11001, "班级不存在", "/api/v1/classes")
}

package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"school-lunch/backend/pkg/jwt"
	"school-lunch/backend/pkg/redis"
	"school-lunch/backend/pkg/response"
)

// 与 handler 包中的上下文键保持一致
const (
	ctxTeacherID = "teacher_id"
	ctxEmail     = "email"
	ctxClassID   = "class_id"
	ctxTokenJTI  = "token_jti"
	ctxTokenExp  = "token_exp"
)

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取并验证 Access Token
// rdb 为 nil 时跳过黑名单检查
func JWTAuth(jwtMgr *jwt.Manager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "缺少认证头")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, "认证头格式无效")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, 10002, "Token 无效或已过期")
			c.Abort()
			return
		}

		if rdb != nil && claims.ID != "" {
			revoked, err := rdb.IsBlacklisted(c.Request.Context(), claims.ID)
			// Redis 出错时降级放行
			if err == nil && revoked {
				response.Unauthorized(c, 10002, "Token 已注销")
				c.Abort()
				return
			}
		}

		// 将教师信息注入上下文
		c.Set(ctxTeacherID, claims.TeacherID)
		c.Set(ctxEmail, claims.Email)
		if claims.ClassID != nil {
			c.Set(ctxClassID, *claims.ClassID)
		}
		c.Set(ctxTokenJTI, claims.ID)
		if claims.ExpiresAt != nil {
			c.Set(ctxTokenExp, claims.ExpiresAt.Time)
		}

		c.Next()
	}
}

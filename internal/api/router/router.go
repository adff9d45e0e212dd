package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"school-lunch/backend/config"
	"school-lunch/backend/internal/api/handler"
	"school-lunch/backend/internal/api/middleware"
	"school-lunch/backend/pkg/jwt"
	"school-lunch/backend/pkg/metrics"
	"school-lunch/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时登录限流与 Token 黑名单均降级
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger, "/health", "/metrics"))
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 / 指标 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		v1.POST("/auth/login", middleware.RateLimit(rdb, cfg.Auth.LoginRateLimit, time.Minute), h.Auth.Login)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 班级视图与选择
			classes := authorized.Group("/classes")
			{
				classes.GET("", h.Class.ListClasses)
				classes.GET("/:id/week", h.Class.GetWeek)
				classes.GET("/:id/today", h.Class.GetToday)
				classes.PUT("/:id/choices/week", h.Choice.SubmitWeek)
				classes.POST("/:id/choices/today", h.Choice.SaveToday)
				classes.DELETE("/:id/choices/today", h.Choice.ClearToday)
			}

			// 菜品
			authorized.GET("/menu-items", h.Menu.ListMenuItems)

			// 周次日历
			weekCycles := authorized.Group("/week-cycles")
			{
				weekCycles.GET("", h.Calendar.ListWeekCycles)
				weekCycles.POST("", h.Calendar.CreateWeekCycle)
				weekCycles.GET("/resolve", h.Calendar.ResolveWeek)
				weekCycles.POST("/import", h.Calendar.ImportWeekCycles)
			}

			// 管理员统计与导出
			admin := authorized.Group("/admin")
			{
				admin.GET("/report", h.Report.AdminReport)
				admin.GET("/report/daily", h.Report.DailySummary)
				admin.GET("/export/week", h.Export.ExportWeek)
			}
		}
	}

	return r
}

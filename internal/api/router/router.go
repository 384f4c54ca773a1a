package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"class-schedule/backend/config"
	"class-schedule/backend/internal/api/handler"
	"class-schedule/backend/internal/api/middleware"
	"class-schedule/backend/pkg/jwt"
	"class-schedule/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(1 << 20)) // 1MB

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证；登录接口做限流）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Login)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 课表模块
			schedules := authorized.Group("/schedules")
			{
				schedules.GET("", h.Schedule.List)
				schedules.GET("/:id", h.Schedule.Get)
				schedules.GET("/:id/my-entries", h.Schedule.MyEntries)
				schedules.GET("/:id/load-report", middleware.RoleAuth("admin", "scheduler"), h.Schedule.LoadReport)
				schedules.GET("/:id/export/excel", h.Export.ExportExcel)
				schedules.GET("/:id/export/ics", h.Export.ExportMyICS)
			}

			// 冲突预检
			authorized.GET("/entries/:entryId/conflict-check", h.Schedule.CheckConflict)

			// 调课申请模块
			changeRequests := authorized.Group("/change-requests")
			{
				changeRequests.POST("", h.ChangeRequest.Submit)
				changeRequests.GET("/mine", h.ChangeRequest.ListMine)
				changeRequests.GET("", middleware.RoleAuth("admin", "scheduler"), h.ChangeRequest.List)
				changeRequests.GET("/:id", h.ChangeRequest.Get)
				changeRequests.POST("/:id/cancel", h.ChangeRequest.Cancel)
				changeRequests.POST("/:id/review", middleware.RoleAuth("admin", "scheduler"), h.ChangeRequest.Review)
			}
		}
	}

	return r
}

package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shiftflow/backend/config"
	"shiftflow/backend/internal/api/handler"
	"shiftflow/backend/internal/api/middleware"
	"shiftflow/backend/pkg/jwt"
	"shiftflow/backend/pkg/redis"
)

// 全局请求体上限
const maxBodyBytes = 1 << 20 // 1MB

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1（全部需要认证，Token 由平台认证服务签发） ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr, rdb))
	{
		// 轮班模式模块
		patterns := v1.Group("/rotation-patterns")
		{
			patterns.GET("", h.Pattern.ListPatterns)
			patterns.GET("/:id", h.Pattern.GetPattern)
			patterns.POST("", middleware.RoleAuth("admin", "root"), h.Pattern.CreatePattern)
			patterns.PUT("/:id", middleware.RoleAuth("admin", "root"), h.Pattern.UpdatePattern)
			patterns.DELETE("/:id", middleware.RoleAuth("admin", "root"), h.Pattern.DeletePattern)

			// 分配子资源
			patterns.GET("/:id/assignments", h.Assignment.ListAssignments)
			patterns.POST("/:id/assignments", middleware.RoleAuth("admin", "root"), h.Assignment.Assign)

			// 生成（预览/提交同一端点；提交端有限流保护）
			patterns.POST("/:id/generate",
				middleware.RoleAuth("admin", "root"),
				middleware.RateLimit(rdb, cfg.Rotation.GenerateRateLimit, time.Minute),
				h.Generate.Generate)

			// 日历导出
			patterns.GET("/:id/export", middleware.RoleAuth("admin", "root"), h.Export.ExportCalendar)
		}

		// 轮班分配模块
		assignments := v1.Group("/rotation-assignments")
		{
			assignments.PATCH("/:id", middleware.RoleAuth("admin", "root"), h.Assignment.UpdateAssignment)
			assignments.POST("/:id/deactivate", middleware.RoleAuth("admin", "root"), h.Assignment.DeactivateAssignment)
		}

		// 轮班历史模块
		history := v1.Group("/rotation-history")
		{
			history.GET("", middleware.RoleAuth("admin", "root"), h.History.ListHistory)
			history.GET("/my", h.History.ListMyHistory)
			history.GET("/my/calendar.ics", h.History.MyCalendarFeed)
			history.POST("/:id/confirm", h.History.ConfirmHistory) // 本人或管理员（Service 层鉴权）
			history.POST("/:id/modify", middleware.RoleAuth("admin", "root"), h.History.ModifyHistory)
			history.POST("/:id/cancel", middleware.RoleAuth("admin", "root"), h.History.CancelHistory)
		}
	}

	return r
}

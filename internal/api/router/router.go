package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"examhub/backend/config"
	"examhub/backend/internal/api/handler"
	"examhub/backend/internal/api/middleware"
	"examhub/backend/pkg/jwt"
	"examhub/backend/pkg/redis"
)

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
	r.Use(middleware.BodyLimit(1 << 20))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 场次模块（读公开给所有已认证用户）
			shifts := authorized.Group("/shifts")
			{
				shifts.GET("", h.Shift.List)
				shifts.GET("/:id", h.Shift.Get)
			}

			// 闭馆日期（只读）
			authorized.GET("/closed-dates", h.ClosedDate.List)

			// 容量可用性（只读）
			authorized.GET("/capacity/availability", h.Capacity.Availability)

			// 时段搜索（搜索代价高，单独限流）
			authorized.GET("/slots/search",
				middleware.RateLimit(rdb, 30, time.Minute), h.Slot.Search)

			// 预约模块（部门侧）
			bookings := authorized.Group("/bookings")
			{
				bookings.POST("/hold", middleware.RoleAuth("department"), h.Booking.CreateHold)
				bookings.GET("/my", middleware.RoleAuth("department"), h.Booking.ListMine)
				bookings.GET("/:id", h.Booking.Get)
				bookings.GET("/:id/history", h.Booking.GetHistory)
				bookings.POST("/:id/submit", middleware.RoleAuth("department"), h.Booking.Submit)
				bookings.DELETE("/:id", middleware.RoleAuth("department"), h.Booking.Cancel)
				bookings.POST("/:id/voucher/complete", middleware.RoleAuth("department"), h.Booking.CompleteVoucher)
			}

			// 通知模块
			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", h.Notification.List)
				notifications.PUT("/:id/read", h.Notification.MarkRead)
			}

			// 管理端
			admin := authorized.Group("/admin")
			admin.Use(middleware.RoleAuth("admin"))
			{
				admin.GET("/bookings", h.Booking.List)
				admin.POST("/bookings/:id/approve", h.Booking.Approve)
				admin.POST("/bookings/:id/reject", h.Booking.Reject)
				admin.POST("/bookings/:id/voucher/verify", h.Booking.VerifyVoucher)
				admin.POST("/bookings/:id/voucher/admin-complete", h.Booking.AdminCompleteVoucher)

				admin.POST("/shifts", h.Shift.Create)
				admin.PUT("/shifts/:id", h.Shift.Update)

				admin.POST("/closed-dates", h.ClosedDate.Create)
				admin.DELETE("/closed-dates/:id", h.ClosedDate.Delete)

				admin.PUT("/capacity/roster", h.Capacity.ReplaceRoster)

				admin.GET("/export/bookings", h.Export.ExportBookings)
				admin.GET("/export/calendar", h.Export.CalendarFeed)
			}
		}
	}

	return r
}

package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SEGIMED/back-sub000/config"
	"github.com/SEGIMED/back-sub000/internal/api/handler"
	"github.com/SEGIMED/back-sub000/internal/api/middleware"
	"github.com/SEGIMED/back-sub000/pkg/jwt"
	"github.com/SEGIMED/back-sub000/pkg/redis"
)

// 可维护排班的角色
var scheduleEditors = []string{"admin", "physician"}

// Setup 初始化并返回 Gin 路由引擎
// db / rdb 可为 nil（测试或降级运行）
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db *gorm.DB, logger *zap.Logger) *gin.Engine {
	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Tracing())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(ctx)
			}
			if err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr, rdb, logger))
	v1.Use(middleware.RateLimit(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window))
	{
		editor := middleware.RoleAuth(scheduleEditors...)

		physicians := v1.Group("/physicians/:user_id")
		{
			// 每周排班
			physicians.GET("/schedules", h.Schedule.ListSchedule)
			physicians.PUT("/schedules", editor, h.Schedule.UpsertWeek)
			physicians.POST("/schedules", editor, h.Schedule.CreateEntry)
			physicians.DELETE("/schedules", editor, h.Schedule.DeleteAll)
			physicians.GET("/schedules/export", h.Slot.ExportWeek)

			// 排班例外
			physicians.GET("/exceptions", h.Exception.ListExceptions)
			physicians.POST("/exceptions", editor, h.Exception.CreateException)

			// 号源
			physicians.GET("/slots", h.Slot.GetSlots)
			physicians.GET("/slots/range", h.Slot.GetSlotsRange)
			physicians.GET("/slots/calendar.ics", h.Slot.Calendar)
		}

		schedules := v1.Group("/schedules")
		{
			schedules.GET("/:id", h.Schedule.GetEntry)
			schedules.PATCH("/:id", editor, h.Schedule.UpdateEntry)
			schedules.DELETE("/:id", editor, h.Schedule.DeleteEntry)
		}

		v1.DELETE("/exceptions/:id", editor, h.Exception.DeleteException)
	}

	return r
}

package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"GymTree/internal/handler"
	"GymTree/internal/middleware"
)

func Register(h *server.Hertz) {

	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.CORSMiddleware())
	h.Use(middleware.OpenTelemetryMiddleware())

	v1 := h.Group("/v1")

	// 注册路由（客户端注册档案并取得 token）
	auth := v1.Group("/auth")
	auth.Use(middleware.GeneralRateLimitMiddleware())
	{
		auth.POST("/register", handler.RegisterProfile)
	}

	// 档案相关路由
	profiles := v1.Group("/profiles")
	profiles.Use(middleware.AuthMiddleware())
	{
		profiles.GET("/me", handler.GetProfile)
		profiles.PUT("/me/gym-location", handler.UpdateGymLocation)
	}

	// 训练计划路由
	plans := v1.Group("/plans")
	plans.Use(middleware.AuthMiddleware())
	{
		plans.GET("", handler.ListPlanEntries)
		plans.PUT("", middleware.PlanRateLimitMiddleware(), handler.UpsertPlanEntry)
		plans.DELETE("/:day", middleware.PlanRateLimitMiddleware(), handler.DeletePlanEntry)
	}

	// 定位上报路由
	locations := v1.Group("/locations")
	locations.Use(middleware.AuthMiddleware())
	{
		locations.POST("/samples", middleware.SampleRateLimitMiddleware(), handler.PushLocationSample)
		locations.POST("/permission", handler.ReportPermission)
	}

	// 验证会话路由
	sessions := v1.Group("/sessions")
	sessions.Use(middleware.AuthMiddleware())
	{
		sessions.POST("", handler.StartSession)
		sessions.DELETE("", handler.StopSession)
		sessions.POST("/resume", handler.ResumeSession)
		sessions.POST("/refresh", handler.RefreshSession)
		sessions.GET("/status", handler.GetSessionStatus)
		sessions.POST("/force-check", handler.ForceLocationCheck)
	}

	// 训练记录路由
	workouts := v1.Group("/workouts")
	workouts.Use(middleware.AuthMiddleware())
	{
		workouts.GET("/today", handler.GetTodayWorkout)
		workouts.GET("/history", handler.GetWorkoutHistory)
		workouts.GET("/stats/weekly", handler.GetWeeklyStats)
	}
}

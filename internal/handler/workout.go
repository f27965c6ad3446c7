package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"

	"GymTree/internal/middleware"
	"GymTree/internal/model"
	"GymTree/internal/service"
	pkgerrors "GymTree/pkg/errors"
	"GymTree/pkg/response"
	"GymTree/utils"
)

// GetWorkoutHistory 分页查询历史训练记录
// GET /v1/workouts/history
func GetWorkoutHistory(ctx context.Context, c *app.RequestContext) {
	profileID, ok := middleware.GetProfileID(ctx, c)
	if !ok {
		response.Error(ctx, c, pkgerrors.InvalidUserID)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	workouts, err := service.Workout().ListHistory(ctx, profileID, limit, offset)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	items := make([]model.WorkoutHistoryItem, 0, len(workouts))
	for _, w := range workouts {
		items = append(items, model.WorkoutHistoryItem{
			ID:             w.PublicID,
			WorkoutDate:    w.WorkoutDate,
			PlanEntryID:    w.PlanEntryID,
			DistanceMeters: w.DistanceMeters,
			VerifiedAtUnix: w.VerifiedAtUnix,
		})
	}

	response.SuccessWithMeta(ctx, c, items, map[string]interface{}{
		"limit":  limit,
		"offset": offset,
	})
}

// GetTodayWorkout 查询今天是否已完成打卡
// GET /v1/workouts/today
func GetTodayWorkout(ctx context.Context, c *app.RequestContext) {
	profileID, ok := middleware.GetProfileID(ctx, c)
	if !ok {
		response.Error(ctx, c, pkgerrors.InvalidUserID)
		return
	}

	profile, err := service.Profile().GetProfileCached(ctx, profileID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	// 以档案时区判定"今天"
	today := utils.DayKey(time.Now().In(profile.Location()))
	workout, err := service.Workout().GetOn(ctx, profileID, today)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	resp := model.TodayWorkoutResponse{Date: today, Completed: workout != nil}
	if workout != nil {
		resp.Workout = &model.WorkoutHistoryItem{
			ID:             workout.PublicID,
			WorkoutDate:    workout.WorkoutDate,
			PlanEntryID:    workout.PlanEntryID,
			DistanceMeters: workout.DistanceMeters,
			VerifiedAtUnix: workout.VerifiedAtUnix,
		}
	}
	response.Success(ctx, c, resp)
}

// GetWeeklyStats 本周训练统计
// GET /v1/workouts/stats/weekly
func GetWeeklyStats(ctx context.Context, c *app.RequestContext) {
	profileID, ok := middleware.GetProfileID(ctx, c)
	if !ok {
		response.Error(ctx, c, pkgerrors.InvalidUserID)
		return
	}

	profile, err := service.Profile().GetProfileCached(ctx, profileID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	stats, err := service.Workout().WeeklyStats(ctx, profileID, time.Now().In(profile.Location()))
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, stats)
}

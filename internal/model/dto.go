package model

// UpsertPlanEntryRequest 创建或更新某个星期几的计划条目
type UpsertPlanEntryRequest struct {
	Day       string `json:"day" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

// PlanEntryResponse 计划条目响应
type PlanEntryResponse struct {
	ID        int64  `json:"id"`
	Day       string `json:"day"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// UpdateGymLocationRequest 设置健身房坐标
type UpdateGymLocationRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

// ProfileResponse 档案响应
type ProfileResponse struct {
	ID            int64    `json:"id"`
	Nickname      string   `json:"nickname"`
	GymLatitude   *float64 `json:"gym_latitude,omitempty"`
	GymLongitude  *float64 `json:"gym_longitude,omitempty"`
	CurrentStreak int      `json:"current_streak"`
	LongestStreak int      `json:"longest_streak"`
	Timezone      string   `json:"timezone"`
}

// PushSampleRequest 设备上报的一次定位样本
type PushSampleRequest struct {
	Latitude  float64 `json:"latitude" binding:"required"`
	Longitude float64 `json:"longitude" binding:"required"`
	Accuracy  float64 `json:"accuracy"`
	Timestamp int64   `json:"timestamp"`
}

// SessionStatusResponse 验证会话的聚合状态
type SessionStatusResponse struct {
	State               string   `json:"state"`
	IsWorkoutTime       bool     `json:"is_workout_time"`
	IsAtGym             bool     `json:"is_at_gym"`
	DistanceMeters      *float64 `json:"distance_meters,omitempty"`
	WorkoutCompleted    bool     `json:"workout_completed"`
	LastError           string   `json:"last_error,omitempty"`
	LastSampleUnix      int64    `json:"last_sample_unix,omitempty"`
	TodayWindowStart    string   `json:"today_window_start,omitempty"`
	TodayWindowEnd      string   `json:"today_window_end,omitempty"`
	VerificationEnabled bool     `json:"verification_enabled"`
}

// WorkoutHistoryItem 历史记录条目
type WorkoutHistoryItem struct {
	ID             int64   `json:"id"`
	WorkoutDate    string  `json:"workout_date"`
	PlanEntryID    int64   `json:"plan_entry_id"`
	DistanceMeters float64 `json:"distance_meters"`
	VerifiedAtUnix int64   `json:"verified_at_unix"`
}

// TodayWorkoutResponse 今日打卡情况
type TodayWorkoutResponse struct {
	Date      string              `json:"date"`
	Completed bool                `json:"completed"`
	Workout   *WorkoutHistoryItem `json:"workout,omitempty"`
}

// WeeklyStatsResponse 近一周训练统计
type WeeklyStatsResponse struct {
	WeekStart     string `json:"week_start"`
	CompletedDays int    `json:"completed_days"`
	PlannedDays   int    `json:"planned_days"`
}

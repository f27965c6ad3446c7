package model

// WorkoutCompletedMessage 训练完成事件，发往统计 worker
type WorkoutCompletedMessage struct {
	MessageID     int64   `json:"message_id"`
	ProfileID     int64   `json:"profile_id"`
	WorkoutID     int64   `json:"workout_id"`
	PlanEntryID   int64   `json:"plan_entry_id"`
	WorkoutDate   string  `json:"workout_date"`
	CurrentStreak int     `json:"current_streak"`
	LongestStreak int     `json:"longest_streak"`
	Distance      float64 `json:"distance"`
	Timestamp     int64   `json:"timestamp"`
}

// ProfileChangedMessage 档案变更事件，健身房位置或计划变化时触发在线会话刷新
type ProfileChangedMessage struct {
	MessageID  int64  `json:"message_id"`
	ProfileID  int64  `json:"profile_id"`
	ChangeType string `json:"change_type"`
	Timestamp  int64  `json:"timestamp"`
}

// 档案变更类型
const (
	ProfileChangeGymLocation = "gym_location"
	ProfileChangePlan        = "plan"
)

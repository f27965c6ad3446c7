package model

// WorkoutPlanEntry 训练计划条目，每个用户每个星期几至多一条
// 时间窗为本地时间 HH:MM，两端闭区间

type WorkoutPlanEntry struct {
	BaseModel
	PublicID  int64  `gorm:"uniqueIndex;not null" json:"public_id"`
	ProfileID int64  `gorm:"not null;index;uniqueIndex:idx_plan_profile_day,priority:1" json:"profile_id"`
	Day       string `gorm:"type:varchar(16);not null;uniqueIndex:idx_plan_profile_day,priority:2" json:"day"`
	StartTime string `gorm:"type:varchar(8);not null" json:"start_time"`
	EndTime   string `gorm:"type:varchar(8);not null" json:"end_time"`
}

// TableName 指定表名
func (WorkoutPlanEntry) TableName() string {
	return "workout_plan_entries"
}

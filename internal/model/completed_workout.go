package model

// CompletedWorkout 已完成训练记录
// 同一用户同一天最多一条，由写入前的查重保证而非唯一约束，
// 与连胜递增的读改写共用同一条临界路径

type CompletedWorkout struct {
	BaseModel
	PublicID    int64  `gorm:"uniqueIndex;not null" json:"public_id"`
	ProfileID   int64  `gorm:"not null;index:idx_workout_profile_date,priority:1" json:"profile_id"`
	WorkoutDate string `gorm:"type:varchar(10);not null;index:idx_workout_profile_date,priority:2" json:"workout_date"`

	// 命中的计划条目，引用其 public_id
	PlanEntryID int64 `gorm:"not null;default:0" json:"plan_entry_id"`

	// 验证时刻的距离快照，便于事后排查误判
	DistanceMeters float64 `gorm:"not null;default:0" json:"distance_meters"`
	VerifiedAtUnix int64   `gorm:"not null" json:"verified_at_unix"`
}

// TableName 指定表名
func (CompletedWorkout) TableName() string {
	return "completed_workouts"
}

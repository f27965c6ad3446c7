package model

import (
	"time"

	"GymTree/internal/geo"
)

// Profile 用户档案模型
// 连胜计数只由验证引擎递增，换健身房会清零 current_streak

type Profile struct {
	BaseModel
	PublicID int64  `gorm:"uniqueIndex;not null" json:"public_id"`
	Nickname string `gorm:"type:varchar(64);not null;default:''" json:"nickname"`

	// 健身房坐标，未设置时为 NULL，必须与"距离为 0"可区分
	GymLatitude  *float64 `gorm:"type:double precision" json:"gym_latitude,omitempty"`
	GymLongitude *float64 `gorm:"type:double precision" json:"gym_longitude,omitempty"`

	CurrentStreak int `gorm:"not null;default:0" json:"current_streak"`
	LongestStreak int `gorm:"not null;default:0" json:"longest_streak"`

	// 打卡按本地日历日去重，时区跟随设备上报
	Timezone string `gorm:"type:varchar(64);not null;default:'UTC'" json:"timezone"`
}

// TableName 指定表名
func (Profile) TableName() string {
	return "profiles"
}

// GymLocation 返回健身房坐标，未设置时返回 nil
func (p *Profile) GymLocation() *geo.Coordinate {
	if p.GymLatitude == nil || p.GymLongitude == nil {
		return nil
	}
	return &geo.Coordinate{Latitude: *p.GymLatitude, Longitude: *p.GymLongitude}
}

// Location 返回档案时区，为空或无法解析时回退 UTC
func (p *Profile) Location() *time.Location {
	if p.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// HasGymLocation 判断是否已设置健身房位置
func (p *Profile) HasGymLocation() bool {
	return p.GymLatitude != nil && p.GymLongitude != nil
}

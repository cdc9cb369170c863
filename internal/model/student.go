package model

import "encoding/json"

// Student 学生学习档案，与 User 一对一。
// TotalXP/Level 只能由任务完成结算修改，且单调不减。
// swagger:model Student
type Student struct {
	BaseModel

	UserID         uint            `gorm:"uniqueIndex;type:bigint unsigned" json:"userId"`
	TotalXP        int             `gorm:"default:0" json:"totalXp"`
	Level          int             `gorm:"default:1" json:"level"`
	StreakDays     int             `gorm:"default:0" json:"streakDays"`
	WeeklyProgress int             `gorm:"default:0" json:"weeklyProgress"`
	GuildID        *uint           `gorm:"index;type:bigint unsigned" json:"guildId,omitempty"`
	MasteryState   json.RawMessage `gorm:"type:json" json:"masteryState,omitempty"`
	BaselineScores json.RawMessage `gorm:"type:json" json:"baselineScores,omitempty"`
}

func (Student) TableName() string {
	return "students"
}

package model

import (
	"encoding/json"
	"time"
)

// QuestAttempt 一个学生在一个任务上的持久化进度。
// (user_id, quest_id) 唯一；完成后除累计计数外不可变；引擎从不删除。
// swagger:model QuestAttempt
type QuestAttempt struct {
	BaseModel

	UserID           uint            `gorm:"uniqueIndex:idx_user_quest;type:bigint unsigned" json:"userId"`
	QuestID          uint            `gorm:"uniqueIndex:idx_user_quest;index;type:bigint unsigned" json:"questId"`
	Progress         int             `gorm:"default:0" json:"progress"` // 0-100
	Completed        bool            `gorm:"default:false" json:"completed"`
	StartedAt        time.Time       `json:"startedAt"`
	CompletedAt      *time.Time      `json:"completedAt,omitempty"` // 仅在完成时写入一次
	HintCount        int             `gorm:"default:0" json:"hintCount"`
	TimeSpentSeconds int             `gorm:"default:0" json:"timeSpentSeconds"`
	StepResults      json.RawMessage `gorm:"type:json" json:"stepResults,omitempty"`
	XPAwarded        bool            `gorm:"default:false" json:"xpAwarded"` // 经验值结算幂等标记
}

func (QuestAttempt) TableName() string {
	return "quest_attempts"
}

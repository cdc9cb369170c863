package model

import (
	"encoding/json"
)

const (
	QuestDifficultyEasy   = "easy"
	QuestDifficultyMedium = "medium"
	QuestDifficultyHard   = "hard"
)

// Quest 任务目录条目，由内容编辑创建，对进度引擎只读。
// 目录顺序（created_at 升序）即先修链顺序。
// swagger:model Quest
type Quest struct {
	BaseModel

	Title      string          `gorm:"size:255;not null" json:"title"`
	Subject    string          `gorm:"size:100" json:"subject"`
	Duration   string          `gorm:"size:50" json:"duration"` // 预计用时，如 "15 min"
	Difficulty string          `gorm:"type:enum('easy','medium','hard');default:'easy'" json:"difficulty"`
	GradeLevel int             `gorm:"default:0" json:"gradeLevel"`
	SkillTags  json.RawMessage `gorm:"type:json" json:"skillTags,omitempty"`
	XPReward   int             `gorm:"default:0" json:"xpReward"`
	Steps      json.RawMessage `gorm:"type:json" json:"steps"`
}

func (Quest) TableName() string {
	return "quests"
}

package model

import (
	"encoding/json"
	"time"
)

// swagger:model Badge
type Badge struct {
	BaseModel

	Name        string          `gorm:"size:100;not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Icon        string          `gorm:"size:255" json:"icon"`
	Criteria    json.RawMessage `gorm:"type:json" json:"criteria,omitempty"`
}

func (Badge) TableName() string {
	return "badges"
}

// swagger:model UserBadge
type UserBadge struct {
	BaseModel

	UserID    uint      `gorm:"index;type:bigint unsigned" json:"userId"`
	BadgeID   uint      `gorm:"index;type:bigint unsigned" json:"badgeId"`
	AwardedAt time.Time `json:"awardedAt"`

	Badge Badge `gorm:"foreignKey:BadgeID" json:"badge"`
}

func (UserBadge) TableName() string {
	return "user_badges"
}

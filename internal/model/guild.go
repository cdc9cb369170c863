package model

// Guild 公会，仅作只读展示。
// swagger:model Guild
type Guild struct {
	BaseModel

	Name        string `gorm:"size:100;not null" json:"name"`
	MemberCount int    `gorm:"default:0" json:"memberCount"`
	SharedXP    int    `gorm:"default:0" json:"sharedXp"`
	RankInClass int    `gorm:"default:0" json:"rankInClass"`
}

func (Guild) TableName() string {
	return "guilds"
}

package repository

import (
	"safa_quest_backend/internal/model"

	"gorm.io/gorm"
)

type GuildRepository struct {
	DB *gorm.DB
}

func NewGuildRepository(db *gorm.DB) *GuildRepository {
	return &GuildRepository{DB: db}
}

func (r *GuildRepository) FindByID(id uint) (*model.Guild, error) {
	var g model.Guild
	if err := r.DB.First(&g, id).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GuildRepository) List() ([]model.Guild, error) {
	var guilds []model.Guild
	err := r.DB.Order("rank_in_class ASC").Find(&guilds).Error
	return guilds, err
}

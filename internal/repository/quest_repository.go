package repository

import (
	"safa_quest_backend/internal/model"

	"gorm.io/gorm"
)

type QuestRepository struct {
	DB *gorm.DB
}

func NewQuestRepository(db *gorm.DB) *QuestRepository {
	return &QuestRepository{DB: db}
}

// ListOrdered 按目录顺序返回全部任务，顺序即先修链。
func (r *QuestRepository) ListOrdered() ([]model.Quest, error) {
	var quests []model.Quest
	err := r.DB.Order("created_at ASC, id ASC").Find(&quests).Error
	return quests, err
}

func (r *QuestRepository) FindByID(id uint) (*model.Quest, error) {
	var q model.Quest
	if err := r.DB.First(&q, id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QuestRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Quest{}).Count(&count).Error
	return count, err
}

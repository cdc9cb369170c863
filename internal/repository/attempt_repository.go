package repository

import (
	"safa_quest_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Create(attempt *model.QuestAttempt) error {
	return r.DB.Create(attempt).Error
}

func (r *AttemptRepository) Update(attempt *model.QuestAttempt) error {
	return r.DB.Save(attempt).Error
}

func (r *AttemptRepository) FindByID(id uint) (*model.QuestAttempt, error) {
	var a model.QuestAttempt
	if err := r.DB.First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AttemptRepository) FindByUserAndQuest(userID, questID uint) (*model.QuestAttempt, error) {
	var a model.QuestAttempt
	err := r.DB.Where("user_id = ? AND quest_id = ?", userID, questID).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AttemptRepository) ListByUser(userID uint) ([]model.QuestAttempt, error) {
	var attempts []model.QuestAttempt
	err := r.DB.Where("user_id = ?", userID).Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) IncrementHintCount(attemptID uint) error {
	return r.DB.Model(&model.QuestAttempt{}).
		Where("id = ?", attemptID).
		Update("hint_count", gorm.Expr("hint_count + 1")).
		Error
}

func (r *AttemptRepository) AddTimeSpent(attemptID uint, seconds int) error {
	return r.DB.Model(&model.QuestAttempt{}).
		Where("id = ?", attemptID).
		Update("time_spent_seconds", gorm.Expr("time_spent_seconds + ?", seconds)).
		Error
}

func (r *AttemptRepository) CountCompleted() (int64, error) {
	var count int64
	err := r.DB.Model(&model.QuestAttempt{}).Where("completed = ?", true).Count(&count).Error
	return count, err
}

func (r *AttemptRepository) CountCompletedSince(since time.Time) (int64, error) {
	var count int64
	err := r.DB.Model(&model.QuestAttempt{}).
		Where("completed = ? AND completed_at >= ?", true, since).
		Count(&count).Error
	return count, err
}

func (r *AttemptRepository) AverageProgress() (float64, error) {
	var avg *float64
	err := r.DB.Model(&model.QuestAttempt{}).Select("AVG(progress)").Scan(&avg).Error
	if err != nil || avg == nil {
		return 0, err
	}
	return *avg, nil
}

// AwardXP 在一个事务里更新学生总分/等级并设置 xp_awarded 标记。
// 标记与积分同事务提交，保证按尝试ID至多记一次经验。
func (r *AttemptRepository) AwardXP(attempt *model.QuestAttempt, totalXP, level int) error {
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Student{}).
			Where("user_id = ?", attempt.UserID).
			Updates(map[string]interface{}{"total_xp": totalXP, "level": level}).Error; err != nil {
			return err
		}
		return tx.Model(&model.QuestAttempt{}).
			Where("id = ?", attempt.ID).
			Update("xp_awarded", true).Error
	})
	if err == nil {
		attempt.XPAwarded = true
	}
	return err
}

func (r *AttemptRepository) CountDistinctUsersCompletedSince(since time.Time) (int64, error) {
	var count int64
	err := r.DB.Model(&model.QuestAttempt{}).
		Where("completed = ? AND completed_at >= ?", true, since).
		Distinct("user_id").
		Count(&count).Error
	return count, err
}

package repository

import (
	"safa_quest_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type StudentRepository struct {
	DB *gorm.DB
}

func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{DB: db}
}

func (r *StudentRepository) Create(student *model.Student) error {
	return r.DB.Create(student).Error
}

func (r *StudentRepository) FindByUserID(userID uint) (*model.Student, error) {
	var s model.Student
	err := r.DB.Where("user_id = ?", userID).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StudentRepository) UpdateTotals(userID uint, totalXP, level int) error {
	return r.DB.Model(&model.Student{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{"total_xp": totalXP, "level": level}).
		Error
}

func (r *StudentRepository) FindTopByXP(limit int) ([]model.Student, error) {
	var students []model.Student
	err := r.DB.Order("total_xp DESC").Limit(limit).Find(&students).Error
	return students, err
}

func (r *StudentRepository) ListAll(page, pageSize int) ([]model.Student, int64, error) {
	var students []model.Student
	var total int64

	if err := r.DB.Model(&model.Student{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.DB.Order("total_xp DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&students).Error
	return students, total, err
}

func (r *StudentRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Student{}).Count(&count).Error
	return count, err
}

// ResetStreaks 将最近 since 之后没有任何完成记录的学生连续天数清零。
func (r *StudentRepository) ResetStreaks(since time.Time) (int64, error) {
	res := r.DB.Model(&model.Student{}).
		Where("streak_days > 0").
		Where("user_id NOT IN (?)",
			r.DB.Model(&model.QuestAttempt{}).
				Select("user_id").
				Where("completed = ? AND completed_at >= ?", true, since)).
		Update("streak_days", 0)
	return res.RowsAffected, res.Error
}

func (r *StudentRepository) BumpStreak(userID uint) error {
	return r.DB.Model(&model.Student{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"streak_days":     gorm.Expr("streak_days + 1"),
			"weekly_progress": gorm.Expr("weekly_progress + 1"),
		}).Error
}

type LeaderboardRow struct {
	UserID  uint   `json:"userId"`
	Name    string `json:"name"`
	TotalXP int    `json:"totalXp"`
	Level   int    `json:"level"`
}

func (r *StudentRepository) TopEntries(limit int) ([]LeaderboardRow, error) {
	var rows []LeaderboardRow
	err := r.DB.Table("students").
		Select("students.user_id, users.name, students.total_xp, students.level").
		Joins("JOIN users ON users.id = students.user_id").
		Where("users.disabled = ?", false).
		Order("students.total_xp DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

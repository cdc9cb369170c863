package service

import (
	"safa_quest_backend/internal/repository"
	"safa_quest_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
)

type StudentService struct {
	students *repository.StudentRepository
}

func NewStudentService(students *repository.StudentRepository) *StudentService {
	return &StudentService{students: students}
}

// RolloverDailyStreaks 把昨天没有任何完成记录的学生连续天数清零。
// 由后台定时任务周期触发。
func (s *StudentService) RolloverDailyStreaks() error {
	since := startOfDay(time.Now()).AddDate(0, 0, -1)
	reset, err := s.students.ResetStreaks(since)
	if err != nil {
		return err
	}
	if reset > 0 {
		logger.Log.Info("streaks rolled over", zap.Int64("reset", reset))
	}
	return nil
}

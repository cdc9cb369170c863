package service

import (
	"safa_quest_backend/internal/model"
	"safa_quest_backend/internal/repository"
	"time"
)

// ClassStats 教师端班级聚合指标。
type ClassStats struct {
	TotalStudents   int64 `json:"totalStudents"`
	ActiveToday     int64 `json:"activeToday"`
	AvgProgress     int   `json:"avgProgress"`
	QuestsCompleted int64 `json:"questsCompleted"`
	AtRiskStudents  int64 `json:"atRiskStudents"`
}

type DashboardService struct {
	users    *repository.UserRepository
	students *repository.StudentRepository
	attempts *repository.AttemptRepository
}

func NewDashboardService(users *repository.UserRepository, students *repository.StudentRepository, attempts *repository.AttemptRepository) *DashboardService {
	return &DashboardService{users: users, students: students, attempts: attempts}
}

func (s *DashboardService) GetClassStats() (*ClassStats, error) {
	stats := &ClassStats{}

	total, err := s.students.Count()
	if err != nil {
		return nil, err
	}
	stats.TotalStudents = total

	midnight := startOfDay(time.Now())
	active, err := s.users.CountActiveSince(midnight)
	if err != nil {
		return nil, err
	}
	stats.ActiveToday = active

	avg, err := s.attempts.AverageProgress()
	if err != nil {
		return nil, err
	}
	stats.AvgProgress = int(avg + 0.5)

	completed, err := s.attempts.CountCompleted()
	if err != nil {
		return nil, err
	}
	stats.QuestsCompleted = completed

	// 近7天没有任何完成记录的学生视为有流失风险
	weekAgo := time.Now().AddDate(0, 0, -7)
	activeWeek, err := s.attempts.CountDistinctUsersCompletedSince(weekAgo)
	if err != nil {
		return nil, err
	}
	stats.AtRiskStudents = total - activeWeek
	if stats.AtRiskStudents < 0 {
		stats.AtRiskStudents = 0
	}

	return stats, nil
}

func (s *DashboardService) ListStudents(page, pageSize int) ([]model.Student, int64, error) {
	return s.students.ListAll(page, pageSize)
}

package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"safa_quest_backend/internal/model"
	"safa_quest_backend/internal/util"
	"safa_quest_backend/pkg/logger"
	"safa_quest_backend/pkg/monitoring"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProgressionService 管理尝试记录的生命周期：
// 创建、进度推进、完成结算（经验值/等级）。
// 同一 (学生, 任务) 对并发的两个会话不做协调，存储层最后写入者胜出。
type ProgressionService struct {
	attempts AttemptStore
	students StudentStore
	quests   QuestStore
}

func NewProgressionService(attempts AttemptStore, students StudentStore, quests QuestStore) *ProgressionService {
	return &ProgressionService{
		attempts: attempts,
		students: students,
		quests:   quests,
	}
}

// StartAttempt 为 (学生, 任务) 创建尝试记录。
// 已存在时返回现有记录和 ErrAttemptStarted，调用方应复用该记录而不是报错。
func (s *ProgressionService) StartAttempt(userID, questID uint) (*model.QuestAttempt, error) {
	if _, err := s.quests.FindByID(questID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestNotFound
		}
		return nil, storeErr(err)
	}

	existing, err := s.attempts.FindByUserAndQuest(userID, questID)
	if err == nil {
		return existing, util.ErrAttemptStarted
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storeErr(err)
	}

	attempt := &model.QuestAttempt{
		UserID:    userID,
		QuestID:   questID,
		Progress:  0,
		Completed: false,
		StartedAt: time.Now(),
	}
	if err := s.attempts.Create(attempt); err != nil {
		return nil, storeErr(err)
	}
	return attempt, nil
}

// UpdateProgress 推进尝试进度。progress 超出 [0,100] 会被收敛而不是拒绝，
// 容忍步骤分数换算的舍入误差。completed=true 时写入完成时间并结算经验，
// 已完成的尝试再次调用返回 ErrAttemptCompleted（调用方视为已满足，非硬错误）。
func (s *ProgressionService) UpdateProgress(attemptID uint, progress int, completed bool, stepResults json.RawMessage) (*model.QuestAttempt, error) {
	attempt, err := s.attempts.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, storeErr(err)
	}

	if attempt.Completed {
		return attempt, util.ErrAttemptCompleted
	}

	attempt.Progress = clampProgress(progress)
	if len(stepResults) > 0 {
		attempt.StepResults = stepResults
	}

	if !completed {
		if err := s.attempts.Update(attempt); err != nil {
			return nil, storeErr(err)
		}
		return attempt, nil
	}

	now := time.Now()
	attempt.Completed = true
	attempt.CompletedAt = &now
	if err := s.attempts.Update(attempt); err != nil {
		return nil, storeErr(err)
	}

	if err := s.creditXP(attempt); err != nil {
		// 尝试已标记完成但经验未入账：交给调用方通过 Reconcile 补偿
		return attempt, fmt.Errorf("%w: %v", util.ErrPartialApplication, err)
	}
	return attempt, nil
}

// Reconcile 补偿半程失败：尝试已完成但经验未入账时补记，
// 已入账则为无操作。以尝试ID为幂等键，经验至多记一次。
// 归属校验在任何结算写入之前完成，非本人的尝试不会被触碰。
func (s *ProgressionService) Reconcile(userID, attemptID uint) (*model.QuestAttempt, error) {
	attempt, err := s.attempts.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, storeErr(err)
	}

	if attempt.UserID != userID {
		return nil, util.ErrPermissionDenied
	}

	if !attempt.Completed || attempt.XPAwarded {
		return attempt, nil
	}

	if err := s.creditXP(attempt); err != nil {
		return attempt, fmt.Errorf("%w: %v", util.ErrPartialApplication, err)
	}
	return attempt, nil
}

func (s *ProgressionService) ListAttempts(userID uint) ([]model.QuestAttempt, error) {
	attempts, err := s.attempts.ListByUser(userID)
	if err != nil {
		return nil, storeErr(err)
	}
	return attempts, nil
}

func (s *ProgressionService) StudentTotals(userID uint) (*model.Student, error) {
	student, err := s.students.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrStudentNotFound
		}
		return nil, storeErr(err)
	}
	return student, nil
}

// creditXP 读取任务奖励与学生总分，经 ApplyXP 推导新总分/等级后
// 由存储层原子落库（总分更新与 xp_awarded 标记同事务）。
func (s *ProgressionService) creditXP(attempt *model.QuestAttempt) error {
	quest, err := s.quests.FindByID(attempt.QuestID)
	if err != nil {
		return err
	}

	student, err := s.students.FindByUserID(attempt.UserID)
	if err != nil {
		return err
	}

	result, err := ApplyXP(student.TotalXP, quest.XPReward)
	if err != nil {
		return err
	}

	if err := s.attempts.AwardXP(attempt, result.TotalXP, result.Level); err != nil {
		return err
	}

	monitoring.QuestCompletions.WithLabelValues(quest.Subject).Inc()
	monitoring.XPAwarded.Add(float64(quest.XPReward))

	// 连续学习天数：当天首个完成才累加，失败只记日志不影响结算
	if s.firstCompletionToday(attempt) {
		if err := s.students.BumpStreak(attempt.UserID); err != nil {
			logger.Log.Warn("failed to bump streak", zap.Uint("userId", attempt.UserID), zap.Error(err))
		}
	}
	return nil
}

func (s *ProgressionService) firstCompletionToday(latest *model.QuestAttempt) bool {
	attempts, err := s.attempts.ListByUser(latest.UserID)
	if err != nil {
		return false
	}

	midnight := startOfDay(time.Now())
	for _, a := range attempts {
		if a.ID == latest.ID || !a.Completed || a.CompletedAt == nil {
			continue
		}
		if a.CompletedAt.After(midnight) {
			return false
		}
	}
	return true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

package service

import (
	"errors"
	"os"
	"safa_quest_backend/internal/model"
	"safa_quest_backend/pkg/logger"
	"testing"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

// 内存版存储实现，仅供测试

type memQuestStore struct {
	quests []model.Quest
}

func (s *memQuestStore) ListOrdered() ([]model.Quest, error) {
	out := make([]model.Quest, len(s.quests))
	copy(out, s.quests)
	return out, nil
}

func (s *memQuestStore) FindByID(id uint) (*model.Quest, error) {
	for i := range s.quests {
		if s.quests[i].ID == id {
			return &s.quests[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type memStudentStore struct {
	students map[uint]*model.Student
}

func newMemStudentStore() *memStudentStore {
	return &memStudentStore{students: make(map[uint]*model.Student)}
}

func (s *memStudentStore) FindByUserID(userID uint) (*model.Student, error) {
	st, ok := s.students[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return st, nil
}

func (s *memStudentStore) BumpStreak(userID uint) error {
	st, ok := s.students[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	st.StreakDays++
	return nil
}

type memAttemptStore struct {
	attempts map[uint]*model.QuestAttempt
	students *memStudentStore
	nextID   uint

	awardErr error // 注入 AwardXP 故障
}

func newMemAttemptStore(students *memStudentStore) *memAttemptStore {
	return &memAttemptStore{
		attempts: make(map[uint]*model.QuestAttempt),
		students: students,
	}
}

func (s *memAttemptStore) Create(attempt *model.QuestAttempt) error {
	for _, a := range s.attempts {
		if a.UserID == attempt.UserID && a.QuestID == attempt.QuestID {
			return errors.New("duplicate attempt")
		}
	}
	s.nextID++
	attempt.ID = s.nextID
	s.attempts[attempt.ID] = attempt
	return nil
}

func (s *memAttemptStore) Update(attempt *model.QuestAttempt) error {
	if _, ok := s.attempts[attempt.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	s.attempts[attempt.ID] = attempt
	return nil
}

func (s *memAttemptStore) FindByID(id uint) (*model.QuestAttempt, error) {
	a, ok := s.attempts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (s *memAttemptStore) FindByUserAndQuest(userID, questID uint) (*model.QuestAttempt, error) {
	for _, a := range s.attempts {
		if a.UserID == userID && a.QuestID == questID {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memAttemptStore) ListByUser(userID uint) ([]model.QuestAttempt, error) {
	var out []model.QuestAttempt
	for _, a := range s.attempts {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *memAttemptStore) IncrementHintCount(attemptID uint) error {
	a, ok := s.attempts[attemptID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.HintCount++
	return nil
}

func (s *memAttemptStore) AddTimeSpent(attemptID uint, seconds int) error {
	a, ok := s.attempts[attemptID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.TimeSpentSeconds += seconds
	return nil
}

func (s *memAttemptStore) AwardXP(attempt *model.QuestAttempt, totalXP, level int) error {
	if s.awardErr != nil {
		return s.awardErr
	}
	st, ok := s.students.students[attempt.UserID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	st.TotalXP = totalXP
	st.Level = level
	attempt.XPAwarded = true
	if stored, ok := s.attempts[attempt.ID]; ok {
		stored.XPAwarded = true
	}
	return nil
}

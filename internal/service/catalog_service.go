package service

import (
	"errors"
	"fmt"
	"safa_quest_backend/internal/model"
	"safa_quest_backend/internal/util"

	"gorm.io/gorm"
)

// CatalogService 负责任务目录和解锁状态的推导。
type CatalogService struct {
	quests   QuestStore
	attempts AttemptStore
}

func NewCatalogService(quests QuestStore, attempts AttemptStore) *CatalogService {
	return &CatalogService{quests: quests, attempts: attempts}
}

// QuestView 按学生视角标注过的目录条目。不携带步骤原文，答案不出引擎。
type QuestView struct {
	ID         uint   `json:"id"`
	Title      string `json:"title"`
	Subject    string `json:"subject"`
	Duration   string `json:"duration"`
	Difficulty string `json:"difficulty"`
	GradeLevel int    `json:"gradeLevel"`
	XPReward   int    `json:"xpReward"`
	StepCount  int    `json:"stepCount"`
	Locked     bool   `json:"locked"`
	Started    bool   `json:"started"`
	Progress   int    `json:"progress"`
	Completed  bool   `json:"completed"`
	AttemptID  uint   `json:"attemptId,omitempty"`
}

// IsQuestLocked 纯函数：第0个任务永不锁定；
// 第i个任务在第i-1个任务的尝试不存在或未完成时锁定；
// 目录数据缺口一律视为未锁定（fail open）。
func IsQuestLocked(index int, catalog []model.Quest, attempts map[uint]*model.QuestAttempt) bool {
	if index <= 0 {
		return false
	}
	if index >= len(catalog) {
		return false
	}

	prev := catalog[index-1]
	attempt, ok := attempts[prev.ID]
	if !ok {
		return true
	}
	return !attempt.Completed
}

func (s *CatalogService) ListForStudent(userID uint) ([]QuestView, error) {
	catalog, err := s.quests.ListOrdered()
	if err != nil {
		return nil, storeErr(err)
	}

	attempts, err := s.attemptsByQuest(userID)
	if err != nil {
		return nil, err
	}

	views := make([]QuestView, 0, len(catalog))
	for i, q := range catalog {
		views = append(views, buildQuestView(i, q, catalog, attempts))
	}
	return views, nil
}

func (s *CatalogService) GetForStudent(userID, questID uint) (*QuestView, error) {
	catalog, err := s.quests.ListOrdered()
	if err != nil {
		return nil, storeErr(err)
	}

	attempts, err := s.attemptsByQuest(userID)
	if err != nil {
		return nil, err
	}

	for i, q := range catalog {
		if q.ID == questID {
			v := buildQuestView(i, q, catalog, attempts)
			return &v, nil
		}
	}
	return nil, util.ErrQuestNotFound
}

// IsLockedForStudent 重新评估单个任务的锁定状态，尝试集合变化后必须重查。
func (s *CatalogService) IsLockedForStudent(userID, questID uint) (bool, error) {
	catalog, err := s.quests.ListOrdered()
	if err != nil {
		return false, storeErr(err)
	}

	attempts, err := s.attemptsByQuest(userID)
	if err != nil {
		return false, err
	}

	for i, q := range catalog {
		if q.ID == questID {
			return IsQuestLocked(i, catalog, attempts), nil
		}
	}
	// 目录里找不到就不拦（fail open）
	return false, nil
}

func (s *CatalogService) attemptsByQuest(userID uint) (map[uint]*model.QuestAttempt, error) {
	list, err := s.attempts.ListByUser(userID)
	if err != nil {
		return nil, storeErr(err)
	}

	byQuest := make(map[uint]*model.QuestAttempt, len(list))
	for i := range list {
		byQuest[list[i].QuestID] = &list[i]
	}
	return byQuest, nil
}

func buildQuestView(index int, q model.Quest, catalog []model.Quest, attempts map[uint]*model.QuestAttempt) QuestView {
	v := QuestView{
		ID:         q.ID,
		Title:      q.Title,
		Subject:    q.Subject,
		Duration:   q.Duration,
		Difficulty: q.Difficulty,
		GradeLevel: q.GradeLevel,
		XPReward:   q.XPReward,
		Locked:     IsQuestLocked(index, catalog, attempts),
	}

	if steps, err := model.DecodeSteps(q.Steps); err == nil {
		v.StepCount = len(steps)
	}

	if a, ok := attempts[q.ID]; ok {
		v.Started = true
		v.Progress = a.Progress
		v.Completed = a.Completed
		v.AttemptID = a.ID
	}
	return v
}

// storeErr 把存储层故障归入统一错误分类，记录未找到单独映射。
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return fmt.Errorf("%w: %v", util.ErrStorageUnavailable, err)
}

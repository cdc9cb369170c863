package service

import (
	"safa_quest_backend/internal/model"
)

// 进度引擎依赖的存储边界。gorm 仓库是生产实现，
// 测试用内存实现（参考 middleware.UserActivityRepo 的窄接口做法）。

type QuestStore interface {
	ListOrdered() ([]model.Quest, error)
	FindByID(id uint) (*model.Quest, error)
}

type AttemptStore interface {
	Create(attempt *model.QuestAttempt) error
	Update(attempt *model.QuestAttempt) error
	FindByID(id uint) (*model.QuestAttempt, error)
	FindByUserAndQuest(userID, questID uint) (*model.QuestAttempt, error)
	ListByUser(userID uint) ([]model.QuestAttempt, error)
	IncrementHintCount(attemptID uint) error
	AddTimeSpent(attemptID uint, seconds int) error
	// AwardXP 在单个事务里写入学生新总分并打上 xp_awarded 标记，
	// 两者要么同时落库要么都不落，保证每次尝试至多记一次经验。
	AwardXP(attempt *model.QuestAttempt, totalXP, level int) error
}

type StudentStore interface {
	FindByUserID(userID uint) (*model.Student, error)
	BumpStreak(userID uint) error
}

package service

import (
	"encoding/json"
	"safa_quest_backend/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testQuest(id uint, title string, xp int) model.Quest {
	q := model.Quest{
		Title:    title,
		XPReward: xp,
		Steps: json.RawMessage(`[
			{"kind":"text","question":"q1"},
			{"kind":"text","question":"q2"}
		]`),
	}
	q.ID = id
	return q
}

func completedAttempt(id, userID, questID uint) *model.QuestAttempt {
	now := time.Now()
	a := &model.QuestAttempt{
		UserID:      userID,
		QuestID:     questID,
		Progress:    100,
		Completed:   true,
		StartedAt:   now,
		CompletedAt: &now,
	}
	a.ID = id
	return a
}

func TestIsQuestLocked(t *testing.T) {
	catalog := []model.Quest{
		testQuest(1, "first", 50),
		testQuest(2, "second", 75),
		testQuest(3, "third", 100),
	}

	tests := []struct {
		name     string
		index    int
		attempts map[uint]*model.QuestAttempt
		want     bool
	}{
		{"第一个任务永不锁定", 0, nil, false},
		{"前序无尝试则锁定", 1, map[uint]*model.QuestAttempt{}, true},
		{"前序未完成则锁定", 1, map[uint]*model.QuestAttempt{
			1: {QuestID: 1, Progress: 75, Completed: false},
		}, true},
		{"前序已完成则解锁", 1, map[uint]*model.QuestAttempt{
			1: completedAttempt(1, 1, 1),
		}, false},
		{"链式解锁只看直接前序", 2, map[uint]*model.QuestAttempt{
			2: completedAttempt(2, 1, 2),
		}, false},
		{"越界下标不拦截", 5, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsQuestLocked(tt.index, catalog, tt.attempts))
		})
	}
}

func TestListForStudentAnnotations(t *testing.T) {
	quests := &memQuestStore{quests: []model.Quest{
		testQuest(1, "first", 50),
		testQuest(2, "second", 75),
		testQuest(3, "third", 100),
	}}
	students := newMemStudentStore()
	attempts := newMemAttemptStore(students)

	attempts.attempts[10] = completedAttempt(10, 7, 1)
	inProgress := &model.QuestAttempt{UserID: 7, QuestID: 2, Progress: 50, StartedAt: time.Now()}
	inProgress.ID = 11
	attempts.attempts[11] = inProgress
	attempts.nextID = 11

	svc := NewCatalogService(quests, attempts)
	views, err := svc.ListForStudent(7)
	require.NoError(t, err)
	require.Len(t, views, 3)

	assert.False(t, views[0].Locked)
	assert.True(t, views[0].Completed)
	assert.Equal(t, uint(10), views[0].AttemptID)

	assert.False(t, views[1].Locked)
	assert.True(t, views[1].Started)
	assert.Equal(t, 50, views[1].Progress)
	assert.Equal(t, 2, views[1].StepCount)

	// 第二个任务未完成，第三个保持锁定
	assert.True(t, views[2].Locked)
	assert.False(t, views[2].Started)
}

func TestIsLockedForStudentFailOpen(t *testing.T) {
	quests := &memQuestStore{quests: []model.Quest{testQuest(1, "only", 50)}}
	students := newMemStudentStore()
	attempts := newMemAttemptStore(students)

	svc := NewCatalogService(quests, attempts)

	// 目录里不存在的任务不拦截
	locked, err := svc.IsLockedForStudent(7, 99)
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestGetForStudentUnknownQuest(t *testing.T) {
	quests := &memQuestStore{quests: []model.Quest{testQuest(1, "only", 50)}}
	students := newMemStudentStore()
	attempts := newMemAttemptStore(students)

	svc := NewCatalogService(quests, attempts)
	_, err := svc.GetForStudent(7, 99)
	assert.Error(t, err)
}

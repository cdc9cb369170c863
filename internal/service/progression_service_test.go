package service

import (
	"errors"
	"safa_quest_backend/internal/model"
	"safa_quest_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProgressionFixture(t *testing.T) (*ProgressionService, *memQuestStore, *memAttemptStore, *memStudentStore) {
	t.Helper()

	quests := &memQuestStore{quests: []model.Quest{
		testQuest(1, "first", 50),
		testQuest(2, "second", 75),
	}}
	students := newMemStudentStore()
	students.students[7] = &model.Student{UserID: 7, TotalXP: 0, Level: 1}
	attempts := newMemAttemptStore(students)

	return NewProgressionService(attempts, students, quests), quests, attempts, students
}

func TestStartAttempt(t *testing.T) {
	svc, _, _, _ := newProgressionFixture(t)

	attempt, err := svc.StartAttempt(7, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, attempt.Progress)
	assert.False(t, attempt.Completed)
	assert.False(t, attempt.StartedAt.IsZero())

	// 重复开始返回现有记录和已开始信号
	again, err := svc.StartAttempt(7, 1)
	assert.ErrorIs(t, err, util.ErrAttemptStarted)
	assert.Equal(t, attempt.ID, again.ID)
}

func TestStartAttemptUnknownQuest(t *testing.T) {
	svc, _, _, _ := newProgressionFixture(t)

	_, err := svc.StartAttempt(7, 42)
	assert.ErrorIs(t, err, util.ErrQuestNotFound)
}

func TestUpdateProgressClamping(t *testing.T) {
	svc, _, _, _ := newProgressionFixture(t)

	attempt, err := svc.StartAttempt(7, 1)
	require.NoError(t, err)

	got, err := svc.UpdateProgress(attempt.ID, 150, false, nil)
	require.NoError(t, err)
	assert.Equal(t, 100, got.Progress)
	assert.False(t, got.Completed)

	got, err = svc.UpdateProgress(attempt.ID, -20, false, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Progress)
}

func TestCompletionCreditsXPOnce(t *testing.T) {
	svc, _, _, students := newProgressionFixture(t)

	attempt, err := svc.StartAttempt(7, 1)
	require.NoError(t, err)

	got, err := svc.UpdateProgress(attempt.ID, 100, true, nil)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.NotNil(t, got.CompletedAt)
	assert.True(t, got.XPAwarded)

	st := students.students[7]
	assert.Equal(t, 50, st.TotalXP)
	assert.Equal(t, 1, st.Level)
	assert.Equal(t, 1, st.StreakDays)

	// 重复完成：已完成信号，经验不重复入账
	_, err = svc.UpdateProgress(attempt.ID, 100, true, nil)
	assert.ErrorIs(t, err, util.ErrAttemptCompleted)
	assert.Equal(t, 50, students.students[7].TotalXP)
	assert.Equal(t, 1, students.students[7].StreakDays)
}

func TestPartialApplicationAndReconcile(t *testing.T) {
	svc, _, attempts, students := newProgressionFixture(t)

	attempt, err := svc.StartAttempt(7, 1)
	require.NoError(t, err)

	// 结算故障：完成标记落库，经验未入账
	attempts.awardErr = errors.New("db gone")
	got, err := svc.UpdateProgress(attempt.ID, 100, true, nil)
	assert.ErrorIs(t, err, util.ErrPartialApplication)
	assert.True(t, got.Completed)
	assert.False(t, got.XPAwarded)
	assert.Equal(t, 0, students.students[7].TotalXP)

	// 故障恢复后补偿一次
	attempts.awardErr = nil
	rec, err := svc.Reconcile(7, attempt.ID)
	require.NoError(t, err)
	assert.True(t, rec.XPAwarded)
	assert.Equal(t, 50, students.students[7].TotalXP)

	// 再次补偿是无操作
	_, err = svc.Reconcile(7, attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, students.students[7].TotalXP)
}

func TestReconcileOwnership(t *testing.T) {
	svc, _, attempts, students := newProgressionFixture(t)

	attempt, err := svc.StartAttempt(7, 1)
	require.NoError(t, err)

	attempts.awardErr = errors.New("db gone")
	_, err = svc.UpdateProgress(attempt.ID, 100, true, nil)
	assert.ErrorIs(t, err, util.ErrPartialApplication)
	attempts.awardErr = nil

	// 他人不能触发补偿，拒绝发生在任何结算写入之前
	_, err = svc.Reconcile(8, attempt.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
	assert.False(t, attempts.attempts[attempt.ID].XPAwarded)
	assert.Equal(t, 0, students.students[7].TotalXP)

	// 本人补偿照常生效
	rec, err := svc.Reconcile(7, attempt.ID)
	require.NoError(t, err)
	assert.True(t, rec.XPAwarded)
	assert.Equal(t, 50, students.students[7].TotalXP)
}

func TestReconcileUnknownAttempt(t *testing.T) {
	svc, _, _, _ := newProgressionFixture(t)

	_, err := svc.Reconcile(7, 404)
	assert.ErrorIs(t, err, util.ErrAttemptNotFound)
}

func TestUpdateProgressUnknownAttempt(t *testing.T) {
	svc, _, _, _ := newProgressionFixture(t)

	_, err := svc.UpdateProgress(404, 50, false, nil)
	assert.ErrorIs(t, err, util.ErrAttemptNotFound)
}

func TestStudentTotals(t *testing.T) {
	svc, _, _, students := newProgressionFixture(t)
	students.students[7].TotalXP = 2450
	students.students[7].Level = 25

	st, err := svc.StudentTotals(7)
	require.NoError(t, err)
	assert.Equal(t, 2450, st.TotalXP)

	_, err = svc.StudentTotals(999)
	assert.ErrorIs(t, err, util.ErrStudentNotFound)
}

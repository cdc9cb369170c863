package service

import (
	"encoding/json"
	"safa_quest_backend/internal/model"
	"safa_quest_backend/internal/util"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func algebraQuest(id uint) model.Quest {
	q := model.Quest{
		Title:    "Algebra Fundamentals",
		Subject:  "Mathematics",
		XPReward: 50,
		Steps: json.RawMessage(`[
			{"kind":"multiple_choice","question":"What is the capital of France?","options":["London","Berlin","Paris","Madrid"],"correct":2,"hint":"Think about the Eiffel Tower!"},
			{"kind":"multiple_choice","question":"Which planet is known as the Red Planet?","options":["Venus","Mars","Jupiter","Saturn"],"correct":1},
			{"kind":"text","question":"Name one renewable energy source."}
		]`),
	}
	q.ID = id
	return q
}

func newRunnerFixture(t *testing.T) (*RunnerService, *ProgressionService, *memAttemptStore, *memStudentStore) {
	t.Helper()

	second := testQuest(2, "Poetry Analysis", 75)
	quests := &memQuestStore{quests: []model.Quest{algebraQuest(1), second}}
	students := newMemStudentStore()
	students.students[7] = &model.Student{UserID: 7, TotalXP: 0, Level: 1}
	attempts := newMemAttemptStore(students)

	progression := NewProgressionService(attempts, students, quests)
	catalog := NewCatalogService(quests, attempts)
	runner := NewRunnerService(catalog, progression, quests, attempts)
	return runner, progression, attempts, students
}

func TestRunQuestEndToEnd(t *testing.T) {
	runner, _, attempts, students := newRunnerFixture(t)

	// 第二个任务被先修链锁定
	_, err := runner.StartQuest(7, 2)
	assert.ErrorIs(t, err, util.ErrQuestLocked)

	session, err := runner.StartQuest(7, 1)
	require.NoError(t, err)
	attemptID := session.AttemptID

	step, err := runner.CurrentStep(7, attemptID)
	require.NoError(t, err)
	assert.Equal(t, 0, step.Index)
	assert.Equal(t, 3, step.Total)
	assert.Equal(t, model.StepMultipleChoice, step.Kind)
	assert.Empty(t, step.Hint, "提示在揭示前不可见")

	// 没作答不能推进
	_, err = runner.Advance(7, attemptID)
	assert.ErrorIs(t, err, util.ErrMissingAnswer)

	// 答错原地重试，进度不动
	_, err = runner.SubmitAnswer(7, attemptID, "0")
	require.NoError(t, err)
	result, err := runner.Advance(7, attemptID)
	require.NoError(t, err)
	assert.False(t, result.Correct)
	assert.Equal(t, 0, result.NextStep.Index)
	assert.Equal(t, 0, attempts.attempts[attemptID].Progress)

	// 提示每步只计一次
	hint, err := runner.RevealHint(7, attemptID)
	require.NoError(t, err)
	assert.Contains(t, hint, "Eiffel")
	_, err = runner.RevealHint(7, attemptID)
	require.NoError(t, err)
	assert.Equal(t, 1, attempts.attempts[attemptID].HintCount)

	// 第一步答对：round(1/3*100)=33
	_, err = runner.SubmitAnswer(7, attemptID, "2")
	require.NoError(t, err)
	result, err = runner.Advance(7, attemptID)
	require.NoError(t, err)
	assert.True(t, result.Correct)
	assert.Equal(t, 33, result.Progress)
	assert.Equal(t, 1, result.NextStep.Index)
	assert.Equal(t, 33, attempts.attempts[attemptID].Progress)

	// 第二步：round(2/3*100)=67
	_, err = runner.SubmitAnswer(7, attemptID, "1")
	require.NoError(t, err)
	result, err = runner.Advance(7, attemptID)
	require.NoError(t, err)
	assert.Equal(t, 67, result.Progress)

	// 自由文本题非空即对，最后一步触发完成结算
	_, err = runner.SubmitAnswer(7, attemptID, "solar power")
	require.NoError(t, err)
	result, err = runner.Advance(7, attemptID)
	require.NoError(t, err)
	assert.True(t, result.Completed)
	assert.Equal(t, 100, result.Progress)
	assert.Equal(t, 50, result.XPEarned)
	require.NotNil(t, result.Totals)
	assert.Equal(t, 50, result.Totals.TotalXP)

	stored := attempts.attempts[attemptID]
	assert.True(t, stored.Completed)
	assert.True(t, stored.XPAwarded)
	assert.NotNil(t, stored.CompletedAt)
	assert.Equal(t, 50, students.students[7].TotalXP)

	// 会话随完成销毁
	_, err = runner.CurrentStep(7, attemptID)
	assert.ErrorIs(t, err, util.ErrSessionNotFound)

	// 已完成的任务不能再开跑
	_, err = runner.StartQuest(7, 1)
	assert.ErrorIs(t, err, util.ErrAttemptCompleted)

	// 完成后下一个任务解锁
	next, err := runner.StartQuest(7, 2)
	require.NoError(t, err)
	assert.Equal(t, uint(2), next.QuestID)
}

func TestRunnerTextAnswerRejectsWhitespace(t *testing.T) {
	runner, _, _, _ := newRunnerFixture(t)

	session, err := runner.StartQuest(7, 1)
	require.NoError(t, err)

	// 跳到文本题之前先把选择题答完
	for _, answer := range []string{"2", "1"} {
		_, err = runner.SubmitAnswer(7, session.AttemptID, answer)
		require.NoError(t, err)
		_, err = runner.Advance(7, session.AttemptID)
		require.NoError(t, err)
	}

	_, err = runner.SubmitAnswer(7, session.AttemptID, "   ")
	require.NoError(t, err)
	result, err := runner.Advance(7, session.AttemptID)
	require.NoError(t, err)
	assert.False(t, result.Correct, "纯空白不算有效作答")
}

func TestRunnerAbandonKeepsPersistedProgress(t *testing.T) {
	runner, _, attempts, _ := newRunnerFixture(t)

	session, err := runner.StartQuest(7, 1)
	require.NoError(t, err)

	_, err = runner.SubmitAnswer(7, session.AttemptID, "2")
	require.NoError(t, err)
	_, err = runner.Advance(7, session.AttemptID)
	require.NoError(t, err)

	require.NoError(t, runner.Abandon(7, session.AttemptID))

	_, err = runner.CurrentStep(7, session.AttemptID)
	assert.ErrorIs(t, err, util.ErrSessionNotFound)
	assert.Equal(t, 33, attempts.attempts[session.AttemptID].Progress)

	// 重开会话从头开始呈现，但尝试记录复用
	again, err := runner.StartQuest(7, 1)
	require.NoError(t, err)
	assert.Equal(t, session.AttemptID, again.AttemptID)
}

func TestRunnerOwnershipCheck(t *testing.T) {
	runner, _, _, students := newRunnerFixture(t)
	students.students[8] = &model.Student{UserID: 8, TotalXP: 0, Level: 1}

	session, err := runner.StartQuest(7, 1)
	require.NoError(t, err)

	_, err = runner.CurrentStep(8, session.AttemptID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
	err = runner.Abandon(8, session.AttemptID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestRunnerRejectsMalformedSteps(t *testing.T) {
	broken := model.Quest{Title: "broken", Steps: json.RawMessage(`[{"kind":"multiple_choice","question":"q","options":["a"],"correct":0}]`)}
	broken.ID = 1
	quests := &memQuestStore{quests: []model.Quest{broken}}
	students := newMemStudentStore()
	students.students[7] = &model.Student{UserID: 7}
	attempts := newMemAttemptStore(students)

	progression := NewProgressionService(attempts, students, quests)
	catalog := NewCatalogService(quests, attempts)
	runner := NewRunnerService(catalog, progression, quests, attempts)

	_, err := runner.StartQuest(7, 1)
	assert.Error(t, err)
	// 畸形内容在开跑前就被拒绝，不产生尝试记录
	assert.Empty(t, attempts.attempts)
}

// 同一步骤上的并发读写都走会话锁，提示仍只计数一次。
func TestSessionConcurrentAccess(t *testing.T) {
	runner, _, attempts, _ := newRunnerFixture(t)

	session, err := runner.StartQuest(7, 1)
	require.NoError(t, err)
	attemptID := session.AttemptID

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			_, err := runner.CurrentStep(7, attemptID)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := runner.SubmitAnswer(7, attemptID, "2")
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			hint, err := runner.RevealHint(7, attemptID)
			assert.NoError(t, err)
			assert.Equal(t, "Think about the Eiffel Tower!", hint)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, attempts.attempts[attemptID].HintCount)

	result, err := runner.Advance(7, attemptID)
	require.NoError(t, err)
	assert.True(t, result.Correct)
	assert.Equal(t, 1, result.NextStep.Index)
}

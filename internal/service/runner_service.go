package service

import (
	"encoding/json"
	"errors"
	"math"
	"safa_quest_backend/internal/model"
	"safa_quest_backend/internal/util"
	"safa_quest_backend/pkg/logger"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// QuestSession 一次任务运行的内存态，不持久化。
// 放弃或完成即销毁，断点续跑只保留落库的 progress 百分比。
type QuestSession struct {
	Token         string
	AttemptID     uint
	UserID        uint
	QuestID       uint
	Steps         []model.QuestStep
	Current       int
	Answers       map[int]string
	Revealed      map[int]bool
	Results       map[int]bool
	Finished      bool
	StartedAt     time.Time
	stepStartedAt time.Time
}

// StepView 呈现给学生的当前步骤，不携带正确答案下标。
type StepView struct {
	Index      int            `json:"index"`
	Total      int            `json:"total"`
	Kind       model.StepKind `json:"kind"`
	Question   string         `json:"question"`
	Options    []string       `json:"options,omitempty"`
	HasHint    bool           `json:"hasHint"`
	HintShown  bool           `json:"hintShown"`
	Hint       string         `json:"hint,omitempty"` // 只在已揭示后回填
	Answer     string         `json:"answer,omitempty"`
}

type AdvanceResult struct {
	Correct   bool      `json:"correct"`
	Completed bool      `json:"completed"`
	Progress  int       `json:"progress"`
	XPEarned  int       `json:"xpEarned,omitempty"`
	Totals    *XPResult `json:"totals,omitempty"`
	NextStep  *StepView `json:"nextStep,omitempty"`
}

// RunnerService 驱动单个任务会话的状态机：
// Presenting(i) -> Validating -> Presenting(i+1) | Completed | Presenting(i)。
// 每个 (学生, 任务) 同时只有一个活动会话；注册表是互斥保护的内存表。
type RunnerService struct {
	mu       sync.RWMutex
	sessions map[uint]*QuestSession // attemptID -> session

	catalog     *CatalogService
	progression *ProgressionService
	quests      QuestStore
	attempts    AttemptStore
}

func NewRunnerService(catalog *CatalogService, progression *ProgressionService, quests QuestStore, attempts AttemptStore) *RunnerService {
	return &RunnerService{
		sessions:    make(map[uint]*QuestSession),
		catalog:     catalog,
		progression: progression,
		quests:      quests,
		attempts:    attempts,
	}
}

// StartQuest 开始（或恢复）一个任务会话。
// 任务被先修链锁定时拒绝；已有尝试未完成则复用记录重新开跑。
func (s *RunnerService) StartQuest(userID, questID uint) (*QuestSession, error) {
	locked, err := s.catalog.IsLockedForStudent(userID, questID)
	if err != nil {
		return nil, err
	}
	if locked {
		return nil, util.ErrQuestLocked
	}

	quest, err := s.quests.FindByID(questID)
	if err != nil {
		return nil, storeErr(err)
	}

	// 畸形步骤内容在这里就拒绝，不让它进入运行器深处
	steps, err := model.DecodeSteps(quest.Steps)
	if err != nil {
		return nil, err
	}

	attempt, err := s.progression.StartAttempt(userID, questID)
	if err != nil && !errors.Is(err, util.ErrAttemptStarted) {
		return nil, err
	}
	if attempt.Completed {
		return nil, util.ErrAttemptCompleted
	}

	now := time.Now()
	session := &QuestSession{
		Token:         uuid.New().String(),
		AttemptID:     attempt.ID,
		UserID:        userID,
		QuestID:       questID,
		Steps:         steps,
		Current:       0,
		Answers:       make(map[int]string),
		Revealed:      make(map[int]bool),
		Results:       make(map[int]bool),
		StartedAt:     now,
		stepStartedAt: now,
	}

	s.mu.Lock()
	s.sessions[attempt.ID] = session
	s.mu.Unlock()

	logger.Log.Info("quest session started",
		zap.Uint("userId", userID),
		zap.Uint("questId", questID),
		zap.Uint("attemptId", attempt.ID))

	return session, nil
}

// CurrentStep 返回会话当前步骤视图。
func (s *RunnerService) CurrentStep(userID, attemptID uint) (*StepView, error) {
	session, err := s.session(userID, attemptID)
	if err != nil {
		return nil, err
	}
	if session.Finished {
		return nil, util.ErrSessionFinished
	}
	view := s.stepView(session, s.currentIndex(session))
	return &view, nil
}

// SubmitAnswer 记录当前步骤的作答，只改内存态，不触存储。
func (s *RunnerService) SubmitAnswer(userID, attemptID uint, answer string) (*StepView, error) {
	session, err := s.session(userID, attemptID)
	if err != nil {
		return nil, err
	}
	if session.Finished {
		return nil, util.ErrSessionFinished
	}

	s.mu.Lock()
	current := session.Current
	session.Answers[current] = answer
	s.mu.Unlock()

	view := s.stepView(session, current)
	return &view, nil
}

// RevealHint 揭示当前步骤的提示。
// 每步每会话只计数一次（首个揭示时累加到尝试记录），提示文本保持可见。
func (s *RunnerService) RevealHint(userID, attemptID uint) (string, error) {
	session, err := s.session(userID, attemptID)
	if err != nil {
		return "", err
	}
	if session.Finished {
		return "", util.ErrSessionFinished
	}

	s.mu.Lock()
	current := session.Current
	first := !session.Revealed[current]
	session.Revealed[current] = true
	s.mu.Unlock()

	if first {
		if err := s.attempts.IncrementHintCount(attemptID); err != nil {
			logger.Log.Warn("failed to persist hint count",
				zap.Uint("attemptId", attemptID), zap.Error(err))
		}
	}
	return session.Steps[current].Hint, nil
}

// Advance 校验当前步骤的作答并推进状态机。
// 无作答返回 ErrMissingAnswer（可纠正，不丢会话）；答错原地重试不落库；
// 答对落一次进度；最后一步答对时恰好调用一次完成结算，
// 重复完成由生命周期管理器以 ErrAttemptCompleted 当作已满足处理。
func (s *RunnerService) Advance(userID, attemptID uint) (*AdvanceResult, error) {
	session, err := s.session(userID, attemptID)
	if err != nil {
		return nil, err
	}
	if session.Finished {
		return nil, util.ErrSessionFinished
	}

	s.mu.RLock()
	current := session.Current
	answer, ok := session.Answers[current]
	s.mu.RUnlock()
	if !ok {
		return nil, util.ErrMissingAnswer
	}

	step := session.Steps[current]
	if !step.IsCorrect(answer) {
		// 答错重新呈现同一步骤，不设重试上限，也不落任何进度
		view := s.stepView(session, current)
		return &AdvanceResult{Correct: false, NextStep: &view, Progress: s.progressFor(session, current)}, nil
	}

	stepsCompleted := current + 1
	total := len(session.Steps)
	progress := int(math.Round(float64(stepsCompleted) / float64(total) * 100))
	last := stepsCompleted >= total

	s.mu.Lock()
	session.Results[current] = true
	s.mu.Unlock()

	results, _ := json.Marshal(stepResultsPayload(session))

	if last {
		_, err := s.progression.UpdateProgress(attemptID, 100, true, results)
		switch {
		case err == nil:
		case errors.Is(err, util.ErrAttemptCompleted):
			// 重复完成：视为已满足，不再记经验
		case errors.Is(err, util.ErrPartialApplication):
			// 完成已落库但经验未入账，结束会话并把补偿信号交给调用方
			s.finish(session, attemptID)
			return nil, err
		default:
			// 存储失败：保留会话内存态，学生可以原地重试推进
			return nil, err
		}

		s.finish(session, attemptID)

		result := &AdvanceResult{Correct: true, Completed: true, Progress: 100}
		if quest, qerr := s.quests.FindByID(session.QuestID); qerr == nil {
			result.XPEarned = quest.XPReward
		}
		if totals, terr := s.progression.StudentTotals(userID); terr == nil {
			result.Totals = &XPResult{TotalXP: totals.TotalXP, Level: totals.Level}
		}
		return result, nil
	}

	if _, err := s.progression.UpdateProgress(attemptID, progress, false, results); err != nil &&
		!errors.Is(err, util.ErrAttemptCompleted) {
		return nil, err
	}

	s.mu.Lock()
	elapsed := int(time.Since(session.stepStartedAt).Seconds())
	session.Current++
	next := session.Current
	session.stepStartedAt = time.Now()
	s.mu.Unlock()

	if elapsed > 0 {
		if err := s.attempts.AddTimeSpent(attemptID, elapsed); err != nil {
			logger.Log.Warn("failed to persist time spent",
				zap.Uint("attemptId", attemptID), zap.Error(err))
		}
	}

	view := s.stepView(session, next)
	return &AdvanceResult{Correct: true, Progress: progress, NextStep: &view}, nil
}

// Abandon 丢弃会话内存态；已落库的进度保持不变，在途的持久化调用不被取消。
func (s *RunnerService) Abandon(userID, attemptID uint) error {
	if _, err := s.session(userID, attemptID); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.sessions, attemptID)
	s.mu.Unlock()

	logger.Log.Info("quest session abandoned", zap.Uint("attemptId", attemptID))
	return nil
}

func (s *RunnerService) finish(session *QuestSession, attemptID uint) {
	s.mu.Lock()
	session.Finished = true
	elapsed := int(time.Since(session.stepStartedAt).Seconds())
	delete(s.sessions, attemptID)
	s.mu.Unlock()

	if elapsed > 0 {
		if err := s.attempts.AddTimeSpent(attemptID, elapsed); err != nil {
			logger.Log.Warn("failed to persist time spent",
				zap.Uint("attemptId", attemptID), zap.Error(err))
		}
	}
}

func (s *RunnerService) session(userID, attemptID uint) (*QuestSession, error) {
	s.mu.RLock()
	session, ok := s.sessions[attemptID]
	s.mu.RUnlock()

	if !ok {
		return nil, util.ErrSessionNotFound
	}
	if session.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	return session, nil
}

func (s *RunnerService) currentIndex(session *QuestSession) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return session.Current
}

func (s *RunnerService) stepView(session *QuestSession, index int) StepView {
	step := session.Steps[index]

	s.mu.RLock()
	shown := session.Revealed[index]
	answer := session.Answers[index]
	s.mu.RUnlock()

	view := StepView{
		Index:     index,
		Total:     len(session.Steps),
		Kind:      step.Kind,
		Question:  step.Question,
		Options:   step.Options,
		HasHint:   step.Hint != "",
		HintShown: shown,
		Answer:    answer,
	}
	if shown {
		view.Hint = step.Hint
	}
	return view
}

func (s *RunnerService) progressFor(session *QuestSession, current int) int {
	return int(math.Round(float64(current) / float64(len(session.Steps)) * 100))
}

func stepResultsPayload(session *QuestSession) map[string]bool {
	payload := make(map[string]bool, len(session.Results))
	for idx, passed := range session.Results {
		payload[strconv.Itoa(idx)] = passed
	}
	return payload
}

package util

import "errors"

var (
	ErrUserNotFound     = errors.New("用户不存在")
	ErrEmailRegistered  = errors.New("该邮箱已被注册")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidFileType  = errors.New("unsupported file type")

	// 任务目录 / 进度引擎
	ErrQuestNotFound      = errors.New("quest not found")
	ErrQuestLocked        = errors.New("quest locked, complete the previous quest first")
	ErrAttemptNotFound    = errors.New("attempt not found")
	ErrAttemptStarted     = errors.New("attempt already started")
	ErrAttemptCompleted   = errors.New("attempt already completed")
	ErrNegativeXPReward   = errors.New("xp reward must not be negative")
	ErrStudentNotFound    = errors.New("student record not found")
	ErrGuildNotFound      = errors.New("guild not found")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrPartialApplication = errors.New("attempt completed but xp not credited")

	// 任务运行器会话
	ErrSessionNotFound = errors.New("no active session for attempt")
	ErrMissingAnswer   = errors.New("answer required before advancing")
	ErrSessionFinished = errors.New("session already finished")
)

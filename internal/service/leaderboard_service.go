package service

import (
	"context"
	"encoding/json"
	"safa_quest_backend/internal/repository"
	"safa_quest_backend/pkg/logger"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const leaderboardKeyPrefix = "safa_quest:leaderboard:top:"

// LeaderboardService 按总经验排名，redis 短期缓存顶层查询。
type LeaderboardService struct {
	students *repository.StudentRepository
	rdb      *redis.Client
	ttl      time.Duration
}

func NewLeaderboardService(students *repository.StudentRepository, rdb *redis.Client, ttl time.Duration) *LeaderboardService {
	return &LeaderboardService{students: students, rdb: rdb, ttl: ttl}
}

func (s *LeaderboardService) Top(ctx context.Context, limit int) ([]repository.LeaderboardRow, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	key := leaderboardKeyPrefix + strconv.Itoa(limit)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, key).Result(); err == nil {
			var rows []repository.LeaderboardRow
			if err := json.Unmarshal([]byte(cached), &rows); err == nil {
				return rows, nil
			}
		}
	}

	rows, err := s.students.TopEntries(limit)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		payload, err := json.Marshal(rows)
		if err == nil {
			if err := s.rdb.Set(ctx, key, payload, s.ttl).Err(); err != nil {
				logger.Log.Warn("failed to cache leaderboard", zap.Error(err))
			}
		}
	}
	return rows, nil
}

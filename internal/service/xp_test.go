package service

import (
	"safa_quest_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyXP(t *testing.T) {
	tests := []struct {
		name      string
		current   int
		reward    int
		wantTotal int
		wantLevel int
	}{
		{"零分拿250", 0, 250, 250, 3},
		{"2450分拿50升到26级", 2450, 50, 2500, 26},
		{"零奖励不变", 120, 0, 120, 2},
		{"99分不升级", 0, 99, 99, 1},
		{"恰好100分升2级", 0, 100, 100, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyXP(tt.current, tt.reward)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantTotal, got.TotalXP)
			assert.Equal(t, tt.wantLevel, got.Level)
		})
	}
}

func TestApplyXPRejectsNegativeReward(t *testing.T) {
	_, err := ApplyXP(500, -10)
	assert.ErrorIs(t, err, util.ErrNegativeXPReward)
}

func TestApplyXPMonotonic(t *testing.T) {
	total := 0
	level := 1
	rewards := []int{0, 10, 50, 75, 100, 0, 30}

	for _, r := range rewards {
		got, err := ApplyXP(total, r)
		assert.NoError(t, err)
		assert.GreaterOrEqual(t, got.TotalXP, total)
		assert.GreaterOrEqual(t, got.Level, level)
		total = got.TotalXP
		level = got.Level
	}
}

func TestLevelForXP(t *testing.T) {
	assert.Equal(t, 1, LevelForXP(0))
	assert.Equal(t, 1, LevelForXP(99))
	assert.Equal(t, 2, LevelForXP(100))
	assert.Equal(t, 13, LevelForXP(1250))
	assert.Equal(t, 1, LevelForXP(-5))
}

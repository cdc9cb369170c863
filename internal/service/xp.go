package service

import "safa_quest_backend/internal/util"

// 等级规则：每100经验升一级，0-99经验为1级。
const XPPerLevel = 100

type XPResult struct {
	TotalXP int `json:"totalXp"`
	Level   int `json:"level"`
}

func LevelForXP(totalXP int) int {
	if totalXP < 0 {
		return 1
	}
	return totalXP/XPPerLevel + 1
}

// ApplyXP 纯函数：在当前总分上累加奖励并推导新等级。
// 负奖励在任何持久化之前拒绝，经验与等级对非负奖励序列单调不减。
func ApplyXP(currentTotalXP, xpReward int) (XPResult, error) {
	if xpReward < 0 {
		return XPResult{}, util.ErrNegativeXPReward
	}

	total := currentTotalXP + xpReward
	return XPResult{
		TotalXP: total,
		Level:   LevelForXP(total),
	}, nil
}

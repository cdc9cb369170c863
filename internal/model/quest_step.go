package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

type StepKind string

const (
	StepMultipleChoice StepKind = "multiple_choice"
	StepText           StepKind = "text"
)

// QuestStep 单个题目。Kind 决定哪些字段有效：
// multiple_choice 要求 Options 和 Correct，text 只要求 Question。
// swagger:model QuestStep
type QuestStep struct {
	Kind     StepKind `json:"kind"`
	Question string   `json:"question"`
	Options  []string `json:"options,omitempty"`
	Correct  int      `json:"correct"` // 正确选项下标，从0开始
	Hint     string   `json:"hint,omitempty"`
}

// DecodeSteps 在存储边界解析并校验任务步骤，拒绝畸形内容，
// 避免错误深入到运行器内部才暴露。
func DecodeSteps(raw json.RawMessage) ([]QuestStep, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("quest has no steps")
	}

	var steps []QuestStep
	if err := json.Unmarshal(raw, &steps); err != nil {
		return nil, fmt.Errorf("invalid steps payload: %w", err)
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("quest has no steps")
	}

	for i, s := range steps {
		if strings.TrimSpace(s.Question) == "" {
			return nil, fmt.Errorf("step %d: question is empty", i)
		}
		switch s.Kind {
		case StepMultipleChoice:
			if len(s.Options) < 2 {
				return nil, fmt.Errorf("step %d: multiple choice needs at least 2 options", i)
			}
			if s.Correct < 0 || s.Correct >= len(s.Options) {
				return nil, fmt.Errorf("step %d: correct index %d out of range", i, s.Correct)
			}
		case StepText:
			// 自由文本题没有选项约束
		default:
			return nil, fmt.Errorf("step %d: unknown kind %q", i, s.Kind)
		}
	}

	return steps, nil
}

// IsCorrect 校验答案。选择题要求下标精确匹配；
// 文本题沿用原产品的宽松策略：非空即算对，不做语义判分。
func (s QuestStep) IsCorrect(answer string) bool {
	switch s.Kind {
	case StepMultipleChoice:
		var idx int
		if _, err := fmt.Sscanf(strings.TrimSpace(answer), "%d", &idx); err != nil {
			return false
		}
		return idx == s.Correct
	case StepText:
		return strings.TrimSpace(answer) != ""
	default:
		return false
	}
}

package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSteps(t *testing.T) {
	raw := json.RawMessage(`[
		{"kind":"multiple_choice","question":"pick one","options":["a","b","c"],"correct":1,"hint":"try b"},
		{"kind":"text","question":"explain"}
	]`)

	steps, err := DecodeSteps(raw)
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, StepMultipleChoice, steps[0].Kind)
	assert.Equal(t, 1, steps[0].Correct)
	assert.Equal(t, StepText, steps[1].Kind)
}

func TestDecodeStepsRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"空内容", ``},
		{"非JSON", `not json`},
		{"空数组", `[]`},
		{"缺题干", `[{"kind":"text","question":"  "}]`},
		{"选项不足", `[{"kind":"multiple_choice","question":"q","options":["a"],"correct":0}]`},
		{"正确下标越界", `[{"kind":"multiple_choice","question":"q","options":["a","b"],"correct":5}]`},
		{"负下标", `[{"kind":"multiple_choice","question":"q","options":["a","b"],"correct":-1}]`},
		{"未知类型", `[{"kind":"drag_and_drop","question":"q"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeSteps(json.RawMessage(tt.raw))
			assert.Error(t, err)
		})
	}
}

func TestStepIsCorrect(t *testing.T) {
	mc := QuestStep{Kind: StepMultipleChoice, Question: "q", Options: []string{"a", "b", "c"}, Correct: 2}
	assert.True(t, mc.IsCorrect("2"))
	assert.True(t, mc.IsCorrect(" 2 "))
	assert.False(t, mc.IsCorrect("1"))
	assert.False(t, mc.IsCorrect("abc"))
	assert.False(t, mc.IsCorrect(""))

	text := QuestStep{Kind: StepText, Question: "q"}
	assert.True(t, text.IsCorrect("solar"))
	assert.False(t, text.IsCorrect(""))
	assert.False(t, text.IsCorrect("   "))
}

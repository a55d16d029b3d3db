package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jwlee-dev/encoreview/internal/model"
)

func TestMapLabel(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{name: "bare positive", response: "긍정", want: model.EmotionPositive},
		{name: "label inside sentence", response: "이 리뷰의 감정은 부정입니다.", want: model.EmotionNegative},
		{name: "neutral", response: "중립", want: model.EmotionNeutral},
		{name: "positive wins over negative", response: "긍정과 부정이 섞여 있음", want: model.EmotionPositive},
		{name: "neutral wins over negative", response: "중립에 가깝지만 다소 부정적", want: model.EmotionNeutral},
		{name: "no label word", response: "판단할 수 없습니다", want: ""},
		{name: "empty", response: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapLabel(tt.response))
		})
	}
}

func TestLabelPriorityOrder(t *testing.T) {
	assert.Equal(t, []string{
		model.EmotionPositive,
		model.EmotionNeutral,
		model.EmotionNegative,
	}, LabelPriority)
}

package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClusterTextsPartitions(t *testing.T) {
	items := []ClusterItem{
		{ID: 1, Label: "연기 칭찬 1", Text: "배우 연기 발성 연기력"},
		{ID: 2, Label: "연기 칭찬 2", Text: "배우 연기 발성 표정"},
		{ID: 3, Label: "좌석 불만 1", Text: "좌석 시야 단차 불편"},
		{ID: 4, Label: "좌석 불만 2", Text: "좌석 시야 단차 거리"},
	}
	groups, err := ClusterTexts(items, nil, 2)
	require.NoError(t, err)

	assert.Len(t, groups, 2)
	total := 0
	for _, labels := range groups {
		total += len(labels)
	}
	assert.Equal(t, len(items), total, "every item lands in exactly one group")
}

func TestClusterTextsClampsK(t *testing.T) {
	items := []ClusterItem{
		{ID: 1, Label: "a", Text: "배우 연기"},
		{ID: 2, Label: "b", Text: "좌석 시야"},
		{ID: 3, Label: "c", Text: "음향 음악"},
	}
	groups, err := ClusterTexts(items, nil, DefaultClusterCount)
	require.NoError(t, err)

	assert.LessOrEqual(t, len(groups), len(items))
}

func TestClusterTextsSmallInputs(t *testing.T) {
	groups, err := ClusterTexts(nil, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, groups)

	groups, err = ClusterTexts([]ClusterItem{{ID: 1, Label: "only", Text: "하나뿐"}}, nil, 10)
	require.NoError(t, err)
	assert.Equal(t, map[int][]string{1: {"only"}}, groups)
}

func TestClusterTextsEmptyVocabulary(t *testing.T) {
	items := []ClusterItem{
		{ID: 1, Label: "a", Text: "!!!"},
		{ID: 2, Label: "b", Text: "..."},
	}
	groups, err := ClusterTexts(items, nil, 2)
	require.NoError(t, err)

	assert.Equal(t, map[int][]string{1: {"a", "b"}}, groups)
}

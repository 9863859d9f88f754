package quitplan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggest_LightSmoker(t *testing.T) {
	s, err := Suggest(Baseline{CigarettesPerDay: 10, PricePerCigarette: 2000}, 90)
	require.NoError(t, err)

	assert.Equal(t, 30, s.SuggestedDuration)
	assert.Equal(t, float64(600000), s.EstimatedSavings)
	assert.Equal(t, "easy", s.Recommendations.Difficulty)
	assert.Equal(t, 75, s.Recommendations.SuccessRate)
	assert.NotEmpty(t, s.Recommendations.Tips)

	require.Len(t, s.SuggestedStages, 4)
	days := []int{6, 9, 9, 6}
	for i, st := range s.SuggestedStages {
		assert.Equal(t, days[i], st.DaysToComplete, "stage %d", i)
	}
	assert.Contains(t, s.SuggestedStages[0].Title, "8 điếu")
	assert.Contains(t, s.SuggestedStages[1].Title, "5 điếu")
	assert.Contains(t, s.SuggestedStages[2].Title, "3 điếu")
	assert.Equal(t, s.SuggestedDuration, TotalDays(s.SuggestedStages))
}

func TestSuggest_Bands(t *testing.T) {
	tests := []struct {
		cigarettes float64
		difficulty string
		duration   int
	}{
		{5, "easy", 30},
		{10, "easy", 30},
		{11, "medium", 45},
		{20, "medium", 45},
		{21, "hard", 60},
		{40, "hard", 60},
	}

	for _, tt := range tests {
		s, err := Suggest(Baseline{CigarettesPerDay: tt.cigarettes, PricePerCigarette: 1000}, 365)
		require.NoError(t, err)
		assert.Equal(t, tt.difficulty, s.Recommendations.Difficulty, "%v cigarettes", tt.cigarettes)
		assert.Equal(t, tt.duration, s.SuggestedDuration, "%v cigarettes", tt.cigarettes)
		assert.Equal(t, tt.duration, TotalDays(s.SuggestedStages))
	}
}

func TestSuggest_CappedBySubscription(t *testing.T) {
	s, err := Suggest(Baseline{CigarettesPerDay: 15, PricePerCigarette: 1500}, 20)
	require.NoError(t, err)

	assert.Equal(t, 20, s.SuggestedDuration)
	assert.Equal(t, 20, TotalDays(s.SuggestedStages))
	assert.NoError(t, ValidateStages(s.SuggestedStages, 20, DefaultRules))
}

func TestSuggest_VeryShortSubscription(t *testing.T) {
	s, err := Suggest(Baseline{CigarettesPerDay: 15, PricePerCigarette: 1500}, 3)
	require.NoError(t, err)

	require.Len(t, s.SuggestedStages, 1)
	assert.Equal(t, 3, s.SuggestedStages[0].DaysToComplete)
	assert.Contains(t, s.SuggestedStages[0].Title, "Giai đoạn 1")
}

func TestSuggest_Errors(t *testing.T) {
	_, err := Suggest(Baseline{CigarettesPerDay: 10, PricePerCigarette: 2000}, 0)
	assert.ErrorIs(t, err, ErrNoActiveSubscription)

	_, err = Suggest(Baseline{CigarettesPerDay: 10}, 30)
	assert.ErrorIs(t, err, ErrIneligible)

	_, err = Suggest(Baseline{}, 30)
	assert.ErrorIs(t, err, ErrIneligible)
}

func TestDraftHelpers(t *testing.T) {
	fields := []StageFields{{Title: " a ", DaysToComplete: 3}, {Title: "b", DaysToComplete: 4}}

	drafts := NewDrafts(fields)
	require.Len(t, drafts, 2)
	_, isNew := drafts[0].(New)
	assert.True(t, isNew)
	assert.Equal(t, fields, DraftFields(drafts))
	assert.Equal(t, "a", drafts[0].Fields().Normalize().Title)

	persisted := DraftsFromPlan(twoStagePlan())
	p, ok := persisted[1].(Persisted)
	require.True(t, ok)
	assert.Equal(t, int64(12), p.ID)
}

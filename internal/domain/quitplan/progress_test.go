package quitplan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var planStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func twoStagePlan() Plan {
	return Plan{
		ID:        1,
		Reason:    "Vì sức khỏe gia đình",
		StartDate: planStart,
		Status:    StatusActive,
		Stages: []Stage{
			{ID: 11, OrderNumber: 1, StageFields: StageFields{Title: "Giảm dần", DaysToComplete: 7}},
			{ID: 12, OrderNumber: 2, StageFields: StageFields{Title: "Ngừng hẳn", DaysToComplete: 9}},
		},
	}
}

func TestComputeCurrentStage_SecondStageInProgress(t *testing.T) {
	plan := twoStagePlan()

	progress := ComputeCurrentStage(plan, planStart.AddDate(0, 0, 10))

	require.Len(t, progress.Stages, 2)
	assert.Equal(t, StageCompleted, progress.Stages[0].Status)
	assert.Equal(t, 100, progress.Stages[0].ProgressPercentage)

	current := progress.Current()
	require.NotNil(t, current)
	assert.Equal(t, int64(12), current.ID)
	assert.Equal(t, StageInProgress, current.Status)
	assert.Equal(t, 3, current.DaysInCurrentStage)
	assert.Equal(t, 6, current.RemainingDaysInStage)
	assert.Equal(t, 33, current.ProgressPercentage)
	assert.Equal(t, 7, current.StartOffset)
	assert.Equal(t, 16, current.EndOffset)

	assert.Equal(t, 16, progress.TotalDays)
	assert.Equal(t, 10, progress.ElapsedDays)
	assert.Equal(t, 63, progress.PercentComplete)
	assert.False(t, progress.Finished)
}

func TestComputeCurrentStage_Boundaries(t *testing.T) {
	plan := twoStagePlan()

	tests := []struct {
		name       string
		offsetDays int
		statuses   []StageStatus
		current    int
	}{
		{"before start", -2, []StageStatus{StageUpcoming, StageUpcoming}, -1},
		{"first day", 0, []StageStatus{StageInProgress, StageUpcoming}, 0},
		{"last day of first stage", 6, []StageStatus{StageInProgress, StageUpcoming}, 0},
		{"first day of second stage", 7, []StageStatus{StageCompleted, StageInProgress}, 1},
		{"last day", 15, []StageStatus{StageCompleted, StageInProgress}, 1},
		{"finished", 16, []StageStatus{StageCompleted, StageCompleted}, -1},
		{"long after", 90, []StageStatus{StageCompleted, StageCompleted}, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			progress := ComputeCurrentStage(plan, planStart.AddDate(0, 0, tt.offsetDays))
			for i, want := range tt.statuses {
				assert.Equal(t, want, progress.Stages[i].Status, "stage %d", i)
			}
			assert.Equal(t, tt.current, progress.CurrentIndex)
		})
	}
}

func TestComputeCurrentStage_AtMostOneInProgress(t *testing.T) {
	plan := Plan{
		StartDate: planStart,
		Status:    StatusActive,
		Stages: []Stage{
			{ID: 1, OrderNumber: 1, StageFields: StageFields{Title: "a", DaysToComplete: 3}},
			{ID: 2, OrderNumber: 2, StageFields: StageFields{Title: "b", DaysToComplete: 5}},
			{ID: 3, OrderNumber: 3, StageFields: StageFields{Title: "c", DaysToComplete: 1}},
			{ID: 4, OrderNumber: 4, StageFields: StageFields{Title: "d", DaysToComplete: 12}},
		},
	}

	for day := -3; day < 30; day++ {
		progress := ComputeCurrentStage(plan, planStart.AddDate(0, 0, day))

		inProgress := 0
		seen := StageCompleted
		for _, s := range progress.Stages {
			switch s.Status {
			case StageCompleted:
				assert.Equal(t, StageCompleted, seen, "completed after a later status on day %d", day)
			case StageInProgress:
				inProgress++
				assert.Equal(t, StageCompleted, seen, "in_progress after upcoming on day %d", day)
				seen = StageInProgress
			case StageUpcoming:
				seen = StageUpcoming
			}
		}
		assert.LessOrEqual(t, inProgress, 1, "day %d", day)
	}
}

func TestComputeCurrentStage_OrdersByOrderNumber(t *testing.T) {
	plan := twoStagePlan()
	plan.Stages[0], plan.Stages[1] = plan.Stages[1], plan.Stages[0]

	progress := ComputeCurrentStage(plan, planStart.AddDate(0, 0, 2))

	assert.Equal(t, int64(11), progress.Stages[0].ID)
	assert.Equal(t, StageInProgress, progress.Stages[0].Status)
	// 原切片不应被重排
	assert.Equal(t, int64(12), plan.Stages[0].ID)
}

func TestComputeCurrentStage_Idempotent(t *testing.T) {
	plan := twoStagePlan()
	now := planStart.AddDate(0, 0, 10).Add(13 * time.Hour)

	first := ComputeCurrentStage(plan, now)
	second := ComputeCurrentStage(plan, now)

	assert.Equal(t, first, second)
}

func TestComputeCurrentStage_UsesStartLocation(t *testing.T) {
	loc := time.FixedZone("ICT", 7*3600)
	plan := twoStagePlan()
	plan.StartDate = time.Date(2024, 1, 1, 0, 0, 0, 0, loc)

	// 2024-01-10 18:00 UTC 已是当地 01-11
	now := time.Date(2024, 1, 10, 18, 0, 0, 0, time.UTC)
	progress := ComputeCurrentStage(plan, now)

	assert.Equal(t, 10, progress.ElapsedDays)
}

func TestComputeCurrentStage_EmptyPlan(t *testing.T) {
	progress := ComputeCurrentStage(Plan{StartDate: planStart}, planStart)

	assert.Empty(t, progress.Stages)
	assert.Nil(t, progress.Current())
	assert.False(t, progress.Finished)
	assert.Equal(t, 0, progress.PercentComplete)
}

func TestExpectedCompletionDate(t *testing.T) {
	stages := []StageFields{{Title: "a", DaysToComplete: 12}, {Title: "b", DaysToComplete: 8}}

	t.Run("update preview anchors on original start", func(t *testing.T) {
		plan := twoStagePlan()
		got := PreviewUpdate(plan, stages)
		assert.Equal(t, time.Date(2024, 1, 21, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("new plan anchors on today", func(t *testing.T) {
		now := time.Date(2024, 5, 10, 15, 30, 0, 0, time.UTC)
		got := PreviewNew(stages, now)
		assert.Equal(t, time.Date(2024, 5, 30, 0, 0, 0, 0, time.UTC), got)
	})
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusActive.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}

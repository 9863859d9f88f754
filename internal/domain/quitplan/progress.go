package quitplan

import (
	"math"
	"time"
)

// StageProgress 单个阶段的派生进度
type StageProgress struct {
	Stage
	Status               StageStatus `json:"status"`
	StartOffset          int         `json:"startOffset"`
	EndOffset            int         `json:"endOffset"`
	DaysInCurrentStage   int         `json:"daysInCurrentStage"`
	RemainingDaysInStage int         `json:"remainingDaysInStage"`
	ProgressPercentage   int         `json:"progressPercentage"`
}

// Progress 计划整体派生进度
type Progress struct {
	Stages          []StageProgress `json:"stages"`
	CurrentIndex    int             `json:"currentIndex"`
	ElapsedDays     int             `json:"elapsedDays"`
	TotalDays       int             `json:"totalDays"`
	PercentComplete int             `json:"percentComplete"`
	Finished        bool            `json:"finished"`
}

// Current returns the in-progress stage, or nil when there is none (plan not
// started yet, or every stage completed).
func (p Progress) Current() *StageProgress {
	if p.CurrentIndex < 0 || p.CurrentIndex >= len(p.Stages) {
		return nil
	}
	return &p.Stages[p.CurrentIndex]
}

// StatusOf returns the derived status of the stage with the given id.
func (p Progress) StatusOf(id int64) (StageStatus, bool) {
	for _, s := range p.Stages {
		if s.ID == id {
			return s.Status, true
		}
	}
	return "", false
}

// ComputeCurrentStage walks the stages in order number and places now inside
// the cumulative day ranges [start, start+days). Stages before the containing
// one are completed, the containing one is in progress, later ones upcoming.
// When every stage has elapsed all are completed, which is a valid terminal
// state. The result depends only on (plan, now).
func ComputeCurrentStage(plan Plan, now time.Time) Progress {
	ordered := plan.Ordered()
	elapsed := ElapsedDays(plan.StartDate, now)

	progress := Progress{
		Stages:       make([]StageProgress, len(ordered)),
		CurrentIndex: -1,
		ElapsedDays:  elapsed,
	}

	cum := 0
	for i, s := range ordered {
		sp := StageProgress{
			Stage:       s,
			StartOffset: cum,
			EndOffset:   cum + s.DaysToComplete,
		}

		switch {
		case elapsed >= sp.EndOffset:
			sp.Status = StageCompleted
			sp.DaysInCurrentStage = s.DaysToComplete
			sp.ProgressPercentage = 100
		case elapsed >= sp.StartOffset:
			in := elapsed - sp.StartOffset
			sp.Status = StageInProgress
			sp.DaysInCurrentStage = in
			sp.RemainingDaysInStage = s.DaysToComplete - in
			sp.ProgressPercentage = percent(in, s.DaysToComplete)
			progress.CurrentIndex = i
		default:
			sp.Status = StageUpcoming
			sp.RemainingDaysInStage = s.DaysToComplete
		}

		progress.Stages[i] = sp
		cum = sp.EndOffset
	}

	progress.TotalDays = cum
	done := elapsed
	if done < 0 {
		done = 0
	}
	if done > cum {
		done = cum
	}
	progress.PercentComplete = percent(done, cum)
	progress.Finished = len(ordered) > 0 && elapsed >= cum

	return progress
}

func percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	p := int(math.Round(100 * float64(part) / float64(whole)))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Package quitplan holds the quit-plan rules shared by the API server and the
// client SDK: stage progress derivation, duration bounds, locked-stage
// protection on update and the change detector. Nothing here performs I/O.
package quitplan

import (
	"sort"
	"time"
)

// Status 计划状态，none → active → {completed | cancelled}
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// StageStatus 阶段状态（派生值，不持久化）
type StageStatus string

const (
	StageCompleted  StageStatus = "completed"
	StageInProgress StageStatus = "in_progress"
	StageUpcoming   StageStatus = "upcoming"
)

// Locked reports whether a stage with this status may no longer be edited or removed.
func (s StageStatus) Locked() bool {
	return s == StageCompleted || s == StageInProgress
}

// StageFields 阶段中可编辑的字段
type StageFields struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	DaysToComplete int    `json:"daysToComplete"`
}

// Stage 已持久化的阶段
type Stage struct {
	ID          int64 `json:"id"`
	OrderNumber int   `json:"orderNumber"`
	StageFields
}

// Plan 戒烟计划
type Plan struct {
	ID        int64     `json:"id"`
	Reason    string    `json:"reason"`
	StartDate time.Time `json:"startDate"`
	Status    Status    `json:"status"`
	Stages    []Stage   `json:"stages"`
}

// Ordered returns the stages sorted by order number. The input is not modified.
func (p Plan) Ordered() []Stage {
	stages := make([]Stage, len(p.Stages))
	copy(stages, p.Stages)
	sort.SliceStable(stages, func(i, j int) bool {
		return stages[i].OrderNumber < stages[j].OrderNumber
	})
	return stages
}

// Fields returns the editable fields of the ordered stages.
func (p Plan) Fields() []StageFields {
	ordered := p.Ordered()
	fields := make([]StageFields, len(ordered))
	for i, s := range ordered {
		fields[i] = s.StageFields
	}
	return fields
}

// TotalDays returns the planned duration of the given stages.
func TotalDays(stages []StageFields) int {
	total := 0
	for _, s := range stages {
		total += s.DaysToComplete
	}
	return total
}

// ExpectedCompletionDate is anchor + Σ daysToComplete.
func ExpectedCompletionDate(stages []StageFields, anchor time.Time) time.Time {
	return anchor.AddDate(0, 0, TotalDays(stages))
}

// PreviewNew anchors a not-yet-created plan on today.
func PreviewNew(stages []StageFields, now time.Time) time.Time {
	return ExpectedCompletionDate(stages, StartOfDay(now))
}

// PreviewUpdate anchors an edit preview on the persisted start date. Editing
// never shifts the committed start.
func PreviewUpdate(plan Plan, stages []StageFields) time.Time {
	return ExpectedCompletionDate(stages, plan.StartDate)
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ElapsedDays counts whole calendar days from start to now, in start's
// location. It is negative when the plan starts in the future.
func ElapsedDays(start, now time.Time) int {
	loc := start.Location()
	sy, sm, sd := start.Date()
	ny, nm, nd := now.In(loc).Date()
	a := time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

package quitplan

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrReasonRequired          = errors.New("Vui lòng nhập lý do cai thuốc")
	ErrNoStages                = errors.New("Kế hoạch phải có ít nhất một giai đoạn")
	ErrStageTitleRequired      = errors.New("Tên giai đoạn không được để trống")
	ErrStageDaysOutOfRange     = errors.New("Số ngày của giai đoạn không hợp lệ")
	ErrPlanTooShort            = errors.New("Tổng thời gian kế hoạch quá ngắn")
	ErrPlanExceedsSubscription = errors.New("Tổng thời gian kế hoạch vượt quá thời hạn gói thành viên")
	ErrUnknownStage            = errors.New("Giai đoạn không thuộc kế hoạch này")
	ErrDuplicateStage          = errors.New("Giai đoạn bị lặp lại")
	ErrLockedStageModified     = errors.New("Không thể chỉnh sửa giai đoạn đã hoàn thành hoặc đang thực hiện")
	ErrLockedStageRemoved      = errors.New("Không thể xóa giai đoạn đã hoàn thành hoặc đang thực hiện")
	ErrLockedStageReordered    = errors.New("Không thể thay đổi thứ tự giai đoạn đã hoàn thành hoặc đang thực hiện")
	ErrPlanNotActive           = errors.New("Kế hoạch không còn hoạt động")
)

// Rules 计划时长约束
type Rules struct {
	// 总天数必须严格大于该值
	MinTotalDays int
	MaxStageDays int
}

// DefaultRules: total > 15 days, each stage 1..365 days.
var DefaultRules = Rules{MinTotalDays: 15, MaxStageDays: 365}

func (r Rules) withDefaults() Rules {
	if r.MinTotalDays <= 0 {
		r.MinTotalDays = DefaultRules.MinTotalDays
	}
	if r.MaxStageDays <= 0 {
		r.MaxStageDays = DefaultRules.MaxStageDays
	}
	return r
}

// ValidationError carries the offending stage or totals alongside a sentinel.
type ValidationError struct {
	Err        error
	StageIndex int // -1 when not stage specific
	Total      int
	Limit      int
}

func (e *ValidationError) Error() string {
	switch {
	case errors.Is(e.Err, ErrPlanTooShort):
		return fmt.Sprintf("Tổng thời gian kế hoạch (%d ngày) phải lớn hơn %d ngày", e.Total, e.Limit)
	case errors.Is(e.Err, ErrPlanExceedsSubscription):
		return fmt.Sprintf("Tổng thời gian kế hoạch (%d ngày) vượt quá số ngày còn lại của gói thành viên (%d ngày)", e.Total, e.Limit)
	case errors.Is(e.Err, ErrStageDaysOutOfRange):
		return fmt.Sprintf("Giai đoạn %d: số ngày phải từ 1 đến %d", e.StageIndex+1, e.Limit)
	case e.StageIndex >= 0:
		return fmt.Sprintf("Giai đoạn %d: %s", e.StageIndex+1, e.Err.Error())
	default:
		return e.Err.Error()
	}
}

func (e *ValidationError) Unwrap() error { return e.Err }

func stageErr(err error, idx int) error {
	return &ValidationError{Err: err, StageIndex: idx}
}

// ValidateStages checks the stage list against the duration bounds: at least
// one stage, titled, 1..MaxStageDays each, total > MinTotalDays and
// total <= daysRemaining.
func ValidateStages(stages []StageFields, daysRemaining int, rules Rules) error {
	rules = rules.withDefaults()

	if len(stages) == 0 {
		return ErrNoStages
	}

	for i, s := range stages {
		if strings.TrimSpace(s.Title) == "" {
			return stageErr(ErrStageTitleRequired, i)
		}
		if s.DaysToComplete < 1 || s.DaysToComplete > rules.MaxStageDays {
			return &ValidationError{Err: ErrStageDaysOutOfRange, StageIndex: i, Limit: rules.MaxStageDays}
		}
	}

	total := TotalDays(stages)
	if total <= rules.MinTotalDays {
		return &ValidationError{Err: ErrPlanTooShort, StageIndex: -1, Total: total, Limit: rules.MinTotalDays}
	}
	if total > daysRemaining {
		return &ValidationError{Err: ErrPlanExceedsSubscription, StageIndex: -1, Total: total, Limit: daysRemaining}
	}
	return nil
}

// ValidateCreate validates a custom-mode creation request.
func ValidateCreate(reason string, stages []StageFields, daysRemaining int, rules Rules) error {
	if strings.TrimSpace(reason) == "" {
		return ErrReasonRequired
	}
	return ValidateStages(stages, daysRemaining, rules)
}

// ValidateUpdate validates an in-place update of plan at now. Besides the
// create rules, completed and in-progress stages must be resubmitted
// unchanged, as the leading stages, in their original order. Upcoming stages
// may be edited, removed, or followed by new ones.
func ValidateUpdate(plan Plan, reason string, drafts []Draft, daysRemaining int, now time.Time, rules Rules) error {
	if plan.Status != StatusActive {
		return ErrPlanNotActive
	}
	if strings.TrimSpace(reason) == "" {
		return ErrReasonRequired
	}
	if err := ValidateStages(DraftFields(drafts), daysRemaining, rules); err != nil {
		return err
	}

	existing := make(map[int64]Stage, len(plan.Stages))
	for _, s := range plan.Stages {
		existing[s.ID] = s
	}

	position := make(map[int64]int, len(drafts))
	for i, d := range drafts {
		p, ok := d.(Persisted)
		if !ok {
			continue
		}
		if _, ok := existing[p.ID]; !ok {
			return stageErr(ErrUnknownStage, i)
		}
		if _, dup := position[p.ID]; dup {
			return stageErr(ErrDuplicateStage, i)
		}
		position[p.ID] = i
	}

	progress := ComputeCurrentStage(plan, now)
	for k, sp := range progress.Stages {
		if !sp.Status.Locked() {
			break
		}

		at, present := position[sp.ID]
		if !present {
			return stageErr(ErrLockedStageRemoved, k)
		}
		if at != k {
			return stageErr(ErrLockedStageReordered, at)
		}
		if drafts[at].Fields().Normalize() != sp.StageFields.Normalize() {
			return stageErr(ErrLockedStageModified, at)
		}
	}

	return nil
}

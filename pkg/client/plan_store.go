package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/breathfree/quit_go_server/internal/domain/quitplan"
	"github.com/breathfree/quit_go_server/internal/model/dto"
)

var (
	// ErrInFlight is returned without a request when the same operation is already running.
	ErrInFlight = errors.New("Yêu cầu đang được xử lý, vui lòng chờ")
	// ErrNoCurrentPlan is returned by update and cancel when no plan is loaded.
	ErrNoCurrentPlan = errors.New("Chưa có kế hoạch cai thuốc")
	// ErrNoSuggestion is returned by template creation before a suggestion was fetched.
	ErrNoSuggestion = errors.New("Chưa có kế hoạch gợi ý")
	// ErrStale marks a result discarded because the store was reset meanwhile.
	ErrStale = errors.New("store was reset while the request was running")
)

// StoreStatus 最近一次请求的状态
type StoreStatus string

const (
	StatusIdle      StoreStatus = "idle"
	StatusLoading   StoreStatus = "loading"
	StatusSucceeded StoreStatus = "succeeded"
	StatusFailed    StoreStatus = "failed"
)

const (
	opFetch      = "fetch"
	opSuggestion = "suggestion"
	opCreate     = "create"
	opUpdate     = "update"
	opCancel     = "cancel"
)

// PlanState is a copy of the store contents.
type PlanState struct {
	Status       StoreStatus
	Err          error
	CurrentPlan  *dto.PlanInfo
	CurrentStage *quitplan.StageProgress
	Suggestion   *quitplan.Suggestion
}

// PlanStore keeps the member's quit plan. Inputs are validated locally before
// any request; a second call of an operation that is still running fails with
// ErrInFlight. Results of requests started before Reset are dropped.
type PlanStore struct {
	client *Client
	rules  quitplan.Rules
	now    func() time.Time

	mu         sync.Mutex
	state      PlanState
	inflight   map[string]struct{}
	generation uint64
}

// NewPlanStore creates an empty store.
func NewPlanStore(c *Client) *PlanStore {
	return &PlanStore{
		client:   c,
		rules:    quitplan.DefaultRules,
		now:      time.Now,
		state:    PlanState{Status: StatusIdle},
		inflight: make(map[string]struct{}),
	}
}

// State returns a snapshot of the store.
func (s *PlanStore) State() PlanState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Reset clears the store. Requests still running will not touch it.
func (s *PlanStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.state = PlanState{Status: StatusIdle}
}

// FetchCurrent loads the active plan. No plan is a fulfilled nil.
func (s *PlanStore) FetchCurrent(ctx context.Context) Result[*dto.PlanInfo] {
	gen, err := s.begin(opFetch)
	if err != nil {
		return rejected[*dto.PlanInfo](err)
	}
	defer s.end(opFetch)

	var plan dto.PlanInfo
	err = s.client.do(ctx, http.MethodGet, "/quit-plans/current", nil, &plan)
	if IsCode(err, CodeResourceNotFound) {
		return s.finishPlan(gen, nil, nil)
	}
	return s.finishPlan(gen, &plan, err)
}

// FetchSuggestion loads the server suggestion used by template creation.
func (s *PlanStore) FetchSuggestion(ctx context.Context) Result[*quitplan.Suggestion] {
	gen, err := s.begin(opSuggestion)
	if err != nil {
		return rejected[*quitplan.Suggestion](err)
	}
	defer s.end(opSuggestion)

	var suggestion quitplan.Suggestion
	if err := s.client.do(ctx, http.MethodGet, "/quit-plans/suggestions", nil, &suggestion); err != nil {
		s.apply(gen, func(st *PlanState) { st.Status, st.Err = StatusFailed, err })
		return rejected[*quitplan.Suggestion](err)
	}
	if !s.apply(gen, func(st *PlanState) {
		st.Status, st.Err = StatusSucceeded, nil
		st.Suggestion = &suggestion
	}) {
		return rejected[*quitplan.Suggestion](ErrStale)
	}
	return fulfilled(&suggestion)
}

// Create creates a plan from custom stages. daysRemaining comes from the
// subscription snapshot.
func (s *PlanStore) Create(ctx context.Context, reason string, stages []quitplan.StageFields, daysRemaining int) Result[*dto.PlanInfo] {
	normalized := make([]quitplan.StageFields, len(stages))
	for i, f := range stages {
		normalized[i] = f.Normalize()
	}
	stages = normalized
	if err := quitplan.ValidateCreate(reason, stages, daysRemaining, s.rules); err != nil {
		return rejected[*dto.PlanInfo](err)
	}
	return s.create(ctx, dto.CreatePlanRequest{Reason: reason, Stages: stageInputs(quitplan.NewDrafts(stages))})
}

// CreateFromTemplate creates a plan from the previously fetched suggestion.
func (s *PlanStore) CreateFromTemplate(ctx context.Context, reason string, daysRemaining int) Result[*dto.PlanInfo] {
	suggestion := s.State().Suggestion
	if suggestion == nil {
		return rejected[*dto.PlanInfo](ErrNoSuggestion)
	}
	if err := quitplan.ValidateCreate(reason, suggestion.SuggestedStages, daysRemaining, s.rules); err != nil {
		return rejected[*dto.PlanInfo](err)
	}
	return s.create(ctx, dto.CreatePlanRequest{Reason: reason, UseTemplate: true})
}

func (s *PlanStore) create(ctx context.Context, req dto.CreatePlanRequest) Result[*dto.PlanInfo] {
	gen, err := s.begin(opCreate)
	if err != nil {
		return rejected[*dto.PlanInfo](err)
	}
	defer s.end(opCreate)

	var plan dto.PlanInfo
	err = s.client.do(ctx, http.MethodPost, "/quit-plans", req, &plan)
	return s.finishPlan(gen, &plan, err)
}

// Update edits the loaded plan. When nothing changed it returns the loaded
// plan without a request.
func (s *PlanStore) Update(ctx context.Context, reason string, drafts []quitplan.Draft, daysRemaining int) Result[*dto.PlanInfo] {
	current := s.State().CurrentPlan
	if current == nil {
		return rejected[*dto.PlanInfo](ErrNoCurrentPlan)
	}

	plan := domainPlan(current)
	if !quitplan.HasChanges(plan, reason, drafts) {
		return fulfilled(current)
	}
	if err := quitplan.ValidateUpdate(plan, reason, drafts, daysRemaining, s.now(), s.rules); err != nil {
		return rejected[*dto.PlanInfo](err)
	}

	gen, err := s.begin(opUpdate)
	if err != nil {
		return rejected[*dto.PlanInfo](err)
	}
	defer s.end(opUpdate)

	var updated dto.PlanInfo
	req := dto.UpdatePlanRequest{Reason: reason, Stages: stageInputs(drafts)}
	err = s.client.do(ctx, http.MethodPut, fmt.Sprintf("/quit-plans/%d", current.ID), req, &updated)
	return s.finishPlan(gen, &updated, err)
}

// Cancel cancels the loaded plan and clears it without refetching.
func (s *PlanStore) Cancel(ctx context.Context) Result[struct{}] {
	current := s.State().CurrentPlan
	if current == nil {
		return rejected[struct{}](ErrNoCurrentPlan)
	}

	gen, err := s.begin(opCancel)
	if err != nil {
		return rejected[struct{}](err)
	}
	defer s.end(opCancel)

	if err := s.client.do(ctx, http.MethodPut, fmt.Sprintf("/quit-plans/%d/cancel", current.ID), nil, nil); err != nil {
		s.apply(gen, func(st *PlanState) { st.Status, st.Err = StatusFailed, err })
		return rejected[struct{}](err)
	}
	if !s.apply(gen, func(st *PlanState) {
		st.Status, st.Err = StatusSucceeded, nil
		st.CurrentPlan, st.CurrentStage = nil, nil
	}) {
		return rejected[struct{}](ErrStale)
	}
	return fulfilled(struct{}{})
}

// begin takes the in-flight token for op and marks the store loading.
func (s *PlanStore) begin(op string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[op]; busy {
		return 0, ErrInFlight
	}
	s.inflight[op] = struct{}{}
	s.state.Status, s.state.Err = StatusLoading, nil
	return s.generation, nil
}

func (s *PlanStore) end(op string) {
	s.mu.Lock()
	delete(s.inflight, op)
	s.mu.Unlock()
}

// apply runs fn on the state unless the store was reset since gen.
func (s *PlanStore) apply(gen uint64, fn func(*PlanState)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return false
	}
	fn(&s.state)
	return true
}

func (s *PlanStore) finishPlan(gen uint64, plan *dto.PlanInfo, err error) Result[*dto.PlanInfo] {
	if err != nil {
		s.apply(gen, func(st *PlanState) { st.Status, st.Err = StatusFailed, err })
		return rejected[*dto.PlanInfo](err)
	}
	// 已完成或已取消的计划不再是当前计划
	if plan != nil && quitplan.Status(plan.Status).Terminal() {
		plan = nil
	}
	if !s.apply(gen, func(st *PlanState) {
		st.Status, st.Err = StatusSucceeded, nil
		st.CurrentPlan = plan
		st.CurrentStage = nil
		if plan != nil {
			st.CurrentStage = plan.CurrentStage
		}
	}) {
		return rejected[*dto.PlanInfo](ErrStale)
	}
	return fulfilled(plan)
}

func domainPlan(info *dto.PlanInfo) quitplan.Plan {
	plan := quitplan.Plan{
		ID:        info.ID,
		Reason:    info.Reason,
		StartDate: info.StartDate,
		Status:    quitplan.Status(info.Status),
		Stages:    make([]quitplan.Stage, len(info.Stages)),
	}
	for i, sp := range info.Stages {
		plan.Stages[i] = sp.Stage
	}
	return plan
}

func stageInputs(drafts []quitplan.Draft) []dto.StageInput {
	inputs := make([]dto.StageInput, len(drafts))
	for i, d := range drafts {
		f := d.Fields().Normalize()
		inputs[i] = dto.StageInput{Title: f.Title, Description: f.Description, DaysToComplete: f.DaysToComplete}
		if p, ok := d.(quitplan.Persisted); ok {
			id := p.ID
			inputs[i].ID = &id
		}
	}
	return inputs
}

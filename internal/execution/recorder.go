package execution

import (
	"context"
	"sync"

	"github.com/radiusdt/vector-insights/internal/models"
)

// Call is one request captured by a Recorder.
type Call struct {
	Operation  string
	ActionType models.ActionType
	Parameters models.ActionParameters
	Rule       *RuleRequest
	EntityID   string
	Status     models.EntityStatus
	Build      *models.BuildConfiguration
}

// Recorder is an in-memory Backend. It records every call and can be told to
// fail an operation. It is used in development mode and in tests.
type Recorder struct {
	mu       sync.Mutex
	calls    []Call
	failures map[string]error
	statuses map[string]models.EntityStatus
	hook     func(Call)
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		failures: make(map[string]error),
		statuses: make(map[string]models.EntityStatus),
	}
}

// Operation names used by Recorder.
const (
	OpExecuteAction = "execute_action"
	OpCreateRule    = "create_rule"
	OpSetStatus     = "set_status"
	OpBuildCampaign = "build_campaign"
)

// FailWith makes every later call of op return err. A nil err clears it.
func (r *Recorder) FailWith(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.failures, op)
		return
	}
	r.failures[op] = err
}

// OnCall registers fn to run inside every call, before the result is
// decided. Tests use it to block a call in flight.
func (r *Recorder) OnCall(fn func(Call)) {
	r.mu.Lock()
	r.hook = fn
	r.mu.Unlock()
}

// Calls returns a copy of the recorded calls in order.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Status returns the last status successfully set for an entity.
func (r *Recorder) Status(entityID string) (models.EntityStatus, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.statuses[entityID]
	return s, ok
}

// ExecuteAction records the action.
func (r *Recorder) ExecuteAction(_ context.Context, actionType models.ActionType, params models.ActionParameters) (Result, error) {
	if err := r.record(Call{Operation: OpExecuteAction, ActionType: actionType, Parameters: params}); err != nil {
		return Result{Success: false, Message: err.Error()}, err
	}
	return Result{Success: true, Message: "action " + string(actionType) + " recorded"}, nil
}

// CreateRule records the rule request.
func (r *Recorder) CreateRule(_ context.Context, req RuleRequest) error {
	return r.record(Call{Operation: OpCreateRule, Rule: &req})
}

// SetStatus records the status change and remembers it on success.
func (r *Recorder) SetStatus(_ context.Context, entityID string, status models.EntityStatus) error {
	if err := r.record(Call{Operation: OpSetStatus, EntityID: entityID, Status: status}); err != nil {
		return err
	}
	r.mu.Lock()
	r.statuses[entityID] = status
	r.mu.Unlock()
	return nil
}

// BuildSegmentedCampaign records the build configuration.
func (r *Recorder) BuildSegmentedCampaign(_ context.Context, cfg models.BuildConfiguration) (Result, error) {
	if err := r.record(Call{Operation: OpBuildCampaign, Build: &cfg}); err != nil {
		return Result{Success: false, Message: err.Error()}, err
	}
	return Result{Success: true, Message: "build recorded"}, nil
}

func (r *Recorder) record(c Call) error {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	hook := r.hook
	r.mu.Unlock()

	if hook != nil {
		hook(c)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failures[c.Operation]
}

// Package execution defines the collaborators that mutate ad platform state
// and provides an HTTP client for the execution backend plus an in-memory
// recorder.
package execution

import (
	"context"
	"errors"

	"github.com/radiusdt/vector-insights/internal/models"
)

// ErrBackend marks failures reported by or on the way to the execution backend.
var ErrBackend = errors.New("execution backend failure")

// Result is the outcome the backend reports for an action or build.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// RuleRequest asks the backend to persist and activate an automated rule
// derived from a suggestion.
type RuleRequest struct {
	InsightID      string                `json:"insight_id"`
	EntityID       string                `json:"entity_id"`
	Platform       models.Platform       `json:"platform"`
	SuggestionType models.SuggestionType `json:"suggestion_type"`
	Action         *models.Action        `json:"action,omitempty"`
}

// ActionExecutor runs a single executable action.
type ActionExecutor interface {
	ExecuteAction(ctx context.Context, actionType models.ActionType, params models.ActionParameters) (Result, error)
}

// RuleCreator persists an automated rule.
type RuleCreator interface {
	CreateRule(ctx context.Context, req RuleRequest) error
}

// StatusMutator changes the delivery status of an entity.
type StatusMutator interface {
	SetStatus(ctx context.Context, entityID string, status models.EntityStatus) error
}

// CampaignBuilder submits an assembled build configuration.
type CampaignBuilder interface {
	BuildSegmentedCampaign(ctx context.Context, cfg models.BuildConfiguration) (Result, error)
}

// Backend is the full set of execution collaborators.
type Backend interface {
	ActionExecutor
	RuleCreator
	StatusMutator
	CampaignBuilder
}

package execution

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/radiusdt/vector-insights/internal/config"
	"github.com/radiusdt/vector-insights/internal/metrics"
	"github.com/radiusdt/vector-insights/internal/models"
	"go.uber.org/zap"
)

// Header names sent to the execution backend.
const (
	APIKeyHeader    = "X-API-Key"
	RequestIDHeader = "X-Request-ID"
)

// Backend endpoint paths.
const (
	executeActionPath = "/v1/actions/execute"
	createRulePath    = "/v1/rules"
	entityStatusPath  = "/v1/entities/%s/status"
	buildCampaignPath = "/v1/campaigns/build"
)

// maxErrorBody bounds how much of a failed response is kept in the error.
const maxErrorBody = 4 << 10

// HTTPBackend calls the execution backend over JSON/HTTP.
type HTTPBackend struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewHTTPBackend creates a backend client. m may be nil.
func NewHTTPBackend(cfg config.BackendConfig, logger *zap.Logger, m *metrics.Metrics) *HTTPBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPBackend{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
		metrics: m,
	}
}

type executeActionRequest struct {
	ActionType models.ActionType       `json:"action_type"`
	Parameters models.ActionParameters `json:"parameters"`
}

type setStatusRequest struct {
	Status models.EntityStatus `json:"status"`
}

// ExecuteAction runs an action on the backend.
func (b *HTTPBackend) ExecuteAction(ctx context.Context, actionType models.ActionType, params models.ActionParameters) (Result, error) {
	var res Result
	err := b.post(ctx, OpExecuteAction, executeActionPath, executeActionRequest{ActionType: actionType, Parameters: params}, &res)
	return res, err
}

// CreateRule persists an automated rule.
func (b *HTTPBackend) CreateRule(ctx context.Context, req RuleRequest) error {
	return b.post(ctx, OpCreateRule, createRulePath, req, nil)
}

// SetStatus changes an entity's delivery status.
func (b *HTTPBackend) SetStatus(ctx context.Context, entityID string, status models.EntityStatus) error {
	path := fmt.Sprintf(entityStatusPath, url.PathEscape(entityID))
	return b.post(ctx, OpSetStatus, path, setStatusRequest{Status: status}, nil)
}

// BuildSegmentedCampaign submits an assembled build configuration.
func (b *HTTPBackend) BuildSegmentedCampaign(ctx context.Context, cfg models.BuildConfiguration) (Result, error) {
	var res Result
	err := b.post(ctx, OpBuildCampaign, buildCampaignPath, cfg, &res)
	return res, err
}

// post sends body as JSON and decodes the response into out when out is
// non-nil. Non-2xx responses become errors wrapping ErrBackend.
func (b *HTTPBackend) post(ctx context.Context, op, path string, body, out any) (err error) {
	start := time.Now()
	requestID := uuid.NewString()
	defer func() {
		if b.metrics != nil {
			b.metrics.RecordBackendCall(op, err == nil, time.Since(start))
		}
		if err != nil {
			b.logger.Error("backend call failed",
				zap.String("operation", op),
				zap.String("request_id", requestID),
				zap.Duration("duration", time.Since(start)),
				zap.Error(err),
			)
			return
		}
		b.logger.Debug("backend call completed",
			zap.String("operation", op),
			zap.String("request_id", requestID),
			zap.Duration("duration", time.Since(start)),
		)
	}()

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if b.apiKey != "" {
		req.Header.Set(APIKeyHeader, b.apiKey)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrBackend, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: %s returned %d: %s", ErrBackend, op, resp.StatusCode, errorMessage(msg))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("%w: decode %s response: %v", ErrBackend, op, err)
	}
	return nil
}

// errorMessage extracts {"error": "..."} or {"message": "..."} from a failed
// response, falling back to the raw body.
func errorMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(body))
}

package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dduksang/deploymon/internal/contracts"
	"github.com/dduksang/deploymon/internal/domain"
	"github.com/dduksang/deploymon/internal/errors"
)

const (
	HealthStatusOK          HealthStatus = "ok"
	HealthStatusTimeout     HealthStatus = "timeout"
	HealthStatusUnreachable HealthStatus = "unreachable"
	HealthStatusUnexpected  HealthStatus = "unexpected"
	HealthStatusUnknown     HealthStatus = "unknown"
)

// DomainCheckStatus is a wrapper that allows receivers to be declared in the API package that deal with domain types.
type DomainCheckStatus domain.CheckStatus

// DomainVerdict wraps a verdict for conversion to its API form.
type DomainVerdict domain.HealthVerdict

// HealthStatus represents the latest known status of a single check.
type HealthStatus string

// CheckHealth describes the most recent outcome of a single check.
type CheckHealth struct {
	Name           string       `json:"name"`
	Status         HealthStatus `json:"status"                   enum:"ok,timeout,unreachable,unexpected,unknown"`
	StatusCode     *int         `json:"statusCode,omitempty"`
	Latency        *string      `json:"latency,omitempty"`
	Reason         string       `json:"reason,omitempty"`
	LastChecked    *time.Time   `json:"lastChecked,omitempty"`
	LastSuccessful *time.Time   `json:"lastSuccessful,omitempty"`
}

// CheckOutcome is a single check's result within a verdict.
type CheckOutcome struct {
	Name       string  `json:"name"`
	Healthy    bool    `json:"healthy"`
	StatusCode *int    `json:"statusCode,omitempty"`
	Latency    string  `json:"latency"`
	ErrorKind  string  `json:"errorKind"`
	Reason     string  `json:"reason,omitempty"`
	Excerpt    *string `json:"excerpt,omitempty"`
}

// Verdict is the API form of an evaluation cycle.
type Verdict struct {
	ID           string         `json:"id"`
	Timestamp    time.Time      `json:"timestamp"`
	Healthy      bool           `json:"healthy"`
	HealthyCount int            `json:"healthyCount"`
	TotalCount   int            `json:"totalCount"`
	Ratio        float64        `json:"ratio"`
	Duration     string         `json:"duration"`
	Error        string         `json:"error,omitempty"`
	Checks       []CheckOutcome `json:"checks"`
}

// MonitorHealth is the overall state of the monitor.
type MonitorHealth struct {
	State               string     `json:"state"               enum:"unknown,healthy,unhealthy"`
	ConsecutiveFailures int        `json:"consecutiveFailures"`
	StartedAt           *time.Time `json:"startedAt,omitempty"`
	LastCheck           *time.Time `json:"lastCheck,omitempty"`
	UptimeSeconds       float64    `json:"uptimeSeconds"`
	DowntimeSeconds     float64    `json:"downtimeSeconds"`
	Availability        float64    `json:"availability"`
	TotalEvaluations    int        `json:"totalEvaluations"`
	FailedEvaluations   int        `json:"failedEvaluations"`
	HealthyCount        int        `json:"healthyCount"`
	TotalCount          int        `json:"totalCount"`
	Ratio               float64    `json:"ratio"`
}

// MonitorHealthResponse is the response for GET /health
type MonitorHealthResponse struct {
	Body MonitorHealth
}

// VerdictResponse is the response for GET /health/verdict
type VerdictResponse struct {
	Body Verdict
}

// ChecksHealthResponse is the response for GET /health/checks
type ChecksHealthResponse struct {
	Body struct {
		Checks []CheckHealth `doc:"Tracked check health statuses" json:"checks"`
	}
}

// CheckHealthRequest represents the incoming request for obtaining CheckHealth.
type CheckHealthRequest struct {
	Name string `doc:"Name of the check" example:"Homepage" path:"name"`
}

// CheckHealthResponse represents the wrapped API response for a CheckHealth.
type CheckHealthResponse struct {
	Body CheckHealth
}

// LivenessResponse is the response for GET /healthz, 503 while the deployment is unhealthy.
type LivenessResponse struct {
	Status int
	Body   struct {
		State string `json:"state" enum:"unknown,healthy,unhealthy"`
	}
}

// ToAPIType can be used to convert a wrapped domain type to an API-safe type.
func (d DomainCheckStatus) ToAPIType() (CheckHealth, error) {
	status, err := parseHealthStatus(d.Status)
	if err != nil {
		return CheckHealth{}, err
	}

	var latency *string
	if d.Latency != nil {
		s := d.Latency.String()
		latency = &s
	}
	return CheckHealth{
		Name:           d.Name,
		Status:         status,
		StatusCode:     d.StatusCode,
		Latency:        latency,
		Reason:         d.Reason,
		LastChecked:    d.LastChecked,
		LastSuccessful: d.LastSuccessful,
	}, nil
}

// ToAPIType converts the verdict, keeping check order.
func (d DomainVerdict) ToAPIType() (Verdict, error) {
	checks := make([]CheckOutcome, 0, len(d.Outcomes))
	for _, o := range d.Outcomes {
		var excerpt *string
		if !o.Healthy && o.Result.BodyExcerpt != "" {
			e := o.Result.BodyExcerpt
			excerpt = &e
		}
		checks = append(checks, CheckOutcome{
			Name:       o.Result.CheckName,
			Healthy:    o.Healthy,
			StatusCode: o.Result.StatusCode,
			Latency:    o.Result.Latency.String(),
			ErrorKind:  string(o.Result.ErrorKind),
			Reason:     o.Reason,
			Excerpt:    excerpt,
		})
	}

	return Verdict{
		ID:           d.ID,
		Timestamp:    d.Timestamp,
		Healthy:      d.Healthy,
		HealthyCount: d.HealthyCount,
		TotalCount:   d.TotalCount,
		Ratio:        d.Ratio,
		Duration:     d.Duration.String(),
		Error:        d.Err,
		Checks:       checks,
	}, nil
}

// RegisterHealthRoutes sets up health-related API endpoint routes.
func RegisterHealthRoutes(routerAPI huma.API, board contracts.HealthBoard, apiPathPrefix string) {
	healthAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Health"}

	huma.Register(
		routerAPI,
		huma.Operation{
			OperationID: "getMonitorHealth",
			Method:      http.MethodGet,
			Path:        apiPathPrefix,
			Summary:     "Get the overall health of the monitored deployment",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*MonitorHealthResponse, error) {
			return handleMonitorHealth(board)
		},
	)

	huma.Register(
		healthAPI,
		huma.Operation{
			OperationID: "getLatestVerdict",
			Method:      http.MethodGet,
			Path:        "/verdict",
			Summary:     "Get the verdict of the most recent evaluation cycle",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*VerdictResponse, error) {
			return handleLatestVerdict(board)
		},
	)

	huma.Register(
		healthAPI,
		huma.Operation{
			OperationID: "listChecksHealth",
			Method:      http.MethodGet,
			Path:        "/checks",
			Summary:     "List the health statuses for all checks",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*ChecksHealthResponse, error) {
			return handleChecksHealth(board)
		},
	)

	huma.Register(
		healthAPI,
		huma.Operation{
			OperationID: "getCheckHealth",
			Method:      http.MethodGet,
			Path:        "/checks/{name}",
			Summary:     "Get the health status of a check",
			Tags:        tags,
		},
		func(ctx context.Context, input *CheckHealthRequest) (*CheckHealthResponse, error) {
			return handleCheckHealth(board, input.Name)
		},
	)
}

// RegisterLivenessRoute registers an unversioned probe endpoint for load balancers and orchestrators.
func RegisterLivenessRoute(routerAPI huma.API, board contracts.HealthBoard, path string) {
	huma.Register(
		routerAPI,
		huma.Operation{
			OperationID: "getLiveness",
			Method:      http.MethodGet,
			Path:        path,
			Summary:     "Report whether the monitored deployment is currently healthy",
			Tags:        []string{"Health"},
		},
		func(ctx context.Context, _ *struct{}) (*LivenessResponse, error) {
			return handleLiveness(board), nil
		},
	)
}

func handleMonitorHealth(board contracts.HealthBoard) (*MonitorHealthResponse, error) {
	resp := &MonitorHealthResponse{}
	resp.Body.State = string(domain.StateUnknown)
	resp.Body.Availability = 1

	v, s, ok := board.Latest()
	if !ok {
		return resp, nil
	}

	started := s.StartedAt
	resp.Body = MonitorHealth{
		State:               string(s.State),
		ConsecutiveFailures: s.ConsecutiveFailures,
		StartedAt:           &started,
		LastCheck:           s.LastCheck,
		UptimeSeconds:       s.Uptime.Seconds(),
		DowntimeSeconds:     s.Downtime.Seconds(),
		Availability:        s.Availability(),
		TotalEvaluations:    s.TotalEvaluations,
		FailedEvaluations:   s.FailedEvaluations,
		HealthyCount:        v.HealthyCount,
		TotalCount:          v.TotalCount,
		Ratio:               v.Ratio,
	}

	return resp, nil
}

func handleLatestVerdict(board contracts.HealthBoard) (*VerdictResponse, error) {
	v, _, ok := board.Latest()
	if !ok {
		return nil, errors.ErrNoVerdict
	}

	data, err := DomainVerdict(v).ToAPIType()
	if err != nil {
		return nil, err
	}

	return &VerdictResponse{Body: data}, nil
}

// handleChecksHealth is the handler for retrieving the current health of all checks, sorted by name.
func handleChecksHealth(board contracts.HealthBoard) (*ChecksHealthResponse, error) {
	statuses := board.List()

	wrapped := make([]DomainCheckStatus, len(statuses))
	for i, s := range statuses {
		wrapped[i] = DomainCheckStatus(s)
	}

	checks, err := convertAll[CheckHealth](wrapped)
	if err != nil {
		return nil, err
	}

	resp := &ChecksHealthResponse{}
	resp.Body.Checks = checks

	return resp, nil
}

func handleCheckHealth(board contracts.HealthBoard, name string) (*CheckHealthResponse, error) {
	status, err := board.Status(name)
	if err != nil {
		return nil, err
	}

	data, err := DomainCheckStatus(status).ToAPIType()
	if err != nil {
		return nil, err
	}

	return &CheckHealthResponse{Body: data}, nil
}

func handleLiveness(board contracts.HealthBoard) *LivenessResponse {
	resp := &LivenessResponse{Status: http.StatusOK}
	resp.Body.State = string(domain.StateUnknown)

	_, s, ok := board.Latest()
	if !ok {
		return resp
	}

	resp.Body.State = string(s.State)
	if s.State == domain.StateUnhealthy {
		resp.Status = http.StatusServiceUnavailable
	}

	return resp
}

func parseHealthStatus(status domain.HealthStatus) (HealthStatus, error) {
	switch status {
	case domain.HealthStatusOK:
		return HealthStatusOK, nil
	case domain.HealthStatusTimeout:
		return HealthStatusTimeout, nil
	case domain.HealthStatusUnreachable:
		return HealthStatusUnreachable, nil
	case domain.HealthStatusUnexpected:
		return HealthStatusUnexpected, nil
	case domain.HealthStatusUnknown:
		return HealthStatusUnknown, nil
	default:
		return "", fmt.Errorf("unknown health status: %s", status)
	}
}

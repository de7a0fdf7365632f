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

// DomainMetricSummary wraps a metric summary for conversion to its API form.
type DomainMetricSummary domain.MetricSummary

// MetricSample is a single recorded value, in milliseconds.
type MetricSample struct {
	Timestamp time.Time `json:"timestamp"`
	ValueMs   float64   `json:"valueMs"`
}

// MetricSummary aggregates the retained samples of a metric, in milliseconds.
type MetricSummary struct {
	Count  int     `json:"count"`
	MinMs  float64 `json:"minMs"`
	MaxMs  float64 `json:"maxMs"`
	MeanMs float64 `json:"meanMs"`
	LastMs float64 `json:"lastMs"`
}

// Metric is a metric's retained history.
type Metric struct {
	Name    string         `json:"name"`
	Summary MetricSummary  `json:"summary"`
	Samples []MetricSample `json:"samples"`
}

// MetricNamesResponse is the response for GET /metrics
type MetricNamesResponse struct {
	Body struct {
		Metrics []string `doc:"Names of metrics with recorded samples" json:"metrics"`
	}
}

// MetricRequest represents the incoming request for a single metric.
type MetricRequest struct {
	Name string `doc:"Name of the metric" example:"latency.Homepage" path:"name"`
}

// MetricResponse is the response for GET /metrics/{name}
type MetricResponse struct {
	Body Metric
}

// ToAPIType can be used to convert a wrapped domain type to an API-safe type.
func (d DomainMetricSummary) ToAPIType() (MetricSummary, error) {
	return MetricSummary{
		Count:  d.Count,
		MinMs:  millis(d.Min),
		MaxMs:  millis(d.Max),
		MeanMs: millis(d.Mean),
		LastMs: millis(d.Last),
	}, nil
}

// RegisterMetricsRoutes sets up metrics-related API endpoint routes.
func RegisterMetricsRoutes(routerAPI huma.API, metrics contracts.MetricsReader, apiPathPrefix string) {
	metricsAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Metrics"}

	huma.Register(
		routerAPI,
		huma.Operation{
			OperationID: "listMetrics",
			Method:      http.MethodGet,
			Path:        apiPathPrefix,
			Summary:     "List the names of recorded metrics",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*MetricNamesResponse, error) {
			resp := &MetricNamesResponse{}
			resp.Body.Metrics = metrics.Names()
			return resp, nil
		},
	)

	huma.Register(
		metricsAPI,
		huma.Operation{
			OperationID: "getMetric",
			Method:      http.MethodGet,
			Path:        "/{name}",
			Summary:     "Get the retained samples and summary of a metric",
			Tags:        tags,
		},
		func(ctx context.Context, input *MetricRequest) (*MetricResponse, error) {
			return handleMetric(metrics, input.Name)
		},
	)
}

func handleMetric(metrics contracts.MetricsReader, name string) (*MetricResponse, error) {
	summary, ok := metrics.Summarize(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrMetricNotFound, name)
	}

	apiSummary, err := DomainMetricSummary(summary).ToAPIType()
	if err != nil {
		return nil, err
	}

	samples := metrics.Samples(name)
	apiSamples := make([]MetricSample, 0, len(samples))
	for _, s := range samples {
		apiSamples = append(apiSamples, MetricSample{
			Timestamp: s.Timestamp,
			ValueMs:   millis(s.Value),
		})
	}

	return &MetricResponse{
		Body: Metric{
			Name:    name,
			Summary: apiSummary,
			Samples: apiSamples,
		},
	}, nil
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

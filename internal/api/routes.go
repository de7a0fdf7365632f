package api

import (
	"fmt"
	"net/url"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dduksang/deploymon/internal/contracts"
	"github.com/dduksang/deploymon/internal/nilcheck"
)

// APIVersion is the version used in URL paths.
const APIVersion = "v1"

// LivenessPath is the unversioned health probe path.
const LivenessPath = "/healthz"

// RegisterRoutes registers all API routes on the provided Huma router.
// This is the single source of truth for the API route structure.
// Returns the API path prefix (e.g., "/api/v1") under which the versioned routes are created.
func RegisterRoutes(
	router huma.API,
	board contracts.HealthBoard,
	metrics contracts.MetricsReader,
) (string, error) {
	if nilcheck.IsNil(router) {
		return "", fmt.Errorf("router cannot be nil")
	}
	if nilcheck.IsNil(board) {
		return "", fmt.Errorf("health board cannot be nil")
	}
	if nilcheck.IsNil(metrics) {
		return "", fmt.Errorf("metrics reader cannot be nil")
	}

	// Safe way to ensure /api/{version}.
	apiPathPrefix, err := url.JoinPath("/api", APIVersion)
	if err != nil {
		return "", fmt.Errorf("failed to construct API path prefix: %w", err)
	}

	// Group all routes under the /api/{version} prefix.
	versionedGroup := huma.NewGroup(router, apiPathPrefix)
	RegisterHealthRoutes(versionedGroup, board, "/health")
	RegisterMetricsRoutes(versionedGroup, metrics, "/metrics")

	RegisterLivenessRoute(router, board, LivenessPath)

	return apiPathPrefix, nil
}

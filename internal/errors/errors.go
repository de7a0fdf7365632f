// Package errors defines domain-level errors used throughout the application.
// These errors represent lookup and input failures and are mapped to appropriate HTTP status codes
// at the status API boundary.
//
// NOTE: Important for developers
// When adding a new error here, you MUST consider how it should be handled when returned from API endpoints.
//
// Unmapped errors will default to HTTP 500 Internal Server Error.
//
// Don't forget to:
// 1. Add your error to mapError (internal/server/server.go)
// 2. Add a test case to TestMapError (internal/server/server_test.go)
package errors

import (
	"errors"
)

var (
	// ErrBadRequest indicates that the client provided invalid input or made a malformed request.
	// Recommended to map to HTTP 400 Bad Request.
	ErrBadRequest = errors.New("bad request")

	// ErrCheckNotTracked indicates that no check with the requested name is being monitored.
	// Recommended to map to HTTP 404 Not Found.
	ErrCheckNotTracked = errors.New("check is not being tracked")

	// ErrMetricNotFound indicates that no samples have been recorded for the requested metric.
	// Recommended to map to HTTP 404 Not Found.
	ErrMetricNotFound = errors.New("metric not found")

	// ErrNoVerdict indicates that no evaluation cycle has completed yet.
	// Recommended to map to HTTP 503 Service Unavailable.
	ErrNoVerdict = errors.New("no evaluation has completed yet")
)

package server

import (
	"fmt"
	"net"
	"strconv"

	"github.com/hashicorp/go-hclog"

	"github.com/dduksang/deploymon/internal/contracts"
	"github.com/dduksang/deploymon/internal/nilcheck"
)

// Dependencies contains the required external dependencies for the API server.
// NewDependencies should be used to create instances of Dependencies.
type Dependencies struct {
	// Addr specifies the network address to bind (e.g., "127.0.0.1:8090").
	Addr string

	// Board exposes the latest published health.
	Board contracts.HealthBoard

	// Metrics exposes recorded latency samples.
	Metrics contracts.MetricsReader

	// Logger for API server operations.
	Logger hclog.Logger
}

// NewDependencies creates and validates Dependencies.
func NewDependencies(
	logger hclog.Logger,
	board contracts.HealthBoard,
	metrics contracts.MetricsReader,
	addr string,
) (Dependencies, error) {
	deps := Dependencies{
		Addr:    addr,
		Board:   board,
		Metrics: metrics,
		Logger:  logger,
	}

	if err := deps.Validate(); err != nil {
		return Dependencies{}, err
	}

	return deps, nil
}

// Validate ensures all required dependencies are provided and valid.
func (d Dependencies) Validate() error {
	if err := validateAddr(d.Addr); err != nil {
		return fmt.Errorf("invalid API address '%s': %w", d.Addr, err)
	}
	if nilcheck.IsNil(d.Board) {
		return fmt.Errorf("health board cannot be nil")
	}
	if nilcheck.IsNil(d.Metrics) {
		return fmt.Errorf("metrics reader cannot be nil")
	}
	if nilcheck.IsNil(d.Logger) {
		return fmt.Errorf("logger cannot be nil")
	}
	return nil
}

// validateAddr checks if the address is a valid "host:port" string.
func validateAddr(addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid address format: %w", err)
	}

	if port == "" {
		return fmt.Errorf("address missing port")
	}

	if _, err := strconv.Atoi(port); err != nil {
		if _, err := net.LookupPort("tcp", port); err != nil {
			return fmt.Errorf("invalid address port: %s", port)
		}
	}

	return nil
}

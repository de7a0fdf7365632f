//go:build docsgen_api
// +build docsgen_api

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/go-hclog"

	"github.com/dduksang/deploymon/internal/api"
	"github.com/dduksang/deploymon/internal/board"
	"github.com/dduksang/deploymon/internal/cmd"
	"github.com/dduksang/deploymon/internal/metrics"
)

// main generates the OpenAPI document for the status API.
// It assumes it is run from the repository root.
func main() {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "deploymon.docsgen.api",
		Level:  hclog.Info,
		Output: os.Stderr,
	})

	// Output path for the OpenAPI document, relative to the repository root.
	outputPath := "./docs/api/openapi.yaml"

	// Create a chi router (same as the status API server).
	mux := chi.NewMux()
	mux.Use(middleware.StripSlashes)

	config := huma.DefaultConfig(cmd.AppName()+" status API", api.APIVersion)
	router := humachi.New(mux, config)

	// The OpenAPI document generation only needs the route definitions, empty stores are enough.
	recorder, err := metrics.NewRecorder(metrics.DefaultCapacity())
	if err != nil {
		logger.Error("failed to create metrics recorder", "error", err)
		os.Exit(1)
	}

	apiPathPrefix, err := api.RegisterRoutes(router, board.NewBoard(nil), recorder)
	if err != nil {
		logger.Error("failed to register API routes", "error", err)
		os.Exit(1)
	}

	logger.Info("Routes registered", "prefix", apiPathPrefix)

	yamlBytes, err := router.OpenAPI().YAML()
	if err != nil {
		logger.Error("failed to generate OpenAPI YAML", "error", err)
		os.Exit(1)
	}

	docsDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(docsDir, 0o755); err != nil {
		logger.Error("failed to create docs directory", "path", docsDir, "error", err)
		os.Exit(1)
	}

	if err := os.WriteFile(outputPath, yamlBytes, 0o644); err != nil {
		logger.Error("failed to write OpenAPI document", "path", outputPath, "error", err)
		os.Exit(1)
	}

	logger.Info("OpenAPI document generated", "path", outputPath, "size", fmt.Sprintf("%d bytes", len(yamlBytes)))
}

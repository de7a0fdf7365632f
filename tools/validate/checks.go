//go:build validate_checks
// +build validate_checks

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/dduksang/deploymon/internal/checks"
)

func main() {
	if len(os.Args) < 2 || len(os.Args) > 3 {
		fmt.Fprintf(os.Stderr, "Usage: go run -tags=validate_checks ./tools/validate/checks.go <checks-file> [base-url]\n")
		os.Exit(1)
	}

	path := os.Args[1]
	baseURL := "https://example.com"
	if len(os.Args) == 3 {
		baseURL = os.Args[2]
	}

	// JSON files get the full list of schema violations rather than the loader's summary.
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading checks file: %v\n", err)
			os.Exit(1)
		}

		result, err := gojsonschema.Validate(
			gojsonschema.NewStringLoader(checks.Schema()),
			gojsonschema.NewBytesLoader(data),
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error validating: %v\n", err)
			os.Exit(1)
		}

		if !result.Valid() {
			fmt.Println("❌ Schema validation failed:")
			for _, err := range result.Errors() {
				fmt.Printf("  - %s: %s\n", err.Field(), err.Description())
			}
			os.Exit(1)
		}
	}

	specs, err := (&checks.FileLoader{}).Load(path)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}

	defs, err := checks.Resolve(baseURL, specs)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}

	for _, d := range defs {
		fmt.Printf("  %-20s %-7s %s\n", d.Name, d.Method, d.URL)
	}
	fmt.Printf("✅ %d check(s) valid\n", len(defs))
}

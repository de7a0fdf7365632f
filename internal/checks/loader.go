package checks

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// ErrChecksLoadFailed is returned when a checks file cannot be read or decoded.
var ErrChecksLoadFailed = errors.New("failed to load checks")

// Loader loads check specifications from a file.
type Loader interface {
	Load(path string) ([]Spec, error)
}

var _ Loader = (*FileLoader)(nil)

// FileLoader loads checks files in TOML, YAML or JSON format, chosen by file extension.
type FileLoader struct{}

// schema describes the JSON checks file format.
const schema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["checks"],
  "additionalProperties": false,
  "properties": {
    "checks": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name", "path"],
        "additionalProperties": false,
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "path": {"type": "string", "minLength": 1},
          "method": {"type": "string", "enum": ["GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"]},
          "expectedStatus": {
            "type": "array",
            "items": {"type": "integer", "minimum": 100, "maximum": 599}
          },
          "bodyContains": {"type": "string"}
        }
      }
    }
  }
}`

// Load reads and validates the checks file at path.
func (l *FileLoader) Load(path string) ([]Spec, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: path cannot be empty", ErrChecksLoadFailed)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: checks file cannot be found (%s)", ErrChecksLoadFailed, path)
		}
		return nil, fmt.Errorf("%w: failed to read checks file (%s): %w", ErrChecksLoadFailed, path, err)
	}

	var f File
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), &f); err != nil {
			return nil, fmt.Errorf("%w: failed to decode TOML (%s): %w", ErrChecksLoadFailed, path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("%w: failed to decode YAML (%s): %w", ErrChecksLoadFailed, path, err)
		}
	case ".json":
		if err := validateJSON(data); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrChecksLoadFailed, path, err)
		}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("%w: failed to decode JSON (%s): %w", ErrChecksLoadFailed, path, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported checks file extension '%s' (use .toml, .yaml, .yml or .json)", ErrChecksLoadFailed, ext)
	}

	if err := Validate(f.Checks); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrChecksLoadFailed, path, err)
	}

	return f.Checks, nil
}

// Schema returns the JSON Schema that JSON checks files are validated against.
func Schema() string {
	return schema
}

func validateJSON(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("failed to validate JSON: %w", err)
	}

	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidCheck, strings.Join(msgs, "; "))
}

package checks

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/dduksang/deploymon/internal/domain"
)

// ErrInvalidCheck is returned when a check specification fails validation.
var ErrInvalidCheck = errors.New("invalid check")

// Spec is the configurable description of a check, as written in a checks file.
type Spec struct {
	// Name uniquely identifies the check within a run, e.g. 'Homepage'.
	Name string `json:"name" toml:"name" yaml:"name"`

	// Path is either a path relative to the base URL (e.g. '/api/news') or an absolute URL.
	Path string `json:"path" toml:"path" yaml:"path"`

	// Method is the HTTP method to use, GET when empty.
	Method string `json:"method,omitempty" toml:"method,omitempty" yaml:"method,omitempty"`

	// ExpectedStatus lists the status codes considered healthy, [200] when empty.
	ExpectedStatus []int `json:"expectedStatus,omitempty" toml:"expected_status,omitempty" yaml:"expected_status,omitempty"`

	// BodyContains is an optional case-insensitive substring the response body must contain.
	BodyContains string `json:"bodyContains,omitempty" toml:"body_contains,omitempty" yaml:"body_contains,omitempty"`
}

// File is the top level structure of a checks file.
type File struct {
	Checks []Spec `json:"checks" toml:"checks" yaml:"checks"`
}

var allowedMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
}

// Defaults returns the built-in checks covering the platform's critical surfaces.
// The auth check accepts 401 because unauthenticated probes are expected to be rejected.
func Defaults() []Spec {
	return []Spec{
		{Name: "Homepage", Path: "/", ExpectedStatus: []int{http.StatusOK}, BodyContains: "dduksang"},
		{Name: "Courses", Path: "/courses", ExpectedStatus: []int{http.StatusOK}},
		{Name: "Community", Path: "/community", ExpectedStatus: []int{http.StatusOK}},
		{Name: "News API", Path: "/api/news", ExpectedStatus: []int{http.StatusOK}},
		{Name: "Auth Check", Path: "/api/auth/me", ExpectedStatus: []int{http.StatusOK, http.StatusUnauthorized}},
	}
}

// Validate checks the list of specs as a whole: it must not be empty, and names must be unique.
func Validate(specs []Spec) error {
	if len(specs) == 0 {
		return fmt.Errorf("%w: at least one check is required", ErrInvalidCheck)
	}

	seen := make(map[string]struct{}, len(specs))
	for i, s := range specs {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("check #%d: %w", i+1, err)
		}
		key := strings.ToLower(strings.TrimSpace(s.Name))
		if _, ok := seen[key]; ok {
			return fmt.Errorf("%w: duplicate check name '%s'", ErrInvalidCheck, s.Name)
		}
		seen[key] = struct{}{}
	}

	return nil
}

// Validate checks a single spec.
func (s Spec) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidCheck)
	}
	if strings.TrimSpace(s.Path) == "" {
		return fmt.Errorf("%w: path cannot be empty for '%s'", ErrInvalidCheck, s.Name)
	}
	if s.Method != "" && !slices.Contains(allowedMethods, strings.ToUpper(strings.TrimSpace(s.Method))) {
		return fmt.Errorf("%w: unsupported method '%s' for '%s'", ErrInvalidCheck, s.Method, s.Name)
	}
	if strings.EqualFold(strings.TrimSpace(s.Method), http.MethodHead) && s.BodyContains != "" {
		return fmt.Errorf("%w: HEAD responses have no body to match for '%s'", ErrInvalidCheck, s.Name)
	}
	for _, code := range s.ExpectedStatus {
		if code < 100 || code > 599 {
			return fmt.Errorf("%w: status code %d out of range for '%s'", ErrInvalidCheck, code, s.Name)
		}
	}
	return nil
}

// Resolve validates the specs and turns them into check definitions against the base URL.
// Absolute URLs in a spec's path are kept as they are.
func Resolve(baseURL string, specs []Spec) ([]domain.CheckDefinition, error) {
	if err := Validate(specs); err != nil {
		return nil, err
	}

	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	defs := make([]domain.CheckDefinition, 0, len(specs))
	for _, s := range specs {
		target, err := resolvePath(base, strings.TrimSpace(s.Path))
		if err != nil {
			return nil, fmt.Errorf("%w: '%s': %w", ErrInvalidCheck, s.Name, err)
		}

		method := strings.ToUpper(strings.TrimSpace(s.Method))
		if method == "" {
			method = http.MethodGet
		}

		expected := slices.Clone(s.ExpectedStatus)
		if len(expected) == 0 {
			expected = []int{http.StatusOK}
		}

		defs = append(defs, domain.CheckDefinition{
			Name:                  strings.TrimSpace(s.Name),
			URL:                   target,
			Method:                method,
			ExpectedStatusCodes:   expected,
			ExpectedBodySubstring: s.BodyContains,
		})
	}

	return defs, nil
}

// Names returns the names of the check definitions in order.
func Names(defs []domain.CheckDefinition) []string {
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
	}
	return names
}

func parseBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: base URL '%s' must be an absolute http(s) URL", ErrInvalidCheck, raw)
	}
	return u, nil
}

func resolvePath(base *url.URL, path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", err
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}

	// Join rather than ResolveReference so that a base URL with a path prefix is kept.
	joined := base.JoinPath(ref.Path)
	joined.RawQuery = ref.RawQuery
	if ref.Path == "/" || ref.Path == "" {
		joined.Path = strings.TrimSuffix(base.Path, "/") + "/"
	}
	return joined.String(), nil
}

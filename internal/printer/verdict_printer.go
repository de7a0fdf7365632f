package printer

import (
	"fmt"
	"io"
	"time"

	"github.com/dduksang/deploymon/internal/cmd/output"
	"github.com/dduksang/deploymon/internal/domain"
)

var _ output.Printer[VerdictResult] = (*VerdictPrinter)(nil)

// VerdictResult is the output form of a single evaluation cycle.
type VerdictResult struct {
	ID           string        `json:"id"              yaml:"id"`
	Timestamp    time.Time     `json:"timestamp"       yaml:"timestamp"`
	Healthy      bool          `json:"healthy"         yaml:"healthy"`
	HealthyCount int           `json:"healthyCount"    yaml:"healthy_count"`
	TotalCount   int           `json:"totalCount"      yaml:"total_count"`
	Ratio        float64       `json:"ratio"           yaml:"ratio"`
	Threshold    float64       `json:"threshold"       yaml:"threshold"`
	DurationMs   int64         `json:"durationMs"      yaml:"duration_ms"`
	Error        string        `json:"error,omitempty" yaml:"error,omitempty"`
	Checks       []CheckResult `json:"checks"          yaml:"checks"`
}

// CheckResult is the output form of a single check outcome.
type CheckResult struct {
	Name       string `json:"name"                 yaml:"name"`
	Healthy    bool   `json:"healthy"              yaml:"healthy"`
	StatusCode *int   `json:"statusCode,omitempty" yaml:"status_code,omitempty"`
	LatencyMs  int64  `json:"latencyMs"            yaml:"latency_ms"`
	ErrorKind  string `json:"errorKind"            yaml:"error_kind"`
	Reason     string `json:"reason,omitempty"     yaml:"reason,omitempty"`
}

// NewVerdictResult converts a verdict into its output form.
func NewVerdictResult(v domain.HealthVerdict, threshold float64) VerdictResult {
	res := VerdictResult{
		ID:           v.ID,
		Timestamp:    v.Timestamp.UTC(),
		Healthy:      v.Healthy,
		HealthyCount: v.HealthyCount,
		TotalCount:   v.TotalCount,
		Ratio:        v.Ratio,
		Threshold:    threshold,
		DurationMs:   v.Duration.Milliseconds(),
		Error:        v.Err,
		Checks:       make([]CheckResult, 0, len(v.Outcomes)),
	}

	for _, o := range v.Outcomes {
		res.Checks = append(res.Checks, CheckResult{
			Name:       o.Result.CheckName,
			Healthy:    o.Healthy,
			StatusCode: o.Result.StatusCode,
			LatencyMs:  o.Result.Latency.Milliseconds(),
			ErrorKind:  string(o.Result.ErrorKind),
			Reason:     o.Reason,
		})
	}

	return res
}

// VerdictPrinter prints a verdict with a row per check.
type VerdictPrinter struct {
	headerFunc output.WriteFunc[VerdictResult]
	footerFunc output.WriteFunc[VerdictResult]
}

func (p *VerdictPrinter) Header(w io.Writer, count int) {
	if p.headerFunc != nil {
		p.headerFunc(w, count)
	}
}

func (p *VerdictPrinter) SetHeader(fn output.WriteFunc[VerdictResult]) {
	p.headerFunc = fn
}

func (p *VerdictPrinter) Item(w io.Writer, v VerdictResult) error {
	_, _ = fmt.Fprintf(
		w,
		"%s %d/%d checks healthy (%.0f%%, threshold %.0f%%)\n",
		verdictLabel(v.Healthy),
		v.HealthyCount,
		v.TotalCount,
		v.Ratio*100,
		v.Threshold*100,
	)
	_, _ = fmt.Fprintf(w, "  Checked at: %s (took %s)\n", v.Timestamp.Format(time.RFC3339), FormatDuration(time.Duration(v.DurationMs)*time.Millisecond))
	if v.Error != "" {
		_, _ = fmt.Fprintf(w, "  Evaluation error: %s\n", v.Error)
	}
	_, _ = fmt.Fprintln(w, "")

	for _, c := range v.Checks {
		mark := "✓"
		if !c.Healthy {
			mark = "✗"
		}

		code := "---"
		if c.StatusCode != nil {
			code = fmt.Sprintf("%d", *c.StatusCode)
		}

		_, _ = fmt.Fprintf(w, "  %s %-20s %s %6dms", mark, c.Name, code, c.LatencyMs)
		if c.Reason != "" {
			_, _ = fmt.Fprintf(w, "  %s", c.Reason)
		}
		_, _ = fmt.Fprintln(w, "")
	}

	return nil
}

func (p *VerdictPrinter) Footer(w io.Writer, count int) {
	if p.footerFunc != nil {
		p.footerFunc(w, count)
	}
}

func (p *VerdictPrinter) SetFooter(fn output.WriteFunc[VerdictResult]) {
	p.footerFunc = fn
}

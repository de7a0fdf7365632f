package printer

import (
	"fmt"
	"io"
	"time"

	"github.com/dduksang/deploymon/internal/cmd/output"
	"github.com/dduksang/deploymon/internal/domain"
)

var _ output.Printer[ReportResult] = (*ReportPrinter)(nil)

// ReportResult summarizes a monitoring session.
type ReportResult struct {
	State               string     `json:"state"               yaml:"state"`
	StartedAt           time.Time  `json:"startedAt"           yaml:"started_at"`
	LastCheck           *time.Time `json:"lastCheck,omitempty" yaml:"last_check,omitempty"`
	UptimeSeconds       float64    `json:"uptimeSeconds"       yaml:"uptime_seconds"`
	DowntimeSeconds     float64    `json:"downtimeSeconds"     yaml:"downtime_seconds"`
	Availability        float64    `json:"availability"        yaml:"availability"`
	TotalEvaluations    int        `json:"totalEvaluations"    yaml:"total_evaluations"`
	FailedEvaluations   int        `json:"failedEvaluations"   yaml:"failed_evaluations"`
	ConsecutiveFailures int        `json:"consecutiveFailures" yaml:"consecutive_failures"`
}

// NewReportResult converts a monitor snapshot into its output form.
func NewReportResult(s domain.MonitorSnapshot) ReportResult {
	res := ReportResult{
		State:               string(s.State),
		StartedAt:           s.StartedAt.UTC(),
		UptimeSeconds:       s.Uptime.Seconds(),
		DowntimeSeconds:     s.Downtime.Seconds(),
		Availability:        s.Availability(),
		TotalEvaluations:    s.TotalEvaluations,
		FailedEvaluations:   s.FailedEvaluations,
		ConsecutiveFailures: s.ConsecutiveFailures,
	}
	if s.LastCheck != nil {
		last := s.LastCheck.UTC()
		res.LastCheck = &last
	}
	return res
}

// ReportPrinter prints the summary shown when monitoring stops.
type ReportPrinter struct {
	headerFunc output.WriteFunc[ReportResult]
	footerFunc output.WriteFunc[ReportResult]
}

// NewReportPrinter returns a printer with the default heading.
func NewReportPrinter() *ReportPrinter {
	return &ReportPrinter{
		headerFunc: func(w io.Writer, _ int) {
			_, _ = fmt.Fprintln(w, "")
			_, _ = fmt.Fprintln(w, "Monitoring summary")
			_, _ = fmt.Fprintln(w, "────────────────────────────────────────────")
		},
	}
}

func (p *ReportPrinter) Header(w io.Writer, count int) {
	if p.headerFunc != nil {
		p.headerFunc(w, count)
	}
}

func (p *ReportPrinter) SetHeader(fn output.WriteFunc[ReportResult]) {
	p.headerFunc = fn
}

func (p *ReportPrinter) Item(w io.Writer, r ReportResult) error {
	uptime := time.Duration(r.UptimeSeconds * float64(time.Second)).Round(time.Second)
	downtime := time.Duration(r.DowntimeSeconds * float64(time.Second)).Round(time.Second)

	_, _ = fmt.Fprintf(w, "  State:                %s\n", r.State)
	_, _ = fmt.Fprintf(w, "  Started:              %s\n", r.StartedAt.Format(time.RFC3339))
	if r.LastCheck != nil {
		_, _ = fmt.Fprintf(w, "  Last check:           %s\n", r.LastCheck.Format(time.RFC3339))
	}
	_, _ = fmt.Fprintf(w, "  Uptime:               %s\n", uptime)
	_, _ = fmt.Fprintf(w, "  Downtime:             %s\n", downtime)
	_, _ = fmt.Fprintf(w, "  Availability:         %.2f%%\n", r.Availability*100)
	_, _ = fmt.Fprintf(w, "  Evaluations:          %d (%d failed)\n", r.TotalEvaluations, r.FailedEvaluations)
	_, _ = fmt.Fprintf(w, "  Consecutive failures: %d\n", r.ConsecutiveFailures)

	return nil
}

func (p *ReportPrinter) Footer(w io.Writer, count int) {
	if p.footerFunc != nil {
		p.footerFunc(w, count)
	}
}

func (p *ReportPrinter) SetFooter(fn output.WriteFunc[ReportResult]) {
	p.footerFunc = fn
}

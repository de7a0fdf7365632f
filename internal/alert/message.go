package alert

import (
	"fmt"
	"strings"
	"time"

	"github.com/dduksang/deploymon/internal/contracts"
	"github.com/dduksang/deploymon/internal/domain"
	"github.com/dduksang/deploymon/internal/metrics"
	"github.com/dduksang/deploymon/internal/nilcheck"
)

var markdownEscaper = strings.NewReplacer(
	"_", "\\_",
	"*", "\\*",
	"`", "\\`",
	"[", "\\[",
)

// FailureMessage formats the alert sent when the deployment becomes unhealthy.
func FailureMessage(target string, v domain.HealthVerdict, s domain.MonitorSnapshot, m contracts.MetricsReader) string {
	var b strings.Builder

	b.WriteString("*[DOWN] Deployment unhealthy*\n")
	writeSummary(&b, target, v)
	fmt.Fprintf(&b, "Consecutive failures: %d\n", s.ConsecutiveFailures)

	if v.Err != "" {
		fmt.Fprintf(&b, "Evaluation error: %s\n", escape(v.Err))
	}

	if failed := v.Failed(); len(failed) > 0 {
		b.WriteString("\n*Failed checks*\n")
		for _, o := range failed {
			fmt.Fprintf(&b, "- %s: %s\n", escape(o.Result.CheckName), escape(o.Reason))
		}
	}

	writeLatency(&b, v, m)

	return b.String()
}

// RecoveryMessage formats the alert sent when the deployment becomes healthy again.
func RecoveryMessage(
	target string,
	v domain.HealthVerdict,
	s domain.MonitorSnapshot,
	outage time.Duration,
	m contracts.MetricsReader,
) string {
	var b strings.Builder

	b.WriteString("*[UP] Deployment recovered*\n")
	writeSummary(&b, target, v)
	fmt.Fprintf(&b, "Outage: %s\n", outage.Round(time.Second))
	fmt.Fprintf(&b, "Total downtime: %s\n", s.Downtime.Round(time.Second))

	writeLatency(&b, v, m)

	return b.String()
}

func writeSummary(b *strings.Builder, target string, v domain.HealthVerdict) {
	if target != "" {
		fmt.Fprintf(b, "Target: %s\n", escape(target))
	}
	fmt.Fprintf(b, "Time: %s\n", v.Timestamp.UTC().Format(time.RFC3339))
	fmt.Fprintf(b, "Healthy checks: %d/%d (%.0f%%)\n", v.HealthyCount, v.TotalCount, v.Ratio*100)
}

func writeLatency(b *strings.Builder, v domain.HealthVerdict, m contracts.MetricsReader) {
	if nilcheck.IsNil(m) || len(v.Outcomes) == 0 {
		return
	}

	var lines []string
	for _, o := range v.Outcomes {
		sample, ok := m.Latest(metrics.LatencyMetric(o.Result.CheckName))
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", escape(o.Result.CheckName), sample.Value.Round(time.Millisecond)))
	}

	if len(lines) == 0 {
		return
	}

	b.WriteString("\n*Latest latency*\n")
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
}

func escape(s string) string {
	return markdownEscaper.Replace(s)
}

package printer

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dduksang/deploymon/internal/domain"
)

// WriteStatusLine writes the one line summary of a verdict, followed by an indented line per failed check.
//
//	[2026-01-02T15:04:05Z] UNHEALTHY 3/5 (60%) cycle=1.2s
//	  - News API: status 500
//	  - Courses: timeout
func WriteStatusLine(w io.Writer, v domain.HealthVerdict) error {
	var b strings.Builder

	_, _ = fmt.Fprintf(
		&b,
		"[%s] %s %d/%d (%.0f%%) cycle=%s\n",
		v.Timestamp.UTC().Format(time.RFC3339),
		verdictLabel(v.Healthy),
		v.HealthyCount,
		v.TotalCount,
		v.Ratio*100,
		FormatDuration(v.Duration),
	)

	if v.Err != "" {
		_, _ = fmt.Fprintf(&b, "  ! evaluation error: %s\n", v.Err)
	}
	for _, o := range v.Failed() {
		_, _ = fmt.Fprintf(&b, "  - %s: %s\n", o.Result.CheckName, o.Reason)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// FormatDuration renders a duration for humans: millisecond precision below one second, tenths above.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}

func verdictLabel(healthy bool) string {
	if healthy {
		return "HEALTHY"
	}
	return "UNHEALTHY"
}

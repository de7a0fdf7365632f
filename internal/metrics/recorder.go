package metrics

import (
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/dduksang/deploymon/internal/contracts"
	"github.com/dduksang/deploymon/internal/domain"
)

const (
	// CycleDurationMetric is the metric name for whole evaluation cycle durations.
	CycleDurationMetric = "cycle.duration"

	latencyPrefix = "latency."
)

var (
	_ contracts.MetricsReader   = (*Recorder)(nil)
	_ contracts.MetricsRecorder = (*Recorder)(nil)
)

// LatencyMetric returns the metric name used for a check's probe latency.
func LatencyMetric(checkName string) string {
	return latencyPrefix + checkName
}

// Recorder keeps a bounded history of samples per metric name.
// When a metric's history is full the oldest sample is evicted first.
// NewRecorder should be used to create instances of Recorder.
type Recorder struct {
	mu       sync.RWMutex
	capacity int
	series   map[string]*ring
}

// NewRecorder creates a Recorder retaining at most capacity samples per metric.
func NewRecorder(capacity int) (*Recorder, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("metrics capacity must be positive, got %d", capacity)
	}

	return &Recorder{
		capacity: capacity,
		series:   make(map[string]*ring),
	}, nil
}

// DefaultCapacity is the default number of samples retained per metric.
func DefaultCapacity() int {
	return 100
}

// Record appends a sample to the named metric.
func (r *Recorder) Record(name string, value time.Duration, ts time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.series[name]
	if !ok {
		s = newRing(r.capacity)
		r.series[name] = s
	}
	s.push(domain.MetricSample{Name: name, Value: value, Timestamp: ts})
}

// RecordVerdict records one latency sample per probe outcome and the cycle duration.
func (r *Recorder) RecordVerdict(v domain.HealthVerdict) {
	for _, o := range v.Outcomes {
		r.Record(LatencyMetric(o.Result.CheckName), o.Result.Latency, o.Result.Timestamp)
	}
	r.Record(CycleDurationMetric, v.Duration, v.Timestamp)
}

// Samples returns the retained samples for a metric, oldest first.
func (r *Recorder) Samples(name string) []domain.MetricSample {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.series[name]
	if !ok {
		return nil
	}
	return s.values()
}

// Latest returns the most recent sample for a metric.
func (r *Recorder) Latest(name string) (domain.MetricSample, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.series[name]
	if !ok || s.size == 0 {
		return domain.MetricSample{}, false
	}
	return s.last(), true
}

// Names returns all metric names with at least one sample, sorted.
func (r *Recorder) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.series))
}

// Summarize aggregates the retained samples for a metric.
// The boolean is false when the metric has no samples.
func (r *Recorder) Summarize(name string) (domain.MetricSummary, bool) {
	samples := r.Samples(name)
	if len(samples) == 0 {
		return domain.MetricSummary{}, false
	}

	sum := domain.MetricSummary{
		Count: len(samples),
		Min:   samples[0].Value,
		Max:   samples[0].Value,
		Last:  samples[len(samples)-1].Value,
	}

	var total time.Duration
	for _, s := range samples {
		total += s.Value
		sum.Min = min(sum.Min, s.Value)
		sum.Max = max(sum.Max, s.Value)
	}
	sum.Mean = total / time.Duration(len(samples))

	return sum, true
}

// ring is a fixed-capacity FIFO buffer.
type ring struct {
	buf  []domain.MetricSample
	head int
	size int
}

func newRing(capacity int) *ring {
	return &ring{buf: make([]domain.MetricSample, capacity)}
}

func (r *ring) push(s domain.MetricSample) {
	idx := (r.head + r.size) % len(r.buf)
	r.buf[idx] = s

	if r.size < len(r.buf) {
		r.size++
		return
	}

	// Full: the write above replaced the oldest sample.
	r.head = (r.head + 1) % len(r.buf)
}

func (r *ring) values() []domain.MetricSample {
	out := make([]domain.MetricSample, r.size)
	for i := range r.size {
		out[i] = r.buf[(r.head+i)%len(r.buf)]
	}
	return out
}

func (r *ring) last() domain.MetricSample {
	return r.buf[(r.head+r.size-1)%len(r.buf)]
}

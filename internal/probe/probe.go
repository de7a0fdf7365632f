package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/dduksang/deploymon/internal/contracts"
	"github.com/dduksang/deploymon/internal/domain"
)

const (
	// maxBodyBytes bounds how much of a response body is read for substring matching.
	maxBodyBytes = 1 << 20

	// excerptBytes bounds the body excerpt kept for display.
	excerptBytes = 512
)

var _ contracts.Prober = (*HTTPProber)(nil)

// HTTPProber probes check definitions over HTTP.
// NewHTTPProber should be used to create instances of HTTPProber.
type HTTPProber struct {
	client    *http.Client
	logger    hclog.Logger
	userAgent string
	now       func() time.Time
}

// Option defines a functional option for configuring an HTTPProber.
type Option func(*HTTPProber) error

// WithHTTPClient configures the client used to send probe requests.
// Per-probe timeouts are always applied via the request context.
func WithHTTPClient(c *http.Client) Option {
	return func(p *HTTPProber) error {
		if c == nil {
			return fmt.Errorf("http client cannot be nil")
		}
		p.client = c
		return nil
	}
}

// WithUserAgent configures the User-Agent header sent with every probe.
func WithUserAgent(ua string) Option {
	return func(p *HTTPProber) error {
		p.userAgent = ua
		return nil
	}
}

// WithClock configures the clock used for result timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *HTTPProber) error {
		if now == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		p.now = now
		return nil
	}
}

// NewHTTPProber creates an HTTPProber with defaults, then applies options in order.
func NewHTTPProber(logger hclog.Logger, opts ...Option) (*HTTPProber, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	p := &HTTPProber{
		client:    &http.Client{},
		logger:    logger.Named("probe"),
		userAgent: "deploymon",
		now:       time.Now,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Probe issues one request for the check and returns its outcome.
// It never returns an error: timeouts, connection failures and anything else unexpected
// are reported through the ErrorKind of the result.
func (p *HTTPProber) Probe(ctx context.Context, check domain.CheckDefinition, timeout time.Duration) domain.ProbeResult {
	result := domain.ProbeResult{
		CheckName: check.Name,
		ErrorKind: domain.ErrorKindNone,
		Timestamp: p.now().UTC(),
	}

	method := check.Method
	if method == "" {
		method = http.MethodGet
	}

	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, method, check.URL, nil)
	if err != nil {
		result.ErrorKind = domain.ErrorKindOther
		result.Err = err.Error()
		return result
	}
	req.Header.Set("User-Agent", p.userAgent)

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return p.failed(result, err, time.Since(start), timeout)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	elapsed := time.Since(start)
	if err != nil {
		return p.failed(result, err, elapsed, timeout)
	}

	code := resp.StatusCode
	result.StatusCode = &code
	result.Latency = elapsed
	result.Body = string(body)
	result.BodyExcerpt = excerpt(body)

	p.logger.Trace("Probe completed", "check", check.Name, "status", code, "latency", elapsed)

	return result
}

func (p *HTTPProber) failed(result domain.ProbeResult, err error, elapsed time.Duration, timeout time.Duration) domain.ProbeResult {
	result.ErrorKind = Classify(err)
	result.Err = err.Error()
	result.Latency = elapsed

	if result.ErrorKind == domain.ErrorKindTimeout {
		result.Latency = timeout
	}

	p.logger.Debug("Probe failed", "check", result.CheckName, "kind", result.ErrorKind, "error", err)

	return result
}

// Classify maps a transport error to an ErrorKind.
func Classify(err error) domain.ErrorKind {
	if err == nil {
		return domain.ErrorKindNone
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrorKindTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.ErrorKindTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return domain.ErrorKindConnection
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return domain.ErrorKindConnection
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.EOF) {
		return domain.ErrorKindConnection
	}

	return domain.ErrorKindOther
}

func excerpt(body []byte) string {
	if len(body) <= excerptBytes {
		return string(body)
	}
	return string(body[:excerptBytes])
}

package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/obsidianstack/creditmeter/pkg/types"
	"github.com/obsidianstack/creditmeter/server/internal/config"
	"github.com/obsidianstack/creditmeter/server/internal/metrics"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 32 << 20

// ErrUnexpectedStatus wraps any non-200 response from the remote source.
var ErrUnexpectedStatus = errors.New("unexpected status")

// Client fetches messages and reports from the remote source.
// It is safe for concurrent use.
type Client struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	metrics *metrics.Metrics
}

// New returns a Client for rc. The underlying http.Client is built once and
// reused for the lifetime of the process.
func New(rc config.RemoteConfig, m *metrics.Metrics) (*Client, error) {
	if _, err := url.Parse(rc.BaseURL); err != nil {
		return nil, fmt.Errorf("remote: parse base url: %w", err)
	}
	client, err := buildHTTPClient(rc)
	if err != nil {
		return nil, fmt.Errorf("remote: build http client: %w", err)
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if rc.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(rc.RateLimit), rc.RateBurst)
	}

	return &Client{
		baseURL: rc.BaseURL,
		client:  client,
		limiter: limiter,
		metrics: m,
	}, nil
}

// FetchCurrentPeriodMessages returns the messages of the current billing
// period. ok is false when the request failed, the status was not 200, the
// "messages" key was missing or any element failed validation.
func (c *Client) FetchCurrentPeriodMessages(ctx context.Context) (msgs []types.Message, ok bool) {
	u, err := url.JoinPath(c.baseURL, "messages", "current-period")
	if err != nil {
		slog.Error("remote: build messages url", "err", err)
		return nil, false
	}

	body, err := c.get(ctx, u)
	if err != nil {
		c.metrics.Fetch(metrics.OpMessages, outcomeOf(err))
		slog.Warn("remote: messages fetch failed", "err", err)
		return nil, false
	}

	msgs, err = decodeMessages(body)
	if err != nil {
		c.metrics.Fetch(metrics.OpMessages, outcomeOf(err))
		// The batch can be large, so only the errors are logged.
		slog.Error("remote: rejecting message batch", "err", err)
		return nil, false
	}

	c.metrics.Fetch(metrics.OpMessages, metrics.OutcomeOK)
	slog.Debug("remote: messages fetched", "count", len(msgs))
	return msgs, true
}

// FetchReport returns the report with the given id. ok is false when the
// report does not exist, the request failed or the payload was invalid.
func (c *Client) FetchReport(ctx context.Context, id int64) (report types.Report, ok bool) {
	u, err := url.JoinPath(c.baseURL, "reports", strconv.FormatInt(id, 10))
	if err != nil {
		slog.Error("remote: build report url", "report_id", id, "err", err)
		return types.Report{}, false
	}

	body, err := c.get(ctx, u)
	if err != nil {
		c.metrics.Fetch(metrics.OpReport, outcomeOf(err))
		slog.Warn("remote: report fetch failed", "report_id", id, "err", err)
		return types.Report{}, false
	}

	report, err = decodeReport(body)
	if err != nil {
		c.metrics.Fetch(metrics.OpReport, outcomeOf(err))
		slog.Error("remote: rejecting report", "report_id", id, "body", string(body), "err", err)
		return types.Report{}, false
	}

	c.metrics.Fetch(metrics.OpReport, metrics.OutcomeOK)
	return report, true
}

// get performs a rate-limited GET and returns the body of a 200 response.
func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &transportError{err: fmt.Errorf("rate limit wait: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &transportError{err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &transportError{err: fmt.Errorf("http get: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection goes back to the pool.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, fmt.Errorf("%w %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &transportError{err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}

type transportError struct{ err error }

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

// outcomeOf maps a fetch error to its metrics outcome label.
func outcomeOf(err error) string {
	var (
		te *transportError
		ve *ValidationError
	)
	switch {
	case errors.Is(err, ErrUnexpectedStatus):
		return metrics.OutcomeStatus
	case errors.As(err, &te):
		return metrics.OutcomeTransport
	case errors.Is(err, errMissingMessages):
		return metrics.OutcomeMissing
	case errors.As(err, &ve):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeDecode
	}
}

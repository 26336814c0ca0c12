// Package contact submits the contact/quote form to the contact endpoint.
package contact

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ignitoosolutions/ignito1/internal/domain"
	"github.com/ignitoosolutions/ignito1/internal/platform/httpx"
	"github.com/ignitoosolutions/ignito1/internal/platform/inflight"
	"github.com/ignitoosolutions/ignito1/internal/platform/metrics"
	"github.com/ignitoosolutions/ignito1/internal/platform/observability"
)

const (
	// SuccessNotice is shown after the message was accepted.
	SuccessNotice = "Thank you! Your message has been sent."
	// GenericFailure is shown when the endpoint gives no usable message.
	GenericFailure = "There was an error sending your message. Please try again."
	// InFlightMessage is shown while a previous message is still being sent.
	InFlightMessage = "Your message is already being sent."
)

// ErrSubmissionInFlight is returned when the visitor already has a message pending.
var ErrSubmissionInFlight = errors.New("contact: submission already in flight")

// Result is what the contact page shows after a submission.
type Result struct {
	Success bool
	Notice  string
}

// Config configures a Client.
type Config struct {
	Endpoint string
	Client   *http.Client
	Timeout  time.Duration
	Logger   observability.EventLogger
	Metrics  *metrics.Metrics
}

// Client posts form-encoded name/email/message to the contact endpoint.
type Client struct {
	endpoint string
	client   *http.Client
	logger   observability.EventLogger
	metrics  *metrics.Metrics
	guard    inflight.Guard
}

// NewClient validates cfg and builds a Client.
func NewClient(cfg Config) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, errors.New("contact: endpoint is required")
	}
	client := cfg.Client
	if client == nil {
		client = httpx.NewClient(cfg.Timeout)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = observability.NopEvents()
	}
	return &Client{endpoint: endpoint, client: client, logger: logger, metrics: cfg.Metrics}, nil
}

// Send submits msg on behalf of visitorID. Transport and backend failures are
// reported through Result.Notice; only an overlapping send returns an error.
func (c *Client) Send(ctx context.Context, visitorID string, msg domain.Buyer) (Result, error) {
	release, err := c.guard.Acquire(visitorID)
	if err != nil {
		return Result{Notice: InFlightMessage}, ErrSubmissionInFlight
	}
	defer release()

	start := time.Now()
	form := url.Values{}
	form.Set("name", msg.Name)
	form.Set("email", msg.Email)
	form.Set("message", msg.Message)

	resp, err := c.post(ctx, form)
	if err != nil {
		c.metrics.ObserveSubmission("contact", "transport_error", start)
		c.logger(ctx, "contact.send.failed", map[string]any{"error": err.Error()})
		return Result{Notice: GenericFailure}, nil
	}
	if resp.Status != httpx.StatusSuccess {
		c.metrics.ObserveSubmission("contact", "rejected", start)
		c.logger(ctx, "contact.send.rejected", map[string]any{"message": resp.Message})
		notice := strings.TrimSpace(resp.Message)
		if notice == "" {
			notice = GenericFailure
		}
		return Result{Notice: notice}, nil
	}
	c.metrics.ObserveSubmission("contact", "success", start)
	return Result{Success: true, Notice: SuccessNotice}, nil
}

func (c *Client) post(ctx context.Context, form url.Values) (httpx.SubmissionResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return httpx.SubmissionResponse{}, fmt.Errorf("build contact request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return httpx.SubmissionResponse{}, fmt.Errorf("post contact: %w", err)
	}
	defer res.Body.Close()
	return httpx.DecodeSubmission(res.Body)
}

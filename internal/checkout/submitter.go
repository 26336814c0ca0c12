package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ignitoosolutions/ignito1/internal/cart"
	"github.com/ignitoosolutions/ignito1/internal/domain"
	"github.com/ignitoosolutions/ignito1/internal/payments"
	"github.com/ignitoosolutions/ignito1/internal/platform/httpx"
	"github.com/ignitoosolutions/ignito1/internal/platform/inflight"
	"github.com/ignitoosolutions/ignito1/internal/platform/metrics"
	"github.com/ignitoosolutions/ignito1/internal/platform/observability"
)

const (
	// GenericFailure is shown when the order endpoint gives no usable message.
	GenericFailure = "There was an error placing your order. Please try again."
	// InFlightMessage is shown when a submission for the visitor is still pending.
	InFlightMessage = "Your order is already being submitted."
	// CompletePath is where a successful submission redirects.
	CompletePath = "/checkout/complete"
)

var (
	// ErrSubmissionInFlight is returned when the visitor already has a submission pending.
	ErrSubmissionInFlight = errors.New("checkout: submission already in flight")
	// ErrPaymentMismatch is returned when an approved payment belongs to
	// another visitor or no longer covers the cart exactly.
	ErrPaymentMismatch = errors.New("checkout: payment does not match the cart")
)

// PaymentMismatchMessage is shown when the cart changed after payment started.
const PaymentMismatchMessage = "Your cart changed after payment started. Please review your order and pay again."

// Outcome is what the checkout page does after a submission attempt.
type Outcome struct {
	Success  bool
	Redirect string
	Notice   string
	OrderID  string
}

// OrderRequest is the JSON body posted to the order endpoint.
type OrderRequest struct {
	Items   []domain.LineItem `json:"items"`
	Total   float64           `json:"total"`
	Name    string            `json:"name"`
	Email   string            `json:"email"`
	Message string            `json:"message"`
}

// SubmitterConfig configures a Submitter.
type SubmitterConfig struct {
	Endpoint string
	Client   *http.Client
	Timeout  time.Duration
	Sessions *cart.Sessions
	Logger   observability.EventLogger
	Metrics  *metrics.Metrics
}

// Submitter posts the cart to the order endpoint. It never retries.
type Submitter struct {
	endpoint string
	client   *http.Client
	sessions *cart.Sessions
	logger   observability.EventLogger
	metrics  *metrics.Metrics

	guard inflight.Guard
}

// NewSubmitter validates cfg and builds a Submitter.
func NewSubmitter(cfg SubmitterConfig) (*Submitter, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, errors.New("checkout: order endpoint is required")
	}
	client := cfg.Client
	if client == nil {
		client = httpx.NewClient(cfg.Timeout)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = observability.NopEvents()
	}
	return &Submitter{
		endpoint: endpoint,
		client:   client,
		sessions: cfg.Sessions,
		logger:   logger,
		metrics:  cfg.Metrics,
	}, nil
}

// Submit places visitorID's cart. A second call for the same visitor while
// one is pending returns ErrSubmissionInFlight without waiting.
func (s *Submitter) Submit(ctx context.Context, visitorID string, buyer domain.Buyer) (Outcome, error) {
	if s.sessions == nil {
		return Outcome{}, errors.New("checkout: submitter has no sessions")
	}
	release, err := s.guard.Acquire(visitorID)
	if err != nil {
		return Outcome{Notice: InFlightMessage}, ErrSubmissionInFlight
	}
	defer release()

	var outcome Outcome
	err = s.sessions.With(ctx, visitorID, func(session *cart.Session) error {
		outcome = s.SubmitSession(ctx, session, buyer)
		return nil
	})
	if err != nil {
		return Outcome{Notice: GenericFailure}, err
	}
	return outcome, nil
}

// SubmitPayment places visitorID's cart against the approved payment
// paymentID. Approval, the amount check, the order and marking the payment
// used all happen under the visitor's guard and lock, so the cart charged is
// the cart ordered and a payment places at most one order. Blank buyer fields
// fall back to the payer's details.
func (s *Submitter) SubmitPayment(ctx context.Context, visitorID, paymentID string, widget payments.Widget, buyer domain.Buyer, currency string) (Outcome, error) {
	if s.sessions == nil || widget == nil {
		return Outcome{}, errors.New("checkout: payment submission is not configured")
	}
	release, err := s.guard.Acquire(visitorID)
	if err != nil {
		return Outcome{Notice: InFlightMessage}, ErrSubmissionInFlight
	}
	defer release()

	var outcome Outcome
	err = s.sessions.With(ctx, visitorID, func(session *cart.Session) error {
		payer, err := widget.Approve(ctx, paymentID)
		if err != nil {
			return err
		}
		summary := NewSummary(session.Cart(), currency)
		if payer.Visitor != visitorID || summary.Empty ||
			summary.Amount.Minor != payer.Amount.Minor ||
			!strings.EqualFold(summary.Amount.Currency, payer.Amount.Currency) {
			s.logger(ctx, "checkout.payment.mismatch", map[string]any{
				"payment":      paymentID,
				"chargedMinor": payer.Amount.Minor,
				"cartMinor":    summary.Amount.Minor,
			})
			return ErrPaymentMismatch
		}

		buyer.Name = firstNonBlank(buyer.Name, payer.Name)
		buyer.Email = firstNonBlank(buyer.Email, payer.Email)
		buyer.Message = firstNonBlank(buyer.Message, "Payment reference "+payer.OrderID)
		outcome = s.SubmitSession(ctx, session, buyer)
		if !outcome.Success {
			return nil
		}
		placed := firstNonBlank(outcome.OrderID, paymentID)
		if err := widget.Consume(ctx, paymentID, placed); err != nil {
			s.logger(ctx, "checkout.payment.consume_failed", map[string]any{"payment": paymentID, "error": err.Error()})
		}
		return nil
	})
	switch {
	case errors.Is(err, ErrPaymentMismatch):
		return Outcome{Notice: PaymentMismatchMessage}, err
	case err != nil:
		return Outcome{Notice: GenericFailure}, err
	}
	return outcome, nil
}

// SubmitSession posts session's cart with buyer. On success the session is
// cleared and the outcome redirects to CompletePath; on any failure the cart
// is left as it was and Notice explains why.
func (s *Submitter) SubmitSession(ctx context.Context, session *cart.Session, buyer domain.Buyer) Outcome {
	start := time.Now()
	current := session.Cart()
	items := current.Items()
	if items == nil {
		items = []domain.LineItem{}
	}
	payload := OrderRequest{
		Items:   items,
		Total:   current.Total(),
		Name:    buyer.Name,
		Email:   buyer.Email,
		Message: buyer.Message,
	}

	resp, err := s.post(ctx, payload)
	if err != nil {
		s.metrics.ObserveSubmission("order", "transport_error", start)
		s.logger(ctx, "checkout.submit.failed", map[string]any{"error": err.Error()})
		return Outcome{Notice: GenericFailure}
	}
	if resp.Status != httpx.StatusSuccess {
		s.metrics.ObserveSubmission("order", "rejected", start)
		s.logger(ctx, "checkout.submit.rejected", map[string]any{"message": resp.Message})
		notice := strings.TrimSpace(resp.Message)
		if notice == "" {
			notice = GenericFailure
		}
		return Outcome{Notice: notice}
	}

	s.metrics.ObserveSubmission("order", "success", start)
	if err := session.Clear(ctx); err != nil {
		// The order exists; a stale cart is the lesser problem.
		s.logger(ctx, "checkout.clear.failed", map[string]any{"error": err.Error(), "orderId": resp.OrderID})
	}
	s.logger(ctx, "checkout.submit.succeeded", map[string]any{"orderId": resp.OrderID, "items": len(items)})
	return Outcome{Success: true, Redirect: CompletePath, OrderID: resp.OrderID}
}

func (s *Submitter) post(ctx context.Context, payload OrderRequest) (httpx.SubmissionResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return httpx.SubmissionResponse{}, fmt.Errorf("encode order: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return httpx.SubmissionResponse{}, fmt.Errorf("build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := s.client.Do(req)
	if err != nil {
		return httpx.SubmissionResponse{}, fmt.Errorf("post order: %w", err)
	}
	defer res.Body.Close()

	return httpx.DecodeSubmission(res.Body)
}


func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

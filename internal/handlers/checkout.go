package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ignitoosolutions/ignito1/internal/checkout"
	"github.com/ignitoosolutions/ignito1/internal/domain"
	"github.com/ignitoosolutions/ignito1/internal/middleware"
	"github.com/ignitoosolutions/ignito1/internal/payments"
	"github.com/ignitoosolutions/ignito1/internal/platform/httpx"
	"github.com/ignitoosolutions/ignito1/internal/platform/requestctx"
	"github.com/ignitoosolutions/ignito1/internal/views"
)

const maxCheckoutFormSize = 32 * 1024

func (h *SiteHandlers) checkoutPage(w http.ResponseWriter, r *http.Request) {
	h.renderCheckout(w, r, http.StatusOK, "", domain.Buyer{})
}

// renderCheckout builds the summary from the stored cart. The same Amount
// feeds the displayed total and the payment button.
func (h *SiteHandlers) renderCheckout(w http.ResponseWriter, r *http.Request, status int, notice string, form domain.Buyer) {
	ctx := r.Context()
	summary := checkout.NewSummary(h.deps.Sessions.Load(ctx, requestctx.Visitor(ctx)), h.deps.Currency)
	view := views.CheckoutView{Summary: summary, Notice: notice, Form: form}
	view.Button, view.HasButton = summary.Mount(h.deps.Payments)
	h.render(w, r, status, "checkout", "", "Checkout", view)
}

func (h *SiteHandlers) submitOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, maxCheckoutFormSize)
	if err := r.ParseForm(); err != nil {
		h.renderCheckout(w, r, http.StatusBadRequest, checkout.GenericFailure, domain.Buyer{})
		return
	}
	buyer := domain.Buyer{
		Name:    r.PostForm.Get("name"),
		Email:   r.PostForm.Get("email"),
		Message: r.PostForm.Get("message"),
	}
	if h.deps.Submitter == nil {
		h.renderCheckout(w, r, http.StatusServiceUnavailable, checkout.GenericFailure, buyer)
		return
	}

	outcome, err := h.deps.Submitter.Submit(ctx, requestctx.Visitor(ctx), buyer)
	if err != nil {
		status := http.StatusServiceUnavailable
		if errors.Is(err, checkout.ErrSubmissionInFlight) {
			status = http.StatusConflict
		} else {
			requestctx.Logger(ctx).Warn("order submission failed", zap.Error(err))
		}
		h.renderCheckout(w, r, status, outcome.Notice, buyer)
		return
	}
	if !outcome.Success {
		h.renderCheckout(w, r, http.StatusOK, outcome.Notice, buyer)
		return
	}

	target := completeURL(outcome)
	if middleware.IsHTMX(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *SiteHandlers) checkoutComplete(w http.ResponseWriter, r *http.Request) {
	view := views.CompleteView{OrderID: strings.TrimSpace(r.URL.Query().Get("order"))}
	h.render(w, r, http.StatusOK, "checkout_complete", "", "Order placed", view)
}

// createPaymentOrder opens a processor order for the stored cart's total.
// The amount never comes from the client.
func (h *SiteHandlers) createPaymentOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.deps.Payments == nil {
		httpx.WriteError(ctx, w, httpx.NewError("payments_unavailable", "payments are not configured", http.StatusServiceUnavailable))
		return
	}
	summary := checkout.NewSummary(h.deps.Sessions.Load(ctx, requestctx.Visitor(ctx)), h.deps.Currency)
	if summary.Empty {
		httpx.WriteError(ctx, w, httpx.NewError("cart_empty", checkout.EmptyMessage, http.StatusBadRequest))
		return
	}
	ref, err := h.deps.Payments.CreateOrder(ctx, requestctx.Visitor(ctx), summary.Amount)
	if err != nil {
		if errors.Is(err, payments.ErrInvalidAmount) {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_amount", "cart total cannot be charged", http.StatusBadRequest))
			return
		}
		requestctx.Logger(ctx).Error("create payment order failed", zap.Error(err))
		httpx.WriteError(ctx, w, httpx.NewError("payment_order_failed", "unable to start payment", http.StatusBadGateway))
		return
	}
	payload := map[string]any{
		"id":       ref.ID,
		"provider": ref.Provider,
		"amount": map[string]any{
			"minor":    ref.Amount.Minor,
			"currency": ref.Amount.Currency,
			"display":  ref.Amount.Display(),
		},
		"approveUrl": payments.ApprovePath(ref.ID),
	}
	if ref.ClientSecret != "" {
		payload["clientSecret"] = ref.ClientSecret
	}
	httpx.WriteJSON(w, http.StatusCreated, payload)
}

// approvePayment confirms the processor order and places the cart as an
// order for the payer. Posted name/email take precedence over the payer's.
// The payment must belong to this visitor and cover the cart exactly.
func (h *SiteHandlers) approvePayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.deps.Payments == nil || h.deps.Submitter == nil {
		httpx.WriteError(ctx, w, httpx.NewError("payments_unavailable", "payments are not configured", http.StatusServiceUnavailable))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxCheckoutFormSize)
	_ = r.ParseForm()

	buyer := domain.Buyer{
		Name:    r.PostForm.Get("name"),
		Email:   r.PostForm.Get("email"),
		Message: r.PostForm.Get("message"),
	}
	outcome, err := h.deps.Submitter.SubmitPayment(ctx, requestctx.Visitor(ctx), chi.URLParam(r, "orderID"), h.deps.Payments, buyer, h.deps.Currency)
	switch {
	case errors.Is(err, payments.ErrOrderNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("payment_not_found", "payment order not found", http.StatusNotFound))
		return
	case errors.Is(err, payments.ErrNotApproved):
		httpx.WriteError(ctx, w, httpx.NewError("payment_not_approved", "payment has not been approved", http.StatusPaymentRequired))
		return
	case errors.Is(err, payments.ErrConsumed):
		httpx.WriteError(ctx, w, httpx.NewError("payment_used", "payment has already placed an order", http.StatusConflict))
		return
	case errors.Is(err, checkout.ErrPaymentMismatch):
		httpx.WriteError(ctx, w, httpx.NewError("payment_mismatch", outcome.Notice, http.StatusConflict))
		return
	case errors.Is(err, checkout.ErrSubmissionInFlight):
		httpx.WriteSubmission(w, http.StatusConflict, httpx.SubmissionResponse{Status: httpx.StatusError, Message: outcome.Notice})
		return
	case err != nil:
		requestctx.Logger(ctx).Error("approve payment failed", zap.Error(err))
		httpx.WriteError(ctx, w, httpx.NewError("payment_approve_failed", "unable to confirm payment", http.StatusBadGateway))
		return
	}
	if !outcome.Success {
		httpx.WriteSubmission(w, http.StatusOK, httpx.SubmissionResponse{Status: httpx.StatusError, Message: outcome.Notice})
		return
	}
	w.Header().Set("HX-Redirect", completeURL(outcome))
	httpx.WriteSubmission(w, http.StatusOK, httpx.SubmissionResponse{Status: httpx.StatusSuccess, OrderID: outcome.OrderID})
}

func completeURL(outcome checkout.Outcome) string {
	target := outcome.Redirect
	if target == "" {
		target = checkout.CompletePath
	}
	if outcome.OrderID != "" {
		target += "?order=" + url.QueryEscape(outcome.OrderID)
	}
	return target
}

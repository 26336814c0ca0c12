package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ignitoosolutions/ignito1/internal/domain"
	"github.com/ignitoosolutions/ignito1/internal/platform/httpx"
	"github.com/ignitoosolutions/ignito1/internal/platform/requestctx"
	"github.com/ignitoosolutions/ignito1/internal/services"
)

const (
	maxOrderBodySize   = 256 * 1024
	maxContactBodySize = 32 * 1024

	orderMissingMessage   = "Missing required information."
	contactMissingMessage = "All fields are required."
)

// BackendHandlers serves the order and contact endpoints the site's forms post to.
type BackendHandlers struct {
	orders   services.OrderService
	contacts services.ContactService
}

// NewBackendHandlers wires the endpoints to their services.
func NewBackendHandlers(orders services.OrderService, contacts services.ContactService) *BackendHandlers {
	return &BackendHandlers{orders: orders, contacts: contacts}
}

// Routes registers POST /order and POST /contact.
func (h *BackendHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/order", h.placeOrder)
	r.Post("/contact", h.submitContact)
}

type orderPayload struct {
	Items   []domain.LineItem `json:"items"`
	Total   float64           `json:"total"`
	Name    string            `json:"name"`
	Email   string            `json:"email"`
	Message string            `json:"message"`
}

func (h *BackendHandlers) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service is unavailable", http.StatusServiceUnavailable))
		return
	}

	body, err := httpx.ReadLimitedBody(r, maxOrderBodySize)
	if err != nil {
		if errors.Is(err, httpx.ErrBodyTooLarge) {
			httpx.WriteSubmission(w, http.StatusRequestEntityTooLarge, httpx.SubmissionResponse{Status: httpx.StatusError, Message: "Order is too large."})
			return
		}
		httpx.WriteSubmission(w, http.StatusBadRequest, httpx.SubmissionResponse{Status: httpx.StatusError, Message: orderMissingMessage})
		return
	}

	// An unreadable body is treated as an empty one.
	var payload orderPayload
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			payload = orderPayload{}
		}
	}

	order, err := h.orders.PlaceOrder(ctx, services.PlaceOrderCommand{
		Items:   payload.Items,
		Total:   payload.Total,
		Name:    payload.Name,
		Email:   payload.Email,
		Message: payload.Message,
	})
	switch {
	case errors.Is(err, services.ErrOrderMissingInformation):
		httpx.WriteSubmission(w, http.StatusBadRequest, httpx.SubmissionResponse{Status: httpx.StatusError, Message: orderMissingMessage})
		return
	case err != nil:
		requestctx.Logger(ctx).Error("place order failed", zap.Error(err))
		httpx.WriteSubmission(w, http.StatusInternalServerError, httpx.SubmissionResponse{Status: httpx.StatusError})
		return
	}
	httpx.WriteSubmission(w, http.StatusOK, httpx.SubmissionResponse{Status: httpx.StatusSuccess, OrderID: order.ID})
}

func (h *BackendHandlers) submitContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.contacts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("contact_service_unavailable", "contact service is unavailable", http.StatusServiceUnavailable))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxContactBodySize)
	if err := r.ParseForm(); err != nil {
		httpx.WriteSubmission(w, http.StatusBadRequest, httpx.SubmissionResponse{Status: httpx.StatusError, Message: contactMissingMessage})
		return
	}

	_, err := h.contacts.SubmitContact(ctx, services.SubmitContactCommand{
		Name:    r.PostForm.Get("name"),
		Email:   r.PostForm.Get("email"),
		Message: r.PostForm.Get("message"),
	})
	switch {
	case errors.Is(err, services.ErrContactMissingFields):
		httpx.WriteSubmission(w, http.StatusBadRequest, httpx.SubmissionResponse{Status: httpx.StatusError, Message: contactMissingMessage})
		return
	case err != nil:
		requestctx.Logger(ctx).Error("submit contact failed", zap.Error(err))
		httpx.WriteSubmission(w, http.StatusInternalServerError, httpx.SubmissionResponse{Status: httpx.StatusError})
		return
	}
	httpx.WriteSubmission(w, http.StatusOK, httpx.SubmissionResponse{Status: httpx.StatusSuccess})
}

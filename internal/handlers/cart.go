package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ignitoosolutions/ignito1/internal/cart"
	"github.com/ignitoosolutions/ignito1/internal/middleware"
	"github.com/ignitoosolutions/ignito1/internal/platform/requestctx"
	"github.com/ignitoosolutions/ignito1/internal/views"
)

const maxCartFormSize = 8 * 1024

// addItem applies an add-to-cart post. Catalog services are priced from the
// catalog; other ids use the posted name and price. Invalid input changes
// nothing and still answers with the current cart.
func (h *SiteHandlers) addItem(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCartFormSize)
	if err := r.ParseForm(); err != nil {
		h.respondCart(w, r, nil, false)
		return
	}
	id := strings.TrimSpace(r.PostForm.Get("id"))
	name := r.PostForm.Get("name")
	price, priceOK := parsePrice(r.PostForm.Get("price"))
	quantity, qtyOK := parseQuantity(r.PostForm.Get("quantity"))
	if svc, ok := h.deps.Catalog.Snapshot(r.Context()).Lookup(id); ok {
		name, price, priceOK = svc.Name, svc.Price, true
	}

	var (
		view    *views.CartView
		applied bool
	)
	err := h.deps.Sessions.With(r.Context(), requestctx.Visitor(r.Context()), func(s *cart.Session) error {
		if !priceOK || !qtyOK {
			return cart.ErrInvalidItem
		}
		if err := s.AddItem(r.Context(), id, name, price, quantity); err != nil {
			return err
		}
		applied = true
		return nil
	}, h.renderCartInto(&view))
	h.logMutation(r, "add", err)
	h.respondCart(w, r, view, applied)
}

// removeItem deletes the line at the posted index.
func (h *SiteHandlers) removeItem(w http.ResponseWriter, r *http.Request) {
	index, convErr := strconv.Atoi(chi.URLParam(r, "index"))

	var view *views.CartView
	err := h.deps.Sessions.With(r.Context(), requestctx.Visitor(r.Context()), func(s *cart.Session) error {
		if convErr != nil {
			return cart.ErrInvalidIndex
		}
		return s.RemoveItem(r.Context(), index)
	}, h.renderCartInto(&view))
	h.logMutation(r, "remove", err)
	h.respondCart(w, r, view, false)
}

// renderCartInto keeps the view of the session's cart as of its last render:
// the hydrated cart, or the cart after the last saved mutation.
func (h *SiteHandlers) renderCartInto(dst **views.CartView) cart.SessionOption {
	return cart.WithRender(func(_ context.Context, c *cart.Cart) {
		view := views.BuildCartView(c, h.deps.Currency)
		*dst = &view
	})
}

func (h *SiteHandlers) cartDropdown(w http.ResponseWriter, r *http.Request) {
	h.respondCart(w, r, nil, false)
}

// respondCart renders the dropdown for htmx and redirects plain form posts.
// A nil view is built from the stored cart.
func (h *SiteHandlers) respondCart(w http.ResponseWriter, r *http.Request, rendered *views.CartView, added bool) {
	if r.Method != http.MethodGet && !middleware.IsHTMX(r) {
		redirectBack(w, r, "/")
		return
	}
	var view views.CartView
	if rendered != nil {
		view = *rendered
	} else {
		ctx := r.Context()
		view = views.BuildCartView(h.deps.Sessions.Load(ctx, requestctx.Visitor(ctx)), h.deps.Currency)
	}
	if added && h.deps.AutoHide > 0 {
		view.AutoHideMS = h.deps.AutoHide.Milliseconds()
	}
	h.writeCart(w, r, view)
}

// logMutation records failures other than rejected input, which is silent.
func (h *SiteHandlers) logMutation(r *http.Request, op string, err error) {
	if err == nil || errors.Is(err, cart.ErrInvalidItem) || errors.Is(err, cart.ErrInvalidIndex) {
		return
	}
	requestctx.Logger(r.Context()).Warn("cart mutation failed", zap.String("op", op), zap.Error(err))
}

func parsePrice(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseQuantity treats a missing quantity as 1.
func parseQuantity(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

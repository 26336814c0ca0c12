package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ignitoosolutions/ignito1/internal/blog"
	"github.com/ignitoosolutions/ignito1/internal/cart"
	"github.com/ignitoosolutions/ignito1/internal/catalog"
	"github.com/ignitoosolutions/ignito1/internal/checkout"
	"github.com/ignitoosolutions/ignito1/internal/contact"
	"github.com/ignitoosolutions/ignito1/internal/payments"
	"github.com/ignitoosolutions/ignito1/internal/platform/requestctx"
	"github.com/ignitoosolutions/ignito1/internal/views"
)

const (
	themeCookie  = "theme"
	themeLight   = "light"
	themeDark    = "dark"
	defaultTheme = themeLight
)

// SiteDeps wires the HTML side of the storefront.
type SiteDeps struct {
	Renderer  *views.Renderer
	Catalog   catalog.Source
	Sessions  *cart.Sessions
	Submitter *checkout.Submitter
	Contact   *contact.Client
	Payments  payments.Widget
	Blog      *blog.Composer

	Currency      string
	AutoHide      time.Duration
	SecureCookies bool
	MapLatitude   float64
	MapLongitude  float64
}

// SiteHandlers renders pages and handles the forms they post.
type SiteHandlers struct {
	deps SiteDeps
}

// NewSiteHandlers validates deps. Renderer, Catalog and Sessions are required.
func NewSiteHandlers(deps SiteDeps) (*SiteHandlers, error) {
	switch {
	case deps.Renderer == nil:
		return nil, errors.New("handlers: renderer is required")
	case deps.Catalog == nil:
		return nil, errors.New("handlers: catalog is required")
	case deps.Sessions == nil:
		return nil, errors.New("handlers: cart sessions are required")
	}
	if strings.TrimSpace(deps.Currency) == "" {
		deps.Currency = "USD"
	}
	if deps.Blog == nil {
		deps.Blog = blog.NewComposer()
	}
	return &SiteHandlers{deps: deps}, nil
}

// Routes registers every page and form route.
func (h *SiteHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.home)
	r.Get("/services", h.services)
	r.Get("/about", h.static("about", "about", "About"))
	r.Get("/privacy-policy", h.static("privacy", "", "Privacy Policy"))
	r.Get("/terms-and-conditions", h.static("terms", "", "Terms & Conditions"))
	r.Post("/theme", h.setTheme)

	r.Post("/cart/items", h.addItem)
	r.Post("/cart/items/{index}/remove", h.removeItem)
	r.Get("/cart", h.cartDropdown)

	r.Get("/checkout", h.checkoutPage)
	r.Post("/checkout/submit", h.submitOrder)
	r.Get("/checkout/complete", h.checkoutComplete)
	r.Post(payments.CreateOrderPath, h.createPaymentOrder)
	r.Post(payments.CreateOrderPath+"/{orderID}/approve", h.approvePayment)

	r.Get("/contact", h.contactPage)
	r.Post("/contact/send", h.sendContact)

	r.Get("/calculator", h.calculatorPage)
	r.Post("/calculator", h.calculate)

	r.Get("/blog", h.blogPage)
	r.Post("/blog", h.publishPost)
}

// NotFound renders the HTML 404 page.
func (h *SiteHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "not_found", "", "Page not found", nil)
}

func (h *SiteHandlers) static(page, active, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.render(w, r, http.StatusOK, page, active, title, nil)
	}
}

// render loads the visitor's cart for the navbar and writes the page.
func (h *SiteHandlers) render(w http.ResponseWriter, r *http.Request, status int, name, active, title string, body any) {
	ctx := r.Context()
	c := h.deps.Sessions.Load(ctx, requestctx.Visitor(ctx))
	page := views.Page{
		Title:  title,
		Active: active,
		Theme:  themeFrom(r),
		Cart:   views.BuildCartView(c, h.deps.Currency),
		Body:   body,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	var buf strings.Builder
	if err := h.deps.Renderer.Page(&buf, name, page); err != nil {
		requestctx.Logger(ctx).Error("render page failed", zap.String("page", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(buf.String()))
}

// writeCart answers a cart mutation with the dropdown fragment and the
// cart:updated trigger.
func (h *SiteHandlers) writeCart(w http.ResponseWriter, r *http.Request, view views.CartView) {
	ctx := r.Context()
	if raw, err := json.Marshal(view.Trigger()); err == nil {
		w.Header().Set("HX-Trigger", string(raw))
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := h.deps.Renderer.CartDropdown(w, view); err != nil {
		requestctx.Logger(ctx).Error("render cart failed", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func themeFrom(r *http.Request) string {
	if c, err := r.Cookie(themeCookie); err == nil && c.Value == themeDark {
		return themeDark
	}
	return defaultTheme
}

// redirectBack sends non-htmx form posts back to the referring page.
func redirectBack(w http.ResponseWriter, r *http.Request, fallback string) {
	target := fallback
	if ref := r.Referer(); ref != "" {
		if u, err := r.URL.Parse(ref); err == nil && (u.Host == "" || u.Host == r.Host) {
			target = u.RequestURI()
		}
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// Package middleware holds the storefront's request middleware.
package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignitoosolutions/ignito1/internal/platform/requestctx"
)

// DefaultVisitorCookie names the cookie carrying the anonymous visitor id.
const DefaultVisitorCookie = "ignito_visitor"

const visitorTTL = 365 * 24 * time.Hour

// VisitorConfig configures the Visitor middleware.
type VisitorConfig struct {
	CookieName string
	Secure     bool
	// NewID is used in tests; defaults to uuid.NewString.
	NewID func() string
}

// Visitor resolves the visitor id from its cookie, minting one when the
// cookie is missing or not a UUID, and stores it on the request context.
func Visitor(cfg VisitorConfig) func(http.Handler) http.Handler {
	name := strings.TrimSpace(cfg.CookieName)
	if name == "" {
		name = DefaultVisitorCookie
	}
	newID := cfg.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(name); err == nil {
				if parsed, err := uuid.Parse(c.Value); err == nil {
					id = parsed.String()
				}
			}
			if id == "" {
				id = newID()
				http.SetCookie(w, &http.Cookie{
					Name:     name,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
					Expires:  time.Now().Add(visitorTTL),
				})
			}
			ctx := requestctx.WithVisitor(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

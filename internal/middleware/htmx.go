package middleware

import (
	"context"
	"net/http"
)

type htmxKey struct{}

// HTMX marks requests coming from htmx so handlers can answer with fragments.
func HTMX(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		is := r.Header.Get("HX-Request") == "true"
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), htmxKey{}, is)))
	})
}

// IsHTMX reports whether the request was issued by htmx.
func IsHTMX(r *http.Request) bool {
	if is, ok := r.Context().Value(htmxKey{}).(bool); ok {
		return is
	}
	return r.Header.Get("HX-Request") == "true"
}

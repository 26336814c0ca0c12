package handlers

import (
	"net/http"
	"time"

	"github.com/ignitoosolutions/ignito1/internal/middleware"
	"github.com/ignitoosolutions/ignito1/internal/views"
)

const themeCookieTTL = 365 * 24 * time.Hour

func (h *SiteHandlers) home(w http.ResponseWriter, r *http.Request) {
	body := views.CatalogView{Services: views.ServiceCards(h.deps.Catalog.Snapshot(r.Context()).All(), h.deps.Currency)}
	h.render(w, r, http.StatusOK, "home", "home", "Home", body)
}

func (h *SiteHandlers) services(w http.ResponseWriter, r *http.Request) {
	body := views.CatalogView{Services: views.ServiceCards(h.deps.Catalog.Snapshot(r.Context()).All(), h.deps.Currency)}
	h.render(w, r, http.StatusOK, "services", "services", "Services", body)
}

// setTheme stores the requested theme. Anything but "dark" means light.
func (h *SiteHandlers) setTheme(w http.ResponseWriter, r *http.Request) {
	theme := defaultTheme
	if err := r.ParseForm(); err == nil && r.PostForm.Get("theme") == themeDark {
		theme = themeDark
	}
	http.SetCookie(w, &http.Cookie{
		Name:     themeCookie,
		Value:    theme,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.deps.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(themeCookieTTL),
	})
	if middleware.IsHTMX(r) {
		w.Header().Set("HX-Refresh", "true")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	redirectBack(w, r, "/")
}

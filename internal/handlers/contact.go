package handlers

import (
	"net/http"

	"github.com/ignitoosolutions/ignito1/internal/contact"
	"github.com/ignitoosolutions/ignito1/internal/domain"
	"github.com/ignitoosolutions/ignito1/internal/platform/requestctx"
	"github.com/ignitoosolutions/ignito1/internal/views"
)

const maxContactFormSize = 32 * 1024

func (h *SiteHandlers) contactPage(w http.ResponseWriter, r *http.Request) {
	h.renderContact(w, r, http.StatusOK, views.ContactView{})
}

func (h *SiteHandlers) renderContact(w http.ResponseWriter, r *http.Request, status int, view views.ContactView) {
	view.Latitude = h.deps.MapLatitude
	view.Longitude = h.deps.MapLongitude
	h.render(w, r, status, "contact", "contact", "Contact", view)
}

// sendContact relays the page form to the contact endpoint. The form keeps
// its values unless the message was accepted.
func (h *SiteHandlers) sendContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, maxContactFormSize)
	if err := r.ParseForm(); err != nil {
		h.renderContact(w, r, http.StatusBadRequest, views.ContactView{Notice: contact.GenericFailure})
		return
	}
	msg := domain.Buyer{
		Name:    r.PostForm.Get("name"),
		Email:   r.PostForm.Get("email"),
		Message: r.PostForm.Get("message"),
	}
	if h.deps.Contact == nil {
		h.renderContact(w, r, http.StatusServiceUnavailable, views.ContactView{Notice: contact.GenericFailure, Form: msg})
		return
	}

	result, err := h.deps.Contact.Send(ctx, requestctx.Visitor(ctx), msg)
	if err != nil {
		h.renderContact(w, r, http.StatusConflict, views.ContactView{Notice: result.Notice, Form: msg})
		return
	}
	view := views.ContactView{Notice: result.Notice, Success: result.Success}
	if !result.Success {
		view.Form = msg
	}
	h.renderContact(w, r, http.StatusOK, view)
}

package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ignitoosolutions/ignito1/internal/blog"
	"github.com/ignitoosolutions/ignito1/internal/domain"
	"github.com/ignitoosolutions/ignito1/internal/platform/requestctx"
	"github.com/ignitoosolutions/ignito1/internal/views"
)

const (
	maxBlogFormSize    = 4 << 20
	blogGenericFailure = "Your post could not be published. Please try again."
)

var blogMessages = map[error]string{
	blog.ErrTitleRequired: "Please give your post a title.",
	blog.ErrBodyRequired:  "Please write something before publishing.",
	blog.ErrCoverTooLarge: "The cover image is too large.",
	blog.ErrCoverType:     "The cover must be a PNG, JPEG, GIF or WebP image.",
}

func (h *SiteHandlers) blogPage(w http.ResponseWriter, r *http.Request) {
	h.renderBlog(w, r, http.StatusOK, "", domain.Post{})
}

func (h *SiteHandlers) renderBlog(w http.ResponseWriter, r *http.Request, status int, errMsg string, draft domain.Post) {
	visitor := requestctx.Visitor(r.Context())
	view := views.BlogView{Posts: views.PostViews(h.deps.Blog.Posts(visitor)), Error: errMsg, Draft: draft}
	h.render(w, r, status, "blog", "blog", "Blog", view)
}

// publishPost accepts the multipart composer form with an optional cover file.
func (h *SiteHandlers) publishPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, maxBlogFormSize)
	if err := r.ParseMultipartForm(maxBlogFormSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		h.renderBlog(w, r, http.StatusBadRequest, blogMessages[blog.ErrCoverTooLarge], domain.Post{})
		return
	}
	draft := blog.Draft{Title: r.FormValue("title"), Body: r.FormValue("body")}
	if file, _, err := r.FormFile("cover"); err == nil {
		defer file.Close()
		draft.Cover = file
	} else if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		requestctx.Logger(ctx).Warn("read cover failed", zap.Error(err))
	}

	if _, err := h.deps.Blog.Publish(requestctx.Visitor(ctx), draft); err != nil {
		msg := blogGenericFailure
		for target, text := range blogMessages {
			if errors.Is(err, target) {
				msg = text
				break
			}
		}
		h.renderBlog(w, r, http.StatusUnprocessableEntity, msg, domain.Post{Title: draft.Title, Body: draft.Body})
		return
	}
	http.Redirect(w, r, "/blog", http.StatusSeeOther)
}

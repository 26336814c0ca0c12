// Package blog is the in-memory post composer. Posts live only as long as
// the process and are scoped to the visitor who wrote them.
package blog

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/oklog/ulid/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/ignitoosolutions/ignito1/internal/domain"
)

const (
	defaultMaxCoverBytes = 2 << 20
	defaultMaxPosts      = 50
	defaultMaxVisitors   = 500
)

var (
	// ErrTitleRequired is returned for a blank title.
	ErrTitleRequired = errors.New("blog: title is required")
	// ErrBodyRequired is returned for a blank body.
	ErrBodyRequired = errors.New("blog: body is required")
	// ErrCoverTooLarge is returned when the cover image exceeds the size limit.
	ErrCoverTooLarge = errors.New("blog: cover image too large")
	// ErrCoverType is returned when the cover is not a supported image type.
	ErrCoverType = errors.New("blog: cover must be a PNG, JPEG, GIF or WebP image")
)

var coverTypes = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
	"image/gif":  {},
	"image/webp": {},
}

// Draft is a post as submitted by the composer form. Cover may be nil.
type Draft struct {
	Title string
	Body  string
	Cover io.Reader
}

// Composer renders and keeps posts per visitor. Only the visitors who
// published most recently keep their posts.
type Composer struct {
	markdown    goldmark.Markdown
	policy      *bluemonday.Policy
	maxCover    int64
	maxPosts    int
	maxVisitors int
	now         func() time.Time

	mu    sync.Mutex
	posts *lru.Cache[string, []domain.Post]
}

// Option customises a Composer.
type Option func(*Composer)

// WithMaxCoverBytes overrides the cover image size limit.
func WithMaxCoverBytes(n int64) Option {
	return func(c *Composer) {
		if n > 0 {
			c.maxCover = n
		}
	}
}

// WithMaxVisitors caps how many visitors keep posts at once.
func WithMaxVisitors(n int) Option {
	return func(c *Composer) {
		if n > 0 {
			c.maxVisitors = n
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Composer) {
		if now != nil {
			c.now = now
		}
	}
}

// NewComposer builds a composer rendering GitHub-flavoured Markdown through
// the UGC sanitising policy.
func NewComposer(opts ...Option) *Composer {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("loading").OnElements("img")
	policy.RequireNoFollowOnLinks(true)

	c := &Composer{
		markdown:    goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy:      policy,
		maxCover:    defaultMaxCoverBytes,
		maxPosts:    defaultMaxPosts,
		maxVisitors: defaultMaxVisitors,
		now:         time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	posts, err := lru.New[string, []domain.Post](c.maxVisitors)
	if err != nil {
		panic(err)
	}
	c.posts = posts
	return c
}

// Publish renders draft and prepends it to visitor's posts.
func (c *Composer) Publish(visitor string, draft Draft) (domain.Post, error) {
	title := strings.TrimSpace(draft.Title)
	body := strings.TrimSpace(draft.Body)
	if title == "" {
		return domain.Post{}, ErrTitleRequired
	}
	if body == "" {
		return domain.Post{}, ErrBodyRequired
	}

	html, err := c.Render(body)
	if err != nil {
		return domain.Post{}, err
	}

	var cover string
	if draft.Cover != nil {
		cover, err = ReadCover(draft.Cover, c.maxCover)
		if err != nil {
			return domain.Post{}, err
		}
	}

	now := c.now().UTC()
	post := domain.Post{
		ID:        ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		Title:     title,
		Body:      body,
		BodyHTML:  html,
		CoverURL:  cover,
		CreatedAt: now,
	}

	c.mu.Lock()
	previous, _ := c.posts.Get(visitor)
	posts := append([]domain.Post{post}, previous...)
	if len(posts) > c.maxPosts {
		posts = posts[:c.maxPosts]
	}
	c.posts.Add(visitor, posts)
	c.mu.Unlock()
	return post, nil
}

// Posts returns visitor's posts, newest first.
func (c *Composer) Posts(visitor string) []domain.Post {
	posts, _ := c.posts.Peek(visitor)
	return append([]domain.Post(nil), posts...)
}

// Render converts Markdown to sanitised HTML.
func (c *Composer) Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := c.markdown.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("blog: render markdown: %w", err)
	}
	return c.policy.Sanitize(buf.String()), nil
}

// ReadCover reads at most limit bytes of an image and returns it as a data
// URL. The type is sniffed from content, not taken from the upload.
func ReadCover(r io.Reader, limit int64) (string, error) {
	if limit <= 0 {
		limit = defaultMaxCoverBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", fmt.Errorf("blog: read cover: %w", err)
	}
	if len(data) == 0 {
		return "", nil
	}
	if int64(len(data)) > limit {
		return "", ErrCoverTooLarge
	}
	mime := http.DetectContentType(data)
	if _, ok := coverTypes[mime]; !ok {
		return "", ErrCoverType
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

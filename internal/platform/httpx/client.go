package httpx

import (
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/net/publicsuffix"
)

const defaultClientTimeout = 10 * time.Second

// NewClient returns an HTTP client with a public-suffix aware cookie jar,
// matching how a browser scopes cookies across submissions.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultClientTimeout
	}
	// cookiejar.New only fails on a nil PublicSuffixList.
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	return &http.Client{Timeout: timeout, Jar: jar}
}

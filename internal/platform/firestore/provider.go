// Package firestore owns the process-wide Firestore client used by the
// Firestore cart store.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/ignitoosolutions/ignito1/internal/platform/config"
)

const (
	defaultDialTimeout = 10 * time.Second
	envEmulatorHost    = "FIRESTORE_EMULATOR_HOST"
	envGoogleProjectID = "GOOGLE_CLOUD_PROJECT"
)

var (
	// ErrProviderClosed is returned once Close has been called.
	ErrProviderClosed = errors.New("firestore: provider is closed")
	// ErrProjectRequired is returned when neither config nor GOOGLE_CLOUD_PROJECT names a project.
	ErrProjectRequired = errors.New("firestore: project id is required")
)

// Provider dials Firestore on first use and hands the same client to every
// caller until Close.
type Provider struct {
	project   string
	emulator  string
	timeout   time.Duration
	extraOpts []option.ClientOption

	mu     sync.Mutex
	client *firestore.Client
	closed bool
}

// ProviderOption customises the Provider behaviour.
type ProviderOption func(*Provider)

// WithDialTimeout bounds client creation.
func WithDialTimeout(timeout time.Duration) ProviderOption {
	return func(p *Provider) {
		if timeout > 0 {
			p.timeout = timeout
		}
	}
}

// WithClientOptions appends client options applied during initialisation.
func WithClientOptions(opts ...option.ClientOption) ProviderOption {
	return func(p *Provider) {
		p.extraOpts = append(p.extraOpts, opts...)
	}
}

// NewProvider resolves the project and emulator host from cfg, falling back
// to GOOGLE_CLOUD_PROJECT and FIRESTORE_EMULATOR_HOST.
func NewProvider(cfg config.FirestoreConfig, opts ...ProviderOption) *Provider {
	p := &Provider{
		project:  firstSet(cfg.ProjectID, os.Getenv(envGoogleProjectID)),
		emulator: firstSet(cfg.EmulatorHost, os.Getenv(envEmulatorHost)),
		timeout:  defaultDialTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// ProjectID is the resolved project.
func (p *Provider) ProjectID() string { return p.project }

// Client returns the shared client. A failed dial is not cached, so the
// next caller tries again.
func (p *Provider) Client(ctx context.Context) (*firestore.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case p.closed:
		return nil, ErrProviderClosed
	case p.client != nil:
		return p.client, nil
	case p.project == "":
		return nil, ErrProjectRequired
	}

	dialCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	client, err := firestore.NewClient(dialCtx, p.project, p.options()...)
	if err != nil {
		return nil, fmt.Errorf("firestore: create client: %w", err)
	}
	p.client = client
	return client, nil
}

// options adds plaintext, unauthenticated transport when an emulator is configured.
func (p *Provider) options() []option.ClientOption {
	opts := append([]option.ClientOption(nil), p.extraOpts...)
	if p.emulator == "" {
		return opts
	}
	return append(opts,
		option.WithEndpoint(p.emulator),
		option.WithoutAuthentication(),
		option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	)
}

// Close releases the client. The Provider cannot be reused afterwards.
func (p *Provider) Close() error {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if p.client == nil {
		return nil
	}
	client := p.client
	p.client = nil
	return client.Close()
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

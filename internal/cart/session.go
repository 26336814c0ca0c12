package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ignitoosolutions/ignito1/internal/domain"
	"github.com/ignitoosolutions/ignito1/internal/platform/metrics"
	"github.com/ignitoosolutions/ignito1/internal/platform/observability"
	"github.com/ignitoosolutions/ignito1/internal/storage"
)

var (
	// ErrInvalidItem is returned by AddItem for a blank id/name or a bad price.
	ErrInvalidItem = errors.New("cart: invalid item")
	// ErrInvalidIndex is returned by RemoveItem for an index outside the cart.
	ErrInvalidIndex = errors.New("cart: invalid index")
)

// RenderFunc is invoked with the current cart on open and after every
// applied mutation.
type RenderFunc func(ctx context.Context, c *Cart)

// Session owns the cart for one page load. Every applied mutation is saved
// before it is rendered; if the save fails the mutation is rolled back so the
// in-memory cart never drifts from the stored one.
type Session struct {
	cart    *Cart
	store   *Store
	render  RenderFunc
	logger  observability.EventLogger
	metrics *metrics.Metrics
}

// SessionOption customises a Session.
type SessionOption func(*Session)

// WithRender installs the render hook.
func WithRender(fn RenderFunc) SessionOption {
	return func(s *Session) {
		s.render = fn
	}
}

// WithSessionLogger sets the event logger.
func WithSessionLogger(logger observability.EventLogger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSessionMetrics counts mutations.
func WithSessionMetrics(m *metrics.Metrics) SessionOption {
	return func(s *Session) {
		s.metrics = m
	}
}

// Open hydrates a session from store and renders once.
func Open(ctx context.Context, store *Store, opts ...SessionOption) *Session {
	s := &Session{store: store, logger: observability.NopEvents()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.cart = store.Load(ctx)
	s.doRender(ctx)
	return s
}

// Cart exposes the session's cart for reading.
func (s *Session) Cart() *Cart { return s.cart }

// AddItem adds a line (see Cart.Add), saves and renders.
func (s *Session) AddItem(ctx context.Context, id, name string, price float64, quantity int) error {
	before := s.cart.Items()
	if !s.cart.Add(id, name, price, quantity) {
		s.metrics.CartMutation("add", false)
		return ErrInvalidItem
	}
	return s.commit(ctx, "add", before, map[string]any{"item_id": id})
}

// RemoveItem deletes the line at index, saves and renders.
func (s *Session) RemoveItem(ctx context.Context, index int) error {
	before := s.cart.Items()
	if !s.cart.Remove(index) {
		s.metrics.CartMutation("remove", false)
		return ErrInvalidIndex
	}
	return s.commit(ctx, "remove", before, map[string]any{"index": index})
}

// Clear empties the cart and removes the stored copy. Used once an order
// has been accepted.
func (s *Session) Clear(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		s.logger(ctx, "cart.clear.failed", map[string]any{"key": s.store.Key(), "error": err.Error()})
		return err
	}
	s.cart.Reset()
	s.metrics.CartMutation("clear", true)
	s.logger(ctx, "cart.cleared", map[string]any{"key": s.store.Key()})
	s.doRender(ctx)
	return nil
}

func (s *Session) commit(ctx context.Context, op string, before []domain.LineItem, fields map[string]any) error {
	if err := s.store.Save(ctx, s.cart); err != nil {
		s.cart = New(before)
		fields["error"] = err.Error()
		s.logger(ctx, "cart."+op+".failed", fields)
		return fmt.Errorf("cart: %s: %w", op, err)
	}
	s.metrics.CartMutation(op, true)
	fields["count"] = s.cart.Count()
	s.logger(ctx, "cart."+op, fields)
	s.doRender(ctx)
	return nil
}

func (s *Session) doRender(ctx context.Context) {
	if s.render != nil {
		s.render(ctx, s.cart)
	}
}

// Sessions opens sessions for visitors and serialises work per visitor so at
// most one session for a given visitor is active at a time.
type Sessions struct {
	kv      storage.KV
	prefix  string
	logger  observability.EventLogger
	metrics *metrics.Metrics

	mu    sync.Mutex
	locks map[string]*visitorLock
}

type visitorLock struct {
	sem  chan struct{}
	refs int
}

// SessionsOption customises Sessions.
type SessionsOption func(*Sessions)

// WithKeyPrefix overrides DefaultKeyPrefix.
func WithKeyPrefix(prefix string) SessionsOption {
	return func(s *Sessions) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithLogger sets the event logger handed to stores and sessions.
func WithLogger(logger observability.EventLogger) SessionsOption {
	return func(s *Sessions) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics handed to stores and sessions.
func WithMetrics(m *metrics.Metrics) SessionsOption {
	return func(s *Sessions) {
		s.metrics = m
	}
}

// NewSessions builds a session factory over kv.
func NewSessions(kv storage.KV, opts ...SessionsOption) *Sessions {
	s := &Sessions{
		kv:     kv,
		prefix: DefaultKeyPrefix,
		logger: observability.NopEvents(),
		locks:  make(map[string]*visitorLock),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Store returns the store for visitorID.
func (s *Sessions) Store(visitorID string) *Store {
	return NewStore(s.kv, s.prefix+visitorID, WithStoreLogger(s.logger), WithStoreMetrics(s.metrics))
}

// Load reads visitorID's cart without taking the visitor lock.
func (s *Sessions) Load(ctx context.Context, visitorID string) *Cart {
	return s.Store(visitorID).Load(ctx)
}

// With opens a session for visitorID, runs fn while holding the visitor's
// lock and returns fn's error. Waiting for the lock honours ctx.
func (s *Sessions) With(ctx context.Context, visitorID string, fn func(*Session) error, opts ...SessionOption) error {
	unlock, err := s.lock(ctx, visitorID)
	if err != nil {
		return err
	}
	defer unlock()

	base := []SessionOption{WithSessionLogger(s.logger), WithSessionMetrics(s.metrics)}
	session := Open(ctx, s.Store(visitorID), append(base, opts...)...)
	return fn(session)
}

func (s *Sessions) lock(ctx context.Context, visitorID string) (func(), error) {
	s.mu.Lock()
	l, ok := s.locks[visitorID]
	if !ok {
		l = &visitorLock{sem: make(chan struct{}, 1)}
		s.locks[visitorID] = l
	}
	l.refs++
	s.mu.Unlock()

	release := func() {
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, visitorID)
		}
		s.mu.Unlock()
	}

	select {
	case l.sem <- struct{}{}:
		return func() {
			<-l.sem
			release()
		}, nil
	case <-ctx.Done():
		release()
		return nil, ctx.Err()
	}
}

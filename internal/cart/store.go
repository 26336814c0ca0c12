package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ignitoosolutions/ignito1/internal/domain"
	"github.com/ignitoosolutions/ignito1/internal/platform/metrics"
	"github.com/ignitoosolutions/ignito1/internal/platform/observability"
	"github.com/ignitoosolutions/ignito1/internal/storage"
)

// DefaultKeyPrefix prefixes the visitor id to form the storage key.
const DefaultKeyPrefix = "cart:"

// Store persists one visitor's cart under a single key as a JSON array of
// {id,name,price,quantity}.
type Store struct {
	kv      storage.KV
	key     string
	logger  observability.EventLogger
	metrics *metrics.Metrics
}

// StoreOption customises a Store.
type StoreOption func(*Store)

// WithStoreLogger sets the event logger used for load failures.
func WithStoreLogger(logger observability.EventLogger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStoreMetrics counts discarded payloads.
func WithStoreMetrics(m *metrics.Metrics) StoreOption {
	return func(s *Store) {
		s.metrics = m
	}
}

// NewStore binds a store to key on kv.
func NewStore(kv storage.KV, key string, opts ...StoreOption) *Store {
	s := &Store{kv: kv, key: key, logger: observability.NopEvents()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Key is the storage key this store reads and writes.
func (s *Store) Key() string { return s.key }

// storedLine uses pointers so missing fields can be told apart from zero values.
type storedLine struct {
	ID       *string  `json:"id"`
	Name     *string  `json:"name"`
	Price    *float64 `json:"price"`
	Quantity *int     `json:"quantity"`
}

// Load returns the stored cart. It never fails: an absent key, a backend
// error, or a payload that is not a well-formed cart all yield an empty cart.
func (s *Store) Load(ctx context.Context) *Cart {
	raw, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return &Cart{}
	}
	if err != nil {
		s.logger(ctx, "cart.load.failed", map[string]any{"key": s.key, "error": err.Error()})
		return &Cart{}
	}
	items, err := decode(raw)
	if err != nil {
		s.metrics.CorruptCart()
		s.logger(ctx, "cart.load.corrupt", map[string]any{"key": s.key, "error": err.Error()})
		return &Cart{}
	}
	return New(items)
}

// Save overwrites the stored cart with c.
func (s *Store) Save(ctx context.Context, c *Cart) error {
	items := c.Items()
	if items == nil {
		items = []domain.LineItem{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("cart: encode: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, payload); err != nil {
		return fmt.Errorf("cart: save: %w", err)
	}
	return nil
}

// Clear removes the stored cart.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("cart: clear: %w", err)
	}
	return nil
}

var errMalformed = errors.New("cart: malformed payload")

func decode(raw []byte) ([]domain.LineItem, error) {
	var lines []storedLine
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformed, err)
	}
	items := make([]domain.LineItem, 0, len(lines))
	for i, line := range lines {
		if line.ID == nil || line.Name == nil || line.Price == nil || line.Quantity == nil {
			return nil, fmt.Errorf("%w: line %d is missing fields", errMalformed, i)
		}
		items = append(items, domain.LineItem{
			ID:       *line.ID,
			Name:     *line.Name,
			Price:    *line.Price,
			Quantity: *line.Quantity,
		})
	}
	if !Validate(items) {
		return nil, fmt.Errorf("%w: invalid line items", errMalformed)
	}
	return items, nil
}

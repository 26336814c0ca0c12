package domain

import (
	"time"
)

// LineItem is one entry of a visitor's cart. It doubles as the persisted and
// wire representation: {id, name, price, quantity}.
type LineItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Subtotal returns price*quantity at full precision.
func (l LineItem) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}

// Order is an order accepted by the order endpoint.
type Order struct {
	ID        string
	Items     []LineItem
	Total     float64
	Name      string
	Email     string
	Message   string
	CreatedAt time.Time
}

// Contact is a contact/quote request accepted by the contact endpoint.
type Contact struct {
	ID        string
	Name      string
	Email     string
	Message   string
	CreatedAt time.Time
}

// Service is a catalog entry offered on the home and services pages.
type Service struct {
	Slug         string  `yaml:"slug"`
	Name         string  `yaml:"name"`
	Description  string  `yaml:"description"`
	PriceDisplay string  `yaml:"price_display"`
	Price        float64 `yaml:"price"`
	Image        string  `yaml:"image"`
}

// Post is a blog post composed in the browser session. Posts are never persisted.
type Post struct {
	ID        string
	Title     string
	Body      string
	BodyHTML  string
	CoverURL  string
	CreatedAt time.Time
}

// Buyer carries the order form fields accompanying the cart on submission.
type Buyer struct {
	Name    string
	Email   string
	Message string
}

// HealthStatus summarises a dependency probe.
type HealthStatus string

const (
	// HealthStatusOK indicates the dependency responded in time.
	HealthStatusOK HealthStatus = "ok"
	// HealthStatusDegraded indicates the dependency returned an error.
	HealthStatusDegraded HealthStatus = "degraded"
	// HealthStatusError indicates the probe timed out or was cancelled.
	HealthStatusError HealthStatus = "error"
)

// HealthCheck is the result of probing one dependency.
type HealthCheck struct {
	Status    HealthStatus
	Detail    string
	Latency   time.Duration
	CheckedAt time.Time
}

// HealthReport aggregates dependency probes for the readiness endpoint.
type HealthReport struct {
	Status      HealthStatus
	Checks      map[string]HealthCheck
	GeneratedAt time.Time
}

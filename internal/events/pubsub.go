// Package events publishes domain events for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// EventOrderPlaced is the type attribute on order-placed messages.
const EventOrderPlaced = "order.placed"

// OrderPlaced is published once an order has been stored.
type OrderPlaced struct {
	OrderID   string    `json:"orderId"`
	Email     string    `json:"email"`
	Total     float64   `json:"total"`
	ItemCount int       `json:"itemCount"`
	PlacedAt  time.Time `json:"placedAt"`
}

// Publisher emits order events.
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, event OrderPlaced) (string, error)
}

// NopPublisher drops every event. Used when no topic is configured.
type NopPublisher struct{}

// PublishOrderPlaced implements Publisher.
func (NopPublisher) PublishOrderPlaced(context.Context, OrderPlaced) (string, error) {
	return "", nil
}

// PubSubPublisher publishes order events to a Pub/Sub topic.
type PubSubPublisher struct {
	topic   *pubsub.Topic
	marshal func(any) ([]byte, error)
}

// NewPubSubPublisher constructs a Pub/Sub backed publisher.
func NewPubSubPublisher(topic *pubsub.Topic) (*PubSubPublisher, error) {
	if topic == nil {
		return nil, errors.New("pubsub publisher: topic is required")
	}
	return &PubSubPublisher{topic: topic, marshal: json.Marshal}, nil
}

// PublishOrderPlaced implements Publisher and waits for the server ack.
func (p *PubSubPublisher) PublishOrderPlaced(ctx context.Context, event OrderPlaced) (string, error) {
	data, err := p.marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal order event: %w", err)
	}
	attrs := map[string]string{"type": EventOrderPlaced}
	if id := strings.TrimSpace(event.OrderID); id != "" {
		attrs["orderId"] = id
	}

	result := p.topic.Publish(ctx, &pubsub.Message{Data: data, Attributes: attrs})
	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish order event: %w", err)
	}
	return id, nil
}

// Dial opens a Pub/Sub client and returns the named topic. The caller owns
// both and must call topic.Stop then client.Close.
func Dial(ctx context.Context, projectID, topicID string, opts ...option.ClientOption) (*pubsub.Client, *pubsub.Topic, error) {
	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("pubsub: create client: %w", err)
	}
	return client, client.Topic(topicID), nil
}

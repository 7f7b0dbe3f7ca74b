// Package events publishes listing lifecycle events to a message broker
// so downstream consumers (search indexers, analytics) can follow the
// marketplace without polling the database. Publication is best-effort
// and never blocks or fails a listing operation.
package events

import (
	"context"
	"encoding/json"
	"time"
)

// Event types emitted by the listing lifecycle.
const (
	VehicleCreated = "vehicle.created"
	VehicleUpdated = "vehicle.updated"
	VehicleDeleted = "vehicle.deleted"
)

// Event describes one change to a listing.
type Event struct {
	Type       string    `json:"type"`
	VehicleID  int       `json:"vehicleId"`
	SellerID   int       `json:"sellerId"`
	Status     string    `json:"status,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Backend defines the broker-agnostic operations used by the publisher.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Close() error
}

// Publisher emits listing events on a fixed channel. A nil *Publisher is
// valid and drops every event.
type Publisher struct {
	backend Backend
	channel string
}

// NewPublisher constructs a Publisher for the provided backend and channel.
func NewPublisher(backend Backend, channel string) *Publisher {
	return &Publisher{backend: backend, channel: channel}
}

// Publish emits the event. Marshalling or broker errors are returned so
// the caller can log them; callers are expected not to fail the
// originating operation on a publish error.
func (p *Publisher) Publish(ctx context.Context, event Event) error {
	if p == nil || p.backend == nil {
		return nil
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	attrs := map[string]string{"type": event.Type}
	_, err = p.backend.Publish(ctx, p.channel, data, attrs)
	return err
}

// Close closes the underlying backend.
func (p *Publisher) Close() error {
	if p == nil || p.backend == nil {
		return nil
	}
	return p.backend.Close()
}

// Package notify announces finished exports on NATS.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/eallion/webstack-sync/internal/constants"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// Event is published once per successful export.
type Event struct {
	RunID      string    `json:"run_id"`
	Collection string    `json:"collection"`
	Records    int       `json:"records"`
	Targets    []string  `json:"targets"`
	Purged     bool      `json:"purged"`
	FinishedAt time.Time `json:"finished_at"`
}

// NewEvent creates an event with a fresh run id.
func NewEvent(collection string, records int, targets []string) Event {
	return Event{
		RunID:      uuid.NewString(),
		Collection: collection,
		Records:    records,
		Targets:    append([]string{}, targets...),
		FinishedAt: time.Now().UTC(),
	}
}

// Publisher sends events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Noop discards events.
type Noop struct{}

// Publish implements Publisher.
func (Noop) Publish(context.Context, Event) error { return nil }

// Close implements Publisher.
func (Noop) Close() error { return nil }

// NATSPublisher publishes events as JSON on a subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// Connect dials url and returns a publisher for subject.
func Connect(url, subject string) (*NATSPublisher, error) {
	if subject == "" {
		subject = constants.DefaultNotifySubject
	}

	conn, err := nats.Connect(url,
		nats.Name("webstack-sync"),
		nats.Timeout(constants.ShortHTTPTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}

	return &NATSPublisher{conn: conn, subject: subject}, nil
}

// Subject returns the subject events are published on.
func (p *NATSPublisher) Subject() string {
	return p.subject
}

// Publish sends event and waits for the server to acknowledge the flush.
func (p *NATSPublisher) Publish(ctx context.Context, event Event) error {
	data, err := Encode(event)
	if err != nil {
		return err
	}

	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publishing to %s: %w", p.subject, err)
	}

	flushCtx, cancel := context.WithTimeout(ctx, constants.NotifyFlushTimeout)
	defer cancel()

	if err := p.conn.FlushWithContext(flushCtx); err != nil {
		return fmt.Errorf("flushing %s: %w", p.subject, err)
	}

	return nil
}

// Close drains the connection.
func (p *NATSPublisher) Close() error {
	if err := p.conn.Drain(); err != nil {
		return fmt.Errorf("draining NATS connection: %w", err)
	}

	return nil
}

// Encode serializes event.
func Encode(event Event) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encoding event: %w", err)
	}

	return data, nil
}

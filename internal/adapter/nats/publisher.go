// Package nats publishes record events on core NATS subjects.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	natsgo "github.com/nats-io/nats.go"

	"github.com/couchcryptid/disaster-resilience-api/internal/domain"
)

// Publisher sends each RecordEvent to <prefix>.<kind>.created.
type Publisher struct {
	conn   *natsgo.Conn
	prefix string
	logger *slog.Logger
}

// Connect dials the NATS server and keeps reconnecting in the background.
func Connect(url, prefix, clientName string, logger *slog.Logger) (*Publisher, error) {
	nc, err := natsgo.Connect(url,
		natsgo.Name(clientName),
		natsgo.ReconnectWait(2*time.Second),
		natsgo.MaxReconnects(-1),
		natsgo.ErrorHandler(func(_ *natsgo.Conn, _ *natsgo.Subscription, err error) {
			logger.Error("nats error", "error", err)
		}),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		natsgo.ReconnectHandler(func(c *natsgo.Conn) {
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return NewPublisher(nc, prefix, logger), nil
}

// NewPublisher wraps an existing connection.
func NewPublisher(conn *natsgo.Conn, prefix string, logger *slog.Logger) *Publisher {
	return &Publisher{conn: conn, prefix: prefix, logger: logger}
}

// Subject returns the subject events of the given kind are published on.
func (p *Publisher) Subject(kind string) string {
	return p.prefix + "." + kind + ".created"
}

// Publish serializes the event and hands it to the connection's outbound buffer.
func (p *Publisher) Publish(_ context.Context, event domain.RecordEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("serialize record event: %w", err)
	}

	msg := natsgo.NewMsg(p.Subject(event.Kind))
	msg.Data = data
	msg.Header.Set("Record-Kind", event.Kind)
	msg.Header.Set("Record-Id", event.ID.String())

	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish %s: %w", msg.Subject, err)
	}
	return nil
}

// Close drains pending messages and closes the connection.
func (p *Publisher) Close() error {
	return p.conn.Drain()
}

package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/seacorridor/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber opens its own connection to url.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// durable subscribes handle to subject with manual acks. Undecodable
// messages are terminated, handler failures are redelivered.
func durable[T any](ctx context.Context, s *Subscriber, subject, name string, handle func(ctx context.Context, v *T) error) error {
	sub, err := s.js.Subscribe(subject, func(msg *nats.Msg) {
		var v T
		if err := json.Unmarshal(msg.Data, &v); err != nil {
			slog.Warn("dropping malformed message", "subject", msg.Subject, "error", err)
			_ = msg.Term()
			return
		}
		if err := handle(ctx, &v); err != nil {
			slog.Error("message handler failed", "subject", msg.Subject, "error", err)
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable(name),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	s.subs = append(s.subs, sub)
	return nil
}

func (s *Subscriber) SubscribeRunRequests(ctx context.Context, handler func(ctx context.Context, req *domain.RunRequest) error) error {
	return durable(ctx, s, SubjectRunRequest, "run-requester", handler)
}

func (s *Subscriber) SubscribeRunCompleted(ctx context.Context, handler func(ctx context.Context, summary *domain.RunSummary) error) error {
	return durable(ctx, s, SubjectRunCompleted, "run-completed", handler)
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}

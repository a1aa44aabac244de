package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/seacorridor/internal/core/domain"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// Streams returns the JetStream configuration the services rely on.
func Streams() []nats.StreamConfig {
	return []nats.StreamConfig{
		{
			Name:      "MIGRATION_RESULTS",
			Subjects:  []string{SubjectCorridorPrefix + ">", SubjectOverlapPrefix + ">"},
			Retention: nats.LimitsPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      "MIGRATION_RUNS",
			Subjects:  []string{SubjectRunCompleted},
			Retention: nats.InterestPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      "MIGRATION_REQUESTS",
			Subjects:  []string{SubjectRunRequest},
			Retention: nats.WorkQueuePolicy,
			MaxAge:    1 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}
}

// NewPublisher connects to NATS and ensures the streams exist.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	for _, cfg := range Streams() {
		if _, err := js.AddStream(&cfg); err != nil {
			// already exists, try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				conn.Close()
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

func (p *Publisher) publish(ctx context.Context, subject string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", subject, err)
	}
	if _, err := p.js.Publish(subject, data, nats.Context(ctx)); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

func (p *Publisher) PublishCorridor(ctx context.Context, runID string, corridor *domain.Corridor) error {
	return p.publish(ctx, CorridorSubject(corridor.GroupID), CorridorEvent{RunID: runID, Corridor: *corridor})
}

func (p *Publisher) PublishOverlap(ctx context.Context, runID string, overlap *domain.OverlapRegion) error {
	return p.publish(ctx, OverlapSubject(overlap.GroupA, overlap.GroupB), OverlapEvent{RunID: runID, Overlap: *overlap})
}

func (p *Publisher) PublishRunCompleted(ctx context.Context, summary *domain.RunSummary) error {
	return p.publish(ctx, SubjectRunCompleted, summary)
}

// RequestRun queues a run for the worker.
func (p *Publisher) RequestRun(ctx context.Context, req *domain.RunRequest) error {
	return p.publish(ctx, SubjectRunRequest, req)
}

// PublishBroadcast sends data on core NATS for the WebSocket relay.
func (p *Publisher) PublishBroadcast(ctx context.Context, data []byte) error {
	return p.conn.Publish(SubjectBroadcast, data)
}

// Ping reports whether the connection is usable.
func (p *Publisher) Ping(ctx context.Context) error {
	if !p.conn.IsConnected() {
		return fmt.Errorf("nats: %s", p.conn.Status())
	}
	return nil
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("seacorridor"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}

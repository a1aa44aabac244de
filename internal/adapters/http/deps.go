package http

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/seacorridor/internal/adapters/render"
	"github.com/samirrijal/seacorridor/internal/core/domain"
	"github.com/samirrijal/seacorridor/internal/core/ports"
	"github.com/samirrijal/seacorridor/internal/core/usecases"
)

// Pinger is a dependency that can report its health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RunRequester queues runs for a background worker.
type RunRequester interface {
	RequestRun(ctx context.Context, req *domain.RunRequest) error
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Observations *usecases.ObservationService
	Runs         *usecases.RunService
	GeoJSON      ports.RenderSink
	KML          ports.RenderSink
	Popups       *render.PopupCache
	Requests     RunRequester
	NATS         *nats.Conn
	DB           Pinger
	Cache        Pinger
}

// Package httptransport composes the HTTP surface.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	registryhandler "chainid/internal/contract/identityregistry/handler"
	processorhandler "chainid/internal/contract/paymentprocessor/handler"
	"chainid/internal/platform/health"
	authmw "chainid/pkg/platform/middleware/auth"
	"chainid/pkg/platform/middleware/metadata"
	"chainid/pkg/platform/middleware/operator"
	"chainid/pkg/platform/middleware/request"
	"chainid/pkg/platform/middleware/requesttime"
)

const (
	maxBodyBytes   = 64 << 10
	requestTimeout = 30 * time.Second
)

// Deps are the collaborators the router mounts.
type Deps struct {
	Logger            *slog.Logger
	Registry          registryhandler.Service
	Processor         processorhandler.Service
	Apps              AppDirectory
	Outbox            OutboxReader // nil when events are not persisted
	Tokens            authmw.TokenValidator
	OperatorTokenHash string
	Health            *health.Handler
	Metrics           *request.Metrics
	Gatherer          prometheus.Gatherer
}

// NewRouter wires every public, caller and operator route.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(request.Recovery(d.Logger))
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(request.Logger(d.Logger))
	r.Use(request.LatencyMiddleware(d.Metrics))

	if d.Health != nil {
		d.Health.Register(r)
	}
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	requireCaller := authmw.RequireCaller(d.Tokens, d.Logger)
	apps := NewAppsHandler(d.Apps, d.Outbox, d.Logger)

	r.Group(func(r chi.Router) {
		r.Use(request.ContentTypeJSON)
		r.Use(request.BodyLimit(maxBodyBytes))
		r.Use(request.Timeout(requestTimeout))

		registryhandler.New(d.Registry, d.Logger, requireCaller).Register(r)
		processorhandler.New(d.Processor, d.Logger, requireCaller).Register(r)
		apps.Register(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(operator.RequireOperatorToken(d.OperatorTokenHash, d.Logger))
		apps.RegisterOps(r)
	})

	return r
}

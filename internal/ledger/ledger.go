// Package ledger hosts deployed contracts on top of a state.Store.
//
// Each deployment gets an AppID and its own slot namespace. Every call runs
// inside one Store.Update scoped to its app, so calls to the same app are
// serialized and a call either commits all of its writes or none of them.
// Events emitted by a call are handed to the EventSink only after commit.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"chainid/internal/contract"
	"chainid/internal/ledger/metrics"
	"chainid/internal/ledger/state"
	id "chainid/pkg/domain"
	dErrors "chainid/pkg/domain-errors"
	"chainid/pkg/platform/sentinel"
	"chainid/pkg/platform/tracer"
)

// Meta is the deployment record of an app.
type Meta struct {
	AppID     id.AppID        `json:"app_id"`
	Kind      id.ContractKind `json:"kind"`
	Creator   id.Address      `json:"creator"`
	CreatedAt time.Time       `json:"created_at"`
}

// CallFunc is the body of a state-changing call. It may run more than once
// when the backend retries an optimistic commit.
type CallFunc func(ctx context.Context, tx *Tx) error

// QueryFunc is the body of a read-only call.
type QueryFunc func(ctx context.Context, tx *ReadTx) error

// Ledger is safe for concurrent use.
type Ledger struct {
	store   state.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  tracer.Tracer
	sink    EventSink
}

type Option func(*Ledger)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Ledger) { l.metrics = m }
}

func WithTracer(t tracer.Tracer) Option {
	return func(l *Ledger) { l.tracer = t }
}

// WithEventSink sets where committed events go. Without one they are only logged.
func WithEventSink(sink EventSink) Option {
	return func(l *Ledger) { l.sink = sink }
}

func New(store state.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:  store,
		logger: slog.Default(),
		tracer: tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Deploy creates a new app of kind owned by creator. init runs in the same
// atomic update that allocates the app id, so a failed init leaves no app behind.
func (l *Ledger) Deploy(ctx context.Context, kind id.ContractKind, creator id.Address, init CallFunc) (*Meta, error) {
	if !kind.IsValid() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "unknown contract kind")
	}

	c := newCall(ctx, kind, contract.MethodCreate, creator)
	var meta *Meta
	err := l.run(ctx, c, func(ctx context.Context, span tracer.Span) ([]Event, error) {
		var events []Event
		err := l.store.Update(ctx, state.LedgerScope, func(ctx context.Context, m state.Mutable) error {
			app, err := allocateAppID(ctx, m)
			if err != nil {
				return err
			}
			c.app = app

			deployed := &Meta{
				AppID:     app,
				Kind:      kind,
				Creator:   creator,
				CreatedAt: c.at,
			}
			raw, err := json.Marshal(deployed)
			if err != nil {
				return err
			}
			if err := m.Insert(ctx, state.MetaKey(app), raw); err != nil {
				return err
			}

			tx := newTx(c, m)
			if err := init(ctx, tx); err != nil {
				return err
			}
			tx.Emit(EventAppCreated, Attr("creator", creator.String()))

			meta = deployed
			events = tx.events
			return nil
		})
		if err != nil {
			return nil, err
		}
		span.SetAttributes(tracer.Uint64(tracer.AttrAppID, uint64(c.app)))
		return events, nil
	})
	if err != nil {
		return nil, err
	}

	l.metrics.IncrementDeployments(kind.String())
	l.logger.InfoContext(ctx, "contract deployed",
		"app_id", meta.AppID,
		"kind", kind,
		"creator", creator,
		"call_id", c.id,
	)
	return meta, nil
}

// App returns the deployment record of app.
func (l *Ledger) App(ctx context.Context, app id.AppID) (*Meta, error) {
	var meta *Meta
	err := l.store.View(ctx, func(ctx context.Context, r state.Immutable) error {
		var err error
		meta, err = loadMeta(ctx, r, app, "")
		return err
	})
	if err != nil {
		return nil, translate(err)
	}
	return meta, nil
}

// Apps returns every deployment in id order.
func (l *Ledger) Apps(ctx context.Context) ([]*Meta, error) {
	var apps []*Meta
	err := l.store.View(ctx, func(ctx context.Context, r state.Immutable) error {
		next, err := state.GetUint64(ctx, r, state.NextAppIDKey)
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		apps = make([]*Meta, 0, next-1)
		for app := id.AppID(1); uint64(app) < next; app++ {
			meta, err := loadMeta(ctx, r, app, "")
			if err != nil {
				return err
			}
			apps = append(apps, meta)
		}
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return apps, nil
}

// allocateAppID hands out ids starting at 1.
func allocateAppID(ctx context.Context, m state.Mutable) (id.AppID, error) {
	next, err := state.GetUint64(ctx, m, state.NextAppIDKey)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		next = 1
	case err != nil:
		return 0, err
	}
	if err := m.Insert(ctx, state.NextAppIDKey, state.EncodeUint64(next+1)); err != nil {
		return 0, err
	}
	return id.AppID(next), nil
}

// loadMeta reads the deployment record of app. A non-empty kind must match.
func loadMeta(ctx context.Context, r state.Immutable, app id.AppID, kind id.ContractKind) (*Meta, error) {
	raw, err := r.GetValue(ctx, state.MetaKey(app))
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "app not found")
	}
	if err != nil {
		return nil, err
	}
	var meta Meta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvariantViolation, "app record is corrupt")
	}
	if kind != "" && meta.Kind != kind {
		return nil, dErrors.New(dErrors.CodeNotFound, "app is not a "+kind.String())
	}
	return &meta, nil
}

// translate maps store failures onto domain codes. Domain errors pass through.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "concurrent update, retry the call")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "ledger state unavailable")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "ledger call timed out")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "ledger call failed")
	}
}

package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"

	"chainid/internal/contract"
	"chainid/internal/ledger/metrics"
	"chainid/internal/ledger/state"
	id "chainid/pkg/domain"
	"chainid/pkg/platform/tracer"
	"chainid/pkg/requestcontext"
)

// Tx is one state-changing call against one app.
type Tx struct {
	call   *call
	state  state.Mutable
	events []Event
}

func (t *Tx) App() id.AppID        { return t.call.app }
func (t *Tx) Caller() id.Address   { return t.call.caller }
func (t *Tx) State() state.Mutable { return t.state }

// Emit records an event. Events of a call that fails are dropped.
func (t *Tx) Emit(name string, attrs ...EventAttr) {
	t.events = append(t.events, t.call.event(name, attrs))
}

// ReadTx is one read-only call against one app.
type ReadTx struct {
	call  *call
	state state.Immutable
}

func (t *ReadTx) App() id.AppID          { return t.call.app }
func (t *ReadTx) State() state.Immutable { return t.state }

// Invoke runs fn as method of the kind contract deployed at app. It fails with
// not_found when app does not exist or holds a different contract.
func (l *Ledger) Invoke(ctx context.Context, app id.AppID, kind id.ContractKind, method string, caller id.Address, fn CallFunc) error {
	c := newCall(ctx, kind, method, caller)
	c.app = app
	return l.run(ctx, c, func(ctx context.Context, _ tracer.Span) ([]Event, error) {
		var events []Event
		err := l.store.Update(ctx, state.AppScope(app), func(ctx context.Context, m state.Mutable) error {
			if _, err := loadMeta(ctx, m, app, kind); err != nil {
				return err
			}
			tx := newTx(c, m)
			if err := fn(ctx, tx); err != nil {
				return err
			}
			events = tx.events
			return nil
		})
		if err != nil {
			return nil, err
		}
		return events, nil
	})
}

// Query runs fn as a read-only method of the kind contract deployed at app.
func (l *Ledger) Query(ctx context.Context, app id.AppID, kind id.ContractKind, method string, fn QueryFunc) error {
	c := newCall(ctx, kind, method, id.ZeroAddress)
	c.app = app
	return l.run(ctx, c, func(ctx context.Context, _ tracer.Span) ([]Event, error) {
		return nil, l.store.View(ctx, func(ctx context.Context, r state.Immutable) error {
			if _, err := loadMeta(ctx, r, app, kind); err != nil {
				return err
			}
			return fn(ctx, &ReadTx{call: c, state: r})
		})
	})
}

type call struct {
	id        string
	app       id.AppID
	kind      id.ContractKind
	method    string
	caller    id.Address
	requestID string
	device    string
	at        time.Time
}

func newCall(ctx context.Context, kind id.ContractKind, method string, caller id.Address) *call {
	return &call{
		id:        uuid.NewString(),
		kind:      kind,
		method:    method,
		caller:    caller,
		requestID: requestcontext.RequestID(ctx),
		device:    requestcontext.Device(ctx),
		at:        requestcontext.Now(ctx).UTC(),
	}
}

func newTx(c *call, m state.Mutable) *Tx {
	return &Tx{call: c, state: m}
}

// run wraps one call with its span, metrics and failure log, and publishes
// the events body returns once it has committed.
func (l *Ledger) run(ctx context.Context, c *call, body func(context.Context, tracer.Span) ([]Event, error)) (err error) {
	start := time.Now()
	ctx, span := l.tracer.Start(ctx, "ledger."+c.kind.String()+"."+c.method,
		tracer.String(tracer.AttrKind, c.kind.String()),
		tracer.String(tracer.AttrMethod, c.method),
		tracer.String(tracer.AttrCallID, c.id),
	)
	if c.app != 0 {
		span.SetAttributes(tracer.Uint64(tracer.AttrAppID, uint64(c.app)))
	}
	if !c.caller.IsZero() {
		span.SetAttributes(tracer.String(tracer.AttrCaller, c.caller.String()))
	}
	defer func() { span.End(err) }()

	events, err := body(ctx, span)
	err = translate(err)

	outcome := metrics.OutcomeOK
	guard, guarded := contract.GuardKind(err)
	switch {
	case guarded:
		outcome = metrics.OutcomeGuardFailure
	case err != nil:
		outcome = metrics.OutcomeError
	}
	l.metrics.ObserveCall(c.kind.String(), c.method, outcome, guard, time.Since(start))

	if err != nil {
		l.logFailure(ctx, c, guard, err)
		if guarded {
			span.SetAttributes(tracer.String(tracer.AttrErrorKind, guard))
		}
		return err
	}

	if len(events) > 0 {
		span.AddEvent(tracer.EventCommitted, tracer.Int64(tracer.AttrEvents, int64(len(events))))
		l.publish(ctx, events)
	}
	return nil
}

func (l *Ledger) logFailure(ctx context.Context, c *call, guard string, err error) {
	attrs := []any{
		"app_id", c.app,
		"kind", c.kind,
		"method", c.method,
		"call_id", c.id,
		"error", err,
	}
	if guard != "" {
		l.logger.WarnContext(ctx, "contract call rejected", append(attrs, "error_kind", guard)...)
		return
	}
	l.logger.ErrorContext(ctx, "contract call failed", attrs...)
}

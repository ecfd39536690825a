package ledger

import (
	"context"
	"time"

	id "chainid/pkg/domain"
)

// Event names.
const (
	EventAppCreated         = "AppCreated"
	EventIdentityRegistered = "IdentityRegistered"
	EventAdminChanged       = "AdminChanged"
	EventContractPaused     = "ContractPaused"
	EventContractUnpaused   = "ContractUnpaused"
	EventPaymentProcessed   = "PaymentProcessed"
)

// Event is a log entry of a committed call.
type Event struct {
	Name       string            `json:"name"`
	AppID      id.AppID          `json:"app_id"`
	Kind       id.ContractKind   `json:"kind"`
	Method     string            `json:"method"`
	Caller     id.Address        `json:"caller"`
	CallID     string            `json:"call_id"`
	RequestID  string            `json:"request_id,omitempty"`
	Device     string            `json:"device,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// EventAttr is a method-specific event field.
type EventAttr struct {
	Key   string
	Value string
}

func Attr(key, value string) EventAttr {
	return EventAttr{Key: key, Value: value}
}

// EventSink receives the events of each committed call, in emission order.
type EventSink interface {
	Publish(ctx context.Context, events []Event) error
}

func (c *call) event(name string, attrs []EventAttr) Event {
	e := Event{
		Name:      name,
		AppID:     c.app,
		Kind:      c.kind,
		Method:    c.method,
		Caller:    c.caller,
		CallID:    c.id,
		RequestID: c.requestID,
		Device:    c.device,
		Timestamp: c.at,
	}
	if len(attrs) > 0 {
		e.Attributes = make(map[string]string, len(attrs))
		for _, a := range attrs {
			e.Attributes[a.Key] = a.Value
		}
	}
	return e
}

// publish hands committed events to the sink. The call already committed, so
// a sink failure is logged and counted but not returned.
func (l *Ledger) publish(ctx context.Context, events []Event) {
	if l.sink == nil {
		for _, e := range events {
			l.logger.InfoContext(ctx, "contract event",
				"event", e.Name,
				"app_id", e.AppID,
				"kind", e.Kind,
				"call_id", e.CallID,
				"attributes", e.Attributes,
			)
		}
		return
	}
	if err := l.sink.Publish(ctx, events); err != nil {
		l.metrics.IncrementEventPublishFailures()
		l.logger.ErrorContext(ctx, "failed to publish contract events",
			"app_id", events[0].AppID,
			"call_id", events[0].CallID,
			"events", len(events),
			"error", err,
		)
	}
}

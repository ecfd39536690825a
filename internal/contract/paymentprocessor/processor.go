// Package paymentprocessor is the PaymentProcessor contract: it admits
// payments of 1 to 1,000,000 units and counts them. No value moves.
//
// Unlike the identity registry it has no unpause, so a paused processor
// stays paused.
package paymentprocessor

import (
	"context"
	"strconv"

	"chainid/internal/contract"
	"chainid/internal/contract/administered"
	"chainid/internal/ledger"
	id "chainid/pkg/domain"
)

const (
	TotalPaymentsProcessedSlot = "total_payments_processed"

	MaxAmount uint64 = 1_000_000
)

// Processor is one state-changing call to a deployed processor.
type Processor struct {
	tx    *ledger.Tx
	state administered.State
}

func Bind(tx *ledger.Tx) Processor {
	return Processor{
		tx:    tx,
		state: administered.New(tx.State(), tx.App(), TotalPaymentsProcessedSlot),
	}
}

func (p Processor) Create(ctx context.Context) error {
	return p.state.Init(ctx, p.tx.Caller())
}

// ProcessPayment counts one payment to recipient. Guards run in order: pause
// flag, then amount bounds.
func (p Processor) ProcessPayment(ctx context.Context, recipient id.Address, amount uint64) (bool, error) {
	if err := p.state.RequireUnpaused(ctx); err != nil {
		return false, err
	}
	if amount == 0 || amount > MaxAmount {
		return false, contract.ErrInvalidAmount
	}
	total, err := p.state.Increment(ctx)
	if err != nil {
		return false, err
	}
	p.tx.Emit(ledger.EventPaymentProcessed,
		ledger.Attr("recipient", recipient.String()),
		ledger.Attr("amount", strconv.FormatUint(amount, 10)),
		ledger.Attr(TotalPaymentsProcessedSlot, strconv.FormatUint(total, 10)),
	)
	return true, nil
}

func (p Processor) PauseContract(ctx context.Context) (bool, error) {
	if err := p.state.Pause(ctx, p.tx.Caller()); err != nil {
		return false, err
	}
	p.tx.Emit(ledger.EventContractPaused)
	return true, nil
}

// Reader is one read-only call to a deployed processor.
type Reader struct {
	view administered.View
}

func BindReader(tx *ledger.ReadTx) Reader {
	return Reader{view: administered.NewView(tx.State(), tx.App(), TotalPaymentsProcessedSlot)}
}

func (r Reader) GetTotalPayments(ctx context.Context) (uint64, error) {
	return r.view.Counter(ctx)
}

func (r Reader) GetAdmin(ctx context.Context) (id.Address, error) {
	return r.view.Admin(ctx)
}

package paymentprocessor

import (
	"context"

	"chainid/internal/contract"
	"chainid/internal/ledger"
	id "chainid/pkg/domain"
)

// Service calls processors deployed on a ledger by app id.
type Service struct {
	ledger *ledger.Ledger
}

func NewService(l *ledger.Ledger) *Service {
	return &Service{ledger: l}
}

// Deploy creates a new processor administered by creator.
func (s *Service) Deploy(ctx context.Context, creator id.Address) (*ledger.Meta, error) {
	return s.ledger.Deploy(ctx, id.KindPaymentProcessor, creator, func(ctx context.Context, tx *ledger.Tx) error {
		return Bind(tx).Create(ctx)
	})
}

func (s *Service) ProcessPayment(ctx context.Context, app id.AppID, caller, recipient id.Address, amount uint64) (bool, error) {
	return s.invoke(ctx, app, contract.MethodProcessPayment, caller, func(ctx context.Context, p Processor) (bool, error) {
		return p.ProcessPayment(ctx, recipient, amount)
	})
}

func (s *Service) PauseContract(ctx context.Context, app id.AppID, caller id.Address) (bool, error) {
	return s.invoke(ctx, app, contract.MethodPauseContract, caller, func(ctx context.Context, p Processor) (bool, error) {
		return p.PauseContract(ctx)
	})
}

func (s *Service) GetTotalPayments(ctx context.Context, app id.AppID) (uint64, error) {
	var total uint64
	err := s.query(ctx, app, contract.MethodGetTotalPayments, func(ctx context.Context, r Reader) error {
		var err error
		total, err = r.GetTotalPayments(ctx)
		return err
	})
	return total, err
}

func (s *Service) GetAdmin(ctx context.Context, app id.AppID) (id.Address, error) {
	var admin id.Address
	err := s.query(ctx, app, contract.MethodGetAdmin, func(ctx context.Context, r Reader) error {
		var err error
		admin, err = r.GetAdmin(ctx)
		return err
	})
	return admin, err
}

func (s *Service) invoke(ctx context.Context, app id.AppID, method string, caller id.Address, fn func(context.Context, Processor) (bool, error)) (bool, error) {
	var ok bool
	err := s.ledger.Invoke(ctx, app, id.KindPaymentProcessor, method, caller, func(ctx context.Context, tx *ledger.Tx) error {
		var err error
		ok, err = fn(ctx, Bind(tx))
		return err
	})
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (s *Service) query(ctx context.Context, app id.AppID, method string, fn func(context.Context, Reader) error) error {
	return s.ledger.Query(ctx, app, id.KindPaymentProcessor, method, func(ctx context.Context, tx *ledger.ReadTx) error {
		return fn(ctx, BindReader(tx))
	})
}

package identityregistry

import (
	"context"

	"chainid/internal/contract"
	"chainid/internal/ledger"
	id "chainid/pkg/domain"
)

// Service calls registries deployed on a ledger by app id.
type Service struct {
	ledger *ledger.Ledger
}

func NewService(l *ledger.Ledger) *Service {
	return &Service{ledger: l}
}

// Deploy creates a new registry administered by creator.
func (s *Service) Deploy(ctx context.Context, creator id.Address) (*ledger.Meta, error) {
	return s.ledger.Deploy(ctx, id.KindIdentityRegistry, creator, func(ctx context.Context, tx *ledger.Tx) error {
		return Bind(tx).Create(ctx)
	})
}

func (s *Service) RegisterIdentity(ctx context.Context, app id.AppID, caller, user id.Address, level uint64) (bool, error) {
	return s.invoke(ctx, app, contract.MethodRegisterIdentity, caller, func(ctx context.Context, r Registry) (bool, error) {
		return r.RegisterIdentity(ctx, user, level)
	})
}

func (s *Service) VerifyIdentity(ctx context.Context, app id.AppID, user id.Address) (bool, error) {
	var verified bool
	err := s.query(ctx, app, contract.MethodVerifyIdentity, func(context.Context, Reader) error {
		verified = VerifyIdentity(user)
		return nil
	})
	return verified, err
}

func (s *Service) GetTotalVerifiedUsers(ctx context.Context, app id.AppID) (uint64, error) {
	var total uint64
	err := s.query(ctx, app, contract.MethodGetTotalVerifiedUsers, func(ctx context.Context, r Reader) error {
		var err error
		total, err = r.GetTotalVerifiedUsers(ctx)
		return err
	})
	return total, err
}

func (s *Service) SetAdmin(ctx context.Context, app id.AppID, caller, newAdmin id.Address) (bool, error) {
	return s.invoke(ctx, app, contract.MethodSetAdmin, caller, func(ctx context.Context, r Registry) (bool, error) {
		return r.SetAdmin(ctx, newAdmin)
	})
}

func (s *Service) PauseContract(ctx context.Context, app id.AppID, caller id.Address) (bool, error) {
	return s.invoke(ctx, app, contract.MethodPauseContract, caller, func(ctx context.Context, r Registry) (bool, error) {
		return r.PauseContract(ctx)
	})
}

func (s *Service) UnpauseContract(ctx context.Context, app id.AppID, caller id.Address) (bool, error) {
	return s.invoke(ctx, app, contract.MethodUnpauseContract, caller, func(ctx context.Context, r Registry) (bool, error) {
		return r.UnpauseContract(ctx)
	})
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

func (s *Service) IsPaused(ctx context.Context, app id.AppID) (bool, error) {
	var paused bool
	err := s.query(ctx, app, contract.MethodIsPaused, func(ctx context.Context, r Reader) error {
		var err error
		paused, err = r.IsPaused(ctx)
		return err
	})
	return paused, err
}

func (s *Service) Hello(ctx context.Context, app id.AppID, name string) (string, error) {
	var greeting string
	err := s.query(ctx, app, contract.MethodHello, func(context.Context, Reader) error {
		greeting = Hello(name)
		return nil
	})
	return greeting, err
}

func (s *Service) invoke(ctx context.Context, app id.AppID, method string, caller id.Address, fn func(context.Context, Registry) (bool, error)) (bool, error) {
	var ok bool
	err := s.ledger.Invoke(ctx, app, id.KindIdentityRegistry, method, caller, func(ctx context.Context, tx *ledger.Tx) error {
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
	return s.ledger.Query(ctx, app, id.KindIdentityRegistry, method, func(ctx context.Context, tx *ledger.ReadTx) error {
		return fn(ctx, BindReader(tx))
	})
}

// Package seeder performs the genesis deployments on boot.
package seeder

import (
	"context"
	"fmt"
	"log/slog"

	"chainid/internal/ledger"
	id "chainid/pkg/domain"
)

// AppLister lists deployed apps.
type AppLister interface {
	Apps(ctx context.Context) ([]*ledger.Meta, error)
}

// RegistryService is the part of the identity registry the seeder uses.
type RegistryService interface {
	Deploy(ctx context.Context, creator id.Address) (*ledger.Meta, error)
	GetTotalVerifiedUsers(ctx context.Context, app id.AppID) (uint64, error)
	GetAdmin(ctx context.Context, app id.AppID) (id.Address, error)
}

// ProcessorService is the part of the payment processor the seeder uses.
type ProcessorService interface {
	Deploy(ctx context.Context, creator id.Address) (*ledger.Meta, error)
	GetTotalPayments(ctx context.Context, app id.AppID) (uint64, error)
}

// Result holds the genesis app ids.
type Result struct {
	IdentityRegistry id.AppID
	PaymentProcessor id.AppID
}

// Seeder deploys one contract of each kind owned by the genesis deployer.
type Seeder struct {
	apps      AppLister
	registry  RegistryService
	processor ProcessorService
	logger    *slog.Logger
}

func New(apps AppLister, registry RegistryService, processor ProcessorService, logger *slog.Logger) *Seeder {
	return &Seeder{
		apps:      apps,
		registry:  registry,
		processor: processor,
		logger:    logger,
	}
}

// Seed reuses existing deployments by the same deployer so restarts on a
// persistent backend do not deploy again.
func (s *Seeder) Seed(ctx context.Context, deployer id.Address) (*Result, error) {
	existing, err := s.apps.Apps(ctx)
	if err != nil {
		return nil, fmt.Errorf("list apps: %w", err)
	}
	found := make(map[id.ContractKind]id.AppID)
	for _, meta := range existing {
		if meta.Creator != deployer {
			continue
		}
		if _, ok := found[meta.Kind]; !ok {
			found[meta.Kind] = meta.AppID
		}
	}

	result := &Result{
		IdentityRegistry: found[id.KindIdentityRegistry],
		PaymentProcessor: found[id.KindPaymentProcessor],
	}
	if result.IdentityRegistry.IsNil() {
		meta, err := s.registry.Deploy(ctx, deployer)
		if err != nil {
			return nil, fmt.Errorf("deploy identity registry: %w", err)
		}
		result.IdentityRegistry = meta.AppID
	}
	if result.PaymentProcessor.IsNil() {
		meta, err := s.processor.Deploy(ctx, deployer)
		if err != nil {
			return nil, fmt.Errorf("deploy payment processor: %w", err)
		}
		result.PaymentProcessor = meta.AppID
	}

	total, err := s.registry.GetTotalVerifiedUsers(ctx, result.IdentityRegistry)
	if err != nil {
		return nil, fmt.Errorf("read total verified users: %w", err)
	}
	admin, err := s.registry.GetAdmin(ctx, result.IdentityRegistry)
	if err != nil {
		return nil, fmt.Errorf("read admin: %w", err)
	}
	payments, err := s.processor.GetTotalPayments(ctx, result.PaymentProcessor)
	if err != nil {
		return nil, fmt.Errorf("read total payments: %w", err)
	}

	s.logger.InfoContext(ctx, "genesis contracts ready",
		"identity_registry_app_id", result.IdentityRegistry,
		"payment_processor_app_id", result.PaymentProcessor,
		"total_verified_users", total,
		"total_payments_processed", payments,
		"admin", admin,
	)
	return result, nil
}

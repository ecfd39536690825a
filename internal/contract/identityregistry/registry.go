// Package identityregistry is the IdentityRegistry contract: it admits
// identity registrations at KYC levels 1 to 3 and counts them.
//
// Only the aggregate count is stored. The user address and level of a
// registration are validated, counted and emitted as an event, never kept.
package identityregistry

import (
	"context"
	"strconv"

	"chainid/internal/contract"
	"chainid/internal/contract/administered"
	"chainid/internal/ledger"
	id "chainid/pkg/domain"
)

const (
	TotalVerifiedUsersSlot = "total_verified_users"

	MinLevel uint64 = 1
	MaxLevel uint64 = 3

	greeting = "Hello, "
)

// Registry is one state-changing call to a deployed registry.
type Registry struct {
	tx    *ledger.Tx
	state administered.State
}

func Bind(tx *ledger.Tx) Registry {
	return Registry{
		tx:    tx,
		state: administered.New(tx.State(), tx.App(), TotalVerifiedUsersSlot),
	}
}

// Create initializes a fresh deployment with the caller as admin.
func (r Registry) Create(ctx context.Context) error {
	return r.state.Init(ctx, r.tx.Caller())
}

// RegisterIdentity counts one registration. Guards run in order: pause flag,
// then level range.
func (r Registry) RegisterIdentity(ctx context.Context, user id.Address, level uint64) (bool, error) {
	if err := r.state.RequireUnpaused(ctx); err != nil {
		return false, err
	}
	if level < MinLevel || level > MaxLevel {
		return false, contract.ErrInvalidLevel
	}
	total, err := r.state.Increment(ctx)
	if err != nil {
		return false, err
	}
	r.tx.Emit(ledger.EventIdentityRegistered,
		ledger.Attr("user_address", user.String()),
		ledger.Attr("verification_level", strconv.FormatUint(level, 10)),
		ledger.Attr(TotalVerifiedUsersSlot, strconv.FormatUint(total, 10)),
	)
	return true, nil
}

func (r Registry) SetAdmin(ctx context.Context, newAdmin id.Address) (bool, error) {
	if err := r.state.SetAdmin(ctx, r.tx.Caller(), newAdmin); err != nil {
		return false, err
	}
	r.tx.Emit(ledger.EventAdminChanged,
		ledger.Attr("previous_admin", r.tx.Caller().String()),
		ledger.Attr("new_admin", newAdmin.String()),
	)
	return true, nil
}

func (r Registry) PauseContract(ctx context.Context) (bool, error) {
	if err := r.state.Pause(ctx, r.tx.Caller()); err != nil {
		return false, err
	}
	r.tx.Emit(ledger.EventContractPaused)
	return true, nil
}

func (r Registry) UnpauseContract(ctx context.Context) (bool, error) {
	if err := r.state.Unpause(ctx, r.tx.Caller()); err != nil {
		return false, err
	}
	r.tx.Emit(ledger.EventContractUnpaused)
	return true, nil
}

// Reader is one read-only call to a deployed registry.
type Reader struct {
	view administered.View
}

func BindReader(tx *ledger.ReadTx) Reader {
	return Reader{view: administered.NewView(tx.State(), tx.App(), TotalVerifiedUsersSlot)}
}

func (r Reader) GetTotalVerifiedUsers(ctx context.Context) (uint64, error) {
	return r.view.Counter(ctx)
}

func (r Reader) GetAdmin(ctx context.Context) (id.Address, error) {
	return r.view.Admin(ctx)
}

func (r Reader) IsPaused(ctx context.Context) (bool, error) {
	return r.view.Paused(ctx)
}

// VerifyIdentity reports every address as verified, registered or not.
func VerifyIdentity(id.Address) bool {
	return true
}

func Hello(name string) string {
	return greeting + name
}

// Package administered implements the admin-and-pause state every deployed
// contract carries: one admin account, a pause flag and one admission counter.
//
// Guards read committed state through the same Mutable the call writes to, so
// a check observes earlier writes of the same call. None of them persist
// anything on failure; the ledger discards the whole call.
package administered

import (
	"context"
	"errors"

	"chainid/internal/contract"
	"chainid/internal/ledger/state"
	id "chainid/pkg/domain"
	dErrors "chainid/pkg/domain-errors"
	"chainid/pkg/platform/sentinel"
)

// Slot names shared by every administered contract.
const (
	AdminSlot  = "admin"
	PausedSlot = "contract_paused"
)

// View reads the administered slots of one app.
type View struct {
	r           state.Immutable
	app         id.AppID
	counterSlot string
}

// NewView binds r to app. counterSlot names the contract's admission counter.
func NewView(r state.Immutable, app id.AppID, counterSlot string) View {
	return View{r: r, app: app, counterSlot: counterSlot}
}

func (v View) Admin(ctx context.Context) (id.Address, error) {
	addr, err := state.GetAddress(ctx, v.r, state.AppKey(v.app, AdminSlot))
	if err != nil {
		return id.Address{}, slotError(AdminSlot, err)
	}
	return addr, nil
}

func (v View) Paused(ctx context.Context) (bool, error) {
	paused, err := state.GetBool(ctx, v.r, state.AppKey(v.app, PausedSlot))
	if err != nil {
		return false, slotError(PausedSlot, err)
	}
	return paused, nil
}

func (v View) Counter(ctx context.Context) (uint64, error) {
	n, err := state.GetUint64(ctx, v.r, state.AppKey(v.app, v.counterSlot))
	if err != nil {
		return 0, slotError(v.counterSlot, err)
	}
	return n, nil
}

func (v View) IsAdmin(ctx context.Context, caller id.Address) (bool, error) {
	admin, err := v.Admin(ctx)
	if err != nil {
		return false, err
	}
	return admin == caller, nil
}

// RequireAdmin fails with contract.ErrUnauthorized unless caller is the admin.
func (v View) RequireAdmin(ctx context.Context, caller id.Address) error {
	ok, err := v.IsAdmin(ctx, caller)
	if err != nil {
		return err
	}
	if !ok {
		return contract.ErrUnauthorized
	}
	return nil
}

// RequireUnpaused fails with contract.ErrContractPaused while the pause flag is set.
func (v View) RequireUnpaused(ctx context.Context) error {
	paused, err := v.Paused(ctx)
	if err != nil {
		return err
	}
	if paused {
		return contract.ErrContractPaused
	}
	return nil
}

// State is a View that can also write.
type State struct {
	View
	m state.Mutable
}

func New(m state.Mutable, app id.AppID, counterSlot string) State {
	return State{View: NewView(m, app, counterSlot), m: m}
}

// Init writes the creation state: admin is creator, unpaused, counter zero.
func (s State) Init(ctx context.Context, creator id.Address) error {
	if err := s.m.Insert(ctx, state.AppKey(s.app, AdminSlot), creator.Bytes()); err != nil {
		return err
	}
	if err := s.setPaused(ctx, false); err != nil {
		return err
	}
	return s.m.Insert(ctx, state.AppKey(s.app, s.counterSlot), state.EncodeUint64(0))
}

// SetAdmin hands authority to newAdmin. Any address is accepted, including
// the zero address and the current admin.
func (s State) SetAdmin(ctx context.Context, caller, newAdmin id.Address) error {
	if err := s.RequireAdmin(ctx, caller); err != nil {
		return err
	}
	return s.m.Insert(ctx, state.AppKey(s.app, AdminSlot), newAdmin.Bytes())
}

// Pause sets the pause flag. Pausing a paused contract succeeds.
func (s State) Pause(ctx context.Context, caller id.Address) error {
	if err := s.RequireAdmin(ctx, caller); err != nil {
		return err
	}
	return s.setPaused(ctx, true)
}

// Unpause clears the pause flag. Unpausing a running contract succeeds.
func (s State) Unpause(ctx context.Context, caller id.Address) error {
	if err := s.RequireAdmin(ctx, caller); err != nil {
		return err
	}
	return s.setPaused(ctx, false)
}

// Increment adds one to the admission counter and returns the new total.
func (s State) Increment(ctx context.Context) (uint64, error) {
	n, err := state.IncrementUint64(ctx, s.m, state.AppKey(s.app, s.counterSlot))
	if err != nil {
		return 0, slotError(s.counterSlot, err)
	}
	return n, nil
}

func (s State) setPaused(ctx context.Context, paused bool) error {
	return s.m.Insert(ctx, state.AppKey(s.app, PausedSlot), state.EncodeBool(paused))
}

// slotError classifies a failed slot read. A created app always has its
// slots and they always decode, so a missing or corrupt slot is an invariant
// violation. Anything else is a store failure and passes through for the
// ledger to translate.
func slotError(slot string, err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeInvariantViolation, "slot "+slot+" is missing")
	case errors.Is(err, state.ErrCorruptSlot):
		return dErrors.Wrap(err, dErrors.CodeInvariantViolation, "slot "+slot+" is corrupt")
	default:
		return err
	}
}

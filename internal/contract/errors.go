// Package contract holds what the deployed contracts share: the named guard
// failures every call may abort with and the ABI method names.
package contract

import (
	dErrors "chainid/pkg/domain-errors"
)

// Guard failures. Each aborts the whole call; nothing it wrote is kept.
var (
	ErrUnauthorized   = dErrors.New(dErrors.CodeForbidden, "Only admin")
	ErrContractPaused = dErrors.New(dErrors.CodeContractPaused, "Contract paused")
	ErrInvalidLevel   = dErrors.New(dErrors.CodeInvalidLevel, "Invalid level")
	ErrInvalidAmount  = dErrors.New(dErrors.CodeInvalidAmount, "Invalid amount")
)

// Guard kinds as they appear in logs, metrics and span attributes.
const (
	GuardUnauthorized   = "unauthorized"
	GuardContractPaused = "contract_paused"
	GuardInvalidLevel   = "invalid_level"
	GuardInvalidAmount  = "invalid_amount"
)

// GuardKind reports which guard rejected a call, if any.
func GuardKind(err error) (string, bool) {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeForbidden:
		return GuardUnauthorized, true
	case dErrors.CodeContractPaused:
		return GuardContractPaused, true
	case dErrors.CodeInvalidLevel:
		return GuardInvalidLevel, true
	case dErrors.CodeInvalidAmount:
		return GuardInvalidAmount, true
	default:
		return "", false
	}
}

// ABI method names.
const (
	MethodCreate                = "create"
	MethodRegisterIdentity      = "register_identity"
	MethodVerifyIdentity        = "verify_identity"
	MethodGetTotalVerifiedUsers = "get_total_verified_users"
	MethodSetAdmin              = "set_admin"
	MethodPauseContract         = "pause_contract"
	MethodUnpauseContract       = "unpause_contract"
	MethodGetAdmin              = "get_admin"
	MethodIsPaused              = "is_paused"
	MethodHello                 = "hello"
	MethodProcessPayment        = "process_payment"
	MethodGetTotalPayments      = "get_total_payments"
)

package domain

import dErrors "chainid/pkg/domain-errors"

// ContractKind names the program a deployment runs.
type ContractKind string

const (
	KindIdentityRegistry ContractKind = "identity_registry"
	KindPaymentProcessor ContractKind = "payment_processor"
)

// ParseContractKind validates a kind received at a trust boundary.
func ParseContractKind(s string) (ContractKind, error) {
	k := ContractKind(s)
	if !k.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown contract kind")
	}
	return k, nil
}

// IsValid reports whether the kind is one the ledger can run.
func (k ContractKind) IsValid() bool {
	switch k {
	case KindIdentityRegistry, KindPaymentProcessor:
		return true
	default:
		return false
	}
}

func (k ContractKind) String() string { return string(k) }

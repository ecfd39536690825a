package handler

import (
	id "chainid/pkg/domain"
	dErrors "chainid/pkg/domain-errors"
)

// ProcessPaymentRequest is the body of POST .../process_payment.
type ProcessPaymentRequest struct {
	Recipient string  `json:"recipient"`
	Amount    *uint64 `json:"amount"`

	recipient id.Address
}

// Validate parses the request. The amount is bounds-checked by the contract.
func (r *ProcessPaymentRequest) Validate() error {
	if r.Amount == nil {
		return dErrors.New(dErrors.CodeValidation, "amount is required")
	}
	addr, err := id.ParseAddress(r.Recipient)
	if err != nil {
		return err
	}
	r.recipient = addr
	return nil
}

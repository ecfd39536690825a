package handler

import (
	id "chainid/pkg/domain"
	dErrors "chainid/pkg/domain-errors"
)

// RegisterIdentityRequest is the body of POST .../register_identity.
type RegisterIdentityRequest struct {
	UserAddress       string  `json:"user_address"`
	VerificationLevel *uint64 `json:"verification_level"`

	userAddress id.Address
}

// Validate parses the request. The level is range-checked by the contract.
func (r *RegisterIdentityRequest) Validate() error {
	if r.VerificationLevel == nil {
		return dErrors.New(dErrors.CodeValidation, "verification_level is required")
	}
	addr, err := id.ParseAddress(r.UserAddress)
	if err != nil {
		return err
	}
	r.userAddress = addr
	return nil
}

// VerifyIdentityRequest is the body of POST .../verify_identity.
type VerifyIdentityRequest struct {
	UserAddress string `json:"user_address"`

	userAddress id.Address
}

func (r *VerifyIdentityRequest) Validate() error {
	addr, err := id.ParseAddress(r.UserAddress)
	if err != nil {
		return err
	}
	r.userAddress = addr
	return nil
}

// SetAdminRequest is the body of POST .../set_admin.
type SetAdminRequest struct {
	NewAdmin string `json:"new_admin"`

	newAdmin id.Address
}

func (r *SetAdminRequest) Validate() error {
	addr, err := id.ParseAddress(r.NewAdmin)
	if err != nil {
		return err
	}
	r.newAdmin = addr
	return nil
}

// HelloRequest is the body of POST .../hello.
type HelloRequest struct {
	Name string `json:"name"`
}

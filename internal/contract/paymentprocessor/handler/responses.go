package handler

import (
	"time"

	"chainid/internal/ledger"
	id "chainid/pkg/domain"
)

// CallResponse is the body of every contract method response.
type CallResponse struct {
	Method string `json:"method"`
	Return any    `json:"return"`
}

// DeployResponse is the body of a successful deployment.
type DeployResponse struct {
	AppID     id.AppID        `json:"app_id"`
	Kind      id.ContractKind `json:"kind"`
	Admin     id.Address      `json:"admin"`
	CreatedAt time.Time       `json:"created_at"`
}

func fromMeta(meta *ledger.Meta) DeployResponse {
	return DeployResponse{
		AppID:     meta.AppID,
		Kind:      meta.Kind,
		Admin:     meta.Creator,
		CreatedAt: meta.CreatedAt,
	}
}

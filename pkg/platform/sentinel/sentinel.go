package sentinel

import "errors"

// Sentinel errors for infrastructure facts. State and outbox stores return
// these (optionally wrapped) so the ledger can translate them into domain errors.
//
// - ErrNotFound: key or entry does not exist in the store
// - ErrConflict: an optimistic commit lost its race and retries are exhausted
// - ErrUnavailable: backend temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)

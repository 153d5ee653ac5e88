package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and infrastructure layers return
// these (optionally wrapped) so services can translate them into domain errors.
//
//   - ErrNotFound: key or record does not exist in the store
//   - ErrExpired: entry or token has passed its expiry
//   - ErrCorrupt: a persisted record could not be decoded
//   - ErrUnavailable: backing service or storage is not reachable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrExpired     = errors.New("expired")
	ErrCorrupt     = errors.New("corrupt record")
	ErrUnavailable = errors.New("unavailable")
)

package application

import "errors"

// Sentinel errors returned by PromotionService.Promote. Store failures keep
// the driven port sentinels (driven.ErrStoreUnavailable, driven.ErrConflict).
var (
	// ErrInvalidCredential indicates reauthentication of the acting identity failed.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrSourceNotFound indicates the candidate selected for promotion no
	// longer exists in the store. Callers should resolve again.
	ErrSourceNotFound = errors.New("promotion source not found")
)

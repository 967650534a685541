package driven

import "context"

// Authenticator re-verifies an acting identity before a privileged action.
// Reauthenticate returns (false, nil) for a wrong secret or unknown identity
// and a non-nil error only when verification could not be performed.
type Authenticator interface {
	Reauthenticate(ctx context.Context, identity, secret string) (bool, error)
}

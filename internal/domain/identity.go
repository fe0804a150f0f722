package domain

import "time"

// Identity is the account owned by the authentication provider.
type Identity struct {
	ID               string
	Email            string
	EmailConfirmedAt *time.Time
	LastSignInAt     *time.Time
}

// Confirmed reports whether the email confirmation has completed.
func (i *Identity) Confirmed() bool {
	return i != nil && i.EmailConfirmedAt != nil
}

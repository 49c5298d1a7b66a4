package ports

import "context"

// AccountPort defines the interface for updating account profiles.
type AccountPort interface {
	// UpdateProfile sets the username and display name on the account
	// identified by userID. Used by onboarding to assign friendly names.
	UpdateProfile(ctx context.Context, userID, username, displayName string) error
}

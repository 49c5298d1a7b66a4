package ports

import "context"

// WalletUpdate represents a single coin balance change for a user.
type WalletUpdate struct {
	UserID   string
	Amount   int64
	Metadata map[string]interface{}
}

// EconomyPort defines the interface for managing the coin currency.
type EconomyPort interface {
	// GetBalance retrieves the current coin balance for a user. Seat
	// admission checks it against the table stake.
	GetBalance(ctx context.Context, userID string) (int64, error)

	// UpdateBalances applies multiple wallet changes atomically. Stake
	// settlement at game end goes through this in one batch.
	UpdateBalances(ctx context.Context, updates []WalletUpdate) error
}

package repository

import (
	"context"

	"github.com/tsiory/pos-print-relay/internal/domain/entity"
)

// OrderSource assembles the order snapshot consumed by the receipt composer.
// Implementations may query a remote business backend or a local database;
// both are bounded by the caller's context.
type OrderSource interface {
	// GetByName returns the snapshot for an order reference.
	GetByName(ctx context.Context, name string) (*entity.OrderSnapshot, error)
	// GetLast returns the most recent order for a register and/or user.
	// Zero values leave the corresponding filter unset.
	GetLast(ctx context.Context, registerID, userID int) (*entity.OrderSnapshot, error)
}

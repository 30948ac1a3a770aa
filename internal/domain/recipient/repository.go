package recipient

import (
	"context"
)

// Repository defines the operations for persisting and retrieving notification recipients.
type Repository interface {
	Create(ctx context.Context, r *Recipient) error
	GetByEmail(ctx context.Context, email string) (*Recipient, error)
	SetActive(ctx context.Context, id int64, active bool) error
	// Delete removes the row immediately; there is no soft delete.
	Delete(ctx context.Context, id int64) error
	ListActive(ctx context.Context) ([]*Recipient, error)
	ListAll(ctx context.Context) ([]*Recipient, error)
}

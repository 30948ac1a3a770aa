package contract

import (
	"context"
	"time"
)

// Repository provides read access to contracts and the employees they belong to.
// The notifier never writes either entity.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Contract, error)
	// ListActiveEndingBetween returns ACTIVE contracts whose end date is
	// strictly after 'after' and on or before 'until' (both compared as dates).
	ListActiveEndingBetween(ctx context.Context, after, until time.Time) ([]*Contract, error)
	GetEmployee(ctx context.Context, employeeID int64) (*Employee, error)
}

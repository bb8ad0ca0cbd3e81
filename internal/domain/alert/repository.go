package alert

import "context"

// Repository describes alert reads and the single permitted mutation.
type Repository interface {
	ListActive(ctx context.Context) ([]Alert, error)
	Deactivate(ctx context.Context, id int64) (bool, error)
}

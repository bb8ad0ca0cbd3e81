package player

import "context"

// Repository describes the read side used by dashboards and the CLI.
type Repository interface {
	List(ctx context.Context) ([]Profile, error)
	GetByID(ctx context.Context, id int64) (Profile, bool, error)
}

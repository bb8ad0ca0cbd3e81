package roster

import (
	"context"
	"errors"

	"github.com/riskibarqy/scout-pro/internal/domain/alert"
	"github.com/riskibarqy/scout-pro/internal/domain/clublink"
	"github.com/riskibarqy/scout-pro/internal/domain/player"
)

// ErrConflict is returned by a Tx when a write would break a uniqueness
// rule, such as two players sharing one external ID.
var ErrConflict = errors.New("roster: unique constraint conflict")

// Source yields the roster rows of one external sheet.
// An empty result is legal; transport and auth failures are errors.
type Source interface {
	Name() string
	FetchRows(ctx context.Context) ([]RawRow, error)
}

// Store runs fn inside one transaction. A nil return commits; anything else rolls back.
type Store interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the set of writes a single roster row may perform.
type Tx interface {
	FindPlayerByExternalID(ctx context.Context, externalID string) (player.Player, bool, error)
	// FindPlayersByName returns exact, case-sensitive matches ordered by ID.
	FindPlayersByName(ctx context.Context, name string) ([]player.Player, error)
	InsertPlayer(ctx context.Context, p player.Player) (player.Player, error)
	UpdatePlayer(ctx context.Context, p player.Player) (player.Player, error)
	UpsertClubLink(ctx context.Context, link clublink.ClubLink) (clublink.ClubLink, error)
	InsertAlert(ctx context.Context, a alert.Alert) (alert.Alert, error)
	HasActiveAlert(ctx context.Context, playerID int64, alertType string) (bool, error)
}

// CacheInvalidator drops every cached read derived from the roster.
type CacheInvalidator interface {
	InvalidateAll(ctx context.Context) error
}

package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/scout-pro/internal/domain/clublink"
	"github.com/riskibarqy/scout-pro/internal/domain/player"
	"github.com/riskibarqy/scout-pro/internal/domain/roster"
)

// UpsertOutcome is the post-write state of one row.
type UpsertOutcome struct {
	Player   player.Player
	ClubLink *clublink.ClubLink
	Created  bool
}

// UpsertWriter writes a player and its current club link within the caller's transaction.
type UpsertWriter struct{}

func NewUpsertWriter() *UpsertWriter {
	return &UpsertWriter{}
}

// Write overwrites stored fields with the row's values, except that a row
// without an external ID keeps the one already stored.
func (w *UpsertWriter) Write(ctx context.Context, tx roster.Tx, match Match, row roster.NormalizedRow, now time.Time) (UpsertOutcome, error) {
	incoming := row.Player()
	if err := incoming.Validate(); err != nil {
		return UpsertOutcome{}, fmt.Errorf("%w: %v", ErrInvalidRow, err)
	}

	var (
		saved   player.Player
		err     error
		created bool
	)
	if match.Found() {
		incoming.ID = match.Player.ID
		incoming.CreatedAt = match.Player.CreatedAt
		if incoming.ExternalID == nil {
			incoming.ExternalID = match.Player.ExternalID
		}
		saved, err = tx.UpdatePlayer(ctx, incoming)
		if err != nil {
			return UpsertOutcome{}, fmt.Errorf("update player id=%d: %w", incoming.ID, err)
		}
	} else {
		saved, err = tx.InsertPlayer(ctx, incoming)
		if err != nil {
			return UpsertOutcome{}, fmt.Errorf("insert player name=%q: %w", incoming.Name, err)
		}
		created = true
	}

	outcome := UpsertOutcome{Player: saved, Created: created}
	if !row.HasClubLink() {
		return outcome, nil
	}

	link := row.ClubLink(saved.ID, now)
	if err := link.Validate(); err != nil {
		return UpsertOutcome{}, fmt.Errorf("%w: %v", ErrInvalidRow, err)
	}
	savedLink, err := tx.UpsertClubLink(ctx, link)
	if err != nil {
		return UpsertOutcome{}, fmt.Errorf("upsert club link player_id=%d: %w", saved.ID, err)
	}
	outcome.ClubLink = &savedLink

	return outcome, nil
}

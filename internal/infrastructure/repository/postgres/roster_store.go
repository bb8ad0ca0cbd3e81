package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/scout-pro/internal/domain/alert"
	"github.com/riskibarqy/scout-pro/internal/domain/clublink"
	"github.com/riskibarqy/scout-pro/internal/domain/player"
	"github.com/riskibarqy/scout-pro/internal/domain/roster"
	qb "github.com/riskibarqy/scout-pro/internal/platform/querybuilder"
)

type RosterStore struct {
	db *sqlx.DB
}

func NewRosterStore(db *sqlx.DB) *RosterStore {
	return &RosterStore{db: db}
}

func (s *RosterStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx roster.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin roster tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(ctx, &rosterTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit roster tx: %w", err)
	}

	return nil
}

type rosterTx struct {
	tx *sqlx.Tx
}

func (t *rosterTx) FindPlayerByExternalID(ctx context.Context, externalID string) (player.Player, bool, error) {
	query, args, err := qb.Select(playerColumns...).From("players").
		Where(qb.Eq("external_id", externalID)).
		Limit(1).
		ForUpdate().
		ToSQL()
	if err != nil {
		return player.Player{}, false, fmt.Errorf("build select player by external id query: %w", err)
	}

	var row playerTableModel
	if err := t.tx.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("select player by external id: %w", err)
	}

	return row.toDomain(), true, nil
}

func (t *rosterTx) FindPlayersByName(ctx context.Context, name string) ([]player.Player, error) {
	query, args, err := qb.Select(playerColumns...).From("players").
		Where(qb.Eq("name", name)).
		OrderBy("id").
		ForUpdate().
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players by name query: %w", err)
	}

	var rows []playerTableModel
	if err := t.tx.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select players by name: %w", err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (t *rosterTx) InsertPlayer(ctx context.Context, p player.Player) (player.Player, error) {
	query, args, err := qb.InsertModel("players", playerModelFrom(p), playerColumns...)
	if err != nil {
		return player.Player{}, fmt.Errorf("build insert player query: %w", err)
	}

	var row playerTableModel
	if err := t.tx.GetContext(ctx, &row, query, args...); err != nil {
		if isUniqueViolation(err) {
			return player.Player{}, fmt.Errorf("%w: insert player name=%q: %v", roster.ErrConflict, p.Name, err)
		}
		return player.Player{}, fmt.Errorf("insert player: %w", err)
	}
	return row.toDomain(), nil
}

func (t *rosterTx) UpdatePlayer(ctx context.Context, p player.Player) (player.Player, error) {
	query, args, err := qb.UpdateModel("players", playerModelFrom(p), qb.Eq("id", p.ID)).
		SetExpr("updated_at", "NOW()").
		Returning(playerColumns...).
		ToSQL()
	if err != nil {
		return player.Player{}, fmt.Errorf("build update player query: %w", err)
	}

	var row playerTableModel
	if err := t.tx.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, fmt.Errorf("player id=%d not found", p.ID)
		}
		if isUniqueViolation(err) {
			return player.Player{}, fmt.Errorf("%w: update player id=%d: %v", roster.ErrConflict, p.ID, err)
		}
		return player.Player{}, fmt.Errorf("update player: %w", err)
	}
	return row.toDomain(), nil
}

var clubLinkUpsertColumns = []string{"player_id", "club", "league", "position", "contract_end", "contract_status"}

func (t *rosterTx) UpsertClubLink(ctx context.Context, link clublink.ClubLink) (clublink.ClubLink, error) {
	updates := make([]string, 0, len(clubLinkUpsertColumns))
	for _, col := range clubLinkUpsertColumns[1:] {
		updates = append(updates, col+" = EXCLUDED."+col)
	}
	updates = append(updates, "updated_at = NOW()")

	query, args, err := qb.InsertInto("club_links").
		Columns(clubLinkUpsertColumns...).
		Values(
			link.PlayerID,
			link.Club,
			link.League,
			link.Position,
			nullableDate(link.ContractEnd),
			string(link.ContractStatus),
		).
		OnConflict("(player_id) DO UPDATE SET " + strings.Join(updates, ", ")).
		Returning(clubLinkColumns...).
		ToSQL()
	if err != nil {
		return clublink.ClubLink{}, fmt.Errorf("build upsert club link query: %w", err)
	}

	var row clubLinkTableModel
	if err := t.tx.GetContext(ctx, &row, query, args...); err != nil {
		return clublink.ClubLink{}, fmt.Errorf("upsert club link: %w", err)
	}
	return row.toDomain(), nil
}

func (t *rosterTx) InsertAlert(ctx context.Context, a alert.Alert) (alert.Alert, error) {
	if err := a.Validate(); err != nil {
		return alert.Alert{}, err
	}

	query, args, err := qb.InsertModel("alerts", alertModelFrom(a), alertColumns...)
	if err != nil {
		return alert.Alert{}, fmt.Errorf("build insert alert query: %w", err)
	}

	var row alertTableModel
	if err := t.tx.GetContext(ctx, &row, query, args...); err != nil {
		return alert.Alert{}, fmt.Errorf("insert alert: %w", err)
	}
	return row.toDomain(), nil
}

func (t *rosterTx) HasActiveAlert(ctx context.Context, playerID int64, alertType string) (bool, error) {
	query, args, err := qb.Select("1").From("alerts").
		Where(
			qb.Eq("player_id", playerID),
			qb.Eq("type", alertType),
			qb.Eq("active", true),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build select active alert query: %w", err)
	}

	var one int
	if err := t.tx.GetContext(ctx, &one, query, args...); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("select active alert: %w", err)
	}
	return true, nil
}

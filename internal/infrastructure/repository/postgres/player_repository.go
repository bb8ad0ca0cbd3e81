package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/scout-pro/internal/domain/player"
	qb "github.com/riskibarqy/scout-pro/internal/platform/querybuilder"
)

const playerProfileFrom = "players p LEFT JOIN club_links c ON c.player_id = p.id"

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) List(ctx context.Context) ([]player.Profile, error) {
	query, args, err := qb.Select(playerProfileColumns...).From(playerProfileFrom).
		OrderBy("p.id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players query: %w", err)
	}

	var rows []playerProfileRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select players: %w", err)
	}

	out := make([]player.Profile, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *PlayerRepository) GetByID(ctx context.Context, id int64) (player.Profile, bool, error) {
	query, args, err := qb.Select(playerProfileColumns...).From(playerProfileFrom).
		Where(qb.Eq("p.id", id)).
		Limit(1).
		ToSQL()
	if err != nil {
		return player.Profile{}, false, fmt.Errorf("build select player by id query: %w", err)
	}

	var row playerProfileRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Profile{}, false, nil
		}
		return player.Profile{}, false, fmt.Errorf("select player by id: %w", err)
	}
	return row.toDomain(), true, nil
}

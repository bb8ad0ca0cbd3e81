package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/scout-pro/internal/domain/alert"
	qb "github.com/riskibarqy/scout-pro/internal/platform/querybuilder"
)

type AlertRepository struct {
	db *sqlx.DB
}

func NewAlertRepository(db *sqlx.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) ListActive(ctx context.Context) ([]alert.Alert, error) {
	query, args, err := qb.Select(alertColumns...).From("alerts").
		Where(qb.Eq("active", true)).
		OrderBy("created_at DESC", "id DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select active alerts query: %w", err)
	}

	var rows []alertTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select active alerts: %w", err)
	}

	out := make([]alert.Alert, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// Deactivate reports false when the alert is unknown or already inactive.
func (r *AlertRepository) Deactivate(ctx context.Context, id int64) (bool, error) {
	query, args, err := qb.Update("alerts").
		Set("active", false).
		Where(qb.Eq("id", id), qb.Eq("active", true)).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build deactivate alert query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("deactivate alert: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deactivate alert rows affected: %w", err)
	}
	return affected > 0, nil
}

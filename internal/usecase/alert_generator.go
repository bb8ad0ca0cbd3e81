package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/scout-pro/internal/domain/alert"
	"github.com/riskibarqy/scout-pro/internal/domain/clublink"
	"github.com/riskibarqy/scout-pro/internal/domain/roster"
)

// AlertGenerator derives alerts from the post-upsert state of a row.
// Alerts are appended; with dedup enabled an alert is skipped when the
// player already has an active alert of the same type.
type AlertGenerator struct {
	dedup bool
}

func NewAlertGenerator(dedup bool) *AlertGenerator {
	return &AlertGenerator{dedup: dedup}
}

// Derive is pure: it reports which alerts the outcome calls for.
func (g *AlertGenerator) Derive(outcome UpsertOutcome, row roster.NormalizedRow) []alert.Alert {
	out := make([]alert.Alert, 0, 2)
	playerID := outcome.Player.ID

	if outcome.ClubLink != nil {
		switch outcome.ClubLink.ContractStatus {
		case clublink.StatusFinalSixMonths:
			out = append(out, contractAlert(playerID, alert.PriorityHigh, row.ContractEndRaw))
		case clublink.StatusFinalYear:
			out = append(out, contractAlert(playerID, alert.PriorityMedium, row.ContractEndRaw))
		}
	}
	if row.HighPotential {
		out = append(out, alert.Alert{
			PlayerID:    playerID,
			Type:        alert.TypePotential,
			Description: fmt.Sprintf("High potential: %s", row.Potential),
			Priority:    alert.PriorityMedium,
			Active:      true,
		})
	}

	return out
}

// Emit persists the derived alerts and returns how many were written.
func (g *AlertGenerator) Emit(ctx context.Context, tx roster.Tx, outcome UpsertOutcome, row roster.NormalizedRow) (int, error) {
	written := 0
	for _, item := range g.Derive(outcome, row) {
		if g.dedup {
			exists, err := tx.HasActiveAlert(ctx, item.PlayerID, item.Type)
			if err != nil {
				return written, fmt.Errorf("check active %s alert player_id=%d: %w", item.Type, item.PlayerID, err)
			}
			if exists {
				continue
			}
		}
		if _, err := tx.InsertAlert(ctx, item); err != nil {
			return written, fmt.Errorf("insert %s alert player_id=%d: %w", item.Type, item.PlayerID, err)
		}
		written++
	}
	return written, nil
}

func contractAlert(playerID int64, priority alert.Priority, rawEnd string) alert.Alert {
	return alert.Alert{
		PlayerID:    playerID,
		Type:        alert.TypeContract,
		Description: fmt.Sprintf("Contract ends on %s", rawEnd),
		Priority:    priority,
		Active:      true,
	}
}

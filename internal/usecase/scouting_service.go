package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/scout-pro/internal/domain/alert"
	"github.com/riskibarqy/scout-pro/internal/domain/player"
)

// ScoutingService serves the read side of the roster to the CLI.
type ScoutingService struct {
	players player.Repository
	alerts  alert.Repository
}

func NewScoutingService(players player.Repository, alerts alert.Repository) *ScoutingService {
	return &ScoutingService{players: players, alerts: alerts}
}

func (s *ScoutingService) ListPlayers(ctx context.Context) ([]player.Profile, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoutingService.ListPlayers")
	defer span.End()

	items, err := s.players.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return items, nil
}

func (s *ScoutingService) GetPlayer(ctx context.Context, id int64) (player.Profile, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoutingService.GetPlayer")
	defer span.End()

	if id <= 0 {
		return player.Profile{}, fmt.Errorf("%w: player id must be greater than zero", ErrInvalidInput)
	}
	item, exists, err := s.players.GetByID(ctx, id)
	if err != nil {
		return player.Profile{}, fmt.Errorf("get player id=%d: %w", id, err)
	}
	if !exists {
		return player.Profile{}, fmt.Errorf("%w: player id=%d", ErrNotFound, id)
	}
	return item, nil
}

func (s *ScoutingService) ListActiveAlerts(ctx context.Context) ([]alert.Alert, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoutingService.ListActiveAlerts")
	defer span.End()

	items, err := s.alerts.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active alerts: %w", err)
	}
	return items, nil
}

// ResolveAlert deactivates an alert. Resolving an inactive or unknown alert is ErrNotFound.
func (s *ScoutingService) ResolveAlert(ctx context.Context, id int64) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoutingService.ResolveAlert")
	defer span.End()

	if id <= 0 {
		return fmt.Errorf("%w: alert id must be greater than zero", ErrInvalidInput)
	}
	changed, err := s.alerts.Deactivate(ctx, id)
	if err != nil {
		return fmt.Errorf("deactivate alert id=%d: %w", id, err)
	}
	if !changed {
		return fmt.Errorf("%w: active alert id=%d", ErrNotFound, id)
	}
	return nil
}

package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/scout-pro/internal/domain/player"
	"github.com/riskibarqy/scout-pro/internal/domain/roster"
	"github.com/riskibarqy/scout-pro/internal/platform/logging"
)

type MatchKind string

const (
	MatchByExternalID MatchKind = "external_id"
	MatchByName       MatchKind = "name"
	MatchNone         MatchKind = "none"
)

// Match is the outcome of resolving a row to a stored player.
type Match struct {
	Kind   MatchKind
	Player player.Player
}

func (m Match) Found() bool {
	return m.Kind != MatchNone
}

// EntityMatcher resolves a row by external ID first, then by exact name.
type EntityMatcher struct {
	logger *logging.Logger
}

func NewEntityMatcher(logger *logging.Logger) *EntityMatcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &EntityMatcher{logger: logger}
}

// Match never merges records: a name candidate that already carries a
// different external ID is not a match for a row with its own external ID.
// Among the remaining name candidates the lowest ID wins.
func (m *EntityMatcher) Match(ctx context.Context, tx roster.Tx, row roster.NormalizedRow) (Match, error) {
	if row.ExternalID != nil {
		found, exists, err := tx.FindPlayerByExternalID(ctx, *row.ExternalID)
		if err != nil {
			return Match{}, fmt.Errorf("find player by external id=%s: %w", *row.ExternalID, err)
		}
		if exists {
			return Match{Kind: MatchByExternalID, Player: found}, nil
		}
	}

	candidates, err := tx.FindPlayersByName(ctx, row.Name)
	if err != nil {
		return Match{}, fmt.Errorf("find players by name=%q: %w", row.Name, err)
	}

	eligible := make([]player.Player, 0, len(candidates))
	for _, candidate := range candidates {
		if row.ExternalID != nil && candidate.ExternalID != nil && !candidate.HasExternalID(*row.ExternalID) {
			continue
		}
		eligible = append(eligible, candidate)
	}
	if len(eligible) == 0 {
		return Match{Kind: MatchNone}, nil
	}
	if len(eligible) > 1 {
		m.logger.DebugContext(ctx, "ambiguous name match, using lowest id",
			"line", row.Line,
			"name", row.Name,
			"candidates", len(eligible),
			"player_id", eligible[0].ID,
		)
	}

	return Match{Kind: MatchByName, Player: eligible[0]}, nil
}

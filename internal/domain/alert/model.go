package alert

import (
	"fmt"
	"strings"
	"time"
)

// Priority ranks how urgently a scout should look at an alert.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

const (
	TypeContract  = "Contract"
	TypePotential = "Potential"
)

// Alert is an append-only notice about a player. It is only ever deactivated.
type Alert struct {
	ID          int64
	PlayerID    int64
	Type        string
	Description string
	Priority    Priority
	Active      bool
	CreatedAt   time.Time
}

func (a Alert) Validate() error {
	if a.PlayerID <= 0 {
		return fmt.Errorf("alert player id is required")
	}
	if strings.TrimSpace(a.Type) == "" {
		return fmt.Errorf("alert type is required")
	}
	switch a.Priority {
	case PriorityHigh, PriorityMedium, PriorityLow:
	default:
		return fmt.Errorf("invalid alert priority: %q", a.Priority)
	}

	return nil
}

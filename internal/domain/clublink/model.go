package clublink

import (
	"fmt"
	"time"
)

// ClubLink is the single current club association of a player.
type ClubLink struct {
	ID             int64
	PlayerID       int64
	Club           string
	League         string
	Position       string
	ContractEnd    *time.Time
	ContractStatus ContractStatus
	UpdatedAt      time.Time
}

func (l ClubLink) Validate() error {
	if l.PlayerID <= 0 {
		return fmt.Errorf("club link player id is required")
	}
	if !l.ContractStatus.Valid() {
		return fmt.Errorf("invalid contract status: %q", l.ContractStatus)
	}

	return nil
}

package player

import (
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/scout-pro/internal/domain/clublink"
)

// Foot is the canonical dominant foot of a player.
type Foot string

const (
	FootRight Foot = "right"
	FootLeft  Foot = "left"
	FootBoth  Foot = "both"
)

// Player is a scouted athlete. ID is assigned by the store and never changes.
type Player struct {
	ID           int64
	Name         string
	Nationality  *string
	BirthYear    *int
	Age          *int
	HeightCM     *int
	DominantFoot *Foot
	ExternalID   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (p Player) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("player name is required")
	}
	if p.ExternalID != nil && strings.TrimSpace(*p.ExternalID) == "" {
		return fmt.Errorf("player external id cannot be blank")
	}
	if p.HeightCM != nil && *p.HeightCM <= 0 {
		return fmt.Errorf("player height must be greater than zero")
	}

	return nil
}

// HasExternalID reports whether the player carries the given source identifier.
func (p Player) HasExternalID(id string) bool {
	return p.ExternalID != nil && *p.ExternalID == id
}

// Profile is the dashboard read model: a player and its current club link.
type Profile struct {
	Player   Player
	ClubLink *clublink.ClubLink
}

package postgres

import (
	"time"

	"github.com/riskibarqy/scout-pro/internal/domain/alert"
	"github.com/riskibarqy/scout-pro/internal/domain/clublink"
	"github.com/riskibarqy/scout-pro/internal/domain/player"
)

type playerTableModel struct {
	ID           int64     `db:"id,readonly"`
	Name         string    `db:"name"`
	Nationality  *string   `db:"nationality"`
	BirthYear    *int      `db:"birth_year"`
	Age          *int      `db:"age"`
	HeightCM     *int      `db:"height_cm"`
	DominantFoot *string   `db:"dominant_foot"`
	ExternalID   *string   `db:"external_id"`
	CreatedAt    time.Time `db:"created_at,readonly"`
	UpdatedAt    time.Time `db:"updated_at,readonly"`
}

var playerColumns = []string{
	"id",
	"name",
	"nationality",
	"birth_year",
	"age",
	"height_cm",
	"dominant_foot",
	"external_id",
	"created_at",
	"updated_at",
}

func playerModelFrom(p player.Player) playerTableModel {
	var foot *string
	if p.DominantFoot != nil {
		v := string(*p.DominantFoot)
		foot = &v
	}
	return playerTableModel{
		ID:           p.ID,
		Name:         p.Name,
		Nationality:  p.Nationality,
		BirthYear:    p.BirthYear,
		Age:          p.Age,
		HeightCM:     p.HeightCM,
		DominantFoot: foot,
		ExternalID:   p.ExternalID,
	}
}

func (m playerTableModel) toDomain() player.Player {
	var foot *player.Foot
	if m.DominantFoot != nil {
		v := player.Foot(*m.DominantFoot)
		foot = &v
	}
	return player.Player{
		ID:           m.ID,
		Name:         m.Name,
		Nationality:  m.Nationality,
		BirthYear:    m.BirthYear,
		Age:          m.Age,
		HeightCM:     m.HeightCM,
		DominantFoot: foot,
		ExternalID:   m.ExternalID,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

type clubLinkTableModel struct {
	ID             int64      `db:"id"`
	PlayerID       int64      `db:"player_id"`
	Club           string     `db:"club"`
	League         string     `db:"league"`
	Position       string     `db:"position"`
	ContractEnd    *time.Time `db:"contract_end"`
	ContractStatus string     `db:"contract_status"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

var clubLinkColumns = []string{
	"id",
	"player_id",
	"club",
	"league",
	"position",
	"contract_end",
	"contract_status",
	"updated_at",
}

func (m clubLinkTableModel) toDomain() clublink.ClubLink {
	return clublink.ClubLink{
		ID:             m.ID,
		PlayerID:       m.PlayerID,
		Club:           m.Club,
		League:         m.League,
		Position:       m.Position,
		ContractEnd:    m.ContractEnd,
		ContractStatus: clublink.ContractStatus(m.ContractStatus),
		UpdatedAt:      m.UpdatedAt,
	}
}

// playerProfileRow is one players row LEFT JOINed with its club link.
type playerProfileRow struct {
	playerTableModel
	LinkID             *int64     `db:"link_id"`
	LinkClub           *string    `db:"link_club"`
	LinkLeague         *string    `db:"link_league"`
	LinkPosition       *string    `db:"link_position"`
	LinkContractEnd    *time.Time `db:"link_contract_end"`
	LinkContractStatus *string    `db:"link_contract_status"`
	LinkUpdatedAt      *time.Time `db:"link_updated_at"`
}

var playerProfileColumns = []string{
	"p.id",
	"p.name",
	"p.nationality",
	"p.birth_year",
	"p.age",
	"p.height_cm",
	"p.dominant_foot",
	"p.external_id",
	"p.created_at",
	"p.updated_at",
	"c.id AS link_id",
	"c.club AS link_club",
	"c.league AS link_league",
	"c.position AS link_position",
	"c.contract_end AS link_contract_end",
	"c.contract_status AS link_contract_status",
	"c.updated_at AS link_updated_at",
}

func (r playerProfileRow) toDomain() player.Profile {
	out := player.Profile{Player: r.playerTableModel.toDomain()}
	if r.LinkID == nil {
		return out
	}

	link := clublink.ClubLink{
		ID:          *r.LinkID,
		PlayerID:    r.ID,
		Club:        derefString(r.LinkClub),
		League:      derefString(r.LinkLeague),
		Position:    derefString(r.LinkPosition),
		ContractEnd: r.LinkContractEnd,
	}
	link.ContractStatus = clublink.ContractStatus(derefString(r.LinkContractStatus))
	if r.LinkUpdatedAt != nil {
		link.UpdatedAt = *r.LinkUpdatedAt
	}
	out.ClubLink = &link
	return out
}

type alertTableModel struct {
	ID          int64     `db:"id,readonly"`
	PlayerID    int64     `db:"player_id"`
	Type        string    `db:"type"`
	Description string    `db:"description"`
	Priority    string    `db:"priority"`
	Active      bool      `db:"active"`
	CreatedAt   time.Time `db:"created_at,readonly"`
}

var alertColumns = []string{
	"id",
	"player_id",
	"type",
	"description",
	"priority",
	"active",
	"created_at",
}

func alertModelFrom(a alert.Alert) alertTableModel {
	return alertTableModel{
		PlayerID:    a.PlayerID,
		Type:        a.Type,
		Description: a.Description,
		Priority:    string(a.Priority),
		Active:      a.Active,
	}
}

func (m alertTableModel) toDomain() alert.Alert {
	return alert.Alert{
		ID:          m.ID,
		PlayerID:    m.PlayerID,
		Type:        m.Type,
		Description: m.Description,
		Priority:    alert.Priority(m.Priority),
		Active:      m.Active,
		CreatedAt:   m.CreatedAt,
	}
}

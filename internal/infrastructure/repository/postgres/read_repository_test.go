package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/riskibarqy/scout-pro/internal/domain/clublink"
)

var profileColumnNames = []string{
	"id", "name", "nationality", "birth_year", "age", "height_cm", "dominant_foot", "external_id", "created_at", "updated_at",
	"link_id", "link_club", "link_league", "link_position", "link_contract_end", "link_contract_status", "link_updated_at",
}

func TestPlayerRepository_List_JoinsClubLink(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewPlayerRepository(db)
	now := time.Date(2024, time.August, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM players p LEFT JOIN club_links c ON c.player_id = p.id ORDER BY p.id")).
		WillReturnRows(sqlmock.NewRows(profileColumnNames).
			AddRow(int64(1), "A. Silva", "Portugal", 2001, 23, 182, "right", "123", now, now,
				int64(4), "FC Porto", "Liga Portugal", "ST", end, "final-six-months", now).
			AddRow(int64(2), "Free Kid", nil, nil, nil, nil, nil, nil, now, now,
				nil, nil, nil, nil, nil, nil, nil))

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("unexpected profile count: got=%d want=2", len(got))
	}
	first := got[0]
	if first.ClubLink == nil || first.ClubLink.Club != "FC Porto" || first.ClubLink.ContractStatus != clublink.StatusFinalSixMonths {
		t.Fatalf("unexpected club link: %+v", first.ClubLink)
	}
	if first.Player.HeightCM == nil || *first.Player.HeightCM != 182 {
		t.Fatalf("unexpected height: %v", first.Player.HeightCM)
	}
	if got[1].ClubLink != nil {
		t.Fatalf("player without link should have nil club link")
	}
}

func TestPlayerRepository_GetByID_NotFound(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewPlayerRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.id = $1 LIMIT 1")).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(profileColumnNames))

	_, exists, err := repo.GetByID(context.Background(), 42)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if exists {
		t.Fatalf("expected missing player")
	}
}

func TestAlertRepository_Deactivate(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewAlertRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE alerts SET active = $1 WHERE id = $2 AND active = $3")).
		WithArgs(false, int64(3), true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE alerts SET active = $1 WHERE id = $2 AND active = $3")).
		WithArgs(false, int64(3), true).
		WillReturnResult(sqlmock.NewResult(0, 0))

	changed, err := repo.Deactivate(context.Background(), 3)
	if err != nil || !changed {
		t.Fatalf("first deactivate: changed=%v err=%v", changed, err)
	}
	changed, err = repo.Deactivate(context.Background(), 3)
	if err != nil || changed {
		t.Fatalf("second deactivate: changed=%v err=%v", changed, err)
	}
}

func TestAlertRepository_ListActive(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := NewAlertRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM alerts WHERE active = $1 ORDER BY created_at DESC, id DESC")).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows(alertColumns).
			AddRow(int64(2), int64(1), "Potential", "High potential: Alto", "medium", true, now))

	got, err := repo.ListActive(context.Background())
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(got) != 1 || got[0].Type != "Potential" {
		t.Fatalf("unexpected alerts: %+v", got)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	if !isUniqueViolation(&pq.Error{Code: "23505"}) {
		t.Fatalf("expected 23505 to be a unique violation")
	}
	if isUniqueViolation(&pq.Error{Code: "23503"}) {
		t.Fatalf("foreign key violation is not a unique violation")
	}
	if isUniqueViolation(errors.New("plain")) {
		t.Fatalf("plain error is not a unique violation")
	}
}

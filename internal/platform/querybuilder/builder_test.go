package querybuilder

import (
	"reflect"
	"strings"
	"testing"
)

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "name").
		From("players").
		Where(Eq("name", "A. Silva"), IsNull("external_id")).
		OrderBy("id").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, name FROM players WHERE name = $1 AND external_id IS NULL ORDER BY id LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "A. Silva" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_ForUpdateAndIn(t *testing.T) {
	query, args, err := Select("id").
		From("players").
		Where(In("id", []any{int64(1), int64(2)}), Expr("updated_at > ?", "2026-01-01")).
		ForUpdate().
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id FROM players WHERE id IN ($1, $2) AND updated_at > $3 FOR UPDATE"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_EmptyInMatchesNothing(t *testing.T) {
	query, _, err := Select("id").From("players").Where(In("id", nil)).ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}
	if query != "SELECT id FROM players WHERE 1=0" {
		t.Fatalf("unexpected query: %s", query)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("club_links").
		Columns("player_id", "club").
		Values(int64(7), "Santos").
		OnConflict("(player_id) DO UPDATE SET club = EXCLUDED.club").
		Returning("id", "(xmax = 0) AS inserted").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO club_links (player_id, club) VALUES ($1, $2) ON CONFLICT (player_id) DO UPDATE SET club = EXCLUDED.club RETURNING id, (xmax = 0) AS inserted"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != int64(7) || args[1] != "Santos" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder_RowWidthMismatch(t *testing.T) {
	_, _, err := InsertInto("players").Columns("a", "b").Values(1).ToSQL()
	if err == nil {
		t.Fatalf("expected error for short row")
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("players").
		Set("name", "new").
		SetExpr("updated_at", "NOW()").
		Where(Eq("id", int64(3))).
		Returning("updated_at").
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE players SET name = $1, updated_at = NOW() WHERE id = $2 RETURNING updated_at"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "new" || args[1] != int64(3) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

type testModel struct {
	ID       int64  `db:"id,readonly"`
	Name     string `db:"name"`
	Height   *int   `db:"height_cm"`
	internal string
	Skipped  string `db:"-"`
}

func TestInsertModel_SkipsReadonlyColumns(t *testing.T) {
	query, args, err := InsertModel("players", testModel{ID: 9, Name: "A", internal: "x"}, "id")
	if err != nil {
		t.Fatalf("InsertModel error: %v", err)
	}

	wantQuery := "INSERT INTO players (name, height_cm) VALUES ($1, $2) RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "A" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateModel(t *testing.T) {
	height := 182
	query, args, err := UpdateModel("players", &testModel{ID: 9, Name: "A", Height: &height}, Eq("id", int64(9))).
		SetExpr("updated_at", "NOW()").
		ToSQL()
	if err != nil {
		t.Fatalf("UpdateModel error: %v", err)
	}

	wantQuery := "UPDATE players SET name = $1, height_cm = $2, updated_at = NOW() WHERE id = $3"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if !reflect.DeepEqual(args, []any{"A", &height, int64(9)}) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateModel_ReportsModelError(t *testing.T) {
	var nilModel *testModel
	_, _, err := UpdateModel("players", nilModel, Eq("id", int64(9))).ToSQL()
	if err == nil || !strings.Contains(err.Error(), "model cannot be nil") {
		t.Fatalf("expected model error, got %v", err)
	}

	_, _, err = UpdateModel("players", 42).ToSQL()
	if err == nil || !strings.Contains(err.Error(), "model must be struct") {
		t.Fatalf("expected struct error, got %v", err)
	}
}

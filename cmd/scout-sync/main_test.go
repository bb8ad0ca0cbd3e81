package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/scout-pro/internal/config"
	"github.com/riskibarqy/scout-pro/internal/domain/alert"
	"github.com/riskibarqy/scout-pro/internal/domain/clublink"
	"github.com/riskibarqy/scout-pro/internal/domain/player"
	"github.com/riskibarqy/scout-pro/internal/platform/logging"
	"github.com/riskibarqy/scout-pro/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T) string {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Nome", "Link TM", "Clube", "Potencial"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"A. Silva", "https://www.transfermarkt.com/a-silva/profil/spieler/123", "FC Porto", "Alto"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"B. Costa", "", "Livre", ""}))

	path := filepath.Join(t.TempDir(), "roster.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func newTestRunner(t *testing.T) (*runner, *bytes.Buffer) {
	t.Helper()

	path := writeWorkbook(t)
	out := &bytes.Buffer{}
	r := newRunner(runnerOptions{
		Output:    out,
		LogOutput: io.Discard,
		LoadConfig: func() (config.Config, error) {
			return config.Config{
				AppEnv:                 config.EnvDev,
				ServiceName:            "scout-sync",
				LogLevel:               logging.LevelInfo,
				LogFormat:              logging.FormatJSON,
				StoreDriver:            config.StoreDriverMemory,
				SourceDriver:           config.SourceDriverXLSX,
				XLSXPath:               path,
				CacheEnabled:           true,
				CacheTTL:               time.Minute,
				SyncInterval:           time.Hour,
				SyncPotentialThreshold: 4,
			}, nil
		},
	})
	return r, out
}

func TestRunCommand_JSONReport(t *testing.T) {
	r, out := newTestRunner(t)

	err := r.command().Run(context.Background(), []string{"scout-sync", "run", "--json"})
	require.NoError(t, err)

	var report usecase.SyncReport
	require.NoError(t, sonic.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, usecase.SyncStateCompleted, report.State)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 2, report.Processed)
	assert.NotEmpty(t, report.RunID)
}

func TestRunCommand_TextReportDryRun(t *testing.T) {
	r, out := newTestRunner(t)

	err := r.command().Run(context.Background(), []string{"scout-sync", "run", "--dry-run"})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "state")
	assert.Contains(t, text, "completed")
	assert.Contains(t, text, "dry run")
	assert.Contains(t, text, "cache invalidated  false")
}

func TestWatchCommand_StopsAfterMaxRuns(t *testing.T) {
	r, out := newTestRunner(t)

	err := r.command().Run(context.Background(), []string{"scout-sync", "watch", "--every", "10ms", "--max-runs", "2"})
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(out.String(), "state"))
	// The second pass updates the players created by the first.
	assert.Contains(t, out.String(), "updated            2")
}

func TestPlayersList_EmptyStorePrintsHeader(t *testing.T) {
	r, out := newTestRunner(t)

	err := r.command().Run(context.Background(), []string{"scout-sync", "players", "list"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "CONTRACT END")
}

func TestAlertsResolve_RejectsBadID(t *testing.T) {
	r, _ := newTestRunner(t)

	for _, args := range [][]string{
		{"scout-sync", "alerts", "resolve"},
		{"scout-sync", "alerts", "resolve", "abc"},
		{"scout-sync", "alerts", "resolve", "0"},
	} {
		err := r.command().Run(context.Background(), args)
		assert.True(t, errors.Is(err, usecase.ErrInvalidInput), "args=%v err=%v", args, err)
	}
}

func TestAlertsResolve_UnknownAlert(t *testing.T) {
	r, _ := newTestRunner(t)

	err := r.command().Run(context.Background(), []string{"scout-sync", "alerts", "resolve", "42"})
	assert.True(t, errors.Is(err, usecase.ErrNotFound), "got %v", err)
}

func TestToPlayerView(t *testing.T) {
	t.Parallel()

	foot := player.FootLeft
	externalID := "123"
	end := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	view := toPlayerView(player.Profile{
		Player: player.Player{ID: 1, Name: "A. Silva", DominantFoot: &foot, ExternalID: &externalID},
		ClubLink: &clublink.ClubLink{
			Club:           "FC Porto",
			ContractEnd:    &end,
			ContractStatus: clublink.StatusFinalSixMonths,
		},
	})

	assert.Equal(t, "left", *view.DominantFoot)
	assert.Equal(t, "2025-01-01", view.ContractEnd)
	assert.Equal(t, "final-six-months", view.ContractStatus)
	assert.Equal(t, "FC Porto", view.Club)
}

func TestPrintAlerts_JSON(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	r := newRunner(runnerOptions{Output: out})
	created := time.Date(2024, time.August, 1, 9, 0, 0, 0, time.UTC)
	err := r.printAlerts([]alert.Alert{{
		ID: 3, PlayerID: 1, Type: alert.TypeContract, Description: "Contract ends on 2025-01-01",
		Priority: alert.PriorityHigh, Active: true, CreatedAt: created,
	}}, true)
	require.NoError(t, err)

	var views []alertView
	require.NoError(t, sonic.Unmarshal(out.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "high", views[0].Priority)
	assert.True(t, views[0].CreatedAt.Equal(created))
}

package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/riskibarqy/scout-pro/internal/config"
	"github.com/riskibarqy/scout-pro/internal/platform/logging"
	"github.com/riskibarqy/scout-pro/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeRosterWorkbook(t *testing.T) string {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"Nome", "Link TM", "Clube", "Liga do clube", "Fim de contrato", "Potencial"},
		{"A. Silva", "https://www.transfermarkt.com/a-silva/profil/spieler/123", "FC Porto", "Liga Portugal", "2031-06-30", "Alto"},
		{"B. Costa", "", "Livre", "", "", ""},
		{"", "", "Orphan FC", "", "", ""},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "roster.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func memoryConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		AppEnv:                 config.EnvDev,
		ServiceName:            "scout-sync",
		StoreDriver:            config.StoreDriverMemory,
		SourceDriver:           config.SourceDriverXLSX,
		XLSXPath:               writeRosterWorkbook(t),
		CacheEnabled:           true,
		CacheTTL:               time.Minute,
		SyncPotentialThreshold: 4,
	}
}

func TestNew_MemoryStoreXLSXSource_RunsSync(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, memoryConfig(t), logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	// Warm the local cache so the pass has something to invalidate.
	before, err := a.Scouting.ListPlayers(ctx)
	require.NoError(t, err)
	assert.Empty(t, before)

	report, err := a.Sync.RunSync(ctx)
	require.NoError(t, err)
	assert.Equal(t, usecase.SyncStateCompleted, report.State)
	assert.Equal(t, "xlsx:roster.xlsx", report.Source)
	assert.Equal(t, 3, report.Processed)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 1, report.SkippedInvalid)
	assert.True(t, report.CacheInvalidated)

	players, err := a.Scouting.ListPlayers(ctx)
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, "A. Silva", players[0].Player.Name)
	require.NotNil(t, players[0].ClubLink)
	assert.Equal(t, "FC Porto", players[0].ClubLink.Club)

	alerts, err := a.Scouting.ListActiveAlerts(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, alerts)
}

func TestNew_WithRedis_InvalidatesSharedCache(t *testing.T) {
	ctx := context.Background()
	redisServer := miniredis.RunT(t)
	require.NoError(t, redisServer.Set("scout:player:list", "stale"))
	require.NoError(t, redisServer.Set("other:key", "keep"))

	cfg := memoryConfig(t)
	cfg.RedisEnabled = true
	cfg.RedisAddress = redisServer.Addr()
	cfg.RedisCachePrefix = "scout:"
	cfg.RedisEventsChannel = "scout:events"

	a, err := New(ctx, cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	report, err := a.Sync.RunSync(ctx)
	require.NoError(t, err)
	assert.True(t, report.CacheInvalidated)
	assert.False(t, redisServer.Exists("scout:player:list"))
	assert.True(t, redisServer.Exists("other:key"))
}

func TestNew_BackgroundJob(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, memoryConfig(t), logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	status, err := a.Jobs.Start(ctx, usecase.SyncOptions{})
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	final, err := a.Jobs.Wait(waitCtx, status.ID)
	require.NoError(t, err)
	assert.Equal(t, usecase.JobStateCompleted, final.State)
	require.NotNil(t, final.Report)
	assert.Equal(t, 2, final.Report.Created)
}

func TestNew_RejectsUnknownDrivers(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.StoreDriver = "mysql"
	_, err := New(context.Background(), cfg, logging.NewNop())
	assert.True(t, errors.Is(err, usecase.ErrInvalidInput), "got %v", err)

	cfg = memoryConfig(t)
	cfg.SourceDriver = "csv"
	_, err = New(context.Background(), cfg, logging.NewNop())
	assert.True(t, errors.Is(err, usecase.ErrInvalidInput), "got %v", err)
}

func TestNew_RedisUnavailable(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.RedisEnabled = true
	cfg.RedisAddress = "127.0.0.1:1"
	cfg.RedisCachePrefix = "scout:"

	_, err := New(context.Background(), cfg, logging.NewNop())
	assert.True(t, errors.Is(err, usecase.ErrDependencyUnavailable), "got %v", err)
}

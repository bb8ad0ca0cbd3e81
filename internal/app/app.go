package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/scout-pro/external/rediscache"
	"github.com/riskibarqy/scout-pro/external/sheets"
	"github.com/riskibarqy/scout-pro/external/xlsx"
	"github.com/riskibarqy/scout-pro/internal/config"
	"github.com/riskibarqy/scout-pro/internal/domain/alert"
	"github.com/riskibarqy/scout-pro/internal/domain/player"
	"github.com/riskibarqy/scout-pro/internal/domain/roster"
	cacherepo "github.com/riskibarqy/scout-pro/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/scout-pro/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/scout-pro/internal/infrastructure/repository/postgres"
	basecache "github.com/riskibarqy/scout-pro/internal/platform/cache"
	idgen "github.com/riskibarqy/scout-pro/internal/platform/id"
	"github.com/riskibarqy/scout-pro/internal/platform/logging"
	"github.com/riskibarqy/scout-pro/internal/platform/resilience"
	"github.com/riskibarqy/scout-pro/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

// App holds the wired services of one process.
type App struct {
	Sync     *usecase.RosterSyncService
	Jobs     *usecase.SyncJobService
	Scouting *usecase.ScoutingService
	Source   roster.Source

	logger  *logging.Logger
	closers []func() error
}

type storage struct {
	store   roster.Store
	players player.Repository
	alerts  alert.Repository
}

// New wires storage, the roster source, caches and services from cfg.
// The caller owns the returned App and must Close it.
func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	a := &App{logger: logger}

	st, err := a.openStorage(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	source, err := openSource(ctx, cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Source = source

	var invalidators []roster.CacheInvalidator
	players, alerts := st.players, st.alerts
	if cfg.CacheEnabled {
		local := basecache.NewStore(cfg.CacheTTL)
		players = cacherepo.NewPlayerRepository(players, local)
		alerts = cacherepo.NewAlertRepository(alerts, local)
		invalidators = append(invalidators, local)
	}

	var events usecase.SyncEventPublisher
	if cfg.RedisEnabled {
		client, err := rediscache.NewClient(ctx, rediscache.ClientConfig{
			Address:  cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("%w: %w", usecase.ErrDependencyUnavailable, err)
		}
		a.closers = append(a.closers, client.Close)

		shared, err := rediscache.NewInvalidator(client, rediscache.Config{
			Prefix:  cfg.RedisCachePrefix,
			Channel: cfg.RedisEventsChannel,
			Logger:  logger.Named("rediscache"),
		})
		if err != nil {
			a.Close()
			return nil, err
		}
		invalidators = append(invalidators, shared)
		events = shared
	}

	ids := idgen.NewUUIDGenerator()
	a.Sync = usecase.NewRosterSyncService(
		source,
		st.store,
		usecase.NewMultiInvalidator(logger, invalidators...),
		ids,
		usecase.RosterSyncConfig{
			DedupAlerts: cfg.SyncDedupAlerts,
			Normalizer: roster.NormalizerConfig{
				FreeAgentLabels:    cfg.SyncFreeAgentLabels,
				PotentialThreshold: cfg.SyncPotentialThreshold,
			},
		},
		logger.Named("sync"),
	)
	if events != nil {
		a.Sync.WithEventPublisher(events)
	}

	a.Jobs, err = usecase.NewSyncJobService(a.Sync, ids, logger.Named("jobs"))
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, func() error {
		a.Jobs.Close()
		return nil
	})

	a.Scouting = usecase.NewScoutingService(players, alerts)

	logger.Info("app wired",
		"store", cfg.StoreDriver,
		"source", source.Name(),
		"local_cache", cfg.CacheEnabled,
		"redis", cfg.RedisEnabled,
		"dedup_alerts", cfg.SyncDedupAlerts,
	)
	return a, nil
}

func (a *App) openStorage(cfg config.Config) (storage, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		store := memory.NewRosterStore()
		return storage{store: store, players: store, alerts: store}, nil
	case config.StoreDriverPostgres:
		db, err := openDB(cfg)
		if err != nil {
			return storage{}, err
		}
		a.closers = append(a.closers, db.Close)
		return storage{
			store:   postgres.NewRosterStore(db),
			players: postgres.NewPlayerRepository(db),
			alerts:  postgres.NewAlertRepository(db),
		}, nil
	default:
		return storage{}, fmt.Errorf("%w: unknown store driver %q", usecase.ErrInvalidInput, cfg.StoreDriver)
	}
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dbURL := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Open("postgres", dbURL,
		otelsql.WithDBName(dbNameFromURL(dbURL)),
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: open postgres: %w", usecase.ErrDependencyUnavailable, err)
	}
	return db, nil
}

func openSource(ctx context.Context, cfg config.Config, logger *logging.Logger) (roster.Source, error) {
	switch cfg.SourceDriver {
	case config.SourceDriverXLSX:
		reader, err := xlsx.NewReader(xlsx.ReaderConfig{
			Path:   cfg.XLSXPath,
			Sheet:  cfg.XLSXSheet,
			Logger: logger.Named("xlsx"),
		})
		if err != nil {
			return nil, err
		}
		return reader, nil
	case config.SourceDriverSheets:
		var credentials []byte
		if raw := strings.TrimSpace(cfg.GoogleSheetsCredentialsJSON); raw != "" {
			credentials = []byte(raw)
		}
		client, err := sheets.NewClient(ctx, sheets.ClientConfig{
			Spreadsheet:     cfg.GoogleSheet,
			Range:           cfg.GoogleSheetRange,
			CredentialsJSON: credentials,
			CredentialsFile: cfg.GoogleSheetsCredentialsFile,
			Timeout:         cfg.SheetsTimeout,
			MaxRetries:      cfg.SheetsMaxRetries,
			Logger:          logger.Named("sheets"),
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.SheetsCircuitEnabled,
				FailureThreshold: cfg.SheetsCircuitFailureCount,
				OpenTimeout:      cfg.SheetsCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.SheetsCircuitHalfOpenMaxReq,
			},
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("%w: unknown source driver %q", usecase.ErrInvalidInput, cfg.SourceDriver)
	}
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if len(errs) > 0 {
		a.logger.Warn("app close", "error", errors.Join(errs...))
	}
	return errors.Join(errs...)
}

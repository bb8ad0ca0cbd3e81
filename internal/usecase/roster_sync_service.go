package usecase

import (
	"context"
	"fmt"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/scout-pro/internal/domain/roster"
	idgen "github.com/riskibarqy/scout-pro/internal/platform/id"
	"github.com/riskibarqy/scout-pro/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type SyncState string

const (
	SyncStateIdle       SyncState = "idle"
	SyncStateFetching   SyncState = "fetching"
	SyncStateProcessing SyncState = "processing"
	SyncStateFinalizing SyncState = "finalizing"
	SyncStateCompleted  SyncState = "completed"
	SyncStateFailed     SyncState = "failed"
	SyncStateCancelled  SyncState = "cancelled"
)

const invalidationTimeout = 10 * time.Second

// SyncReport aggregates one pass. Processed counts every row the pass
// reached: Processed = Created + Updated + SkippedInvalid + len(Errors).
type SyncReport struct {
	RunID            string    `json:"run_id"`
	Source           string    `json:"source"`
	State            SyncState `json:"state"`
	RowsSeen         int       `json:"rows_seen"`
	Processed        int       `json:"processed"`
	Created          int       `json:"created"`
	Updated          int       `json:"updated"`
	SkippedInvalid   int       `json:"skipped_invalid"`
	Errors           []string  `json:"errors"`
	AlertsCreated    int       `json:"alerts_created"`
	CacheInvalidated bool      `json:"cache_invalidated"`
	DryRun           bool      `json:"dry_run"`
	FailureReason    string    `json:"failure_reason,omitempty"`
	StartedAt        time.Time `json:"started_at"`
	FinishedAt       time.Time `json:"finished_at"`
}

// SyncProgress is published on every state change and before each row.
type SyncProgress struct {
	State   SyncState
	Current int
	Total   int
	Step    string
}

type SyncOptions struct {
	// DryRun rolls back every row transaction and skips cache invalidation.
	DryRun   bool
	Progress func(SyncProgress)
}

// SyncEventPublisher announces finished passes to other processes.
type SyncEventPublisher interface {
	PublishSyncCompleted(ctx context.Context, report SyncReport) error
}

type RosterSyncConfig struct {
	DedupAlerts bool
	Normalizer  roster.NormalizerConfig
}

// RosterSyncService reconciles the external roster with the store in one
// ordered pass. Each row is written in its own transaction.
type RosterSyncService struct {
	source      roster.Source
	store       roster.Store
	invalidator roster.CacheInvalidator
	normalizer  *roster.Normalizer
	matcher     *EntityMatcher
	writer      *UpsertWriter
	alerts      *AlertGenerator
	events      SyncEventPublisher
	ids         idgen.Generator
	logger      *logging.Logger
	now         func() time.Time
}

func NewRosterSyncService(
	source roster.Source,
	store roster.Store,
	invalidator roster.CacheInvalidator,
	ids idgen.Generator,
	cfg RosterSyncConfig,
	logger *logging.Logger,
) *RosterSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	if ids == nil {
		ids = idgen.NewUUIDGenerator()
	}

	return &RosterSyncService{
		source:      source,
		store:       store,
		invalidator: invalidator,
		normalizer:  roster.NewNormalizer(cfg.Normalizer),
		matcher:     NewEntityMatcher(logger),
		writer:      NewUpsertWriter(),
		alerts:      NewAlertGenerator(cfg.DedupAlerts),
		ids:         ids,
		logger:      logger,
		now:         time.Now,
	}
}

// WithEventPublisher announces every completed, non dry-run pass.
func (s *RosterSyncService) WithEventPublisher(events SyncEventPublisher) *RosterSyncService {
	s.events = events
	return s
}

// RunSync runs one full pass with default options.
func (s *RosterSyncService) RunSync(ctx context.Context) (SyncReport, error) {
	return s.Run(ctx, SyncOptions{})
}

// Run fetches every row, then normalizes, matches, writes and alerts each
// one in source order. A fetch failure or an empty source fails the pass
// before any write. Row failures are counted and the pass continues.
// Cancelling ctx stops the pass between rows.
func (s *RosterSyncService) Run(ctx context.Context, opts SyncOptions) (SyncReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterSyncService.Run", attribute.Bool("dry_run", opts.DryRun))
	defer span.End()

	if s.source == nil || s.store == nil {
		return SyncReport{State: SyncStateFailed}, fmt.Errorf("%w: roster sync is not fully configured", ErrDependencyUnavailable)
	}

	runID, err := s.ids.NewID()
	if err != nil {
		return SyncReport{State: SyncStateFailed}, fmt.Errorf("generate run id: %w", err)
	}
	report := SyncReport{
		RunID:     runID,
		Source:    s.source.Name(),
		State:     SyncStateIdle,
		Errors:    []string{},
		DryRun:    opts.DryRun,
		StartedAt: s.now().UTC(),
	}
	logger := s.logger.With("run_id", runID, "source", report.Source)
	publish := func(state SyncState, current, total int, step string) {
		report.State = state
		if opts.Progress != nil {
			opts.Progress(SyncProgress{State: state, Current: current, Total: total, Step: step})
		}
	}

	logger.InfoContext(ctx, "roster sync started", "dry_run", opts.DryRun)
	publish(SyncStateFetching, 0, 0, "fetching rows")

	rows, err := s.source.FetchRows(ctx)
	if err != nil {
		if !crerr.Is(err, ErrSourceUnavailable) {
			err = fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
		}
		return s.fail(ctx, span, logger, &report, publish, crerr.Wrapf(err, "fetch rows from %s", report.Source))
	}
	report.RowsSeen = len(rows)
	if len(rows) == 0 {
		return s.fail(ctx, span, logger, &report, publish, crerr.Wrapf(ErrEmptySource, "source %s", report.Source))
	}

	now := s.now()
	for i, row := range rows {
		if ctx.Err() != nil {
			break
		}
		publish(SyncStateProcessing, i+1, len(rows), fmt.Sprintf("row %d of %d", i+1, len(rows)))
		s.processRow(ctx, logger, &report, row, now, opts.DryRun)
	}
	cancelled := ctx.Err() != nil

	publish(SyncStateFinalizing, report.Processed, len(rows), "invalidating caches")
	if !opts.DryRun {
		report.CacheInvalidated = s.invalidate(ctx, logger)
	}

	report.FinishedAt = s.now().UTC()
	span.SetAttributes(
		attribute.Int("sync.rows_seen", report.RowsSeen),
		attribute.Int("sync.created", report.Created),
		attribute.Int("sync.updated", report.Updated),
		attribute.Int("sync.skipped_invalid", report.SkippedInvalid),
		attribute.Int("sync.errors", len(report.Errors)),
	)

	if cancelled {
		publish(SyncStateCancelled, report.Processed, len(rows), "cancelled")
		logger.WarnContext(ctx, "roster sync cancelled",
			"processed", report.Processed,
			"rows_seen", report.RowsSeen,
		)
		return report, crerr.Wrapf(ctx.Err(), "roster sync cancelled after %d of %d rows", report.Processed, report.RowsSeen)
	}

	publish(SyncStateCompleted, report.Processed, len(rows), "completed")
	if s.events != nil && !opts.DryRun {
		if err := s.events.PublishSyncCompleted(context.WithoutCancel(ctx), report); err != nil {
			logger.WarnContext(ctx, "publish sync completed event failed", "error", err)
		}
	}
	logger.InfoContext(ctx, "roster sync completed",
		"rows_seen", report.RowsSeen,
		"created", report.Created,
		"updated", report.Updated,
		"skipped_invalid", report.SkippedInvalid,
		"errors", len(report.Errors),
		"alerts_created", report.AlertsCreated,
		"cache_invalidated", report.CacheInvalidated,
		"duration", report.FinishedAt.Sub(report.StartedAt),
	)
	return report, nil
}

var errDryRunRollback = crerr.New("dry run rollback")

type rowResult struct {
	created bool
	alerts  int
}

func (s *RosterSyncService) processRow(ctx context.Context, logger *logging.Logger, report *SyncReport, row roster.RawRow, now time.Time, dryRun bool) {
	report.Processed++

	normalized, err := s.normalizer.Normalize(row)
	if err != nil {
		report.SkippedInvalid++
		logger.WarnContext(ctx, "roster row skipped", "line", row.Line, "error", err)
		return
	}

	// A row that has started writing finishes even if the pass is cancelled.
	rowCtx := context.WithoutCancel(ctx)
	var result rowResult
	err = s.store.WithinTx(rowCtx, func(txCtx context.Context, tx roster.Tx) error {
		match, err := s.matcher.Match(txCtx, tx, normalized)
		if err != nil {
			return err
		}
		outcome, err := s.writer.Write(txCtx, tx, match, normalized, now)
		if err != nil {
			return err
		}
		alerts, err := s.alerts.Emit(txCtx, tx, outcome, normalized)
		if err != nil {
			return err
		}
		result = rowResult{created: outcome.Created, alerts: alerts}
		if dryRun {
			return errDryRunRollback
		}
		return nil
	})
	if err != nil && !crerr.Is(err, errDryRunRollback) {
		if crerr.Is(err, ErrInvalidRow) {
			report.SkippedInvalid++
			logger.WarnContext(ctx, "roster row skipped", "line", row.Line, "player", normalized.Name, "error", err)
			return
		}
		err = fmt.Errorf("%w: %w", ErrWriteConflict, err)
		report.Errors = append(report.Errors, fmt.Sprintf("line %d (%s): %v", row.Line, normalized.Name, err))
		logger.WarnContext(ctx, "roster row failed", "line", row.Line, "player", normalized.Name, "error", err)
		return
	}

	if result.created {
		report.Created++
	} else {
		report.Updated++
	}
	report.AlertsCreated += result.alerts
}

func (s *RosterSyncService) invalidate(ctx context.Context, logger *logging.Logger) bool {
	if s.invalidator == nil {
		return false
	}

	invalidateCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), invalidationTimeout)
	defer cancel()
	if err := s.invalidator.InvalidateAll(invalidateCtx); err != nil {
		if !crerr.Is(err, ErrCacheInvalidation) {
			err = fmt.Errorf("%w: %w", ErrCacheInvalidation, err)
		}
		logger.WarnContext(ctx, "roster cache invalidation failed", "error", err)
		return false
	}
	return true
}

func (s *RosterSyncService) fail(
	ctx context.Context,
	span trace.Span,
	logger *logging.Logger,
	report *SyncReport,
	publish func(SyncState, int, int, string),
	err error,
) (SyncReport, error) {
	recordSpanError(span, err)
	report.FailureReason = err.Error()
	report.FinishedAt = s.now().UTC()
	publish(SyncStateFailed, 0, report.RowsSeen, "failed")
	logger.ErrorContext(ctx, "roster sync failed", "error", err)
	return *report, err
}

package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/scout-pro/internal/domain/roster"
	"github.com/riskibarqy/scout-pro/internal/platform/logging"
	"github.com/sourcegraph/conc/panics"
	"github.com/sourcegraph/conc/pool"
)

// MultiInvalidator fans InvalidateAll out to every registered cache.
// All caches are attempted even when one fails or panics; a panic is
// reported as an ordinary invalidation error.
type MultiInvalidator struct {
	targets []roster.CacheInvalidator
	logger  *logging.Logger
}

func NewMultiInvalidator(logger *logging.Logger, targets ...roster.CacheInvalidator) *MultiInvalidator {
	if logger == nil {
		logger = logging.Default()
	}
	filtered := make([]roster.CacheInvalidator, 0, len(targets))
	for _, target := range targets {
		if target != nil {
			filtered = append(filtered, target)
		}
	}
	return &MultiInvalidator{targets: filtered, logger: logger}
}

func (m *MultiInvalidator) Len() int {
	return len(m.targets)
}

func (m *MultiInvalidator) InvalidateAll(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.MultiInvalidator.InvalidateAll")
	defer span.End()

	p := pool.New().WithContext(ctx)
	for _, target := range m.targets {
		target := target
		p.Go(func(ctx context.Context) error {
			var err error
			if recovered := panics.Try(func() { err = target.InvalidateAll(ctx) }); recovered != nil {
				err = recovered.AsError()
			}
			if err != nil {
				m.logger.WarnContext(ctx, "cache invalidation target failed", "target", fmt.Sprintf("%T", target), "error", err)
				return fmt.Errorf("%T: %w", target, err)
			}
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		recordSpanError(span, err)
		return fmt.Errorf("%w: %w", ErrCacheInvalidation, err)
	}
	return nil
}

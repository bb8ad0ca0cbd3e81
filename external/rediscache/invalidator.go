package rediscache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/scout-pro/internal/platform/logging"
	"github.com/riskibarqy/scout-pro/internal/usecase"
)

const (
	scanBatchSize = 500

	EventCacheInvalidated = "roster.cache_invalidated"
	EventSyncCompleted    = "roster.sync_completed"
)

type Config struct {
	// Prefix scopes the keys dropped by InvalidateAll, e.g. "scout:".
	Prefix string
	// Channel receives JSON events; empty disables publishing.
	Channel string
	Logger  *logging.Logger
}

// Event is the payload published on Channel.
type Event struct {
	Type           string    `json:"type"`
	RunID          string    `json:"run_id,omitempty"`
	Source         string    `json:"source,omitempty"`
	KeysRemoved    int       `json:"keys_removed,omitempty"`
	Processed      int       `json:"processed,omitempty"`
	Created        int       `json:"created,omitempty"`
	Updated        int       `json:"updated,omitempty"`
	SkippedInvalid int       `json:"skipped_invalid,omitempty"`
	Errors         int       `json:"errors,omitempty"`
	AlertsCreated  int       `json:"alerts_created,omitempty"`
	At             time.Time `json:"at"`
}

// Invalidator drops the shared Redis cache entries derived from the roster
// and tells other processes to drop their local caches.
type Invalidator struct {
	client  redis.UniversalClient
	prefix  string
	channel string
	logger  *logging.Logger
	now     func() time.Time
}

func NewInvalidator(client redis.UniversalClient, cfg Config) (*Invalidator, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: redis client is required", usecase.ErrDependencyUnavailable)
	}
	prefix := strings.TrimSpace(cfg.Prefix)
	if prefix == "" {
		return nil, fmt.Errorf("%w: redis cache prefix is required", usecase.ErrInvalidInput)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	return &Invalidator{
		client:  client,
		prefix:  prefix,
		channel: strings.TrimSpace(cfg.Channel),
		logger:  logger,
		now:     time.Now,
	}, nil
}

// InvalidateAll scans and unlinks every key under the prefix, then publishes
// a cache_invalidated event.
func (i *Invalidator) InvalidateAll(ctx context.Context) error {
	removed := 0
	iter := i.client.Scan(ctx, 0, i.prefix+"*", scanBatchSize).Iterator()
	batch := make([]string, 0, scanBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := i.client.Unlink(ctx, batch...).Result()
		if err != nil {
			return fmt.Errorf("unlink %d keys: %w", len(batch), err)
		}
		removed += int(n)
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) >= scanBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan keys prefix=%s: %w", i.prefix, err)
	}
	if err := flush(); err != nil {
		return err
	}

	i.logger.DebugContext(ctx, "redis cache invalidated", "prefix", i.prefix, "keys_removed", removed)
	return i.publish(ctx, Event{Type: EventCacheInvalidated, KeysRemoved: removed})
}

// PublishSyncCompleted announces the counts of a finished pass.
func (i *Invalidator) PublishSyncCompleted(ctx context.Context, report usecase.SyncReport) error {
	return i.publish(ctx, Event{
		Type:           EventSyncCompleted,
		RunID:          report.RunID,
		Source:         report.Source,
		Processed:      report.Processed,
		Created:        report.Created,
		Updated:        report.Updated,
		SkippedInvalid: report.SkippedInvalid,
		Errors:         len(report.Errors),
		AlertsCreated:  report.AlertsCreated,
	})
}

func (i *Invalidator) publish(ctx context.Context, event Event) error {
	if i.channel == "" {
		return nil
	}
	event.At = i.now().UTC()

	payload, err := sonic.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Type, err)
	}
	if err := i.client.Publish(ctx, i.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s event: %w", event.Type, err)
	}
	return nil
}
